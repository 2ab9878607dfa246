package rewards

import (
	"context"
	"errors"

	"punchme/web/db"
)

// AddFriend records friendPhone's account as a friend of customerID. The
// relation is one-directional.
func (s *Service) AddFriend(ctx context.Context, customerID uint, friendPhone string) (*db.Customer, error) {
	phone, err := normalizePhone(friendPhone)
	if err != nil {
		return nil, err
	}
	friend, err := s.store.CustomerByPhone(ctx, phone)
	if err != nil {
		return nil, notFound(err, NotFound, "No account with this phone number exists.")
	}
	if friend.ID == customerID {
		return nil, newError(BadRequest, "You cannot add yourself as a friend.")
	}

	err = s.store.CreateFriendship(ctx, &db.Friendship{CustomerID: customerID, FriendID: friend.ID})
	if errors.Is(err, db.ErrDuplicate) {
		return nil, newError(Conflict, "Already friends.")
	}
	if err != nil {
		return nil, err
	}
	return friend, nil
}

func (s *Service) ListFriends(ctx context.Context, customerID uint) ([]db.Customer, error) {
	return s.store.FriendsOf(ctx, customerID)
}

func (s *Service) RemoveFriend(ctx context.Context, customerID, friendID uint) error {
	return notFound(s.store.DeleteFriendship(ctx, customerID, friendID), NotFound, "Friend not found.")
}

// CreateReferral invites inviteePhone, which must not have an account yet, to
// restaurantID. A later referral of the same phone replaces the earlier one.
func (s *Service) CreateReferral(ctx context.Context, customerID, restaurantID uint, inviteePhone string) (*db.Referral, error) {
	phone, err := normalizePhone(inviteePhone)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.RestaurantByID(ctx, restaurantID); err != nil {
		return nil, notFound(err, NotFound, "Restaurant not found.")
	}
	referrer, err := s.store.CustomerByID(ctx, customerID)
	if err != nil {
		return nil, notFound(err, NotFound, "Customer not found.")
	}
	if referrer.PhoneNumber == phone {
		return nil, newError(BadRequest, "You cannot refer yourself.")
	}
	_, err = s.store.CustomerByPhone(ctx, phone)
	switch {
	case err == nil:
		return nil, newError(Conflict, "This phone number already has an account.")
	case !errors.Is(err, db.ErrNotFound):
		return nil, err
	}

	ref := &db.Referral{PhoneNumber: phone, CustomerID: customerID, RestaurantID: restaurantID}
	if err := s.store.UpsertReferral(ctx, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// UseReferral grants the calling customer the point waiting for their phone
// number and removes the referral. Only referrals made before the customer
// registered count.
func (s *Service) UseReferral(ctx context.Context, customerID uint) (*db.CustomerPoints, error) {
	customer, err := s.store.CustomerByID(ctx, customerID)
	if err != nil {
		return nil, notFound(err, NotFound, "Customer not found.")
	}

	var entry *db.CustomerPoints
	err = s.store.Transaction(ctx, func(tx db.Store) error {
		ref, err := tx.ReferralByPhone(ctx, customer.PhoneNumber)
		if err != nil {
			return notFound(err, NotFound, "No referral for this phone number.")
		}
		if ref.CreatedAt.After(customer.CreatedAt) {
			return newError(BadRequest, "Referrals only apply to new accounts.")
		}
		entry, err = s.credit(ctx, tx, customer.ID, ref.RestaurantID, db.ReasonReferral, nil)
		if err != nil {
			return err
		}
		return tx.DeleteReferral(ctx, ref.ID)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
