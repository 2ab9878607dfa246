package rewards

import (
	"context"
	"errors"

	"punchme/web/db"
	"punchme/web/logs"
	"punchme/web/qrcode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AwardResult struct {
	RestaurantID uint
	Points       int
}

// credit adds one point to the customer's entry at restaurantID, creating the
// entry if needed, and records the event. mutate runs before the save.
func (s *Service) credit(ctx context.Context, tx db.Store, customerID, restaurantID uint, reason db.PointReason, mutate func(*db.CustomerPoints)) (*db.CustomerPoints, error) {
	entry, err := tx.PointsFor(ctx, customerID, restaurantID)
	if errors.Is(err, db.ErrNotFound) {
		entry = &db.CustomerPoints{CustomerID: customerID, RestaurantID: restaurantID}
	} else if err != nil {
		return nil, err
	}

	entry.Points++
	if mutate != nil {
		mutate(entry)
	}
	if err := tx.SavePoints(ctx, entry); err != nil {
		return nil, err
	}

	err = tx.AddPointEvent(ctx, &db.PointEvent{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Delta:        1,
		Reason:       reason,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AwardPoint credits one point at the restaurant whose current QR code was
// scanned, then rotates that restaurant's code so the scanned one is dead.
func (s *Service) AwardPoint(ctx context.Context, customerID uint, scanned string) (*AwardResult, error) {
	id, err := uuid.Parse(qrcode.ParsePayload(scanned))
	if err != nil {
		return nil, newError(BadRequest, "Invalid QR code.")
	}
	code := id.String()

	var res AwardResult
	err = s.store.Transaction(ctx, func(tx db.Store) error {
		qr, err := tx.QRByCode(ctx, code)
		if err != nil {
			return notFound(err, NotFound, "QR code is no longer valid. Ask for the current one.")
		}

		entry, err := s.credit(ctx, tx, customerID, qr.RestaurantID, db.ReasonAward, func(p *db.CustomerPoints) {
			now := s.now()
			p.LastAwardedAt = &now
			p.GiftEligible = true
		})
		if err != nil {
			return err
		}

		if _, err := s.generateQR(ctx, tx, qr.RestaurantID); err != nil {
			return err
		}
		res = AwardResult{RestaurantID: qr.RestaurantID, Points: entry.Points}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logs.Log.WithFields(logrus.Fields{
		"customer_id":   customerID,
		"restaurant_id": res.RestaurantID,
		"points":        res.Points,
	}).Info("point awarded")
	return &res, nil
}

// GiftPoint gives one point at restaurantID to the customer with receiverPhone.
// A giver may gift once per point earned by scanning; the giver keeps the point.
func (s *Service) GiftPoint(ctx context.Context, giverID uint, receiverPhone string, restaurantID uint) (*db.CustomerPoints, error) {
	phone, err := normalizePhone(receiverPhone)
	if err != nil {
		return nil, err
	}
	receiver, err := s.store.CustomerByPhone(ctx, phone)
	if err != nil {
		return nil, notFound(err, NotFound, "Receiver does not have a PunchMe account.")
	}
	if receiver.ID == giverID {
		return nil, newError(BadRequest, "You cannot send a point to yourself.")
	}

	var received *db.CustomerPoints
	err = s.store.Transaction(ctx, func(tx db.Store) error {
		giver, err := tx.PointsFor(ctx, giverID, restaurantID)
		if err != nil {
			return notFound(err, BadRequest, "You have no points at this restaurant.")
		}
		if !giver.GiftEligible {
			return newError(BadRequest, "Earn a point at this restaurant before sending one.")
		}

		giver.GiftEligible = false
		if err := tx.SavePoints(ctx, giver); err != nil {
			return err
		}

		received, err = s.credit(ctx, tx, receiver.ID, restaurantID, db.ReasonGift, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

func (s *Service) CustomerPointsList(ctx context.Context, customerID uint) ([]db.CustomerPoints, error) {
	return s.store.PointsByCustomer(ctx, customerID)
}

// RestaurantPointsList lists every ledger entry at the manager's restaurant.
func (s *Service) RestaurantPointsList(ctx context.Context, managerID uint) ([]db.CustomerPoints, error) {
	r, err := s.managerRestaurant(ctx, s.store, managerID)
	if err != nil {
		return nil, err
	}
	return s.store.PointsByRestaurant(ctx, r.ID)
}

// PointHistory lists point events at the manager's restaurant, newest first.
func (s *Service) PointHistory(ctx context.Context, managerID uint) ([]db.PointEvent, error) {
	r, err := s.managerRestaurant(ctx, s.store, managerID)
	if err != nil {
		return nil, err
	}
	return s.store.PointEventsByRestaurant(ctx, r.ID)
}
