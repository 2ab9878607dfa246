package rewards

import (
	"context"
	"errors"
	"strings"

	"punchme/web/db"
	"punchme/web/logs"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateRedemption issues a single-use code for item. The balance is checked
// here but only debited when a manager validates the code, so two redemptions
// may be created against the same points.
func (s *Service) CreateRedemption(ctx context.Context, customerID, itemID uint) (*db.ItemRedemption, error) {
	item, err := s.store.ItemByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, NotFound, "Item not found.")
	}

	balance := 0
	entry, err := s.store.PointsFor(ctx, customerID, item.RestaurantID)
	switch {
	case err == nil:
		balance = entry.Points
	case !errors.Is(err, db.ErrNotFound):
		return nil, err
	}
	if balance < item.Points {
		return nil, newError(NotFound, "Not enough points to redeem this item.")
	}

	r := &db.ItemRedemption{CustomerID: customerID, ItemID: item.ID, Code: s.newUUID()}
	if err := s.store.CreateRedemption(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

type ValidationResult struct {
	Redemption db.ItemRedemption
	Item       db.Item
	Points     int
}

// ValidateRedemption debits the item's cost and burns the code.
func (s *Service) ValidateRedemption(ctx context.Context, managerID uint, code string) (*ValidationResult, error) {
	id, err := uuid.Parse(strings.TrimSpace(code))
	if err != nil {
		return nil, newError(BadRequest, "Invalid redemption code.")
	}

	var res ValidationResult
	err = s.store.Transaction(ctx, func(tx db.Store) error {
		red, err := tx.RedemptionByCode(ctx, id.String())
		if err != nil {
			return notFound(err, NotFound, "Redemption not found.")
		}
		item, err := tx.ItemByID(ctx, red.ItemID)
		if err != nil {
			return notFound(err, NotFound, "Item not found.")
		}
		restaurant, err := tx.RestaurantByManager(ctx, managerID)
		if err != nil {
			return notFound(err, Forbidden, "Manager does not have a restaurant.")
		}
		if restaurant.ID != item.RestaurantID {
			return newError(Forbidden, "This redemption belongs to another restaurant.")
		}

		entry, err := tx.PointsFor(ctx, red.CustomerID, item.RestaurantID)
		if err != nil {
			return notFound(err, BadRequest, "Customer does not have enough points.")
		}
		if entry.Points < item.Points {
			return newError(BadRequest, "Customer does not have enough points.")
		}

		entry.Points -= item.Points
		if err := tx.SavePoints(ctx, entry); err != nil {
			return err
		}
		err = tx.AddPointEvent(ctx, &db.PointEvent{
			CustomerID:   red.CustomerID,
			RestaurantID: item.RestaurantID,
			Delta:        -item.Points,
			Reason:       db.ReasonRedeem,
			CreatedAt:    s.now(),
		})
		if err != nil {
			return err
		}
		if err := tx.DeleteRedemption(ctx, red.ID); err != nil {
			return err
		}

		res = ValidationResult{Redemption: *red, Item: *item, Points: entry.Points}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logs.Log.WithFields(logrus.Fields{
		"customer_id": res.Redemption.CustomerID,
		"item_id":     res.Item.ID,
		"cost":        res.Item.Points,
		"points":      res.Points,
	}).Info("redemption validated")
	return &res, nil
}

// DeleteRedemption cancels the customer's own unvalidated redemption.
func (s *Service) DeleteRedemption(ctx context.Context, customerID, redemptionID uint) error {
	red, err := s.store.RedemptionByID(ctx, redemptionID)
	if err != nil {
		return notFound(err, NotFound, "Redemption not found.")
	}
	if red.CustomerID != customerID {
		return newError(Forbidden, "You can only cancel your own redemptions.")
	}
	if err := s.store.DeleteRedemption(ctx, red.ID); err != nil {
		return notFound(err, NotFound, "Redemption not found.")
	}
	return nil
}

func (s *Service) ListRedemptions(ctx context.Context, customerID uint) ([]db.ItemRedemption, error) {
	return s.store.RedemptionsByCustomer(ctx, customerID)
}
