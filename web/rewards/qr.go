package rewards

import (
	"context"
	"errors"

	"punchme/web/db"
	"punchme/web/qrcode"
)

type QR struct {
	RestaurantID uint   `json:"restaurant_id"`
	Code         string `json:"code"`
	Payload      string `json:"payload"`
}

func (s *Service) qrView(qr *db.RestaurantQR) *QR {
	return &QR{RestaurantID: qr.RestaurantID, Code: qr.Code, Payload: qrcode.Payload(qr.Code, s.opts.AppLink)}
}

// generateQR gives the restaurant a new code, creating its QR row on first use.
// Any previously printed code stops working.
func (s *Service) generateQR(ctx context.Context, tx db.Store, restaurantID uint) (*db.RestaurantQR, error) {
	qr, err := tx.QRByRestaurant(ctx, restaurantID)
	if errors.Is(err, db.ErrNotFound) {
		qr = &db.RestaurantQR{RestaurantID: restaurantID}
	} else if err != nil {
		return nil, err
	}

	qr.Code = s.newUUID()
	if err := tx.SaveQR(ctx, qr); err != nil {
		return nil, err
	}
	return qr, nil
}

// GenerateQR rotates the QR code of the manager's restaurant.
func (s *Service) GenerateQR(ctx context.Context, managerID uint) (*QR, error) {
	var out *db.RestaurantQR
	err := s.store.Transaction(ctx, func(tx db.Store) error {
		r, err := s.managerRestaurant(ctx, tx, managerID)
		if err != nil {
			return err
		}
		out, err = s.generateQR(ctx, tx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.qrView(out), nil
}

// CurrentQR returns the code on display, issuing one if the restaurant has none.
func (s *Service) CurrentQR(ctx context.Context, managerID uint) (*QR, error) {
	r, err := s.managerRestaurant(ctx, s.store, managerID)
	if err != nil {
		return nil, err
	}
	qr, err := s.store.QRByRestaurant(ctx, r.ID)
	if errors.Is(err, db.ErrNotFound) {
		return s.GenerateQR(ctx, managerID)
	}
	if err != nil {
		return nil, err
	}
	return s.qrView(qr), nil
}

func (s *Service) QRImage(ctx context.Context, managerID uint, size int) ([]byte, error) {
	qr, err := s.CurrentQR(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if size < 64 || size > 1024 {
		size = 256
	}
	return qrcode.PNG(qr.Payload, size)
}
