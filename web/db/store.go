package db

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence port used by the rewards services.
// Methods return ErrNotFound for missing rows and ErrDuplicate on unique violations.
type Store interface {
	// Transaction runs fn against a Store bound to one transaction. Returning an
	// error from fn rolls back every write made through that Store.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateCustomer(ctx context.Context, c *Customer) error
	UpdateCustomer(ctx context.Context, c *Customer) error
	CustomerByID(ctx context.Context, id uint) (*Customer, error)
	CustomerByPhone(ctx context.Context, phone string) (*Customer, error)

	CreateManager(ctx context.Context, m *Manager) error
	ManagerByID(ctx context.Context, id uint) (*Manager, error)
	ManagerByEmail(ctx context.Context, email string) (*Manager, error)

	CreateRestaurant(ctx context.Context, r *Restaurant) error
	UpdateRestaurant(ctx context.Context, r *Restaurant) error
	RestaurantByID(ctx context.Context, id uint) (*Restaurant, error)
	RestaurantByManager(ctx context.Context, managerID uint) (*Restaurant, error)
	ListRestaurants(ctx context.Context) ([]Restaurant, error)

	CreateItem(ctx context.Context, it *Item) error
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id uint) error
	ItemByID(ctx context.Context, id uint) (*Item, error)
	ItemsByRestaurant(ctx context.Context, restaurantID uint) ([]Item, error)

	// PointsFor locks the ledger row when called inside a transaction.
	PointsFor(ctx context.Context, customerID, restaurantID uint) (*CustomerPoints, error)
	SavePoints(ctx context.Context, p *CustomerPoints) error
	PointsByCustomer(ctx context.Context, customerID uint) ([]CustomerPoints, error)
	PointsByRestaurant(ctx context.Context, restaurantID uint) ([]CustomerPoints, error)

	AddPointEvent(ctx context.Context, e *PointEvent) error
	PointEventsByRestaurant(ctx context.Context, restaurantID uint) ([]PointEvent, error)

	// QRByCode locks the QR row when called inside a transaction.
	QRByCode(ctx context.Context, code string) (*RestaurantQR, error)
	QRByRestaurant(ctx context.Context, restaurantID uint) (*RestaurantQR, error)
	SaveQR(ctx context.Context, qr *RestaurantQR) error

	CreateRedemption(ctx context.Context, r *ItemRedemption) error
	RedemptionByID(ctx context.Context, id uint) (*ItemRedemption, error)
	RedemptionByCode(ctx context.Context, code string) (*ItemRedemption, error)
	RedemptionsByCustomer(ctx context.Context, customerID uint) ([]ItemRedemption, error)
	DeleteRedemption(ctx context.Context, id uint) error

	CreateCode(ctx context.Context, c *OneTimeCode) error
	SaveCode(ctx context.Context, c *OneTimeCode) error
	CodeFor(ctx context.Context, kind CodeKind, identifier string) (*OneTimeCode, error)
	DeleteCodes(ctx context.Context, kind CodeKind, identifier string) error
	DeleteExpiredCodes(ctx context.Context, before time.Time) (int64, error)

	CreateFriendship(ctx context.Context, f *Friendship) error
	FriendsOf(ctx context.Context, customerID uint) ([]Customer, error)
	DeleteFriendship(ctx context.Context, customerID, friendID uint) error

	UpsertReferral(ctx context.Context, r *Referral) error
	ReferralByPhone(ctx context.Context, phone string) (*Referral, error)
	DeleteReferral(ctx context.Context, id uint) error
}
