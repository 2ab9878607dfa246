package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of a gorm connection (MySQL, PostgreSQL or SQLite).
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// locked adds SELECT ... FOR UPDATE inside a transaction.
func (s *GormStore) locked(ctx context.Context) *gorm.DB {
	q := s.conn(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func first[T any](q *gorm.DB, conds ...any) (*T, error) {
	var out T
	if err := q.First(&out, conds...).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateCustomer(ctx context.Context, c *Customer) error {
	return translate(s.conn(ctx).Create(c).Error)
}

func (s *GormStore) UpdateCustomer(ctx context.Context, c *Customer) error {
	return translate(s.conn(ctx).Save(c).Error)
}

func (s *GormStore) CustomerByID(ctx context.Context, id uint) (*Customer, error) {
	return first[Customer](s.conn(ctx), id)
}

func (s *GormStore) CustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	return first[Customer](s.conn(ctx), "phone_number = ?", phone)
}

func (s *GormStore) CreateManager(ctx context.Context, m *Manager) error {
	return translate(s.conn(ctx).Create(m).Error)
}

func (s *GormStore) ManagerByID(ctx context.Context, id uint) (*Manager, error) {
	return first[Manager](s.conn(ctx), id)
}

func (s *GormStore) ManagerByEmail(ctx context.Context, email string) (*Manager, error) {
	return first[Manager](s.conn(ctx), "email = ?", email)
}

func (s *GormStore) CreateRestaurant(ctx context.Context, r *Restaurant) error {
	return translate(s.conn(ctx).Create(r).Error)
}

func (s *GormStore) UpdateRestaurant(ctx context.Context, r *Restaurant) error {
	return translate(s.conn(ctx).Save(r).Error)
}

func (s *GormStore) RestaurantByID(ctx context.Context, id uint) (*Restaurant, error) {
	return first[Restaurant](s.conn(ctx), id)
}

func (s *GormStore) RestaurantByManager(ctx context.Context, managerID uint) (*Restaurant, error) {
	return first[Restaurant](s.conn(ctx), "manager_id = ?", managerID)
}

func (s *GormStore) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	var out []Restaurant
	err := s.conn(ctx).Order("id").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) CreateItem(ctx context.Context, it *Item) error {
	return translate(s.conn(ctx).Create(it).Error)
}

func (s *GormStore) UpdateItem(ctx context.Context, it *Item) error {
	return translate(s.conn(ctx).Save(it).Error)
}

func (s *GormStore) DeleteItem(ctx context.Context, id uint) error {
	return affected(s.conn(ctx).Delete(&Item{}, id))
}

func (s *GormStore) ItemByID(ctx context.Context, id uint) (*Item, error) {
	return first[Item](s.conn(ctx), id)
}

func (s *GormStore) ItemsByRestaurant(ctx context.Context, restaurantID uint) ([]Item, error) {
	var out []Item
	err := s.conn(ctx).Where("restaurant_id = ?", restaurantID).Order("id").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) PointsFor(ctx context.Context, customerID, restaurantID uint) (*CustomerPoints, error) {
	return first[CustomerPoints](s.locked(ctx), "customer_id = ? AND restaurant_id = ?", customerID, restaurantID)
}

func (s *GormStore) SavePoints(ctx context.Context, p *CustomerPoints) error {
	return translate(s.conn(ctx).Save(p).Error)
}

func (s *GormStore) PointsByCustomer(ctx context.Context, customerID uint) ([]CustomerPoints, error) {
	var out []CustomerPoints
	err := s.conn(ctx).Where("customer_id = ?", customerID).Order("restaurant_id").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) PointsByRestaurant(ctx context.Context, restaurantID uint) ([]CustomerPoints, error) {
	var out []CustomerPoints
	err := s.conn(ctx).Where("restaurant_id = ?", restaurantID).Order("customer_id").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) AddPointEvent(ctx context.Context, e *PointEvent) error {
	return translate(s.conn(ctx).Create(e).Error)
}

func (s *GormStore) PointEventsByRestaurant(ctx context.Context, restaurantID uint) ([]PointEvent, error) {
	var out []PointEvent
	err := s.conn(ctx).Where("restaurant_id = ?", restaurantID).Order("id desc").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) QRByCode(ctx context.Context, code string) (*RestaurantQR, error) {
	return first[RestaurantQR](s.locked(ctx), "code = ?", code)
}

func (s *GormStore) QRByRestaurant(ctx context.Context, restaurantID uint) (*RestaurantQR, error) {
	return first[RestaurantQR](s.locked(ctx), "restaurant_id = ?", restaurantID)
}

func (s *GormStore) SaveQR(ctx context.Context, qr *RestaurantQR) error {
	return translate(s.conn(ctx).Save(qr).Error)
}

func (s *GormStore) CreateRedemption(ctx context.Context, r *ItemRedemption) error {
	return translate(s.conn(ctx).Create(r).Error)
}

func (s *GormStore) RedemptionByID(ctx context.Context, id uint) (*ItemRedemption, error) {
	return first[ItemRedemption](s.conn(ctx), id)
}

func (s *GormStore) RedemptionByCode(ctx context.Context, code string) (*ItemRedemption, error) {
	return first[ItemRedemption](s.locked(ctx), "code = ?", code)
}

func (s *GormStore) RedemptionsByCustomer(ctx context.Context, customerID uint) ([]ItemRedemption, error) {
	var out []ItemRedemption
	err := s.conn(ctx).Where("customer_id = ?", customerID).Order("id").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) DeleteRedemption(ctx context.Context, id uint) error {
	return affected(s.conn(ctx).Delete(&ItemRedemption{}, id))
}

func (s *GormStore) CreateCode(ctx context.Context, c *OneTimeCode) error {
	return translate(s.conn(ctx).Create(c).Error)
}

func (s *GormStore) SaveCode(ctx context.Context, c *OneTimeCode) error {
	return translate(s.conn(ctx).Save(c).Error)
}

func (s *GormStore) CodeFor(ctx context.Context, kind CodeKind, identifier string) (*OneTimeCode, error) {
	return first[OneTimeCode](s.locked(ctx), "kind = ? AND identifier = ?", kind, identifier)
}

func (s *GormStore) DeleteCodes(ctx context.Context, kind CodeKind, identifier string) error {
	err := s.conn(ctx).Where("kind = ? AND identifier = ?", kind, identifier).Delete(&OneTimeCode{}).Error
	return translate(err)
}

func (s *GormStore) DeleteExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	res := s.conn(ctx).Where("expires_at < ?", before).Delete(&OneTimeCode{})
	return res.RowsAffected, translate(res.Error)
}

func (s *GormStore) CreateFriendship(ctx context.Context, f *Friendship) error {
	return translate(s.conn(ctx).Create(f).Error)
}

func (s *GormStore) FriendsOf(ctx context.Context, customerID uint) ([]Customer, error) {
	var out []Customer
	err := s.conn(ctx).
		Joins("JOIN friendships ON friendships.friend_id = customers.id").
		Where("friendships.customer_id = ?", customerID).
		Order("friendships.id").
		Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) DeleteFriendship(ctx context.Context, customerID, friendID uint) error {
	return affected(s.conn(ctx).Where("customer_id = ? AND friend_id = ?", customerID, friendID).Delete(&Friendship{}))
}

func (s *GormStore) UpsertReferral(ctx context.Context, r *Referral) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"customer_id", "restaurant_id", "created_at"}),
	}).Create(r).Error
	return translate(err)
}

func (s *GormStore) ReferralByPhone(ctx context.Context, phone string) (*Referral, error) {
	return first[Referral](s.locked(ctx), "phone_number = ?", phone)
}

func (s *GormStore) DeleteReferral(ctx context.Context, id uint) error {
	return affected(s.conn(ctx).Delete(&Referral{}, id))
}

var _ Store = (*GormStore)(nil)
