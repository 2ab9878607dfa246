package db

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/btree"
)

// pointsItem orders ledger entries by (customer, restaurant) so a customer's
// entries form one contiguous range of the tree.
type pointsItem struct {
	CustomerPoints
}

func (a pointsItem) Less(b btree.Item) bool {
	o := b.(pointsItem)
	if a.CustomerID != o.CustomerID {
		return a.CustomerID < o.CustomerID
	}
	return a.RestaurantID < o.RestaurantID
}

func pointsKey(customerID, restaurantID uint) pointsItem {
	return pointsItem{CustomerPoints{CustomerID: customerID, RestaurantID: restaurantID}}
}

type memData struct {
	seq         uint
	customers   map[uint]Customer
	managers    map[uint]Manager
	restaurants map[uint]Restaurant
	items       map[uint]Item
	points      *btree.BTree
	events      []PointEvent
	qrs         map[uint]RestaurantQR
	redemptions map[uint]ItemRedemption
	codes       map[uint]OneTimeCode
	friendships map[uint]Friendship
	referrals   map[uint]Referral
}

func (d *memData) clone() *memData {
	return &memData{
		seq:         d.seq,
		customers:   maps.Clone(d.customers),
		managers:    maps.Clone(d.managers),
		restaurants: maps.Clone(d.restaurants),
		items:       maps.Clone(d.items),
		points:      d.points.Clone(),
		events:      slices.Clone(d.events),
		qrs:         maps.Clone(d.qrs),
		redemptions: maps.Clone(d.redemptions),
		codes:       maps.Clone(d.codes),
		friendships: maps.Clone(d.friendships),
		referrals:   maps.Clone(d.referrals),
	}
}

func (d *memData) next() uint {
	d.seq++
	return d.seq
}

// MemoryStore is an in-process Store. All access is serialised by one mutex and
// transactions roll back by restoring a snapshot.
type MemoryStore struct {
	mu   *sync.Mutex
	d    *memData
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		d: &memData{
			customers:   map[uint]Customer{},
			managers:    map[uint]Manager{},
			restaurants: map[uint]Restaurant{},
			items:       map[uint]Item{},
			points:      btree.New(2),
			qrs:         map[uint]RestaurantQR{},
			redemptions: map[uint]ItemRedemption{},
			codes:       map[uint]OneTimeCode{},
			friendships: map[uint]Friendship{},
			referrals:   map[uint]Referral{},
		},
	}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(&MemoryStore{mu: s.mu, d: s.d, inTx: true}); err != nil {
		*s.d = *snapshot
		return err
	}
	return nil
}

// sortedValues returns the map values matching keep, ordered by id.
func sortedValues[T any](m map[uint]T, keep func(T) bool) []T {
	ids := make([]uint, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func find[T any](m map[uint]T, match func(T) bool) (*T, error) {
	for _, v := range m {
		if match(v) {
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func byID[T any](m map[uint]T, id uint) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (s *MemoryStore) CreateCustomer(ctx context.Context, c *Customer) error {
	defer s.lock()()
	if _, err := find(s.d.customers, func(o Customer) bool { return o.PhoneNumber == c.PhoneNumber }); err == nil {
		return ErrDuplicate
	}
	now := time.Now()
	c.ID, c.CreatedAt, c.UpdatedAt = s.d.next(), now, now
	s.d.customers[c.ID] = *c
	return nil
}

func (s *MemoryStore) UpdateCustomer(ctx context.Context, c *Customer) error {
	defer s.lock()()
	if _, ok := s.d.customers[c.ID]; !ok {
		return ErrNotFound
	}
	if o, err := find(s.d.customers, func(o Customer) bool { return o.PhoneNumber == c.PhoneNumber }); err == nil && o.ID != c.ID {
		return ErrDuplicate
	}
	c.UpdatedAt = time.Now()
	s.d.customers[c.ID] = *c
	return nil
}

func (s *MemoryStore) CustomerByID(ctx context.Context, id uint) (*Customer, error) {
	defer s.lock()()
	return byID(s.d.customers, id)
}

func (s *MemoryStore) CustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	defer s.lock()()
	return find(s.d.customers, func(o Customer) bool { return o.PhoneNumber == phone })
}

func (s *MemoryStore) CreateManager(ctx context.Context, m *Manager) error {
	defer s.lock()()
	if _, err := find(s.d.managers, func(o Manager) bool { return o.Email == m.Email }); err == nil {
		return ErrDuplicate
	}
	now := time.Now()
	m.ID, m.CreatedAt, m.UpdatedAt = s.d.next(), now, now
	s.d.managers[m.ID] = *m
	return nil
}

func (s *MemoryStore) ManagerByID(ctx context.Context, id uint) (*Manager, error) {
	defer s.lock()()
	return byID(s.d.managers, id)
}

func (s *MemoryStore) ManagerByEmail(ctx context.Context, email string) (*Manager, error) {
	defer s.lock()()
	return find(s.d.managers, func(o Manager) bool { return o.Email == email })
}

func (s *MemoryStore) CreateRestaurant(ctx context.Context, r *Restaurant) error {
	defer s.lock()()
	if _, err := find(s.d.restaurants, func(o Restaurant) bool { return o.ManagerID == r.ManagerID }); err == nil {
		return ErrDuplicate
	}
	now := time.Now()
	r.ID, r.CreatedAt, r.UpdatedAt = s.d.next(), now, now
	s.d.restaurants[r.ID] = *r
	return nil
}

func (s *MemoryStore) UpdateRestaurant(ctx context.Context, r *Restaurant) error {
	defer s.lock()()
	if _, ok := s.d.restaurants[r.ID]; !ok {
		return ErrNotFound
	}
	r.UpdatedAt = time.Now()
	s.d.restaurants[r.ID] = *r
	return nil
}

func (s *MemoryStore) RestaurantByID(ctx context.Context, id uint) (*Restaurant, error) {
	defer s.lock()()
	return byID(s.d.restaurants, id)
}

func (s *MemoryStore) RestaurantByManager(ctx context.Context, managerID uint) (*Restaurant, error) {
	defer s.lock()()
	return find(s.d.restaurants, func(o Restaurant) bool { return o.ManagerID == managerID })
}

func (s *MemoryStore) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	defer s.lock()()
	return sortedValues(s.d.restaurants, nil), nil
}

func (s *MemoryStore) CreateItem(ctx context.Context, it *Item) error {
	defer s.lock()()
	now := time.Now()
	it.ID, it.CreatedAt, it.UpdatedAt = s.d.next(), now, now
	s.d.items[it.ID] = *it
	return nil
}

func (s *MemoryStore) UpdateItem(ctx context.Context, it *Item) error {
	defer s.lock()()
	if _, ok := s.d.items[it.ID]; !ok {
		return ErrNotFound
	}
	it.UpdatedAt = time.Now()
	s.d.items[it.ID] = *it
	return nil
}

func (s *MemoryStore) DeleteItem(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.d.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.d.items, id)
	return nil
}

func (s *MemoryStore) ItemByID(ctx context.Context, id uint) (*Item, error) {
	defer s.lock()()
	return byID(s.d.items, id)
}

func (s *MemoryStore) ItemsByRestaurant(ctx context.Context, restaurantID uint) ([]Item, error) {
	defer s.lock()()
	return sortedValues(s.d.items, func(o Item) bool { return o.RestaurantID == restaurantID }), nil
}

func (s *MemoryStore) PointsFor(ctx context.Context, customerID, restaurantID uint) (*CustomerPoints, error) {
	defer s.lock()()
	it := s.d.points.Get(pointsKey(customerID, restaurantID))
	if it == nil {
		return nil, ErrNotFound
	}
	p := it.(pointsItem).CustomerPoints
	return &p, nil
}

func (s *MemoryStore) SavePoints(ctx context.Context, p *CustomerPoints) error {
	defer s.lock()()
	existing := s.d.points.Get(pointsKey(p.CustomerID, p.RestaurantID))
	if p.ID == 0 {
		if existing != nil {
			return ErrDuplicate
		}
		p.ID = s.d.next()
	} else if existing == nil || existing.(pointsItem).ID != p.ID {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	s.d.points.ReplaceOrInsert(pointsItem{*p})
	return nil
}

func (s *MemoryStore) PointsByCustomer(ctx context.Context, customerID uint) ([]CustomerPoints, error) {
	defer s.lock()()
	var out []CustomerPoints
	s.d.points.AscendRange(pointsKey(customerID, 0), pointsKey(customerID+1, 0), func(it btree.Item) bool {
		out = append(out, it.(pointsItem).CustomerPoints)
		return true
	})
	return out, nil
}

func (s *MemoryStore) PointsByRestaurant(ctx context.Context, restaurantID uint) ([]CustomerPoints, error) {
	defer s.lock()()
	var out []CustomerPoints
	s.d.points.Ascend(func(it btree.Item) bool {
		if p := it.(pointsItem); p.RestaurantID == restaurantID {
			out = append(out, p.CustomerPoints)
		}
		return true
	})
	return out, nil
}

func (s *MemoryStore) AddPointEvent(ctx context.Context, e *PointEvent) error {
	defer s.lock()()
	e.ID = s.d.next()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.d.events = append(s.d.events, *e)
	return nil
}

func (s *MemoryStore) PointEventsByRestaurant(ctx context.Context, restaurantID uint) ([]PointEvent, error) {
	defer s.lock()()
	var out []PointEvent
	for i := len(s.d.events) - 1; i >= 0; i-- {
		if s.d.events[i].RestaurantID == restaurantID {
			out = append(out, s.d.events[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) QRByCode(ctx context.Context, code string) (*RestaurantQR, error) {
	defer s.lock()()
	return find(s.d.qrs, func(o RestaurantQR) bool { return o.Code == code })
}

func (s *MemoryStore) QRByRestaurant(ctx context.Context, restaurantID uint) (*RestaurantQR, error) {
	defer s.lock()()
	return find(s.d.qrs, func(o RestaurantQR) bool { return o.RestaurantID == restaurantID })
}

func (s *MemoryStore) SaveQR(ctx context.Context, qr *RestaurantQR) error {
	defer s.lock()()
	for _, o := range s.d.qrs {
		if o.ID != qr.ID && (o.RestaurantID == qr.RestaurantID || o.Code == qr.Code) {
			return ErrDuplicate
		}
	}
	if qr.ID == 0 {
		qr.ID = s.d.next()
	}
	qr.UpdatedAt = time.Now()
	s.d.qrs[qr.ID] = *qr
	return nil
}

func (s *MemoryStore) CreateRedemption(ctx context.Context, r *ItemRedemption) error {
	defer s.lock()()
	if _, err := find(s.d.redemptions, func(o ItemRedemption) bool { return o.Code == r.Code }); err == nil {
		return ErrDuplicate
	}
	r.ID, r.CreatedAt = s.d.next(), time.Now()
	s.d.redemptions[r.ID] = *r
	return nil
}

func (s *MemoryStore) RedemptionByID(ctx context.Context, id uint) (*ItemRedemption, error) {
	defer s.lock()()
	return byID(s.d.redemptions, id)
}

func (s *MemoryStore) RedemptionByCode(ctx context.Context, code string) (*ItemRedemption, error) {
	defer s.lock()()
	return find(s.d.redemptions, func(o ItemRedemption) bool { return o.Code == code })
}

func (s *MemoryStore) RedemptionsByCustomer(ctx context.Context, customerID uint) ([]ItemRedemption, error) {
	defer s.lock()()
	return sortedValues(s.d.redemptions, func(o ItemRedemption) bool { return o.CustomerID == customerID }), nil
}

func (s *MemoryStore) DeleteRedemption(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.d.redemptions[id]; !ok {
		return ErrNotFound
	}
	delete(s.d.redemptions, id)
	return nil
}

func (s *MemoryStore) CreateCode(ctx context.Context, c *OneTimeCode) error {
	defer s.lock()()
	if _, err := find(s.d.codes, func(o OneTimeCode) bool { return o.Kind == c.Kind && o.Identifier == c.Identifier }); err == nil {
		return ErrDuplicate
	}
	c.ID, c.CreatedAt = s.d.next(), time.Now()
	s.d.codes[c.ID] = *c
	return nil
}

func (s *MemoryStore) SaveCode(ctx context.Context, c *OneTimeCode) error {
	defer s.lock()()
	if _, ok := s.d.codes[c.ID]; !ok {
		return ErrNotFound
	}
	s.d.codes[c.ID] = *c
	return nil
}

func (s *MemoryStore) CodeFor(ctx context.Context, kind CodeKind, identifier string) (*OneTimeCode, error) {
	defer s.lock()()
	return find(s.d.codes, func(o OneTimeCode) bool { return o.Kind == kind && o.Identifier == identifier })
}

func (s *MemoryStore) DeleteCodes(ctx context.Context, kind CodeKind, identifier string) error {
	defer s.lock()()
	maps.DeleteFunc(s.d.codes, func(_ uint, o OneTimeCode) bool {
		return o.Kind == kind && o.Identifier == identifier
	})
	return nil
}

func (s *MemoryStore) DeleteExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	defer s.lock()()
	var n int64
	maps.DeleteFunc(s.d.codes, func(_ uint, o OneTimeCode) bool {
		if o.ExpiresAt.Before(before) {
			n++
			return true
		}
		return false
	})
	return n, nil
}

func (s *MemoryStore) CreateFriendship(ctx context.Context, f *Friendship) error {
	defer s.lock()()
	if _, err := find(s.d.friendships, func(o Friendship) bool {
		return o.CustomerID == f.CustomerID && o.FriendID == f.FriendID
	}); err == nil {
		return ErrDuplicate
	}
	f.ID, f.CreatedAt = s.d.next(), time.Now()
	s.d.friendships[f.ID] = *f
	return nil
}

func (s *MemoryStore) FriendsOf(ctx context.Context, customerID uint) ([]Customer, error) {
	defer s.lock()()
	links := sortedValues(s.d.friendships, func(o Friendship) bool { return o.CustomerID == customerID })
	out := make([]Customer, 0, len(links))
	for _, l := range links {
		if c, ok := s.d.customers[l.FriendID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteFriendship(ctx context.Context, customerID, friendID uint) error {
	defer s.lock()()
	f, err := find(s.d.friendships, func(o Friendship) bool {
		return o.CustomerID == customerID && o.FriendID == friendID
	})
	if err != nil {
		return err
	}
	delete(s.d.friendships, f.ID)
	return nil
}

func (s *MemoryStore) UpsertReferral(ctx context.Context, r *Referral) error {
	defer s.lock()()
	r.CreatedAt = time.Now()
	if existing, err := find(s.d.referrals, func(o Referral) bool { return o.PhoneNumber == r.PhoneNumber }); err == nil {
		r.ID = existing.ID
	} else {
		r.ID = s.d.next()
	}
	s.d.referrals[r.ID] = *r
	return nil
}

func (s *MemoryStore) ReferralByPhone(ctx context.Context, phone string) (*Referral, error) {
	defer s.lock()()
	return find(s.d.referrals, func(o Referral) bool { return o.PhoneNumber == phone })
}

func (s *MemoryStore) DeleteReferral(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.d.referrals[id]; !ok {
		return ErrNotFound
	}
	delete(s.d.referrals, id)
	return nil
}

// Codes returns every stored one-time code ordered by id.
func (s *MemoryStore) Codes() []OneTimeCode {
	defer s.lock()()
	return sortedValues(s.d.codes, nil)
}

var _ Store = (*MemoryStore)(nil)
