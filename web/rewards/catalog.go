package rewards

import (
	"context"
	"errors"
	"strings"

	"punchme/web/db"
)

type RestaurantInput struct {
	Name    string
	Address string
}

type ItemInput struct {
	Name        string
	Description string
	Points      int
}

// CreateRestaurant registers the manager's single restaurant and issues its
// first QR code.
func (s *Service) CreateRestaurant(ctx context.Context, managerID uint, in RestaurantInput) (*db.Restaurant, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, newError(BadRequest, "Restaurant name is required.")
	}

	r := &db.Restaurant{Name: in.Name, Address: strings.TrimSpace(in.Address), ManagerID: managerID}
	err := s.store.Transaction(ctx, func(tx db.Store) error {
		if err := tx.CreateRestaurant(ctx, r); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return newError(Conflict, "Manager already has a restaurant.")
			}
			return err
		}
		_, err := s.generateQR(ctx, tx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) UpdateRestaurant(ctx context.Context, managerID uint, in RestaurantInput) (*db.Restaurant, error) {
	r, err := s.managerRestaurant(ctx, s.store, managerID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		r.Name = name
	}
	if addr := strings.TrimSpace(in.Address); addr != "" {
		r.Address = addr
	}
	if err := s.store.UpdateRestaurant(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) GetRestaurant(ctx context.Context, id uint) (*db.Restaurant, error) {
	r, err := s.store.RestaurantByID(ctx, id)
	if err != nil {
		return nil, notFound(err, NotFound, "Restaurant not found.")
	}
	return r, nil
}

func (s *Service) ListRestaurants(ctx context.Context) ([]db.Restaurant, error) {
	return s.store.ListRestaurants(ctx)
}

func (s *Service) ItemsByRestaurant(ctx context.Context, restaurantID uint) ([]db.Item, error) {
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.store.ItemsByRestaurant(ctx, restaurantID)
}

func (s *Service) CreateItem(ctx context.Context, managerID uint, in ItemInput) (*db.Item, error) {
	r, err := s.managerRestaurant(ctx, s.store, managerID)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, newError(BadRequest, "Item name is required.")
	}
	if in.Points <= 0 {
		return nil, newError(BadRequest, "Item cost must be at least one point.")
	}

	it := &db.Item{RestaurantID: r.ID, Name: in.Name, Description: in.Description, Points: in.Points}
	if err := s.store.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// ownItem loads itemID and checks that it belongs to the manager's restaurant.
func (s *Service) ownItem(ctx context.Context, managerID, itemID uint) (*db.Item, error) {
	it, err := s.store.ItemByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, NotFound, "Item not found.")
	}
	r, err := s.store.RestaurantByManager(ctx, managerID)
	if err != nil {
		return nil, notFound(err, Forbidden, "Manager does not have a restaurant.")
	}
	if it.RestaurantID != r.ID {
		return nil, newError(Forbidden, "Item belongs to another restaurant.")
	}
	return it, nil
}

// UpdateItem applies the non-empty fields of in. A zero cost leaves the cost
// unchanged; a negative one is rejected.
func (s *Service) UpdateItem(ctx context.Context, managerID, itemID uint, in ItemInput) (*db.Item, error) {
	it, err := s.ownItem(ctx, managerID, itemID)
	if err != nil {
		return nil, err
	}
	if in.Points < 0 {
		return nil, newError(BadRequest, "Item cost must be at least one point.")
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		it.Name = name
	}
	if in.Description != "" {
		it.Description = in.Description
	}
	if in.Points > 0 {
		it.Points = in.Points
	}
	if err := s.store.UpdateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) DeleteItem(ctx context.Context, managerID, itemID uint) error {
	it, err := s.ownItem(ctx, managerID, itemID)
	if err != nil {
		return err
	}
	return notFound(s.store.DeleteItem(ctx, it.ID), NotFound, "Item not found.")
}

func (s *Service) GetCustomer(ctx context.Context, customerID uint) (*db.Customer, error) {
	c, err := s.store.CustomerByID(ctx, customerID)
	if err != nil {
		return nil, notFound(err, NotFound, "Customer not found.")
	}
	return c, nil
}

// UpdateCustomer changes the customer's name and email. The phone number is
// the login identifier and cannot be changed here.
func (s *Service) UpdateCustomer(ctx context.Context, customerID uint, p Profile) (*db.Customer, error) {
	c, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if p.FirstName != "" {
		c.FirstName = strings.TrimSpace(p.FirstName)
	}
	if p.LastName != "" {
		c.LastName = strings.TrimSpace(p.LastName)
	}
	if p.Email != "" {
		if c.Email, err = normalizeEmail(p.Email); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetManager(ctx context.Context, managerID uint) (*db.Manager, error) {
	m, err := s.store.ManagerByID(ctx, managerID)
	if err != nil {
		return nil, notFound(err, NotFound, "Manager not found.")
	}
	return m, nil
}
