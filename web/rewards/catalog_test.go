package rewards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRestaurant(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	m := e.manager(t, "owner@cafe.com")

	_, err := e.svc.CreateRestaurant(ctx, m.ID, RestaurantInput{Name: "  "})
	assertKind(t, BadRequest, err)

	r, err := e.svc.CreateRestaurant(ctx, m.ID, RestaurantInput{Name: " Cafe ", Address: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "Cafe", r.Name)
	assert.Equal(t, m.ID, r.ManagerID)

	qr, err := e.store.QRByRestaurant(ctx, r.ID)
	require.NoError(t, err, "restaurant starts with a QR code")
	assert.NotEmpty(t, qr.Code)

	_, err = e.svc.CreateRestaurant(ctx, m.ID, RestaurantInput{Name: "Second"})
	assertKind(t, Conflict, err)

	all, err := e.svc.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateRestaurant(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	m, r := e.restaurant(t, "owner@cafe.com", "Cafe")

	updated, err := e.svc.UpdateRestaurant(ctx, m.ID, RestaurantInput{Address: "2 High St"})
	require.NoError(t, err)
	assert.Equal(t, "Cafe", updated.Name)
	assert.Equal(t, "2 High St", updated.Address)

	got, err := e.svc.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "2 High St", got.Address)

	_, err = e.svc.GetRestaurant(ctx, 9999)
	assertKind(t, NotFound, err)

	loner := e.manager(t, "none@cafe.com")
	_, err = e.svc.UpdateRestaurant(ctx, loner.ID, RestaurantInput{Name: "X"})
	assertKind(t, NotFound, err)
}

func TestItems(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	m, r := e.restaurant(t, "owner@cafe.com", "Cafe")
	rival, _ := e.restaurant(t, "rival@cafe.com", "Rival")

	_, err := e.svc.CreateItem(ctx, m.ID, ItemInput{Name: "Coffee", Points: 0})
	assertKind(t, BadRequest, err)
	_, err = e.svc.CreateItem(ctx, m.ID, ItemInput{Name: "", Points: 3})
	assertKind(t, BadRequest, err)

	it, err := e.svc.CreateItem(ctx, m.ID, ItemInput{Name: "Coffee", Description: "Hot", Points: 5})
	require.NoError(t, err)
	assert.Equal(t, r.ID, it.RestaurantID)

	updated, err := e.svc.UpdateItem(ctx, m.ID, it.ID, ItemInput{Points: 4})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", updated.Name)
	assert.Equal(t, 4, updated.Points)

	_, err = e.svc.UpdateItem(ctx, m.ID, it.ID, ItemInput{Points: -1})
	assertKind(t, BadRequest, err)
	_, err = e.svc.UpdateItem(ctx, rival.ID, it.ID, ItemInput{Name: "Tea"})
	assertKind(t, Forbidden, err)
	assertKind(t, Forbidden, e.svc.DeleteItem(ctx, rival.ID, it.ID))

	items, err := e.svc.ItemsByRestaurant(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Points)

	require.NoError(t, e.svc.DeleteItem(ctx, m.ID, it.ID))
	assertKind(t, NotFound, e.svc.DeleteItem(ctx, m.ID, it.ID))

	_, err = e.svc.ItemsByRestaurant(ctx, 9999)
	assertKind(t, NotFound, err)
}

func TestProfiles(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	m := e.manager(t, "owner@cafe.com")

	updated, err := e.svc.UpdateCustomer(ctx, c.ID, Profile{LastName: "Hopper", Email: "Grace@Navy.mil"})
	require.NoError(t, err)
	assert.Equal(t, "Test", updated.FirstName)
	assert.Equal(t, "Hopper", updated.LastName)
	assert.Equal(t, "grace@navy.mil", updated.Email)

	_, err = e.svc.UpdateCustomer(ctx, c.ID, Profile{Email: "nope"})
	assertKind(t, BadRequest, err)

	got, err := e.svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace@navy.mil", got.Email)
	assert.Equal(t, "+13105550100", got.PhoneNumber)

	mgr, err := e.svc.GetManager(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@cafe.com", mgr.Email)

	_, err = e.svc.GetCustomer(ctx, m.ID+100)
	assertKind(t, NotFound, err)
	_, err = e.svc.GetManager(ctx, c.ID)
	assertKind(t, NotFound, err)
}
