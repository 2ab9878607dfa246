package rewards

import (
	"context"
	"testing"

	"punchme/web/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedItem creates an item costing cost at the manager's restaurant.
func (e *testEnv) seedItem(t *testing.T, managerID uint, cost int) *db.Item {
	t.Helper()
	it, err := e.svc.CreateItem(context.Background(), managerID, ItemInput{Name: "Coffee", Points: cost})
	require.NoError(t, err)
	return it
}

func TestRedeemExactBalance(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	m, r := e.restaurant(t, "owner@cafe.com", "Cafe")
	item := e.seedItem(t, m.ID, 3)

	for i := 0; i < 3; i++ {
		e.award(t, c.ID, m.ID)
	}

	red, err := e.svc.CreateRedemption(ctx, c.ID, item.ID)
	require.NoError(t, err)
	assert.Len(t, red.Code, 36)

	entry, err := e.store.PointsFor(ctx, c.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Points, "creation does not debit")

	res, err := e.svc.ValidateRedemption(ctx, m.ID, red.Code)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Points)
	assert.Equal(t, item.ID, res.Item.ID)

	_, err = e.svc.ValidateRedemption(ctx, m.ID, red.Code)
	assertKind(t, NotFound, err)

	history, err := e.svc.PointHistory(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, db.ReasonRedeem, history[0].Reason)
	assert.Equal(t, -3, history[0].Delta)
}

func TestRedeemBelowCost(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	m, _ := e.restaurant(t, "owner@cafe.com", "Cafe")
	item := e.seedItem(t, m.ID, 3)

	_, err := e.svc.CreateRedemption(ctx, c.ID, item.ID)
	assertKind(t, NotFound, err)

	e.award(t, c.ID, m.ID)
	e.award(t, c.ID, m.ID)
	_, err = e.svc.CreateRedemption(ctx, c.ID, item.ID)
	assertKind(t, NotFound, err)

	_, err = e.svc.CreateRedemption(ctx, c.ID, 9999)
	assertKind(t, NotFound, err)
}

func TestSecondRedemptionFailsAtValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	m, r := e.restaurant(t, "owner@cafe.com", "Cafe")
	item := e.seedItem(t, m.ID, 2)
	e.award(t, c.ID, m.ID)
	e.award(t, c.ID, m.ID)

	first, err := e.svc.CreateRedemption(ctx, c.ID, item.ID)
	require.NoError(t, err)
	second, err := e.svc.CreateRedemption(ctx, c.ID, item.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, second.Code)

	_, err = e.svc.ValidateRedemption(ctx, m.ID, first.Code)
	require.NoError(t, err)
	_, err = e.svc.ValidateRedemption(ctx, m.ID, second.Code)
	assertKind(t, BadRequest, err)

	entry, err := e.store.PointsFor(ctx, c.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Points)

	pending, err := e.svc.ListRedemptions(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1, "the unvalidated redemption stays pending")
	assert.Equal(t, second.Code, pending[0].Code)
}

func TestValidateRedemptionErrors(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	m, _ := e.restaurant(t, "owner@cafe.com", "Cafe")
	other, _ := e.restaurant(t, "rival@cafe.com", "Rival")
	loner := e.manager(t, "none@cafe.com")
	item := e.seedItem(t, m.ID, 1)
	e.award(t, c.ID, m.ID)

	red, err := e.svc.CreateRedemption(ctx, c.ID, item.ID)
	require.NoError(t, err)

	_, err = e.svc.ValidateRedemption(ctx, m.ID, "not-a-uuid")
	assertKind(t, BadRequest, err)
	_, err = e.svc.ValidateRedemption(ctx, m.ID, "7b5d1a3e-4a3f-4c1e-9a55-0d6c4b1f2e3a")
	assertKind(t, NotFound, err)
	_, err = e.svc.ValidateRedemption(ctx, other.ID, red.Code)
	assertKind(t, Forbidden, err)
	_, err = e.svc.ValidateRedemption(ctx, loner.ID, red.Code)
	assertKind(t, Forbidden, err)

	res, err := e.svc.ValidateRedemption(ctx, m.ID, red.Code)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Points)
}

func TestDeleteRedemption(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	stranger := e.customer(t, "+13105550101")
	m, r := e.restaurant(t, "owner@cafe.com", "Cafe")
	item := e.seedItem(t, m.ID, 1)
	e.award(t, c.ID, m.ID)

	red, err := e.svc.CreateRedemption(ctx, c.ID, item.ID)
	require.NoError(t, err)

	assertKind(t, Forbidden, e.svc.DeleteRedemption(ctx, stranger.ID, red.ID))
	require.NoError(t, e.svc.DeleteRedemption(ctx, c.ID, red.ID))
	assertKind(t, NotFound, e.svc.DeleteRedemption(ctx, c.ID, red.ID))

	entry, err := e.store.PointsFor(ctx, c.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Points)

	_, err = e.svc.ValidateRedemption(ctx, m.ID, red.Code)
	assertKind(t, NotFound, err)
}
