package rewards

import (
	"context"
	"testing"

	"punchme/web/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardPointRotatesQR(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	m, r := e.restaurant(t, "owner@cafe.com", "Cafe")

	before, err := e.svc.CurrentQR(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Code+"|https://apps.example.com/punchme", before.Payload)

	res, err := e.svc.AwardPoint(ctx, c.ID, before.Payload)
	require.NoError(t, err)
	assert.Equal(t, r.ID, res.RestaurantID)
	assert.Equal(t, 1, res.Points)

	after, err := e.svc.CurrentQR(ctx, m.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.Code, after.Code)

	_, err = e.svc.AwardPoint(ctx, c.ID, before.Payload)
	assertKind(t, NotFound, err)

	entry, err := e.store.PointsFor(ctx, c.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Points)
	assert.True(t, entry.GiftEligible)
	require.NotNil(t, entry.LastAwardedAt)
	assert.Equal(t, *e.clock, *entry.LastAwardedAt)
}

func TestAwardPointAcceptsBareCode(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	m, _ := e.restaurant(t, "owner@cafe.com", "Cafe")

	qr, err := e.svc.CurrentQR(ctx, m.ID)
	require.NoError(t, err)
	res, err := e.svc.AwardPoint(ctx, c.ID, "  "+qr.Code+"  ")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Points)

	res = e.award(t, c.ID, m.ID)
	assert.Equal(t, 2, res.Points)
}

func TestAwardPointRejectsMalformedCode(t *testing.T) {
	e := newTestEnv(t)
	c := e.customer(t, "+13105550100")

	for _, scanned := range []string{"", "hello", "|https://apps.example.com/punchme"} {
		_, err := e.svc.AwardPoint(context.Background(), c.ID, scanned)
		assertKind(t, BadRequest, err)
	}
	_, err := e.svc.AwardPoint(context.Background(), c.ID, "7b5d1a3e-4a3f-4c1e-9a55-0d6c4b1f2e3a")
	assertKind(t, NotFound, err)
}

func TestGenerateQRInvalidatesOldCode(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.customer(t, "+13105550100")
	m, _ := e.restaurant(t, "owner@cafe.com", "Cafe")

	old, err := e.svc.CurrentQR(ctx, m.ID)
	require.NoError(t, err)
	fresh, err := e.svc.GenerateQR(ctx, m.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old.Code, fresh.Code)

	_, err = e.svc.AwardPoint(ctx, c.ID, old.Payload)
	assertKind(t, NotFound, err)
	_, err = e.svc.AwardPoint(ctx, c.ID, fresh.Payload)
	require.NoError(t, err)
}

func TestQRRequiresRestaurant(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	m := e.manager(t, "owner@cafe.com")

	_, err := e.svc.GenerateQR(ctx, m.ID)
	assertKind(t, NotFound, err)
	_, err = e.svc.CurrentQR(ctx, m.ID)
	assertKind(t, NotFound, err)
}

func TestQRImage(t *testing.T) {
	e := newTestEnv(t)
	m, _ := e.restaurant(t, "owner@cafe.com", "Cafe")

	png, err := e.svc.QRImage(context.Background(), m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestGiftPointOncePerAward(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	giver := e.customer(t, "+13105550100")
	receiver := e.customer(t, "+13105550101")
	m, r := e.restaurant(t, "owner@cafe.com", "Cafe")

	e.award(t, giver.ID, m.ID)

	got, err := e.svc.GiftPoint(ctx, giver.ID, receiver.PhoneNumber, r.ID)
	require.NoError(t, err)
	assert.Equal(t, receiver.ID, got.CustomerID)
	assert.Equal(t, 1, got.Points)
	assert.False(t, got.GiftEligible)

	_, err = e.svc.GiftPoint(ctx, giver.ID, receiver.PhoneNumber, r.ID)
	assertKind(t, BadRequest, err)

	g, err := e.store.PointsFor(ctx, giver.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Points, "giver keeps the point")
	assert.False(t, g.GiftEligible)

	e.award(t, giver.ID, m.ID)
	got, err = e.svc.GiftPoint(ctx, giver.ID, receiver.PhoneNumber, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Points)
}

func TestGiftPointErrors(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	giver := e.customer(t, "+13105550100")
	receiver := e.customer(t, "+13105550101")
	m, r := e.restaurant(t, "owner@cafe.com", "Cafe")

	_, err := e.svc.GiftPoint(ctx, giver.ID, "+13105550199", r.ID)
	assertKind(t, NotFound, err)

	_, err = e.svc.GiftPoint(ctx, giver.ID, "bad", r.ID)
	assertKind(t, BadRequest, err)

	_, err = e.svc.GiftPoint(ctx, giver.ID, receiver.PhoneNumber, r.ID)
	assertKind(t, BadRequest, err)

	e.award(t, giver.ID, m.ID)
	_, err = e.svc.GiftPoint(ctx, giver.ID, giver.PhoneNumber, r.ID)
	assertKind(t, BadRequest, err)

	_, err = e.store.PointsFor(ctx, receiver.ID, r.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestPointViews(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c1 := e.customer(t, "+13105550100")
	c2 := e.customer(t, "+13105550101")
	m1, r1 := e.restaurant(t, "one@cafe.com", "One")
	m2, r2 := e.restaurant(t, "two@cafe.com", "Two")

	e.award(t, c1.ID, m1.ID)
	e.award(t, c1.ID, m2.ID)
	e.award(t, c2.ID, m1.ID)
	_, err := e.svc.GiftPoint(ctx, c1.ID, c2.PhoneNumber, r1.ID)
	require.NoError(t, err)

	mine, err := e.svc.CustomerPointsList(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, r1.ID, mine[0].RestaurantID)
	assert.Equal(t, r2.ID, mine[1].RestaurantID)

	atOne, err := e.svc.RestaurantPointsList(ctx, m1.ID)
	require.NoError(t, err)
	require.Len(t, atOne, 2)
	assert.Equal(t, 1, atOne[0].Points)
	assert.Equal(t, 2, atOne[1].Points)

	history, err := e.svc.PointHistory(ctx, m1.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, db.ReasonGift, history[0].Reason)
	assert.Equal(t, c2.ID, history[0].CustomerID)
	assert.Equal(t, db.ReasonAward, history[2].Reason)

	loner := e.manager(t, "none@cafe.com")
	_, err = e.svc.RestaurantPointsList(ctx, loner.ID)
	assertKind(t, NotFound, err)
}
