package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agromart/backend/internal/domain/cart"
	"github.com/agromart/backend/internal/domain/checkout"
	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCard = checkout.CardDetails{Number: "4242 4242 4242 4242", Expiry: "12/30", CVV: "123"}

// readyToSubmit fills the cart and walks the session to ENTERING_CARD with
// card details present.
func readyToSubmit(t *testing.T, f *fixture, svc *CheckoutService, userID string, items ...cart.LineItem) {
	t.Helper()
	ctx := context.Background()

	_, err := f.cartSvc.Replace(ctx, userID, items)
	require.NoError(t, err)
	_, err = svc.Start(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SelectMethod(ctx, userID, "credit")
	require.NoError(t, err)
	_, err = svc.EnterCard(ctx, userID, testCard)
	require.NoError(t, err)
}

func TestCheckoutService_Submit_WheatSeed(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	res, err := svc.Submit(ctx, "user-1", "")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(200).Equal(res.Order.Total))
	assert.Equal(t, order.StatusSuccess, res.Order.Status)
	assert.NotEmpty(t, res.Order.PaymentRef)
	assert.Equal(t, "user-1", res.Order.OwnerID)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, "Wheat Seed", res.Order.Items[0].Name)
	assert.Equal(t, 2, res.Order.Items[0].Quantity)

	assert.Equal(t, checkout.StateConfirmed, res.Session.State)
	require.NotNil(t, res.Session.OrderID)
	assert.Equal(t, res.Order.ID, *res.Session.OrderID)
	assert.Nil(t, res.Session.Card)

	c, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	stored, err := f.repo.FindByID(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Order.Items, stored.Items)
	assert.Equal(t, []string{SubmitConfirmed}, f.metrics.checkout)
}

func TestCheckoutService_Start_EmptyCart(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))

	_, err := svc.Start(context.Background(), "user-1")
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)

	_, err = svc.Get(context.Background(), "user-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCheckoutService_Submit_RequiresCard(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()

	_, err := f.cartSvc.Replace(ctx, "user-1", []cart.LineItem{wheatSeed()})
	require.NoError(t, err)
	_, err = svc.Start(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.SelectMethod(ctx, "user-1", "debit")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "user-1", "")
	assert.ErrorIs(t, err, checkout.ErrIncompleteCard)
	assert.Equal(t, 0, f.repo.count())
}

func TestCheckoutService_Submit_PersistFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	f.repo.createErr = errors.New("write timeout")
	_, err := svc.Submit(ctx, "user-1", "key-1")
	require.Error(t, err)

	c, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)

	sess, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, checkout.StateFailed, sess.State)
	assert.NotEmpty(t, sess.LastError)
	assert.NotNil(t, sess.Card)

	// Retry with the same key after storage recovers
	f.repo.createErr = nil
	res, err := svc.Submit(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, 2, res.Session.Attempts)
	assert.Equal(t, 1, f.repo.count())
	assert.Equal(t, []string{SubmitFailed, SubmitConfirmed}, f.metrics.checkout)
}

func TestCheckoutService_Submit_PaymentDeclined(t *testing.T) {
	f := newFixture(t)
	gateway := new(MockGateway)
	gateway.On("Charge", mock.Anything, mock.Anything).Return(nil, errors.New("card declined"))
	svc := f.checkout(gateway)
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	_, err := svc.Submit(ctx, "user-1", "")
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "PAYMENT_FAILED", de.Code)
	assert.Equal(t, 0, f.repo.count())

	c, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
	gateway.AssertExpectations(t)
}

func TestCheckoutService_Submit_ChargesOrderTotal(t *testing.T) {
	f := newFixture(t)
	gateway := new(MockGateway)
	gateway.On("Charge", mock.Anything, mock.MatchedBy(func(req payment.ChargeRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(200)) && req.CardLast4 == "4242" && req.Method == "credit"
	})).Return(&payment.ChargeResult{Reference: "ch_1", Status: order.StatusProcessing}, nil).Once()
	svc := f.checkout(gateway)
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	res, err := svc.Submit(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, res.Order.Status)
	assert.Equal(t, "ch_1", res.Order.PaymentRef)
	gateway.AssertExpectations(t)
}

func TestCheckoutService_Submit_ConfirmedSessionRejectsResubmit(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	_, err := svc.Submit(ctx, "user-1", "")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "user-1", "")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, 1, f.repo.count())
}

func TestCheckoutService_Cancel(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	require.NoError(t, svc.Cancel(ctx, "user-1"))
	_, err := svc.Get(ctx, "user-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	c, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
}

func TestCheckoutService_Cancel_WhileSubmitting(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	sess, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, sess.BeginSubmit())
	require.NoError(t, f.sessions.Save(ctx, sess))

	assert.ErrorIs(t, svc.Cancel(ctx, "user-1"), checkout.ErrSubmitting)

	// nothing to cancel is not an error
	require.NoError(t, svc.Cancel(ctx, "user-2"))
}

func TestCheckoutService_Submit_CartEmptiedAfterCardEntry(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	require.NoError(t, f.carts.Clear(ctx, "user-1"))

	_, err := svc.Submit(ctx, "user-1", "key-1")
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Equal(t, 0, f.repo.count())

	sess, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, checkout.StateFailed, sess.State)
	assert.Equal(t, checkout.ErrEmptyCart.Error(), sess.LastError)
}

func TestCheckoutService_Submit_KeyInFlightLeavesSessionRecoverable(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	sess, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	reserved, _, err := f.idem.Reserve(ctx, scopedKey("user-1", checkoutKey(sess, "key-1")), time.Minute)
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = svc.Submit(ctx, "user-1", "key-1")
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, 0, f.repo.count())

	sess, err = svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, checkout.StateFailed, sess.State)

	// a fresh key retries straight from FAILED
	res, err := svc.Submit(ctx, "user-1", "key-2")
	require.NoError(t, err)
	assert.Equal(t, checkout.StateConfirmed, res.Session.State)
	assert.Equal(t, 1, f.repo.count())
}

func TestCheckoutService_Submit_KeyInFlightAllowsCancelAndRestart(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	sess, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	_, _, err = f.idem.Reserve(ctx, scopedKey("user-1", checkoutKey(sess, "key-1")), time.Minute)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "user-1", "key-1")
	require.Error(t, err)

	require.NoError(t, svc.Cancel(ctx, "user-1"))
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	// the restarted session scopes the same client key afresh
	res, err := svc.Submit(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, 1, f.repo.count())
}

// staleSession stores a FAILED copy of a confirmed session, as left behind
// when the confirmation never reached the session store
func staleSession(t *testing.T, f *fixture, confirmed *checkout.Session) {
	t.Helper()
	stale := *confirmed
	stale.State = checkout.StateFailed
	stale.OrderID = nil
	stale.Card = &checkout.CardOnFile{Last4: "4242", Expiry: "12/30"}
	require.NoError(t, f.sessions.Save(context.Background(), &stale))
}

func TestCheckoutService_Submit_ReplayWithClearedCart(t *testing.T) {
	f := newFixture(t)
	gateway := new(MockGateway)
	gateway.On("Charge", mock.Anything, mock.Anything).
		Return(&payment.ChargeResult{Reference: "ch_1", Status: order.StatusSuccess}, nil).Once()
	svc := f.checkout(gateway)
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	first, err := svc.Submit(ctx, "user-1", "key-1")
	require.NoError(t, err)
	staleSession(t, f, first.Session)

	again, err := svc.Submit(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Order.ID, again.Order.ID)
	assert.Equal(t, checkout.StateConfirmed, again.Session.State)
	assert.Equal(t, 1, f.repo.count())
	gateway.AssertExpectations(t)
}

func TestCheckoutService_Submit_ReplayWithDifferentCart(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	first, err := svc.Submit(ctx, "user-1", "key-1")
	require.NoError(t, err)
	staleSession(t, f, first.Session)

	tomato := order.Item{Name: "Tomato Seed", Quantity: 1, Price: decimal.NewFromInt(40), Discount: decimal.Zero}
	_, err = f.cartSvc.Replace(ctx, "user-1", []cart.LineItem{tomato})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "user-1", "key-1")
	assert.ErrorIs(t, err, ErrIdempotencyMismatch)
	assert.Equal(t, ErrIdempotencyMismatch.Error(), err.Error())
	assert.Equal(t, 1, f.repo.count())

	c, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Tomato Seed", c.Items[0].Name)

	sess, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, checkout.StateFailed, sess.State)
}

func TestCheckoutService_Submit_KeyDoesNotReplayDirectOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()

	direct, err := f.orders.Create(ctx, CreateOrderInput{
		OwnerID:        "user-1",
		Items:          []order.Item{{Name: "Hoe", Quantity: 1, Price: decimal.NewFromInt(15), Discount: decimal.Zero}},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)

	readyToSubmit(t, f, svc, "user-1", wheatSeed())
	res, err := svc.Submit(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.NotEqual(t, direct.Order.ID, res.Order.ID)
	assert.Equal(t, 2, f.repo.count())

	c, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCheckoutService_Submit_KeyFromEarlierCheckoutStartsFresh(t *testing.T) {
	f := newFixture(t)
	svc := f.checkout(payment.NewMockGateway("usd"))
	ctx := context.Background()
	readyToSubmit(t, f, svc, "user-1", wheatSeed())

	first, err := svc.Submit(ctx, "user-1", "key-1")
	require.NoError(t, err)

	corn := order.Item{Name: "Corn", Quantity: 3, Price: decimal.NewFromInt(20), Discount: decimal.Zero}
	readyToSubmit(t, f, svc, "user-1", corn)

	second, err := svc.Submit(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.False(t, second.Replayed)
	assert.NotEqual(t, first.Order.ID, second.Order.ID)
	require.Len(t, second.Order.Items, 1)
	assert.Equal(t, "Corn", second.Order.Items[0].Name)
	assert.Equal(t, 2, f.repo.count())
}
