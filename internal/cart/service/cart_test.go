package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/shopify"
)

type fakeGateway struct {
	mu      sync.Mutex
	creates int
	adds    int
	fetches int

	cart     *shopify.Cart
	cartErr  error
	blockGet chan struct{}
}

func newFakeGateway() *fakeGateway {
	product := &shopify.Product{ID: "gid://shopify/Product/1", Title: "Tee", Handle: "tee"}
	variant := &shopify.Variant{
		ID:      "gid://shopify/ProductVariant/11",
		Price:   &shopify.Money{Amount: "25.00", CurrencyCode: "USD"},
		Product: product,
	}
	cart := &shopify.Cart{ID: "gid://shopify/Cart/abc", CheckoutURL: "https://shop.example/checkout"}
	cart.Lines.Edges = []shopify.CartLineEdge{
		{Node: &shopify.CartLine{ID: "gid://shopify/CartLine/1", Quantity: 1, Merchandise: variant}},
	}
	cart.TotalQuantity = 1
	return &fakeGateway{cart: cart}
}

func (f *fakeGateway) CreateCart(c context.Context) (*shopify.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	return f.cart, nil
}

func (f *fakeGateway) Cart(c context.Context, cartID string) (*shopify.Cart, error) {
	if f.blockGet != nil {
		<-f.blockGet
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.cartErr != nil {
		return nil, f.cartErr
	}
	return f.cart, nil
}

func (f *fakeGateway) AddLine(
	c context.Context,
	cartID, variantID string,
	quantity int,
) (*shopify.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds++
	return f.cart, nil
}

func (f *fakeGateway) UpdateLine(
	c context.Context,
	cartID, lineID string,
	quantity int,
) (*shopify.Cart, error) {
	return f.cart, nil
}

func (f *fakeGateway) RemoveLine(c context.Context, cartID, lineID string) (*shopify.Cart, error) {
	return f.cart, nil
}

func TestAddItemCreatesCartOnce(t *testing.T) {
	gateway := newFakeGateway()
	svc := NewCartService(gateway, NewMemoryIDStore())

	cart, err := svc.AddItem(context.Background(), "gid://shopify/ProductVariant/11", 1)
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/abc", cart.ID)
	assert.Equal(t, 1, gateway.creates)

	_, err = svc.AddItem(context.Background(), "gid://shopify/ProductVariant/11", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.creates, "second add must reuse the stored cartId")
	assert.Equal(t, 2, gateway.adds)
}

func TestAddItemValidation(t *testing.T) {
	svc := NewCartService(newFakeGateway(), NewMemoryIDStore())

	_, err := svc.AddItem(context.Background(), "", 1)
	assert.ErrorIs(t, err, commonErrors.ErrEmptyVariantID)

	_, err = svc.AddItem(context.Background(), "gid://shopify/ProductVariant/11", 0)
	assert.ErrorIs(t, err, commonErrors.ErrInvalidQuantity)
}

func TestUpdateItemRequiresCart(t *testing.T) {
	svc := NewCartService(newFakeGateway(), NewMemoryIDStore())

	_, err := svc.UpdateItem(context.Background(), "gid://shopify/CartLine/1", 2)
	assert.ErrorIs(t, err, commonErrors.ErrNoCartID)
}

func TestUpdateItemRejectsZeroQuantity(t *testing.T) {
	ids := NewMemoryIDStore()
	require.NoError(t, ids.Set(context.Background(), "gid://shopify/Cart/abc"))
	svc := NewCartService(newFakeGateway(), ids)

	_, err := svc.UpdateItem(context.Background(), "gid://shopify/CartLine/1", 0)
	assert.ErrorIs(t, err, commonErrors.ErrInvalidQuantity)
}

func TestRemoveItemRequiresCart(t *testing.T) {
	svc := NewCartService(newFakeGateway(), NewMemoryIDStore())

	_, err := svc.RemoveItem(context.Background(), "gid://shopify/CartLine/1")
	assert.ErrorIs(t, err, commonErrors.ErrNoCartID)
}

func TestRefreshWithoutCartReturnsEmpty(t *testing.T) {
	gateway := newFakeGateway()
	svc := NewCartService(gateway, NewMemoryIDStore())

	cart, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.ID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, gateway.fetches)
}

func TestRefreshClearsStaleCartID(t *testing.T) {
	gateway := newFakeGateway()
	gateway.cartErr = commonErrors.ErrCartNotFound
	ids := NewMemoryIDStore()
	require.NoError(t, ids.Set(context.Background(), "gid://shopify/Cart/stale"))
	svc := NewCartService(gateway, ids)

	cart, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.ID)

	stored, err := ids.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored, "stale cartId must be forgotten")
}

func TestRefreshCollapsesConcurrentCalls(t *testing.T) {
	gateway := newFakeGateway()
	gateway.blockGet = make(chan struct{})
	ids := NewMemoryIDStore()
	require.NoError(t, ids.Set(context.Background(), "gid://shopify/Cart/abc"))
	svc := NewCartService(gateway, ids)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Refresh(context.Background())
		assert.NoError(t, err)
	}()

	// Wait until the first refresh holds the latch, then pile on.
	for !svc.refreshing.Load() {
	}
	var latecomers atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(context.Background())
			assert.NoError(t, err)
			latecomers.Add(1)
		}()
	}
	wg.Wait()
	close(gateway.blockGet)
	<-done

	assert.Equal(t, int32(8), latecomers.Load())
	assert.Equal(t, 1, gateway.fetches, "only one vendor fetch while the latch is held")
}

func TestClearForgetsCart(t *testing.T) {
	gateway := newFakeGateway()
	ids := NewMemoryIDStore()
	svc := NewCartService(gateway, ids)

	_, err := svc.AddItem(context.Background(), "gid://shopify/ProductVariant/11", 1)
	require.NoError(t, err)

	cart, err := svc.Clear(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.ID)
	assert.Empty(t, cart.Items)

	stored, err := ids.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCheckoutURL(t *testing.T) {
	gateway := newFakeGateway()
	svc := NewCartService(gateway, NewMemoryIDStore())

	url, err := svc.CheckoutURL(context.Background(), "gid://shopify/Cart/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/checkout", url)

	_, err = svc.CheckoutURL(context.Background(), "")
	assert.ErrorIs(t, err, commonErrors.ErrNoCartID)
}
