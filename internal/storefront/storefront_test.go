package storefront

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bonneaffaire/pkg/apperrors"
	"bonneaffaire/pkg/shopapi"
)

type fakeAPI struct {
	products  []shopapi.Product
	listErr   error
	createErr error
	requests  []*shopapi.CreateOrderRequest
	addedIDs  []string
	block     chan struct{}
}

func (f *fakeAPI) ListProducts(context.Context, bool) ([]shopapi.Product, error) {
	return f.products, f.listErr
}

func (f *fakeAPI) RecordAddToCart(_ context.Context, id string) error {
	f.addedIDs = append(f.addedIDs, id)
	return nil
}

func (f *fakeAPI) CreateOrder(_ context.Context, req *shopapi.CreateOrderRequest) (*shopapi.Order, error) {
	if f.block != nil {
		<-f.block
	}
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	order := &shopapi.Order{OrderNumber: "BA78-260115-001"}
	for _, item := range req.Items {
		order.Totals.Total += item.Price * float64(item.Quantity)
	}
	return order, nil
}

var (
	sofaID  = uuid.NewString()
	tableID = uuid.NewString()
)

func liveCatalog() []shopapi.Product {
	return []shopapi.Product{
		{ID: sofaID, Name: "Canapé", Category: "salon", Price: 649.5, Stock: 2},
		{ID: tableID, Name: "Table", Category: "cuisine", Price: 50, Stock: 1},
	}
}

func customer() CustomerInfo {
	return ParseCustomerLine("Jean, Dupont ,jean@email.com,0123456789,123 rue de la Paix,Versailles,78000")
}

func newTestSession(api *fakeAPI) (*Session, *MemoryStorage) {
	storage := NewMemoryStorage()
	s := NewSession(api, storage, zap.NewNop())
	s.now = func() time.Time { return time.UnixMilli(1736942400123) }
	return s, storage
}

func TestCart_AddMergesByID(t *testing.T) {
	var cart Cart
	cart.Add("p1", "Chair", 50)
	item := cart.Add("p1", "Chair", 50)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 100.0, cart.Total())
	assert.Equal(t, 2, cart.Count())
}

func TestCart_TotalIsExact(t *testing.T) {
	var cart Cart
	for i := 0; i < 3; i++ {
		cart.Add("p1", "Lampe", 0.1)
	}
	cart.Add("p2", "Vase", 0.2)

	assert.Equal(t, 0.5, cart.Total())
}

func TestCart_RemoveOutOfRange(t *testing.T) {
	var cart Cart
	cart.Add("p1", "Chair", 50)
	cart.Add("p2", "Table", 80)

	for _, index := range []int{-1, 2, 10} {
		_, err := cart.Remove(index)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
	assert.Len(t, cart.Items, 2)

	removed, err := cart.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, "p1", removed.ID)
	assert.Equal(t, "p2", cart.Items[0].ID)
}

func TestLoadCart_CorruptOrMissing(t *testing.T) {
	storage := NewMemoryStorage()
	assert.True(t, LoadCart(storage, zap.NewNop()).IsEmpty())

	require.NoError(t, storage.Set(CartStorageKey, []byte("{not json")))
	assert.True(t, LoadCart(storage, zap.NewNop()).IsEmpty())

	require.NoError(t, storage.Set(CartStorageKey, []byte(`[{"id":"p1","name":"Chair","price":50,"quantity":2},{"id":"","quantity":1}]`)))
	cart := LoadCart(storage, zap.NewNop())
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 100.0, cart.Total())
}

func TestFileStorage_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	storage := NewFileStorage(fs, "/home/client/.bonneaffaire")

	_, err := storage.Get(CartStorageKey)
	assert.ErrorIs(t, err, ErrNotStored)

	cart := &Cart{}
	cart.Add("p1", "Chair", 50)
	require.NoError(t, SaveCart(storage, cart))

	exists, err := afero.Exists(fs, "/home/client/.bonneaffaire/bonneaffaire78_cart.json")
	require.NoError(t, err)
	assert.True(t, exists)

	restored := LoadCart(storage, zap.NewNop())
	assert.Equal(t, cart.Items, restored.Items)
}

func TestLoadProducts_FallsBackToDemoCatalog(t *testing.T) {
	for name, api := range map[string]*fakeAPI{
		"unreachable": {listErr: fmt.Errorf("%w: connection refused", apperrors.ErrUnavailable)},
		"empty":       {},
	} {
		t.Run(name, func(t *testing.T) {
			s, _ := newTestSession(api)
			products := s.LoadProducts(context.Background())

			assert.True(t, s.Fallback())
			require.Len(t, products, 8)
			assert.Equal(t, "1", products[0].ID)
			assert.Equal(t, 35, products[0].DiscountPercentage)
			assert.Len(t, s.Filter("chambre"), 2)
			assert.Len(t, s.Filter(AllCategories), 8)
		})
	}
}

func TestAddToCart(t *testing.T) {
	api := &fakeAPI{products: liveCatalog()}
	s, storage := newTestSession(api)
	s.LoadProducts(context.Background())

	_, err := s.AddToCart(context.Background(), sofaID)
	require.NoError(t, err)
	_, err = s.AddToCart(context.Background(), sofaID)
	require.NoError(t, err)

	_, err = s.AddToCart(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownProduct)

	assert.Equal(t, []string{sofaID, sofaID}, api.addedIDs)
	assert.Equal(t, 1299.0, LoadCart(storage, zap.NewNop()).Total())
}

func TestCheckout_Success(t *testing.T) {
	api := &fakeAPI{products: liveCatalog()}
	s, storage := newTestSession(api)
	s.LoadProducts(context.Background())
	s.AddToCart(context.Background(), sofaID)
	s.AddToCart(context.Background(), tableID)
	total := s.Cart().Total()

	conf, err := s.Checkout(context.Background(), customer())
	require.NoError(t, err)

	assert.False(t, conf.Demo)
	assert.NotEmpty(t, conf.OrderNumber)
	assert.Equal(t, total, conf.Total)
	assert.True(t, s.Cart().IsEmpty())
	assert.True(t, LoadCart(storage, zap.NewNop()).IsEmpty())

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, "Dupont", req.Customer.LastName)
	assert.Equal(t, "France", req.Customer.Address.Country)
	assert.Equal(t, "card", req.Payment.Method)
	assert.Equal(t, sofaID, req.Items[0].ProductID)
}

func TestCheckout_RejectedKeepsCart(t *testing.T) {
	api := &fakeAPI{
		products:  liveCatalog(),
		createErr: &shopapi.RejectedError{StatusCode: 400, Message: "validation failed"},
	}
	s, storage := newTestSession(api)
	s.LoadProducts(context.Background())
	s.AddToCart(context.Background(), sofaID)
	before := s.Cart().Items

	_, err := s.Checkout(context.Background(), customer())

	var rejected *shopapi.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, before, s.Cart().Items)
	assert.Equal(t, before, LoadCart(storage, zap.NewNop()).Items)
	assert.False(t, s.Fallback())
}

func TestCheckout_InvalidCustomerKeepsCart(t *testing.T) {
	api := &fakeAPI{products: liveCatalog()}
	s, _ := newTestSession(api)
	s.LoadProducts(context.Background())
	s.AddToCart(context.Background(), sofaID)

	info := customer()
	info.Email = "jean.email.com"
	info.City = ""

	_, err := s.Checkout(context.Background(), info)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	assert.Empty(t, api.requests)
	assert.Equal(t, 1, s.Cart().Count())
}

func TestCheckout_EmptyCart(t *testing.T) {
	s, _ := newTestSession(&fakeAPI{})

	_, err := s.Checkout(context.Background(), customer())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_UnreachableAPIConfirmsDemo(t *testing.T) {
	api := &fakeAPI{
		products:  liveCatalog(),
		createErr: fmt.Errorf("%w: dial tcp: connection refused", apperrors.ErrUnavailable),
	}
	s, _ := newTestSession(api)
	s.LoadProducts(context.Background())
	s.AddToCart(context.Background(), tableID)
	s.AddToCart(context.Background(), tableID)

	conf, err := s.Checkout(context.Background(), customer())
	require.NoError(t, err)

	assert.True(t, conf.Demo)
	assert.Equal(t, "BA78-DEMO-400123", conf.OrderNumber)
	assert.Equal(t, 100.0, conf.Total)
	require.NotNil(t, conf.EstimatedDelivery)
	assert.Equal(t, s.now().Add(72*time.Hour), *conf.EstimatedDelivery)
	assert.True(t, s.Cart().IsEmpty())
	assert.True(t, s.Fallback())
}

func TestCheckout_FallbackModeSkipsAPI(t *testing.T) {
	api := &fakeAPI{listErr: apperrors.ErrUnavailable}
	s, _ := newTestSession(api)
	s.LoadProducts(context.Background())
	_, err := s.AddToCart(context.Background(), "3")
	require.NoError(t, err)

	conf, err := s.Checkout(context.Background(), customer())
	require.NoError(t, err)

	assert.True(t, conf.Demo)
	assert.Regexp(t, regexp.MustCompile(`^BA78-DEMO-\d{6}$`), conf.OrderNumber)
	assert.Equal(t, 169.0, conf.Total)
	assert.Empty(t, api.requests)
	assert.Empty(t, api.addedIDs)
}

func TestCheckout_RejectsConcurrentSubmission(t *testing.T) {
	api := &fakeAPI{products: liveCatalog(), block: make(chan struct{})}
	s, _ := newTestSession(api)
	s.LoadProducts(context.Background())
	s.AddToCart(context.Background(), sofaID)

	done := make(chan error, 1)
	go func() {
		_, err := s.Checkout(context.Background(), customer())
		done <- err
	}()

	require.Eventually(t, func() bool { return s.checkingOut.Load() }, time.Second, time.Millisecond)
	_, err := s.Checkout(context.Background(), customer())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	close(api.block)
	assert.NoError(t, <-done)
}

func TestOrderRequest_DropsNonCatalogIDs(t *testing.T) {
	s, _ := newTestSession(&fakeAPI{})
	s.cart.Add("4", "Lit Double", 359)
	s.cart.Add(sofaID, "Canapé", 649)

	req := s.orderRequest(customer())
	assert.Empty(t, req.Items[0].ProductID)
	assert.Equal(t, sofaID, req.Items[1].ProductID)
}

func TestParseCustomerLine_ShortInput(t *testing.T) {
	info := ParseCustomerLine("Jean,Dupont")
	assert.Equal(t, "Jean", info.FirstName)
	assert.Empty(t, info.PostalCode)
	assert.Error(t, info.Validate())
}

func TestDiscountBadge(t *testing.T) {
	old := 100.0
	assert.Equal(t, 40, DiscountBadge(shopapi.Product{Price: 75, OldPrice: &old, DiscountPercentage: 40}))
	assert.Equal(t, 25, DiscountBadge(shopapi.Product{Price: 75, OldPrice: &old}))
	assert.Equal(t, 25, DiscountBadge(shopapi.Product{Price: 75}))

	old = 200
	assert.Equal(t, 63, DiscountBadge(shopapi.Product{Price: 75, OldPrice: &old}))
}

func TestRenderCart(t *testing.T) {
	cart := &Cart{}
	cart.Add("p1", "Chair", 49.99)
	cart.Add("p1", "Chair", 49.99)
	cart.Add("p2", "Lampe", 12)

	view := RenderCart(cart, true)
	assert.Equal(t, "Mode démonstration", view.Footer)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, 111.98, view.Total)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 99.98, view.Lines[0].Subtotal)
	assert.Equal(t, 1, view.Lines[1].Index)

	cards := RenderProducts(FallbackProducts())
	assert.Equal(t, "🛏️", cards[3].Icon)
	assert.Equal(t, 50, cards[7].Discount)
}
