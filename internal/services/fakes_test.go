package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bonneaffaire/internal/models"
	"bonneaffaire/internal/redis"
	"bonneaffaire/internal/repository"
	"bonneaffaire/pkg/apperrors"
)

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]models.Order
	createErr error
	// countOffset is added to CountCreatedBetween to simulate a racing writer.
	countOffset int64
	creates     int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]models.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	for _, o := range r.orders {
		if o.OrderNumber == order.OrderNumber {
			return &apperrors.ConflictError{Message: "order already exists"}
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return &apperrors.NotFoundError{Resource: "order", ID: order.ID.String()}
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "order", ID: id.String()}
	}
	c := cloneOrder(&o)
	return &c, nil
}

func (r *fakeOrderRepo) GetByOrderNumber(_ context.Context, number string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == number {
			c := cloneOrder(&o)
			return &c, nil
		}
	}
	return nil, &apperrors.NotFoundError{Resource: "order", ID: number}
}

func (r *fakeOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if filter.Status == "" || o.Status == filter.Status {
			out = append(out, cloneOrder(&o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, nil
}

func (r *fakeOrderRepo) CountCreatedBetween(_ context.Context, start, end time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)) + r.countOffset, nil
}

// cloneOrder copies o so callers cannot alias the stored slices.
func cloneOrder(o *models.Order) models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	c.Timeline = append([]models.TimelineEntry(nil), o.Timeline...)
	return c
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	failing  map[string]error
	calls    []string
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]*models.Product), failing: make(map[string]error)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) record(call string) error {
	r.calls = append(r.calls, call)
	return r.failing[call]
}

func (r *fakeProductRepo) get(id uuid.UUID) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "product", ID: id.String()}
	}
	return p, nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Create"); err != nil {
		return err
	}
	for _, existing := range r.products {
		if p.SEO.Slug != nil && existing.SEO.Slug != nil && *p.SEO.Slug == *existing.SEO.Slug {
			return &apperrors.ConflictError{Message: "product already exists"}
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Update"); err != nil {
		return err
	}
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	c := *p
	return &c, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SlugValue() == slug {
			c := *p
			return &c, nil
		}
	}
	return nil, &apperrors.NotFoundError{Resource: "product", ID: slug}
}

func (r *fakeProductRepo) list(keep func(*models.Product) bool) []models.Product {
	var out []models.Product
	for _, p := range r.products {
		if p.IsActive && keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *fakeProductRepo) ListActive(context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(*models.Product) bool { return true }), r.record("ListActive")
}

func (r *fakeProductRepo) ListByCategory(_ context.Context, category models.ProductCategory) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(p *models.Product) bool { return p.Category == category }), r.record("ListByCategory")
}

func (r *fakeProductRepo) ListFeatured(context.Context, int) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("ListFeatured"); err != nil {
		return nil, err
	}
	return r.list(func(p *models.Product) bool { return p.Featured }), nil
}

func (r *fakeProductRepo) Search(_ context.Context, text string) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(p *models.Product) bool { return p.Name == text }), r.record("Search")
}

func (r *fakeProductRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) mutate(id uuid.UUID, call string, fn func(*models.Product)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(call); err != nil {
		return err
	}
	p, err := r.get(id)
	if err != nil {
		return err
	}
	fn(p)
	return nil
}

func (r *fakeProductRepo) IncrementViews(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, "IncrementViews", func(p *models.Product) { p.Analytics.Views++ })
}

func (r *fakeProductRepo) IncrementAddedToCart(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, "IncrementAddedToCart", func(p *models.Product) { p.Analytics.AddedToCart++ })
}

func (r *fakeProductRepo) IncrementPurchased(_ context.Context, id uuid.UUID, qty int) error {
	return r.mutate(id, "IncrementPurchased", func(p *models.Product) { p.Analytics.Purchased += qty })
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id uuid.UUID, delta int) error {
	return r.mutate(id, "UpdateStock", func(p *models.Product) {
		p.Stock += delta
		if p.Stock < 0 {
			p.Stock = 0
		}
	})
}

func (r *fakeProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, "Deactivate", func(p *models.Product) { p.IsActive = false })
}

type fakeSettingsRepo struct {
	settings map[string]models.ShopSetting
	err      error
}

func newFakeSettingsRepo(settings ...models.ShopSetting) *fakeSettingsRepo {
	r := &fakeSettingsRepo{settings: make(map[string]models.ShopSetting)}
	for _, s := range settings {
		r.settings[s.SettingName] = s
	}
	return r
}

func (r *fakeSettingsRepo) GetSetting(_ context.Context, name string) (*models.ShopSetting, error) {
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.settings[name]
	if !ok || !s.IsActive {
		return nil, &apperrors.NotFoundError{Resource: "setting", ID: name}
	}
	return &s, nil
}

func (r *fakeSettingsRepo) ListActive(context.Context) ([]models.ShopSetting, error) {
	var out []models.ShopSetting
	for _, s := range r.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettingName < out[j].SettingName })
	return out, r.err
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, s *models.ShopSetting) error {
	r.settings[s.SettingName] = *s
	return r.err
}

func (r *fakeSettingsRepo) CreateIfMissing(_ context.Context, s *models.ShopSetting) error {
	if _, ok := r.settings[s.SettingName]; !ok {
		r.settings[s.SettingName] = *s
	}
	return r.err
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if _, ok := r.users[u.Username]; ok {
		return &apperrors.ConflictError{Message: "user already exists"}
	}
	u.ID = uint(len(r.users) + 1)
	r.users[u.Username] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, &apperrors.NotFoundError{Resource: "user"}
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "user", ID: username}
	}
	return u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.users[u.Username] = u
	return nil
}

type fakeSequenceStore struct {
	counters map[string]int64
	err      error
}

func (s *fakeSequenceStore) NextOrderSequence(ctx context.Context, day time.Time, seed func(context.Context) (int64, error)) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	key := day.Format("060102")
	if _, ok := s.counters[key]; !ok {
		n, err := seed(ctx)
		if err != nil {
			return 0, err
		}
		s.counters[key] = n
	}
	s.counters[key]++
	return s.counters[key], nil
}

type fakeCache struct {
	entries map[string][]byte
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) GetCache(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetCache(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.sets++
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) InvalidateCache(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}
