package service

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	"github.com/nutritrackapp/nutritrack-server/internal/openfoodfacts"
	"github.com/nutritrackapp/nutritrack-server/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeClient implements ProductClient with pluggable behavior.
type fakeClient struct {
	mu          sync.Mutex
	searchFn    func(ctx context.Context, query string, page, pageSize int) (*openfoodfacts.SearchResult, error)
	getFn       func(ctx context.Context, barcode string) (*domain.Product, error)
	searchCalls int
	getCalls    int
}

func (c *fakeClient) Search(ctx context.Context, query string, page, pageSize int) (*openfoodfacts.SearchResult, error) {
	c.mu.Lock()
	c.searchCalls++
	fn := c.searchFn
	c.mu.Unlock()
	if fn == nil {
		return &openfoodfacts.SearchResult{Page: page, PageSize: pageSize}, nil
	}
	return fn(ctx, query, page, pageSize)
}

func (c *fakeClient) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	c.mu.Lock()
	c.getCalls++
	fn := c.getFn
	c.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, barcode)
}

func (c *fakeClient) calls() (search, get int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchCalls, c.getCalls
}

// fakeStore is an in-memory store.Store. Background cache writes land here
// from goroutines, so everything is mutex-guarded and upserts are signalled
// on a channel for tests that need to wait for them.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	entries  map[string]*domain.Entry
	items    map[string]*domain.EntryItem
	users    map[string]*domain.User
	sessions map[string]*domain.Session

	upsertErr     error
	getProductErr error
	upserted      chan []*domain.Product
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]*domain.Product),
		entries:  make(map[string]*domain.Entry),
		items:    make(map[string]*domain.EntryItem),
		users:    make(map[string]*domain.User),
		sessions: make(map[string]*domain.Session),
		upserted: make(chan []*domain.Product, 16),
	}
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) GetCachedProduct(_ context.Context, code string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getProductErr != nil {
		return nil, f.getProductErr
	}
	p, ok := f.products[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpsertProducts(_ context.Context, products []*domain.Product) error {
	f.mu.Lock()
	err := f.upsertErr
	if err == nil {
		for _, p := range products {
			if p == nil || p.Code == "" {
				continue
			}
			cp := *p
			f.products[p.Code] = &cp
		}
	}
	f.mu.Unlock()

	select {
	case f.upserted <- products:
	default:
	}
	return err
}

func (f *fakeStore) SearchCachedProducts(_ context.Context, query string, limit int) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Product
	for _, p := range f.products {
		cp := *p
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) CountCachedProducts(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.products), nil
}

func (f *fakeStore) DeleteCachedProductsBefore(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for code, p := range f.products {
		if p.FetchedAt.Before(cutoff) {
			delete(f.products, code)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetEntry(_ context.Context, id string) (*domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) GetEntryByDate(_ context.Context, userID, date string) (*domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.UserID == userID && e.Date == date {
			cp := *e
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateEntry(_ context.Context, entry *domain.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.UserID == entry.UserID && e.Date == entry.Date {
			return store.ErrAlreadyExists
		}
	}
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func (f *fakeStore) ListEntryItems(_ context.Context, entryID string) ([]*domain.EntryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.EntryItem
	for _, item := range f.items {
		if item.EntryID == entryID {
			cp := *item
			out = append(out, &cp)
		}
	}
	// Newest first, as the sqlite store orders.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetEntryItem(_ context.Context, id string) (*domain.EntryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeStore) CreateEntryItem(_ context.Context, item *domain.EntryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateEntryItem(_ context.Context, item *domain.EntryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteEntryItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrAlreadyExists
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) CreateSession(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeStore) GetSessionByRefreshToken(_ context.Context, tokenHash string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.RefreshTokenHash == tokenHash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateSession(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	now := time.Now()
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(now) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

// waitUpsert blocks until a background cache write lands or the timeout
// expires.
func (f *fakeStore) waitUpsert(timeout time.Duration) []*domain.Product {
	select {
	case batch := <-f.upserted:
		return batch
	case <-time.After(timeout):
		return nil
	}
}
