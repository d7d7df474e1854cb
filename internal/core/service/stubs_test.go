package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User // keyed by ID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, page, limit int) ([]*domain.User, int64, error) {
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })

	start := (page - 1) * limit
	if start >= len(all) {
		return []*domain.User{}, int64(len(all)), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory refresh token repository (mirrors the Redis key layout)
// ---------------------------------------------------------------------------

type stubRefreshRepo struct {
	mu      sync.Mutex
	byToken map[string]*domain.RefreshToken
	byUser  map[string]string
}

func newStubRefreshRepo() *stubRefreshRepo {
	return &stubRefreshRepo{
		byToken: make(map[string]*domain.RefreshToken),
		byUser:  make(map[string]string),
	}
}

func (r *stubRefreshRepo) Save(_ context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byUser[t.UserID]; ok {
		delete(r.byToken, prev)
	}
	clone := *t
	r.byToken[t.Token] = &clone
	r.byUser[t.UserID] = t.Token
	return nil
}

func (r *stubRefreshRepo) FindByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byToken[token]
	if !ok || r.byUser[t.UserID] != token {
		return nil, domain.ErrInvalidToken
	}
	clone := *t
	return &clone, nil
}

func (r *stubRefreshRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byToken[token]; ok {
		if r.byUser[t.UserID] == token {
			delete(r.byUser, t.UserID)
		}
		delete(r.byToken, token)
	}
	return nil
}

func (r *stubRefreshRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.byUser[userID]; ok {
		delete(r.byToken, token)
		delete(r.byUser, userID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Login throttle and audit recorder
// ---------------------------------------------------------------------------

type stubThrottle struct {
	failures map[string]int64
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: make(map[string]int64)}
}

func (t *stubThrottle) Failures(_ context.Context, id string) (int64, error) {
	return t.failures[id], nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, id string) (int64, error) {
	t.failures[id]++
	return t.failures[id], nil
}

func (t *stubThrottle) Reset(_ context.Context, id string) error {
	delete(t.failures, id)
	return nil
}

type stubAudit struct {
	events []domain.AuthEvent
}

func (a *stubAudit) Record(e domain.AuthEvent) { a.events = append(a.events, e) }

func (a *stubAudit) types() []string {
	out := make([]string, len(a.events))
	for i, e := range a.events {
		out[i] = string(e.Type)
	}
	return out
}

// ---------------------------------------------------------------------------
// Generic catalogue repository
// ---------------------------------------------------------------------------

type stubCatalogRepo[T domain.Entity] struct {
	items     map[string]T
	lastQuery ports.ListFilter
	parentOf  func(T) map[string]string
}

func newStubCatalogRepo[T domain.Entity](parentOf func(T) map[string]string) *stubCatalogRepo[T] {
	return &stubCatalogRepo[T]{items: make(map[string]T), parentOf: parentOf}
}

func (r *stubCatalogRepo[T]) Create(_ context.Context, e T) error {
	r.items[e.GetID()] = e
	return nil
}

func (r *stubCatalogRepo[T]) FindByID(_ context.Context, id string) (T, error) {
	e, ok := r.items[id]
	if !ok {
		var zero T
		return zero, domain.ErrNotFound
	}
	return e, nil
}

func (r *stubCatalogRepo[T]) List(_ context.Context, f ports.ListFilter) ([]T, int64, error) {
	r.lastQuery = f
	ids := make([]string, 0, len(r.items))
	for id, e := range r.items {
		if f.ParentField != "" && r.parentOf != nil && r.parentOf(e)[f.ParentField] != f.ParentID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]T, 0, f.Limit)
	start := (f.Page - 1) * f.Limit
	for i := start; i < len(ids) && len(out) < f.Limit; i++ {
		out = append(out, r.items[ids[i]])
	}
	return out, int64(len(ids)), nil
}

func (r *stubCatalogRepo[T]) Update(_ context.Context, e T) error {
	if _, ok := r.items[e.GetID()]; !ok {
		return domain.ErrNotFound
	}
	r.items[e.GetID()] = e
	return nil
}

func (r *stubCatalogRepo[T]) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func joinTypes(types []string) string { return strings.Join(types, ",") }
