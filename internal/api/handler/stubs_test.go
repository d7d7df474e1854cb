package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carnavalia/catalog-api/internal/api/middleware"
	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, in ports.LoginInput) (*domain.TokenPair, *domain.User, error)
	refreshFn func(ctx context.Context, token, remoteIP string) (*domain.TokenPair, *domain.User, error)
	logoutFn  func(ctx context.Context, p domain.Principal, remoteIP string) error
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.TokenPair, *domain.User, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Refresh(ctx context.Context, token, remoteIP string) (*domain.TokenPair, *domain.User, error) {
	return s.refreshFn(ctx, token, remoteIP)
}

func (s *stubAuthService) Logout(ctx context.Context, p domain.Principal, remoteIP string) error {
	return s.logoutFn(ctx, p, remoteIP)
}

type stubUserService struct {
	users         map[string]*domain.User
	created       []ports.CreateUserInput
	passwordCalls int
	err           error
}

func newStubUserService(users ...*domain.User) *stubUserService {
	s := &stubUserService{users: map[string]*domain.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserService) LoadByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) Create(_ context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, in)
	roles, err := domain.ParseRoles(strings.Join(in.Roles, " "))
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: "new", Username: in.Username, Email: in.Email, Enabled: true, Roles: roles}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubUserService) Get(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserService) List(_ context.Context, page, limit int) (*ports.UserPage, error) {
	items := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		items = append(items, u)
	}
	return &ports.UserPage{Items: items, Total: int64(len(items)), Page: 1, Limit: 20, TotalPages: 1}, nil
}

func (s *stubUserService) UpdateRoles(ctx context.Context, id string, names []string) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	roles, err := domain.ParseRoles(strings.Join(names, " "))
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return u, nil
}

func (s *stubUserService) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Enabled = enabled
	return u, nil
}

func (s *stubUserService) ChangePassword(_ context.Context, id, current, next string) error {
	s.passwordCalls++
	if current != "old-password" {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// stubCatalogService keeps entities in memory and records the last list filter.
type stubCatalogService[T domain.Entity] struct {
	items      map[string]T
	lastFilter ports.ListFilter
	nextID     string
}

func newStubCatalogService[T domain.Entity]() *stubCatalogService[T] {
	return &stubCatalogService[T]{items: map[string]T{}, nextID: "id-1"}
}

func (s *stubCatalogService[T]) Create(_ context.Context, e T) (T, error) {
	e.SetID(s.nextID)
	s.items[s.nextID] = e
	return e, nil
}

func (s *stubCatalogService[T]) Get(_ context.Context, id string) (T, error) {
	e, ok := s.items[id]
	if !ok {
		var zero T
		return zero, domain.ErrNotFound
	}
	return e, nil
}

func (s *stubCatalogService[T]) List(_ context.Context, f ports.ListFilter) (*ports.ListResult[T], error) {
	s.lastFilter = f
	items := make([]T, 0, len(s.items))
	for _, e := range s.items {
		items = append(items, e)
	}
	return &ports.ListResult[T]{Items: items, Total: int64(len(items)), Page: 1, Limit: 20, TotalPages: 1}, nil
}

func (s *stubCatalogService[T]) Update(_ context.Context, id string, e T) (T, error) {
	if _, ok := s.items[id]; !ok {
		var zero T
		return zero, domain.ErrNotFound
	}
	e.SetID(id)
	s.items[id] = e
	return e, nil
}

func (s *stubCatalogService[T]) Delete(_ context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// newContext builds an echo context with the validator installed and, when
// p is non-nil, an authenticated principal.
func newContext(method, target string, body io.Reader, p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if p != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}
