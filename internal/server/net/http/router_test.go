package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/api"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/config"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/ratelimit"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// memStore — хранилище в памяти для сквозных тестов роутера.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	expenses map[uuid.UUID]models.Expense
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]models.User{},
		expenses: map[uuid.UUID]models.Expense{},
	}
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) Create(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return serr.ErrAlreadyExists
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, serr.ErrNotFound
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, serr.ErrNotFound
	}
	return u, nil
}

type memExpenses struct{ *memStore }

func (m memExpenses) Create(_ context.Context, e models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.ID] = e
	return nil
}

func (m memExpenses) GetByID(_ context.Context, id uuid.UUID) (models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return models.Expense{}, serr.ErrNotFound
	}
	return e, nil
}

func (m memExpenses) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Expense, 0)
	for _, e := range m.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m memExpenses) Update(_ context.Context, e models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.expenses[e.ID]
	if !ok || cur.UserID != e.UserID {
		return serr.ErrNotFound
	}
	m.expenses[e.ID] = e
	return nil
}

func (m memExpenses) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.expenses[id]
	if !ok || cur.UserID != userID {
		return serr.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			Issuer:    "issuer",
			Audience:  "audience",
			AccessTTL: time.Minute,
			JWT: config.JWTConfig{
				Algorithm:  "HS256",
				SigningKey: "supersecretkeysupersecretkey123456", // >= 32
			},
		},
		Password: config.PasswordConfig{
			Hasher: "argon2id",
			Argon2: config.Argon2Config{Time: 1, MemoryKiB: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16},
		},
	}
	config.ApplyDefaults(cfg)
	cfg.Security.RateLimit.Enabled = true
	return cfg
}

type testServer struct {
	router http.Handler
	cfg    *config.Config
	clock  *fakeClock
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	store := newMemStore()
	svc := service.NewServices(service.Repositories{
		Users:    store,
		Expenses: memExpenses{store},
		Health:   store,
	}, cfg)

	verifier := middleware.NewJWTVerifier(cfg.Auth.JWT.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	h := api.NewHandler(svc, logger.NewNop(), verifier)

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiters := NewLimiters(cfg.Security.RateLimit, ratelimit.NewMemoryStore(clock), clock)

	return &testServer{
		router: NewRouter(h, OptionsFromConfig(cfg, limiters)),
		cfg:    cfg,
		clock:  clock,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, name, email string) sharedModels.AuthResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/users/register", "", sharedModels.RegisterRequest{
		Name: name, Email: email, Password: "StrongPass123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sharedModels.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// Полный сценарий: регистрация, вход, создание, список, обновление, удаление
func TestRouter_ExpenseLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig())

	s.register(t, "Ann", "ann@example.com")

	rec := s.do(t, http.MethodPost, "/users/login", "", sharedModels.LoginRequest{
		Email: "ANN@example.com", Password: "StrongPass123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login sharedModels.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))

	rec = s.do(t, http.MethodPost, "/expenses", login.Token, map[string]any{
		"title": "Groceries", "amount": 42.1, "category": "Food", "date": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created sharedModels.Expense
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.Equal(t, login.User.ID, created.UserID)

	rec = s.do(t, http.MethodGet, "/expenses", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []sharedModels.Expense
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)

	rec = s.do(t, http.MethodPut, "/expenses/"+created.ID, login.Token, map[string]any{"notes": "weekly"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/expenses/"+created.ID, login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got sharedModels.Expense
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, "weekly", got.Notes)
	require.Equal(t, "Groceries", got.Title)

	rec = s.do(t, http.MethodGet, "/expenses/summary?budget=100", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/expenses/"+created.ID, login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/expenses/"+created.ID, login.Token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RegisterCreateListDelete(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := s.do(t, http.MethodPost, "/users/register", "", sharedModels.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "Passw0rd1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var alice sharedModels.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&alice))
	require.NotEmpty(t, alice.Token)

	rec = s.do(t, http.MethodPost, "/expenses", alice.Token, map[string]any{
		"title": "Coffee", "amount": 4.5, "category": "Food", "date": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var coffee sharedModels.Expense
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&coffee))

	rec = s.do(t, http.MethodGet, "/expenses", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []sharedModels.Expense
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	require.Equal(t, coffee.ID, list[0].ID)
	require.Equal(t, "Coffee", list[0].Title)
	require.Equal(t, sharedModels.CategoryFood, list[0].Category)

	rec = s.do(t, http.MethodDelete, "/expenses/"+coffee.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/expenses", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

// Чужие расходы не видны в списке, PUT и DELETE дают 403
func TestRouter_CrossUserForbidden(t *testing.T) {
	s := newTestServer(t, testConfig())

	ann := s.register(t, "Ann", "ann@example.com")
	bob := s.register(t, "Bob", "bob@example.com")

	rec := s.do(t, http.MethodPost, "/expenses", ann.Token, map[string]any{"title": "Rent", "amount": "900", "category": "Bills"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var e sharedModels.Expense
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))

	rec = s.do(t, http.MethodGet, "/expenses", bob.Token, nil)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/expenses/"+e.ID, bob.Token, map[string]any{"amount": 1})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/expenses/"+e.ID, bob.Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// запись Ann не изменилась
	rec = s.do(t, http.MethodGet, "/expenses/"+e.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got sharedModels.Expense
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.True(t, e.Amount.Equal(got.Amount))
}

func TestRouter_DuplicateEmail(t *testing.T) {
	s := newTestServer(t, testConfig())

	s.register(t, "Ann", "ann@example.com")

	rec := s.do(t, http.MethodPost, "/users/register", "", sharedModels.RegisterRequest{
		Name: "Ann Two", Email: "Ann@Example.com", Password: "StrongPass123",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_Unauthorized(t *testing.T) {
	cfg := testConfig()
	s := newTestServer(t, cfg)

	rec := s.do(t, http.MethodGet, "/expenses", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := crypto.NewAccessToken(uuid.New(), crypto.JWTConfig{
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		SigningKey: cfg.Auth.JWT.SigningKey,
		AccessTTL:  -time.Minute,
	})
	require.NoError(t, err)

	for _, path := range []string{"/expenses", "/expenses/summary", "/users/me"} {
		rec = s.do(t, http.MethodGet, path, expired, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

// Неудачные попытки входа считаются, успешные нет
func TestRouter_AuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Auth.Max = 2
	cfg.Security.RateLimit.Auth.Window = time.Minute
	s := newTestServer(t, cfg)

	s.register(t, "Ann", "ann@example.com")
	s.register(t, "Bob", "bob@example.com")

	bad := sharedModels.LoginRequest{Email: "ann@example.com", Password: "WrongPass123"}
	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/users/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/users/login", "", bad)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	var resp sharedModels.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, cfg.Security.RateLimit.Auth.Message, resp.Message)

	// окно истекло
	s.clock.Advance(time.Minute)
	rec = s.do(t, http.MethodPost, "/users/login", "", bad)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Enabled = false
	cfg.Security.RateLimit.Auth.Max = 1
	s := newTestServer(t, cfg)

	for i := 0; i < 5; i++ {
		rec := s.do(t, http.MethodPost, "/users/login", "", sharedModels.LoginRequest{Email: "x@example.com", Password: "nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, rec.Header().Get("RateLimit-Limit"))
	}
}

func TestRouter_HealthOutsidePrefix(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","db":"up"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Content-Type-Options"))
}

// Огромный показатель степени отклоняется сразу, без арифметики над ним
func TestRouter_HugeExponentRejectedFast(t *testing.T) {
	s := newTestServer(t, testConfig())
	auth := s.register(t, "Ann", "ann@example.com")

	for _, amount := range []string{"1e-40000000", "1e40000000"} {
		start := time.Now()
		rec := s.do(t, http.MethodPost, "/expenses", auth.Token, map[string]any{
			"title": "x", "amount": json.Number(amount),
		})
		require.Equal(t, http.StatusBadRequest, rec.Code, amount)
		require.Less(t, time.Since(start), time.Second, amount)
	}

	start := time.Now()
	rec := s.do(t, http.MethodGet, "/expenses/summary?budget=1e-40000000", auth.Token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.Less(t, time.Since(start), time.Second)

	rec = s.do(t, http.MethodGet, "/expenses/summary?budget=250.50", auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// Смена X-Session-ID на каждом запросе не обходит лимит входа
func TestRouter_AuthRateLimitIgnoresSessionHeader(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Auth.Max = 5
	s := newTestServer(t, cfg)

	body, err := json.Marshal(sharedModels.LoginRequest{Email: "ghost@example.com", Password: "WrongPass123"})
	require.NoError(t, err)

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.SessionHeader, fmt.Sprintf("s-%d", i))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	require.Equal(t, 15, limited)
}

// Длина пароля считается в символах, а не в байтах
func TestRouter_RegisterMultibyteShortPassword(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := s.do(t, http.MethodPost, "/users/register", "", sharedModels.RegisterRequest{
		Name: "Ann", Email: "ann@example.com", Password: "Aé1éé",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp sharedModels.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	require.Equal(t, "password", resp.Errors[0].Field)
}
