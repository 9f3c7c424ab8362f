package http_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/service"
)

type memUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.nextID++
	user.ID = m.nextID
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

type memRefreshRepo struct {
	records map[int64]*domain.RefreshTokenRecord
	nextID  int64
}

func (m *memRefreshRepo) Create(_ context.Context, userID int64, expiresAt time.Time) (*domain.RefreshTokenRecord, error) {
	m.nextID++
	record := &domain.RefreshTokenRecord{ID: m.nextID, UserID: userID, ExpiresAt: expiresAt}
	m.records[record.ID] = record
	return record, nil
}

func (m *memRefreshRepo) GetByID(_ context.Context, id int64) (*domain.RefreshTokenRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return record, nil
}

func (m *memRefreshRepo) DeleteByID(_ context.Context, id int64) error {
	delete(m.records, id)
	return nil
}

func (m *memRefreshRepo) Rotate(ctx context.Context, oldID, userID int64, expiresAt time.Time) (*domain.RefreshTokenRecord, error) {
	if _, ok := m.records[oldID]; !ok {
		return nil, pgx.ErrNoRows
	}
	delete(m.records, oldID)
	return m.Create(ctx, userID, expiresAt)
}

type memTenantRepo struct {
	tenants map[int64]*domain.Tenant
	nextID  int64
}

func (m *memTenantRepo) Create(_ context.Context, tenant *domain.Tenant) error {
	m.nextID++
	tenant.ID = m.nextID
	clone := *tenant
	m.tenants[tenant.ID] = &clone
	return nil
}

func (m *memTenantRepo) Update(_ context.Context, tenant *domain.Tenant) error {
	if _, ok := m.tenants[tenant.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *tenant
	m.tenants[tenant.ID] = &clone
	return nil
}

func (m *memTenantRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.tenants[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tenants, id)
	return nil
}

func (m *memTenantRepo) GetByID(_ context.Context, id int64) (*domain.Tenant, error) {
	tenant, ok := m.tenants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *tenant
	return &clone, nil
}

func (m *memTenantRepo) List(_ context.Context) ([]*domain.Tenant, error) {
	out := make([]*domain.Tenant, 0, len(m.tenants))
	for _, tenant := range m.tenants {
		clone := *tenant
		out = append(out, &clone)
	}
	return out, nil
}

type testEnv struct {
	app     *fiber.App
	codec   *auth.TokenCodec
	users   *memUserRepo
	refresh *memRefreshRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	codec := auth.NewTokenCodec(key, "test-refresh-secret", time.Hour, 24*365*time.Hour)

	userRepo := &memUserRepo{users: make(map[int64]*domain.User)}
	refreshRepo := &memRefreshRepo{records: make(map[int64]*domain.RefreshTokenRecord)}
	tenantRepo := &memTenantRepo{tenants: make(map[int64]*domain.Tenant)}

	authCfg := config.AuthConfig{BcryptCost: 10, RefreshTokenTTLHours: 24 * 365, CookieDomain: "localhost"}
	authService := service.NewAuthService(authCfg, service.AuthDependencies{
		UserRepo:         userRepo,
		RefreshTokenRepo: refreshRepo,
		Codec:            codec,
	})
	userService := service.NewUserService(authCfg, userRepo, tenantRepo, nil, nil)
	tenantService := service.NewTenantService(tenantRepo, nil)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Auth:           handlers.NewAuthHandler(authService, "localhost"),
		Users:          handlers.NewUsersHandler(userService),
		Tenants:        handlers.NewTenantsHandler(tenantService),
		JWKS:           handlers.NewJWKSHandler(codec),
		Health:         handlers.NewHealthHandler("auth-service", "test", nil, nil),
		AuthMiddleware: auth.NewMiddleware(codec, refreshRepo),
	})

	return &testEnv{app: app, codec: codec, users: userRepo, refresh: refreshRepo}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, modify func(*http.Request)) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if modify != nil {
		modify(req)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func (e *testEnv) accessToken(t *testing.T, role domain.Role) string {
	t.Helper()
	user := &domain.User{FirstName: "T", LastName: "U", Email: string(role) + "@test.com", PasswordHash: "x", Role: role}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, _, err := e.codec.GenerateAccessToken(user.ID, role)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return token
}

func cookieValue(resp *http.Response, name string) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal body %q: %v", data, err)
	}
	return out
}

func registerBody() map[string]string {
	return map[string]string{
		"firstName": "A",
		"lastName":  "B",
		"email":     "a@b.com",
		"password":  "longenough1",
	}
}

func TestRegisterSetsCookiesAndDefaultsRole(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/register", registerBody(), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status: got %d want 201", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	id, ok := body["id"].(float64)
	if !ok || id != 1 {
		t.Fatalf("body id: got %v", body["id"])
	}

	accessCookie, ok := cookieValue(resp, auth.AccessTokenCookie)
	if !ok || accessCookie == "" {
		t.Fatalf("accessToken cookie not set")
	}
	refreshCookie, ok := cookieValue(resp, auth.RefreshTokenCookie)
	if !ok || refreshCookie == "" {
		t.Fatalf("refreshToken cookie not set")
	}
	for _, c := range resp.Cookies() {
		if !c.HttpOnly {
			t.Fatalf("cookie %s not HttpOnly", c.Name)
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Fatalf("cookie %s not SameSite=Strict", c.Name)
		}
	}

	user := env.users.users[1]
	if user.Role != domain.RoleCustomer {
		t.Fatalf("default role: got %q want customer", user.Role)
	}
	if len(user.PasswordHash) != 60 || !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Fatalf("stored password not a bcrypt hash: %q", user.PasswordHash)
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/register", map[string]string{
		"firstName": "A",
		"lastName":  "B",
		"email":     "not-an-email",
		"password":  "short",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	errs, ok := body["errors"].([]any)
	if !ok || len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %v", body["errors"])
	}
	first := errs[0].(map[string]any)
	for _, key := range []string{"message", "type", "path", "location"} {
		if _, present := first[key]; !present {
			t.Fatalf("error entry missing %q: %v", key, first)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	if resp := env.do(t, http.MethodPost, "/auth/register", registerBody(), nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	recordsBefore := len(env.refresh.records)

	resp := env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "a@b.com",
		"password": "wrong-password",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", resp.StatusCode)
	}
	if len(resp.Cookies()) != 0 {
		t.Fatalf("failed login set cookies")
	}
	if len(env.refresh.records) != recordsBefore {
		t.Fatalf("failed login minted a refresh record")
	}
}

func TestSelfStripsPassword(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/auth/self", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status: got %d want 401", resp.StatusCode)
	}

	register := env.do(t, http.MethodPost, "/auth/register", registerBody(), nil)
	access, _ := cookieValue(register, auth.AccessTokenCookie)

	resp = env.do(t, http.MethodGet, "/auth/self", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: access})
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if _, present := body["password"]; present {
		t.Fatalf("self response leaks password field")
	}
	if body["email"] != "a@b.com" {
		t.Fatalf("email: got %v", body["email"])
	}
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	env := newTestEnv(t)

	register := env.do(t, http.MethodPost, "/auth/register", registerBody(), nil)
	oldRefresh, _ := cookieValue(register, auth.RefreshTokenCookie)

	resp := env.do(t, http.MethodPost, "/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: oldRefresh})
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status: got %d want 200", resp.StatusCode)
	}
	newRefresh, ok := cookieValue(resp, auth.RefreshTokenCookie)
	if !ok || newRefresh == oldRefresh {
		t.Fatalf("refresh did not rotate the cookie")
	}

	// the superseded token no longer resolves to a record
	resp = env.do(t, http.MethodPost, "/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: oldRefresh})
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replay status: got %d want 401", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: newRefresh})
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new token status: got %d want 200", resp.StatusCode)
	}
}

func TestLogoutClearsCookiesAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	register := env.do(t, http.MethodPost, "/auth/register", registerBody(), nil)
	access, _ := cookieValue(register, auth.AccessTokenCookie)
	refresh, _ := cookieValue(register, auth.RefreshTokenCookie)

	logout := func() *http.Response {
		return env.do(t, http.MethodPost, "/auth/logout", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: access})
			r.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: refresh})
		})
	}

	resp := logout()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status: got %d want 200", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Value != "" {
			t.Fatalf("cookie %s not cleared", c.Name)
		}
	}
	if len(env.refresh.records) != 0 {
		t.Fatalf("refresh record survives logout")
	}

	if resp := logout(); resp.StatusCode != http.StatusOK {
		t.Fatalf("second logout status: got %d want 200", resp.StatusCode)
	}
}

func TestLogoutRequiresBothTokens(t *testing.T) {
	env := newTestEnv(t)

	register := env.do(t, http.MethodPost, "/auth/register", registerBody(), nil)
	refresh, _ := cookieValue(register, auth.RefreshTokenCookie)

	resp := env.do(t, http.MethodPost, "/auth/logout", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: refresh})
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing access token: got %d want 401", resp.StatusCode)
	}
}

func TestTenantRoleGate(t *testing.T) {
	env := newTestEnv(t)
	tenantBody := map[string]string{"name": "Acme", "address": "1 Main St"}

	managerToken := env.accessToken(t, domain.RoleManager)
	resp := env.do(t, http.MethodPost, "/tenants", tenantBody, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+managerToken)
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("manager create: got %d want 403", resp.StatusCode)
	}

	adminToken := env.accessToken(t, domain.RoleAdmin)
	resp = env.do(t, http.MethodPost, "/tenants", tenantBody, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+adminToken)
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin create: got %d want 201", resp.StatusCode)
	}

	// managers may read
	resp = env.do(t, http.MethodGet, "/tenants", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+managerToken)
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("manager list: got %d want 200", resp.StatusCode)
	}
}

func TestUsersRoutesAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	customerToken := env.accessToken(t, domain.RoleCustomer)
	resp := env.do(t, http.MethodGet, "/users", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+customerToken)
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer list users: got %d want 403", resp.StatusCode)
	}

	adminToken := env.accessToken(t, domain.RoleAdmin)
	resp = env.do(t, http.MethodPost, "/users", map[string]any{
		"firstName": "New",
		"lastName":  "Manager",
		"email":     "m@test.com",
		"password":  "longenough1",
		"role":      "manager",
	}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+adminToken)
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin create user: got %d want 201", resp.StatusCode)
	}
}

func TestJWKSServesSigningKey(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/.well-known/jwks.json", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	keys, ok := body["keys"].([]any)
	if !ok || len(keys) != 1 {
		t.Fatalf("expected one key, got %v", body["keys"])
	}
	key := keys[0].(map[string]any)
	if key["kty"] != "RSA" || key["alg"] != "RS256" || key["use"] != "sig" {
		t.Fatalf("unexpected jwk: %v", key)
	}
	if key["n"] == "" || key["e"] == "" {
		t.Fatalf("jwk missing modulus/exponent: %v", key)
	}
}
