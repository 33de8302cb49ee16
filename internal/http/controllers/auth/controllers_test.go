package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/dropDatabas3/assetweb/internal/cache/memory"
	"github.com/dropDatabas3/assetweb/internal/email"
	authctrl "github.com/dropDatabas3/assetweb/internal/http/controllers/auth"
	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	"github.com/dropDatabas3/assetweb/internal/http/router"
	svc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
	jwtx "github.com/dropDatabas3/assetweb/internal/jwt"
	"github.com/dropDatabas3/assetweb/internal/rate"
	"github.com/dropDatabas3/assetweb/internal/security/password"
	"github.com/dropDatabas3/assetweb/internal/store/memory"
)

var testHash = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type mailbox struct{ bodies []string }

func (m *mailbox) Send(to, subject, htmlBody, textBody string) error {
	m.bodies = append(m.bodies, textBody)
	return nil
}

type env struct {
	ts   *httptest.Server
	mail *mailbox
	repo *memory.Store
}

func newEnv(t *testing.T, loginLimiter, refreshLimiter rate.Limiter) *env {
	t.Helper()
	repo := memory.New()
	mail := &mailbox{}
	tpls, err := email.LoadTemplates("")
	require.NoError(t, err)
	issuer := jwtx.NewIssuer([]byte("http-test-key"), "assetweb", "assetweb-api", 15*time.Minute)

	authSvc := svc.New(svc.Deps{
		Repo:       repo,
		Issuer:     issuer,
		Hash:       testHash,
		Sender:     mail,
		Templates:  tpls,
		Cache:      cachemem.New(2 * time.Minute),
		BaseURL:    "https://assetweb.test",
		RefreshTTL: time.Hour,
		ConfirmTTL: 24 * time.Hour,
	})
	profileSvc := svc.NewProfile(svc.ProfileDeps{Repo: repo, Hash: testHash})

	h := router.New(router.Deps{
		Controllers:    authctrl.New(authSvc, profileSvc),
		Issuer:         issuer,
		LoginLimiter:   loginLimiter,
		RefreshLimiter: refreshLimiter,
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &env{ts: ts, mail: mail, repo: repo}
}

func (e *env) post(t *testing.T, path string, body any, bearer string) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, e.ts.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (e *env) get(t *testing.T, path, bearer string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.ts.URL+path, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func register(t *testing.T, e *env, emailAddr string) {
	t.Helper()
	resp, _ := e.post(t, "/v1/auth/register", dto.RegisterRequest{
		Email: emailAddr, FirstName: "Ana", LastName: "García",
		Password: "s3cret-pass", ConfirmPassword: "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func login(t *testing.T, e *env, emailAddr string) (access, refresh string) {
	t.Helper()
	resp, out := e.post(t, "/v1/auth/login", dto.LoginRequest{Email: emailAddr, Password: "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access, _ = out["accessToken"].(string)
	refresh, _ = out["refreshToken"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}

func TestRegisterLoginRefreshOverHTTP(t *testing.T) {
	e := newEnv(t, nil, nil)
	register(t, e, "flow@example.com")

	// registro duplicado -> 409
	resp, out := e.post(t, "/v1/auth/register", dto.RegisterRequest{
		Email: "flow@example.com", Password: "s3cret-pass", ConfirmPassword: "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "EMAIL_ALREADY_IN_USE", out["code"])

	_, refresh := login(t, e, "flow@example.com")

	resp, out = e.post(t, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: refresh}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	next, _ := out["refreshToken"].(string)
	require.NotEmpty(t, next)
	require.NotEqual(t, refresh, next)

	// replay del refresh viejo -> 401
	resp, out = e.post(t, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: refresh}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "TOKEN_EXPIRED_OR_REVOKED", out["code"])
}

func TestLoginInvalidCredentialsOverHTTP(t *testing.T) {
	e := newEnv(t, nil, nil)
	register(t, e, "badpass@example.com")

	resp, out := e.post(t, "/v1/auth/login", dto.LoginRequest{Email: "badpass@example.com", Password: "nope"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "INVALID_CREDENTIALS", out["code"])

	// JSON roto -> 400
	req, err := http.NewRequest(http.MethodPost, e.ts.URL+"/v1/auth/login", strings.NewReader("{no-json"))
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestConfirmEmailOverHTTP(t *testing.T) {
	e := newEnv(t, nil, nil)
	register(t, e, "confirm@example.com")
	require.Len(t, e.mail.bodies, 1)

	// el link del mail trae user_id y token
	body := e.mail.bodies[0]
	idx := strings.Index(body, "/v1/auth/confirm-email?")
	require.GreaterOrEqual(t, idx, 0)
	link := body[idx:]
	if end := strings.IndexAny(link, " \n"); end >= 0 {
		link = link[:end]
	}
	u, err := url.Parse(strings.TrimSpace(link))
	require.NoError(t, err)

	resp, out := e.get(t, u.Path+"?"+u.RawQuery, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, out["success"])

	// segunda confirmación -> 409
	resp, out = e.get(t, u.Path+"?"+u.RawQuery, "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "ALREADY_CONFIRMED", out["code"])
}

func TestRevokeOverHTTP(t *testing.T) {
	e := newEnv(t, nil, nil)
	register(t, e, "revoke@example.com")
	_, refresh := login(t, e, "revoke@example.com")

	resp, _ := e.post(t, "/v1/auth/revoke", dto.RevokeRequest{RefreshToken: refresh, Reason: "logout"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// revocar de nuevo sigue siendo 200
	resp, _ = e.post(t, "/v1/auth/revoke", dto.RevokeRequest{RefreshToken: refresh}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// logout sin token tampoco falla
	resp, _ = e.post(t, "/v1/auth/revoke", dto.RevokeRequest{}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.post(t, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: refresh}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeEndpointsOverHTTP(t *testing.T) {
	e := newEnv(t, nil, nil)
	register(t, e, "me@example.com")
	access, _ := login(t, e, "me@example.com")

	// sin bearer -> 401
	resp, _ := e.get(t, "/v1/me", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, out := e.get(t, "/v1/me", access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "me@example.com", out["email"])
	require.Equal(t, false, out["emailConfirmed"])

	// update de perfil
	req, err := http.NewRequest(http.MethodPut, e.ts.URL+"/v1/me",
		strings.NewReader(`{"firstName":"Anita"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	// cambio de password y login con la nueva
	resp, _ = e.post(t, "/v1/me/password", dto.ChangePasswordRequest{
		CurrentPassword: "s3cret-pass", NewPassword: "n3w-pass-123", ConfirmPassword: "n3w-pass-123",
	}, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.post(t, "/v1/auth/login", dto.LoginRequest{Email: "me@example.com", Password: "s3cret-pass"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = e.post(t, "/v1/auth/login", dto.LoginRequest{Email: "me@example.com", Password: "n3w-pass-123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRateLimitOverHTTP(t *testing.T) {
	e := newEnv(t, rate.NewMemoryLimiter(2, time.Minute), nil)
	register(t, e, "limited@example.com")

	body := dto.LoginRequest{Email: "limited@example.com", Password: "s3cret-pass"}
	resp, _ := e.post(t, "/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.post(t, "/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := e.post(t, "/v1/auth/login", body, "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", out["code"])
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRefreshRateLimitOverHTTP(t *testing.T) {
	// limitar refresh no debe tocar el login
	e := newEnv(t, nil, rate.NewMemoryLimiter(1, time.Minute))
	register(t, e, "refreshlimited@example.com")
	_, refresh := login(t, e, "refreshlimited@example.com")

	resp, out := e.post(t, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: refresh}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	next, _ := out["refreshToken"].(string)
	require.NotEmpty(t, next)

	resp, out = e.post(t, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: next}, "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", out["code"])

	// el login sigue sin límite
	resp, _ = e.post(t, "/v1/auth/login", dto.LoginRequest{Email: "refreshlimited@example.com", Password: "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t, nil, nil)
	resp, err := http.Get(e.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
