package auth

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
)

// extractQueryParam saca un parámetro del link que viaja en el cuerpo del mail.
func extractQueryParam(t *testing.T, body, key string) string {
	t.Helper()
	idx := strings.Index(body, "/v1/auth/confirm-email?")
	require.GreaterOrEqual(t, idx, 0, "no link in mail body")
	raw := body[idx:]
	if end := strings.IndexAny(raw, " \n"); end >= 0 {
		raw = raw[:end]
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	require.NoError(t, err)
	v := u.Query().Get(key)
	require.NotEmpty(t, v)
	return v
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerReq("race@example.com"))
	require.NoError(t, err)
	login, err := f.svc.Login(ctx, dto.LoginRequest{Email: "race@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	const n = 12
	var wg sync.WaitGroup
	results := make([]*dto.TokenResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Refresh(ctx, login.RefreshToken)
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			wins++
			require.NotEmpty(t, results[i].RefreshToken)
		} else {
			require.ErrorIs(t, errs[i], ErrTokenExpiredOrRevoked)
		}
	}
	require.Equal(t, 1, wins)
}
