package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaultsAndEnvOverride(t *testing.T) {
	p := writeYAML(t, `
server:
  addr: ":9090"
jwt:
  issuer: my-issuer
`)
	t.Setenv("JWT_SIGNING_KEY", "super-secret")
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("SMTP_INSECURE_SKIP_VERIFY", "true")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, ":7070", c.Server.Addr) // env pisa yaml
	require.Equal(t, "my-issuer", c.JWT.Issuer)
	require.Equal(t, "super-secret", c.JWT.SigningKey)
	require.Equal(t, "15m", c.JWT.AccessTTL)
	require.Equal(t, "168h", c.JWT.RefreshTTL)
	require.Equal(t, "memory", c.Cache.Kind)
	require.True(t, c.Email.SMTP.InsecureSkipVerify)
	require.Equal(t, 30, c.Rate.Refresh.Limit) // default propio, no hereda del login
}

func TestValidateRequiresSigningKey(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	c, err := Load("")
	require.NoError(t, err)
	c.Storage.Driver = "memory"

	err = c.Validate()
	require.ErrorIs(t, err, ErrMissingSigningKey)

	c.JWT.SigningKey = "k"
	require.NoError(t, c.Validate())
}

func TestValidateRequiresDSNForPostgres(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.JWT.SigningKey = "k"
	c.Storage.Driver = "postgres"
	c.Storage.DSN = ""
	require.Error(t, c.Validate())
}

func TestValidateRejectsBadDurations(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.JWT.SigningKey = "k"
	c.Storage.Driver = "memory"
	c.JWT.AccessTTL = "quince minutos"
	require.Error(t, c.Validate())
}
