package email

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderConfirmDefaults(t *testing.T) {
	tpls, err := LoadTemplates("")
	require.NoError(t, err)

	htmlBody, textBody, err := tpls.RenderConfirm(ConfirmVars{
		FirstName: "Ana",
		Link:      "https://assetweb.test/v1/auth/confirm-email?user_id=u1&token=abc",
		TTL:       "24h",
	})
	require.NoError(t, err)
	require.Contains(t, htmlBody, "Ana")
	require.Contains(t, htmlBody, "token=abc")
	require.Contains(t, textBody, "token=abc")
	require.Contains(t, textBody, "24h")
}

func TestRenderConfirmEscapesHTML(t *testing.T) {
	tpls, err := LoadTemplates("")
	require.NoError(t, err)

	htmlBody, _, err := tpls.RenderConfirm(ConfirmVars{FirstName: "<script>x</script>"})
	require.NoError(t, err)
	require.NotContains(t, htmlBody, "<script>")
}
