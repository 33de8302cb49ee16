package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string // bearer para /v1/me
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("ASSETWEB_URL", "http://localhost:8080")
		token   = envOr("ASSETWEB_TOKEN", "")
		out     = envOr("ASSETWEB_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "assetwebctl",
		Short: "CLI para operar el API de AssetWeb",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del API (env ASSETWEB_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Access token para endpoints autenticados (env ASSETWEB_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{HTTP: httpClient}
	// los flags se resuelven recién en Execute
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.Token = token
		cl.OutFormat = out
	}

	// ping: GET /healthz
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Chequear que el servicio responda",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/healthz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping fallo: status=%d body=%s", status, string(body))
			}
			fmt.Println("ok")
			return nil
		},
	}

	// grupo auth
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Operaciones de autenticacion (vía /v1/auth)",
	}

	var loginEmail, loginPass string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login con email y password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if loginEmail == "" || loginPass == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			b, _ := json.Marshal(map[string]string{"email": loginEmail, "password": loginPass})
			status, body, err := cl.do("POST", "/v1/auth/login", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("login fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email del usuario")
	loginCmd.Flags().StringVar(&loginPass, "password", "", "Password del usuario")

	var refreshToken string
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Rotar un refresh token por un par nuevo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if refreshToken == "" {
				return fmt.Errorf("--refresh-token es requerido")
			}
			b, _ := json.Marshal(map[string]string{"refreshToken": refreshToken})
			status, body, err := cl.do("POST", "/v1/auth/refresh", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("refresh fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	refreshCmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Refresh token vigente")

	var revokeToken, revokeReason string
	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revocar un refresh token (logout)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if revokeToken == "" {
				return fmt.Errorf("--refresh-token es requerido")
			}
			payload := map[string]string{"refreshToken": revokeToken}
			if revokeReason != "" {
				payload["reason"] = revokeReason
			}
			b, _ := json.Marshal(payload)
			status, body, err := cl.do("POST", "/v1/auth/revoke", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("revoke fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	revokeCmd.Flags().StringVar(&revokeToken, "refresh-token", "", "Refresh token a revocar")
	revokeCmd.Flags().StringVar(&revokeReason, "reason", "", "Motivo de revocación (opcional)")

	var resendEmail string
	resendCmd := &cobra.Command{
		Use:   "resend-confirmation",
		Short: "Reenviar el mail de confirmación de cuenta",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resendEmail == "" {
				return fmt.Errorf("--email es requerido")
			}
			b, _ := json.Marshal(map[string]string{"email": resendEmail})
			status, body, err := cl.do("POST", "/v1/auth/resend-confirmation", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("resend fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	resendCmd.Flags().StringVar(&resendEmail, "email", "", "Email del usuario")

	var confirmUserID, confirmToken string
	confirmCmd := &cobra.Command{
		Use:   "confirm-email",
		Short: "Confirmar el email de un usuario (mismo endpoint que el deep link)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirmUserID == "" || confirmToken == "" {
				return fmt.Errorf("--user-id y --confirm-token son requeridos")
			}
			q := url.Values{}
			q.Set("user_id", confirmUserID)
			q.Set("token", confirmToken)
			status, body, err := cl.do("GET", "/v1/auth/confirm-email?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("confirm fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	confirmCmd.Flags().StringVar(&confirmUserID, "user-id", "", "ID del usuario")
	confirmCmd.Flags().StringVar(&confirmToken, "confirm-token", "", "Token recibido por mail")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(refreshCmd)
	authCmd.AddCommand(revokeCmd)
	authCmd.AddCommand(resendCmd)
	authCmd.AddCommand(confirmCmd)

	// me: GET /v1/me con bearer
	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Mostrar el perfil del usuario autenticado",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cl.Token == "" {
				return fmt.Errorf("falta access token (flag --token o env ASSETWEB_TOKEN)")
			}
			status, body, err := cl.do("GET", "/v1/me", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("me fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	root.AddCommand(pingCmd)
	root.AddCommand(authCmd)
	root.AddCommand(meCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
