// Package robinhood is the brokerage data source: session establishment and
// retrieval of raw position, quote and order records for the reconciliation
// pipeline.
package robinhood

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/reconcile"
	"github.com/go-resty/resty/v2"
	"github.com/pquerna/otp/totp"
)

const sessionFile = "pcr-robinhood-session"

// Credentials hold what is needed to establish a brokerage session. The TOTP
// secret is the seed configured for app-based two-factor authentication.
type Credentials struct {
	Username   string
	Password   string
	TOTPSecret string
}

// Login establishes a session with the brokerage and returns the access
// token. A multi-factor code is derived from the TOTP secret at call time.
// Failures wrap reconcile.ErrAuth.
func Login(ctx context.Context, baseURL string, timeout time.Duration, creds Credentials) (string, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", fmt.Errorf("%w: missing username or password", reconcile.ErrAuth)
	}
	code, err := totp.GenerateCode(creds.TOTPSecret, time.Now())
	if err != nil {
		return "", fmt.Errorf("%w: cannot derive TOTP code: %v", reconcile.ErrAuth, err)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		Detail      string `json:"detail"`
	}
	resp, err := resty.New().SetBaseURL(baseURL).SetTimeout(timeout).R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFormData(map[string]string{
			"grant_type": "password",
			"scope":      "internal",
			"username":   creds.Username,
			"password":   creds.Password,
			"mfa_code":   code,
		}).
		SetResult(&result).
		Post("/oauth2/token/")
	if err != nil {
		return "", fmt.Errorf("%w: %v", reconcile.ErrAuth, err)
	}
	if resp.IsError() || result.AccessToken == "" {
		return "", fmt.Errorf("%w: %s (%s)", reconcile.ErrAuth, resp.Status(), result.Detail)
	}
	return result.AccessToken, nil
}

// StoreToken saves the session token for use by later commands.
func StoreToken(token string) error {
	sessionPath := filepath.Join(os.TempDir(), sessionFile)
	if err := os.WriteFile(sessionPath, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadToken reads the stored session token.
func LoadToken() (string, error) {
	sessionPath := filepath.Join(os.TempDir(), sessionFile)
	data, err := os.ReadFile(sessionPath)
	if err != nil {
		return "", fmt.Errorf("%w: session not found, run 'pcr login' first: %v", reconcile.ErrAuth, err)
	}
	return strings.TrimSpace(string(data)), nil
}
