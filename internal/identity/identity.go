// Package identity talks to the authentication provider's REST API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrWrongPassword    = errors.New("Incorrect password. Please try again.")
	ErrUserNotFound     = errors.New("No account found with this email.")
	ErrEmailExists      = errors.New("An account already exists with this email.")
	ErrWeakPassword     = errors.New("Password should be at least 6 characters.")
	ErrTooManyAttempts  = errors.New("Too many attempts. Please try again later.")
	ErrPopupClosed      = errors.New("Login popup was closed. Please try again.")
	ErrPopupCancelled   = errors.New("Login was cancelled.")
	ErrPopupBlocked     = errors.New("Popup was blocked by browser. Please allow popups.")
	ErrOtherCredential  = errors.New("An account already exists with this email using a different sign-in method.")
	ErrNetwork          = errors.New("Network error. Please check your internet connection.")
	ErrProviderRejected = errors.New("Failed to sign in. Please try again.")
)

// provider codes, in both the SDK form and the REST form
var codeErrors = map[string]error{
	"auth/wrong-password":                           ErrWrongPassword,
	"auth/invalid-credential":                       ErrWrongPassword,
	"INVALID_PASSWORD":                              ErrWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":                     ErrWrongPassword,
	"auth/user-not-found":                           ErrUserNotFound,
	"EMAIL_NOT_FOUND":                               ErrUserNotFound,
	"auth/email-already-in-use":                     ErrEmailExists,
	"EMAIL_EXISTS":                                  ErrEmailExists,
	"auth/weak-password":                            ErrWeakPassword,
	"WEAK_PASSWORD":                                 ErrWeakPassword,
	"auth/too-many-requests":                        ErrTooManyAttempts,
	"TOO_MANY_ATTEMPTS_TRY_LATER":                   ErrTooManyAttempts,
	"auth/popup-closed-by-user":                     ErrPopupClosed,
	"auth/cancelled-popup-request":                  ErrPopupCancelled,
	"auth/popup-blocked":                            ErrPopupBlocked,
	"auth/account-exists-with-different-credential": ErrOtherCredential,
	"auth/network-request-failed":                   ErrNetwork,
}

// MapCode turns a provider error code into a user-facing error. The REST API
// sometimes appends detail after a colon ("WEAK_PASSWORD : ...").
func MapCode(code string) error {
	code = strings.TrimSpace(code)
	if err, ok := codeErrors[code]; ok {
		return err
	}
	if i := strings.Index(code, " :"); i > 0 {
		if err, ok := codeErrors[strings.TrimSpace(code[:i])]; ok {
			return err
		}
	}
	return fmt.Errorf("%w (%s)", ErrProviderRejected, code)
}

// Account is a signed-in provider account.
type Account struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// Lifetime is how long IDToken stays valid, from the provider's expiresIn
// (seconds, as a string). Zero when the provider did not say.
func (a Account) Lifetime() time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(a.ExpiresIn))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Account, error) {
	return c.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*Account, error) {
	acc, err := c.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	if displayName == "" {
		return acc, nil
	}
	if _, err := c.call(ctx, "accounts:update", map[string]any{
		"idToken":     acc.IDToken,
		"displayName": displayName,
	}); err != nil {
		// la cuenta ya existe; el nombre se puede corregir desde el perfil
		log.Warn().Err(err).Str("email", email).Msg("identity: failed to set display name")
		return acc, nil
	}
	acc.DisplayName = displayName
	return acc, nil
}

func (c *Client) call(ctx context.Context, method string, body map[string]any) (*Account, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("identity: encode: %w", err)
	}
	target := c.baseURL + "/" + method + "?" + url.Values{"key": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Msg("identity: request failed")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil {
			return nil, fmt.Errorf("%w (status %d)", ErrProviderRejected, resp.StatusCode)
		}
		log.Info().Str("method", method).Str("code", failure.Error.Message).Msg("identity: provider rejected request")
		return nil, MapCode(failure.Error.Message)
	}

	var acc Account
	if err := json.NewDecoder(resp.Body).Decode(&acc); err != nil {
		return nil, fmt.Errorf("identity: decode: %w", err)
	}
	return &acc, nil
}
