package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/sony/gobreaker"
)

const signInPath = "/identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// IdentityProvider authenticates against Firebase Authentication. Accounts
// are managed through the Admin SDK; password sign-in goes through the
// Identity Toolkit REST API behind a circuit breaker.
type IdentityProvider struct {
	auth.StateListeners
	client     *fbauth.Client
	httpClient *http.Client
	signInURL  string
	cb         *gobreaker.CircuitBreaker
	now        func() time.Time
}

// NewIdentityProvider targets the Auth emulator when
// FIREBASE_AUTH_EMULATOR_HOST is set.
func NewIdentityProvider(client *fbauth.Client, apiKey string) *IdentityProvider {
	base := "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	if host := os.Getenv("FIREBASE_AUTH_EMULATOR_HOST"); host != "" {
		base = "http://" + host + signInPath
	}
	return newIdentityProvider(client, base+"?key="+apiKey, &http.Client{Timeout: 10 * time.Second})
}

func newIdentityProvider(client *fbauth.Client, signInURL string, httpClient *http.Client) *IdentityProvider {
	settings := gobreaker.Settings{
		Name:        "firebase-auth",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		// Rejected credentials are answers, not outages.
		IsSuccessful: func(err error) bool {
			return err == nil || !apperr.Is(err, apperr.KindUpstreamUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &IdentityProvider{
		client:     client,
		httpClient: httpClient,
		signInURL:  signInURL,
		cb:         gobreaker.NewCircuitBreaker(settings),
		now:        time.Now,
	}
}

var _ auth.IdentityProvider = (*IdentityProvider)(nil)

// SignUp implements auth.IdentityProvider.
func (p *IdentityProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validator.IsValidEmail(email) {
		return "", auth.ErrInvalidEmail
	}
	if len(password) < auth.MinPasswordLength {
		return "", auth.ErrWeakPassword
	}

	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", auth.ErrEmailInUse
		}
		return "", apperr.Unavailable(err, "failed to create account")
	}
	return record.UID, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// SignIn implements auth.IdentityProvider.
func (p *IdentityProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.signInWithPassword(ctx, email, password)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", apperr.Unavailable(err, "identity provider unavailable")
		}
		return "", err
	}

	subjectID := result.(string)
	p.Notify(auth.AuthState{SubjectID: subjectID, Event: auth.StateSignedIn, At: p.now()})
	return subjectID, nil
}

func (p *IdentityProvider) signInWithPassword(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return "", fmt.Errorf("failed to encode sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.signInURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", apperr.Unavailable(err, "sign-in request failed")
	}
	defer resp.Body.Close()

	var out signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Unavailable(err, fmt.Sprintf("unreadable sign-in response (status %d)", resp.StatusCode))
	}

	if resp.StatusCode == http.StatusOK && out.LocalID != "" {
		return out.LocalID, nil
	}
	if out.Error == nil {
		return "", apperr.Unavailable(fmt.Errorf("status %d", resp.StatusCode), "sign-in failed")
	}
	return "", signInError(out.Error.Message)
}

// signInError maps Identity Toolkit error messages such as
// "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account ..." to domain errors.
func signInError(message string) error {
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return auth.ErrInvalidCredentials
	case "INVALID_EMAIL":
		return auth.ErrInvalidEmail
	case "MISSING_PASSWORD":
		return auth.ErrInvalidCredentials
	}
	return apperr.Unavailable(errors.New(message), "sign-in failed")
}

// SignOut implements auth.IdentityProvider by revoking the subject's
// refresh tokens.
func (p *IdentityProvider) SignOut(ctx context.Context, subjectID string) error {
	if err := p.client.RevokeRefreshTokens(ctx, subjectID); err != nil {
		return apperr.Unavailable(err, "failed to revoke refresh tokens")
	}
	p.Notify(auth.AuthState{SubjectID: subjectID, Event: auth.StateSignedOut, At: p.now()})
	return nil
}
