package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrInvalidCredentials means the authenticator rejected the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrServiceUnavailable means the authenticator could not be reached.
	ErrServiceUnavailable = errors.New("authentication service unavailable")
)

// Principal is a verified identity.
type Principal struct {
	Email         string
	Authenticated bool
}

// Verifier checks credentials against the external authenticator API.
// The API returns ["Verified","True"] on success.
type Verifier struct {
	url  string
	http *http.Client
}

// NewVerifier creates a credential verifier for the given endpoint.
func NewVerifier(url string) *Verifier {
	return &Verifier{
		url: url,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Verify submits email and password to the authenticator. A transport
// failure yields ErrServiceUnavailable; every other unsuccessful outcome,
// including unexpected response shapes, yields ErrInvalidCredentials.
// The password is never logged.
func (v *Verifier) Verify(email, password string) (*Principal, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := v.http.Post(v.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		slog.Error("authentication service error", "error", err)
		return nil, ErrServiceUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("authentication API error", "status", resp.StatusCode, "email", email)
		return nil, ErrInvalidCredentials
	}

	var result []string
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil &&
		len(result) >= 2 && result[0] == "Verified" && result[1] == "True" {
		slog.Info("user authenticated", "email", email)
		return &Principal{Email: email, Authenticated: true}, nil
	}

	slog.Warn("authentication failed", "email", email)
	return nil, ErrInvalidCredentials
}
