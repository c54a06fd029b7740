package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrInvalidSession means the identity provider rejected the session id.
var ErrInvalidSession = errors.New("invalid session")

// FederatedIdentity is the session data returned by the identity provider.
type FederatedIdentity struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

type IdentityClient interface {
	SessionData(ctx context.Context, sessionID string) (*FederatedIdentity, error)
}

// HTTPIdentityClient exchanges a session id for identity data over HTTP.
type HTTPIdentityClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPIdentityClient(endpoint string, httpClient *http.Client) *HTTPIdentityClient {
	return &HTTPIdentityClient{endpoint: endpoint, httpClient: httpClient}
}

func (c *HTTPIdentityClient) SessionData(ctx context.Context, sessionID string) (*FederatedIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, ErrInvalidSession
	}

	var ident FederatedIdentity
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ident); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	if ident.Email == "" {
		return nil, ErrInvalidSession
	}
	return &ident, nil
}
