package moltin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aretw0/shopbot/internal/logging"
	"github.com/aretw0/shopbot/pkg/domain"
)

// DefaultTokenWindow is how long a token is reused before it is refreshed.
// Backend tokens live for an hour; one minute of slack covers clock skew.
const DefaultTokenWindow = 59 * time.Minute

// TokenProvider implements ports.TokenSource with the client_credentials grant.
// It owns one cached credential and refreshes it synchronously when it goes stale.
type TokenProvider struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	window       time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu    sync.Mutex
	cred  domain.Credential
	group singleflight.Group
}

// TokenOption configures the TokenProvider.
type TokenOption func(*TokenProvider)

// WithTokenURL points the provider at another host.
func WithTokenURL(base string) TokenOption {
	return func(p *TokenProvider) {
		p.baseURL = base
	}
}

// WithTokenHTTPClient replaces the underlying http.Client.
func WithTokenHTTPClient(hc *http.Client) TokenOption {
	return func(p *TokenProvider) {
		if hc != nil {
			p.httpClient = hc
		}
	}
}

// WithWindow overrides DefaultTokenWindow.
func WithWindow(d time.Duration) TokenOption {
	return func(p *TokenProvider) {
		if d > 0 {
			p.window = d
		}
	}
}

// WithTokenClock overrides time.Now (tests).
func WithTokenClock(now func() time.Time) TokenOption {
	return func(p *TokenProvider) {
		p.now = now
	}
}

// WithTokenLogger sets the structured logger.
func WithTokenLogger(logger *slog.Logger) TokenOption {
	return func(p *TokenProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewTokenProvider creates a provider for the given API key pair.
func NewTokenProvider(clientID, clientSecret string, opts ...TokenOption) *TokenProvider {
	p := &TokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		window:       DefaultTokenWindow,
		now:          time.Now,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token returns a credential younger than the freshness window.
// Concurrent callers that find the cache stale share one refresh.
func (p *TokenProvider) Token(ctx context.Context) (domain.Credential, error) {
	if cred, ok := p.current(); ok {
		return cred, nil
	}

	// The refresh is shared, so it must outlive the caller that started it.
	ch := p.group.DoChan("token", func() (any, error) {
		if cred, ok := p.current(); ok {
			return cred, nil
		}
		fetchCtx, cancel := detach(ctx, p.httpClient.Timeout)
		defer cancel()
		cred, err := p.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cred = cred
		p.mu.Unlock()
		p.logger.Debug("commerce token refreshed", "expires_at", cred.ExpiresAt)
		return cred, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return domain.Credential{}, &domain.AuthError{Err: ctx.Err()}
	}
	if res.Err != nil {
		var authErr *domain.AuthError
		if errors.As(res.Err, &authErr) {
			return domain.Credential{}, res.Err
		}
		return domain.Credential{}, &domain.AuthError{Err: res.Err}
	}
	return res.Val.(domain.Credential), nil
}

// Invalidate drops the cached credential so the next Token call refreshes.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cred = domain.Credential{}
}

func (p *TokenProvider) current() (domain.Credential, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cred.Fresh(p.now(), p.window) {
		return p.cred, true
	}
	return domain.Credential{}, false
}

func (p *TokenProvider) fetch(ctx context.Context) (domain.Credential, error) {
	data := url.Values{
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"grant_type":    {"client_credentials"},
	}
	// Secret-less keys are implicit grants.
	if p.clientSecret == "" {
		data.Del("client_secret")
		data.Set("grant_type", "implicit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/oauth/access_token", strings.NewReader(data.Encode()))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	issued := p.now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus("access token", resp); err != nil {
		return domain.Credential{}, err
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return domain.Credential{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return domain.Credential{}, errors.New("token response has no access_token")
	}

	cred := domain.Credential{Token: tokenResp.AccessToken, IssuedAt: issued}
	switch {
	case tokenResp.ExpiresIn > 0:
		cred.ExpiresAt = issued.Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	case tokenResp.Expires > 0:
		cred.ExpiresAt = time.Unix(tokenResp.Expires, 0)
	}
	return cred, nil
}
