// Package credentials supplies bearer credentials to the fetch layer.
// Token persistence is delegated to the durable key-value store so every
// fresh invocation sees the same session; concurrent refreshes collapse
// into one upstream exchange via singleflight.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/salesboard/internal/adapters/kvstore"
)

// Key under which the current token is persisted.
const tokenKey = "credentials:token"

// Default validity skew subtracted from the token expiry.
const defaultExpirySkew = 30 * time.Second

// Token is a bearer credential with its expiry.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Provider is what the fetch layer consumes.
type Provider interface {
	// IsAuthenticated reports whether a session exists at all.
	IsAuthenticated(ctx context.Context) bool

	// BearerToken returns a currently valid token, refreshing
	// transparently. Returns ErrNotAuthenticated when no session exists.
	BearerToken(ctx context.Context) (string, error)
}

// TokenSource exchanges a session for a fresh token. The OAuth plumbing
// behind it is out of scope here.
type TokenSource interface {
	Refresh(ctx context.Context) (Token, error)
}

// Store implements Provider on the KV abstraction.
type Store struct {
	kv     kvstore.Store
	source TokenSource
	group  singleflight.Group
	clock  func() time.Time
	skew   time.Duration
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithStoreClock injects a clock for deterministic expiry tests.
func WithStoreClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithExpirySkew treats tokens expiring within skew as already expired.
func WithExpirySkew(skew time.Duration) Option {
	return func(s *Store) {
		if skew >= 0 {
			s.skew = skew
		}
	}
}

// NewStore creates a credential store. source may be nil, in which case
// only already-persisted tokens are served.
func NewStore(kv kvstore.Store, source TokenSource, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		source: source,
		clock:  time.Now,
		skew:   defaultExpirySkew,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsAuthenticated reports whether a session exists: either a persisted
// token or a refresh source.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	if s.source != nil {
		return true
	}
	_, ok, err := s.kv.Get(ctx, tokenKey)
	return err == nil && ok
}

// BearerToken returns a valid bearer token, refreshing if needed.
func (s *Store) BearerToken(ctx context.Context) (string, error) {
	if tok, ok := s.load(ctx); ok && s.valid(tok) {
		return tok.AccessToken, nil
	}
	if s.source == nil {
		return "", ErrNotAuthenticated
	}

	// Collapse concurrent refreshes into a single upstream exchange.
	v, err, _ := s.group.Do(tokenKey, func() (interface{}, error) {
		if tok, ok := s.load(ctx); ok && s.valid(tok) {
			return tok, nil
		}
		tok, err := s.source.Refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
		if err := s.persist(ctx, tok); err != nil {
			return nil, err
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(Token).AccessToken, nil
}

func (s *Store) valid(tok Token) bool {
	return tok.AccessToken != "" && s.clock().Add(s.skew).Before(tok.ExpiresAt)
}

func (s *Store) load(ctx context.Context) (Token, bool) {
	raw, ok, err := s.kv.Get(ctx, tokenKey)
	if err != nil || !ok {
		return Token{}, false
	}
	var tok Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return Token{}, false
	}
	return tok, true
}

func (s *Store) persist(ctx context.Context, tok Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := s.kv.Set(ctx, tokenKey, raw, 0); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Static is a TokenSource serving a fixed, long-lived API token. Used
// when the deployment provisions a token out of band instead of OAuth.
type Static string

// Refresh returns the fixed token with a rolling one-year expiry.
func (s Static) Refresh(_ context.Context) (Token, error) {
	if s == "" {
		return Token{}, ErrNotAuthenticated
	}
	return Token{
		AccessToken: string(s),
		ExpiresAt:   time.Now().Add(365 * 24 * time.Hour),
	}, nil
}
