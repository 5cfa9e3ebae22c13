package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"banhangso/client/internal/api"
	"banhangso/client/internal/domain"
	"banhangso/client/internal/notify"
	"banhangso/client/internal/querycache"
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

// Store is the session state machine: Anonymous (no token) or
// Authenticated (token present, profile loading or loaded). It is
// constructed once at startup and passed down explicitly; it implements
// api.TokenSource so the HTTP client can attach the bearer token.
type Store struct {
	mu     sync.RWMutex
	state  State
	token  string
	expiry time.Time
	user   domain.User
	org    domain.Organization

	durable   TokenStore
	ephemeral TokenStore
	cache     *querycache.Cache
	notifier  notify.Notifier
	log       *zap.Logger
	client    *api.Client
}

type Options struct {
	Durable   TokenStore
	Ephemeral TokenStore
	Cache     *querycache.Cache
	Notifier  notify.Notifier
	Logger    *zap.Logger
}

func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Ephemeral == nil {
		opts.Ephemeral = NewMemStore()
	}
	return &Store{
		durable:   opts.Durable,
		ephemeral: opts.Ephemeral,
		cache:     opts.Cache,
		notifier:  opts.Notifier,
		log:       opts.Logger,
	}
}

// SetClient binds the HTTP client used for auth calls. The client is
// constructed after the store because it takes the store as its token
// source.
func (s *Store) SetClient(client *api.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateAuthenticated && s.expired() {
		return StateAnonymous
	}
	return s.state
}

func (s *Store) Authenticated() bool { return s.State() == StateAuthenticated }

// expired must be called with the lock held.
func (s *Store) expired() bool {
	return !s.expiry.IsZero() && time.Now().After(s.expiry)
}

func (s *Store) User() domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) Organization() domain.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.org
}

// RememberedEmail returns the login-form prefill stored in the durable
// tier, if any.
func (s *Store) RememberedEmail() string {
	if s.durable == nil {
		return ""
	}
	email, err := s.durable.LoadEmail()
	if err != nil {
		s.log.Debug("load remembered email", zap.Error(err))
		return ""
	}
	return email
}

// Login transitions Anonymous -> Authenticated. The token is written to
// the chosen storage tier before in-memory state flips, so a caller
// observing Authenticated() == true can rely on the token being stored.
// Profile and organization data load in the background afterwards.
func (s *Store) Login(ctx context.Context, email, password string, remember bool) error {
	client := s.apiClient()
	if client == nil {
		return fmt.Errorf("session: no api client bound")
	}

	var raw json.RawMessage
	err := client.Do(ctx, http.MethodPost, "/auth/login", domain.LoginRequest{Email: email, Password: password}, &raw, nil)
	if err != nil {
		return err
	}
	resp, err := api.DecodeEntity[domain.LoginResponse](raw)
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("login response missing token")
	}

	target, other := TokenStore(s.ephemeral), TokenStore(s.durable)
	if remember {
		if s.durable == nil {
			// Without a durable tier the session cannot outlive the
			// process; honor the login, not the persistence.
			s.log.Warn("remember requested but no durable token store configured")
		} else {
			target, other = s.durable, s.ephemeral
		}
	}
	if err := target.SaveToken(resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if other != nil {
		if err := other.ClearToken(); err != nil {
			s.log.Warn("clear unused token tier", zap.Error(err))
		}
	}
	if remember && s.durable != nil {
		if err := s.durable.SaveEmail(email); err != nil {
			s.log.Warn("remember email", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.token = resp.Token
	s.expiry = tokenExpiry(resp.Token)
	s.user = resp.User
	s.state = StateAuthenticated
	s.mu.Unlock()

	go s.refreshProfile(context.WithoutCancel(ctx))
	return nil
}

// Restore rebuilds a session from a previously stored token. The durable
// tier wins over the ephemeral one. An expired stored token is cleared
// immediately.
func (s *Store) Restore(ctx context.Context) bool {
	for _, tier := range []TokenStore{s.durable, s.ephemeral} {
		if tier == nil {
			continue
		}
		token, err := tier.LoadToken()
		if err != nil {
			s.log.Warn("load stored token", zap.Error(err))
			continue
		}
		if token == "" {
			continue
		}
		expiry := tokenExpiry(token)
		if !expiry.IsZero() && time.Now().After(expiry) {
			if err := tier.ClearToken(); err != nil {
				s.log.Warn("clear expired token", zap.Error(err))
			}
			continue
		}

		s.mu.Lock()
		s.token = token
		s.expiry = expiry
		s.state = StateAuthenticated
		s.mu.Unlock()

		go s.refreshProfile(context.WithoutCancel(ctx))
		return true
	}
	return false
}

// Logout transitions to Anonymous: both storage tiers are cleared no
// matter which one held the token, in-memory user and organization state
// is zeroed synchronously, and the query cache is dropped (the page
// reload equivalent) so no data from this session can leak into the
// next.
func (s *Store) Logout() {
	for _, tier := range []TokenStore{s.durable, s.ephemeral} {
		if tier == nil {
			continue
		}
		if err := tier.ClearToken(); err != nil {
			s.log.Warn("clear token tier", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.user = domain.User{}
	s.org = domain.Organization{}
	s.state = StateAnonymous
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Clear()
	}
}

// Invalidate tears the session down after the backend rejected the
// token. Wired as the HTTP client's unauthorized hook so any 401 on an
// authenticated call terminates the session instead of leaving a dead
// token around.
func (s *Store) Invalidate() {
	if !s.Authenticated() {
		return
	}
	s.log.Info("session invalidated by backend 401")
	s.Logout()
	if s.notifier != nil {
		s.notifier.Error("session expired, please sign in again")
	}
}

// UpdateProfile saves the user profile and refreshes the held copy.
func (s *Store) UpdateProfile(ctx context.Context, req domain.ProfileUpdateRequest) error {
	client := s.apiClient()
	if client == nil {
		return fmt.Errorf("session: no api client bound")
	}
	var raw json.RawMessage
	if err := client.Put(ctx, "/auth/profile", req, &raw); err != nil {
		return err
	}
	user, err := api.DecodeEntity[domain.User](raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// UpdateOrganization saves the company profile and refreshes the held copy.
func (s *Store) UpdateOrganization(ctx context.Context, org domain.Organization) error {
	client := s.apiClient()
	if client == nil {
		return fmt.Errorf("session: no api client bound")
	}
	var raw json.RawMessage
	if err := client.Put(ctx, "/organization", org, &raw); err != nil {
		return err
	}
	saved, err := api.DecodeEntity[domain.Organization](raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.org = saved
	s.mu.Unlock()
	return nil
}

func (s *Store) apiClient() *api.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// refreshProfile loads the full user profile and the organization
// profile after login/restore. A 401 here reaches the client's
// unauthorized hook, which invalidates the session; other failures are
// logged and left for the next refresh.
func (s *Store) refreshProfile(ctx context.Context) {
	client := s.apiClient()
	if client == nil {
		return
	}

	var rawUser json.RawMessage
	if err := client.Get(ctx, "/auth/me", &rawUser); err != nil {
		s.log.Warn("profile fetch failed", zap.Error(err))
		return
	}
	user, err := api.DecodeEntity[domain.User](rawUser)
	if err != nil {
		s.log.Warn("profile decode failed", zap.Error(err))
		return
	}

	var rawOrg json.RawMessage
	if err := client.Get(ctx, "/organization", &rawOrg); err != nil {
		s.log.Warn("organization fetch failed", zap.Error(err))
		return
	}
	org, err := api.DecodeEntity[domain.Organization](rawOrg)
	if err != nil {
		s.log.Warn("organization decode failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	// The session may have been invalidated while these fetches were in
	// flight; never merge profile data into an anonymous session.
	if s.state == StateAuthenticated {
		s.user = user
		s.org = org
	}
	s.mu.Unlock()
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client has no signing key and only needs the expiry for proactive
// state reporting. Verification is the backend's job.
func tokenExpiry(token string) time.Time {
	claims := jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
