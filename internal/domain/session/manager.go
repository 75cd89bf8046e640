// Package session owns the bearer-token lifecycle for a storefront client:
// seeding from persisted storage, remote validation, login/register/logout
// and the identity derived from the token's claims.
package session

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"comicstore-go/internal/domain/eventbus"
	"comicstore-go/internal/domain/token"
	perrors "comicstore-go/internal/platform/errors"
	"comicstore-go/internal/platform/storage"
)

// Messages surfaced to users. Raw transport errors are never shown.
const (
	msgConnectionFailed = "could not reach the authentication service"
	msgUnreadableToken  = "received an unreadable session token"
)

// Logger is the logging behaviour required by the manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// AuthClient is the remote authentication collaborator. Rejections carry
// KindAuth typed errors with the server message; network problems carry
// KindTransport.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
	Validate(ctx context.Context, token string) error
}

// Identity is the display identity decoded from the token claims.
type Identity struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// State is a read-only snapshot of the session. Identity is non-nil only
// when a token is present and its claims decoded successfully.
type State struct {
	Token     string    `json:"-"`
	Identity  *Identity `json:"identity"`
	Loading   bool      `json:"loading"`
	LastError string    `json:"last_error,omitempty"`
}

// Authenticated reports whether the session carries a decoded identity.
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// Options encapsulates the dependencies required to construct a Manager.
type Options struct {
	Store  storage.Store
	Auth   AuthClient
	Logger Logger
	Bus    *eventbus.Bus
}

// Manager is the single owner of session state. Consumers read snapshots;
// mutation happens only through Initialize, Login, Register and Logout.
type Manager struct {
	store  storage.Store
	auth   AuthClient
	logger Logger
	bus    *eventbus.Bus

	mu         sync.Mutex
	state      State
	generation uint64
	validated  string
	flight     singleflight.Group
}

// NewManager wires a Manager using the supplied options.
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, perrors.New(perrors.KindAuth, "session.new", "session manager requires a store")
	}
	if opts.Auth == nil {
		return nil, perrors.New(perrors.KindAuth, "session.new", "session manager requires an auth client")
	}
	if opts.Logger == nil {
		return nil, perrors.New(perrors.KindAuth, "session.new", "session manager requires a logger")
	}
	return &Manager{
		store:  opts.Store,
		auth:   opts.Auth,
		logger: opts.Logger,
		bus:    opts.Bus,
	}, nil
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	snap := m.state
	if m.state.Identity != nil {
		identity := *m.state.Identity
		snap.Identity = &identity
	}
	return snap
}

func (m *Manager) publish(snap State) {
	m.bus.Publish(eventbus.TopicSessionChanged, snap)
}

// Initialize seeds the session from persisted storage and, when a token is
// found, runs the single validation pass against the remote service. A
// missing or unreadable token yields an anonymous session; validation
// failures are recovered silently (no user-visible error).
func (m *Manager) Initialize(ctx context.Context) error {
	raw, err := m.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			m.logger.Warn("session: failed to read persisted token: %v", err)
		}
		m.setAnonymous()
		return nil
	}

	var tok string
	if err := storage.Decode(raw, &tok); err != nil || tok == "" {
		m.logger.Warn("session: persisted token blob is unreadable, discarding")
		m.forgetToken(ctx)
		m.setAnonymous()
		return nil
	}

	m.mu.Lock()
	m.state = State{Token: tok, Loading: true}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	m.validateToken(ctx, tok)
	return nil
}

// validateToken performs at most one remote validation per token value.
// Concurrent callers for the same token share a single request.
func (m *Manager) validateToken(ctx context.Context, tok string) {
	m.mu.Lock()
	if m.validated == tok {
		// Already validated once; rebuild identity from the pure decode.
		if claims, derr := token.Decode(tok); derr == nil {
			m.state = State{
				Token:    tok,
				Identity: &Identity{Subject: claims.Subject, Role: claims.Role},
			}
		} else {
			m.state = State{}
		}
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.publish(snap)
		return
	}
	m.mu.Unlock()

	_, err, _ := m.flight.Do(tok, func() (any, error) {
		return nil, m.auth.Validate(ctx, tok)
	})

	m.mu.Lock()
	if m.state.Token != tok {
		// Token was replaced while validating; that pass owns the state now.
		m.mu.Unlock()
		return
	}
	m.validated = tok

	if err != nil {
		if perrors.IsKind(err, perrors.KindAuth) {
			m.logger.Info("session: persisted token rejected by server")
		} else {
			m.logger.Warn("session: token validation unreachable: %v", err)
		}
		m.state = State{}
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.forgetToken(ctx)
		m.publish(snap)
		return
	}

	claims, derr := token.Decode(tok)
	if derr != nil {
		// Decode failure is authoritative: even a server-accepted token
		// cannot establish identity without a readable subject.
		m.logger.Warn("session: server-accepted token failed to decode, discarding")
		m.state = State{}
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.forgetToken(ctx)
		m.publish(snap)
		return
	}

	m.state = State{
		Token:    tok,
		Identity: &Identity{Subject: claims.Subject, Role: claims.Role},
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.logger.Info("session: authenticated as %s (%s)", claims.Subject, claims.Role)
	m.publish(snap)
}

// Login submits credentials and reports success. On failure the session
// stays anonymous and LastError carries the server message (or a generic
// connection message for transport failures).
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	gen := m.beginSubmit()
	tok, err := m.auth.Login(ctx, email, password)
	return m.settleCredentialCall(ctx, gen, tok, err, "login failed")
}

// Register creates an account and establishes the session exactly like
// Login, but the server error is also propagated to the caller.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	gen := m.beginSubmit()
	tok, err := m.auth.Register(ctx, name, email, password)
	if m.settleCredentialCall(ctx, gen, tok, err, "registration failed") {
		return nil
	}
	if err != nil {
		return err
	}
	return perrors.New(perrors.KindAuth, "session.register", "registration superseded")
}

// beginSubmit starts a new credential call generation. Responses from older
// generations are discarded, so a slow earlier response can never overwrite
// the outcome of a newer call.
func (m *Manager) beginSubmit() uint64 {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.state.Loading = true
	m.state.LastError = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
	return gen
}

func (m *Manager) settleCredentialCall(ctx context.Context, gen uint64, tok string, err error, fallback string) bool {
	if err != nil {
		message := msgConnectionFailed
		if perrors.IsKind(err, perrors.KindAuth) {
			message = perrors.MessageOf(err, fallback)
		}
		m.settleFailure(gen, message)
		return false
	}

	claims, derr := token.Decode(tok)
	if derr != nil {
		m.logger.Warn("session: issued token failed to decode")
		m.settleFailure(gen, msgUnreadableToken)
		return false
	}

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return false
	}
	m.validated = tok
	m.state = State{
		Token:    tok,
		Identity: &Identity{Subject: claims.Subject, Role: claims.Role},
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.persistToken(ctx, tok)
	m.logger.Info("session: signed in as %s (%s)", claims.Subject, claims.Role)
	m.publish(snap)
	return true
}

func (m *Manager) settleFailure(gen uint64, message string) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.state.Loading = false
	m.state.LastError = message
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

// Logout clears the session synchronously. Bumping the generation discards
// any in-flight login or register response.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.generation++
	m.state = State{}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.forgetToken(ctx)
	m.logger.Info("session: signed out")
	m.publish(snap)
}

func (m *Manager) persistToken(ctx context.Context, tok string) {
	raw, err := storage.Encode(tok)
	if err != nil {
		m.logger.Warn("session: failed to encode token for storage: %v", err)
		return
	}
	if err := m.store.Set(ctx, storage.KeyAuthToken, raw); err != nil {
		m.logger.Warn("session: failed to persist token: %v", err)
	}
}

func (m *Manager) forgetToken(ctx context.Context) {
	if err := m.store.Delete(ctx, storage.KeyAuthToken); err != nil {
		m.logger.Warn("session: failed to remove persisted token: %v", err)
	}
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.state = State{}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}
