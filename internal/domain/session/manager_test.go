package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	perrors "comicstore-go/internal/platform/errors"
	"comicstore-go/internal/platform/storage"
	platformtesting "comicstore-go/internal/platform/testing"
)

type fakeAuth struct {
	loginFn       func(ctx context.Context, email, password string) (string, error)
	registerFn    func(ctx context.Context, name, email, password string) (string, error)
	validateFn    func(ctx context.Context, token string) error
	validateCalls atomic.Int32
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginFn == nil {
		return "", perrors.New(perrors.KindAuth, "auth.login", "not configured")
	}
	return f.loginFn(ctx, email, password)
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (string, error) {
	if f.registerFn == nil {
		return "", perrors.New(perrors.KindAuth, "auth.register", "not configured")
	}
	return f.registerFn(ctx, name, email, password)
}

func (f *fakeAuth) Validate(ctx context.Context, tok string) error {
	f.validateCalls.Add(1)
	if f.validateFn == nil {
		return nil
	}
	return f.validateFn(ctx, tok)
}

func signToken(t *testing.T, subject, role string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func newTestManager(t *testing.T, auth *fakeAuth) (*Manager, storage.Store) {
	t.Helper()
	store := storage.NewMemory()
	mgr, err := NewManager(Options{
		Store:  store,
		Auth:   auth,
		Logger: platformtesting.SetupTestLogger(t),
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr, store
}

func persistToken(t *testing.T, store storage.Store, tok string) {
	t.Helper()
	raw, err := storage.Encode(tok)
	if err != nil {
		t.Fatalf("encode token: %v", err)
	}
	if err := store.Set(context.Background(), storage.KeyAuthToken, raw); err != nil {
		t.Fatalf("seed token: %v", err)
	}
}

func TestInitializeWithoutTokenIsAnonymous(t *testing.T) {
	auth := &fakeAuth{}
	mgr, _ := newTestManager(t, auth)

	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	snap := mgr.Snapshot()
	if snap.Authenticated() || snap.Loading || snap.LastError != "" {
		t.Fatalf("expected clean anonymous state, got %+v", snap)
	}
	if auth.validateCalls.Load() != 0 {
		t.Fatal("validate must not be called without a token")
	}
}

func TestInitializeValidatesPersistedToken(t *testing.T) {
	tok := signToken(t, "a@b.com", "ADMIN")
	auth := &fakeAuth{}
	mgr, store := newTestManager(t, auth)
	persistToken(t, store, tok)

	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	snap := mgr.Snapshot()
	if !snap.Authenticated() {
		t.Fatalf("expected authenticated session, got %+v", snap)
	}
	if snap.Identity.Subject != "a@b.com" || snap.Identity.Role != "ADMIN" {
		t.Fatalf("unexpected identity: %+v", snap.Identity)
	}
	if snap.Loading {
		t.Fatal("loading must settle after validation")
	}
	if auth.validateCalls.Load() != 1 {
		t.Fatalf("expected exactly one validation call, got %d", auth.validateCalls.Load())
	}

	// A second pass over the same token must not revalidate.
	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize returned error: %v", err)
	}
	if auth.validateCalls.Load() != 1 {
		t.Fatalf("token revalidated, calls = %d", auth.validateCalls.Load())
	}
}

func TestInitializeDiscardsRejectedToken(t *testing.T) {
	tok := signToken(t, "a@b.com", "USER")
	auth := &fakeAuth{
		validateFn: func(context.Context, string) error {
			return perrors.New(perrors.KindAuth, "auth.validate", "token rejected")
		},
	}
	mgr, store := newTestManager(t, auth)
	persistToken(t, store, tok)

	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	snap := mgr.Snapshot()
	if snap.Authenticated() || snap.Loading {
		t.Fatalf("expected anonymous state, got %+v", snap)
	}
	if snap.LastError != "" {
		t.Fatalf("silent revalidation must not surface errors, got %q", snap.LastError)
	}
	if _, err := store.Get(context.Background(), storage.KeyAuthToken); err != storage.ErrKeyNotFound {
		t.Fatal("rejected token must be removed from storage")
	}
}

func TestInitializeTransportFailureIsSilent(t *testing.T) {
	tok := signToken(t, "a@b.com", "USER")
	auth := &fakeAuth{
		validateFn: func(context.Context, string) error {
			return perrors.New(perrors.KindTransport, "auth.validate", "connection refused")
		},
	}
	mgr, store := newTestManager(t, auth)
	persistToken(t, store, tok)

	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	snap := mgr.Snapshot()
	if snap.Authenticated() || snap.LastError != "" {
		t.Fatalf("expected silent anonymous fallback, got %+v", snap)
	}
}

func TestInitializeDiscardsUndecodableAcceptedToken(t *testing.T) {
	auth := &fakeAuth{} // server accepts everything
	mgr, store := newTestManager(t, auth)
	persistToken(t, store, "opaque-but-not-a-jwt")

	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	snap := mgr.Snapshot()
	if snap.Authenticated() {
		t.Fatal("decode failure must be authoritative even when the server accepts the token")
	}
	if _, err := store.Get(context.Background(), storage.KeyAuthToken); err != storage.ErrKeyNotFound {
		t.Fatal("undecodable token must be removed from storage")
	}
}

func TestLoginSuccessEstablishesSession(t *testing.T) {
	tok := signToken(t, "a@b.com", "ADMIN")
	auth := &fakeAuth{
		loginFn: func(_ context.Context, email, password string) (string, error) {
			if email != "a@b.com" || password != "secret" {
				return "", perrors.New(perrors.KindAuth, "auth.login", "invalid credentials")
			}
			return tok, nil
		},
	}
	mgr, store := newTestManager(t, auth)

	if !mgr.Login(context.Background(), "a@b.com", "secret") {
		t.Fatal("expected login to succeed")
	}

	snap := mgr.Snapshot()
	if !snap.Authenticated() {
		t.Fatalf("expected authenticated session, got %+v", snap)
	}
	if snap.Identity.Subject != "a@b.com" || snap.Identity.Role != "ADMIN" {
		t.Fatalf("unexpected identity: %+v", snap.Identity)
	}
	if snap.Loading || snap.LastError != "" {
		t.Fatalf("expected settled clean state, got %+v", snap)
	}

	raw, err := store.Get(context.Background(), storage.KeyAuthToken)
	if err != nil {
		t.Fatalf("token not persisted: %v", err)
	}
	var persisted string
	if err := storage.Decode(raw, &persisted); err != nil || persisted != tok {
		t.Fatalf("persisted token mismatch: %q (%v)", persisted, err)
	}
}

func TestLoginRejectedKeepsAnonymousWithServerMessage(t *testing.T) {
	auth := &fakeAuth{
		loginFn: func(context.Context, string, string) (string, error) {
			return "", perrors.New(perrors.KindAuth, "auth.login", "invalid credentials")
		},
	}
	mgr, _ := newTestManager(t, auth)

	if mgr.Login(context.Background(), "a@b.com", "wrong") {
		t.Fatal("expected login to fail")
	}

	snap := mgr.Snapshot()
	if snap.Authenticated() {
		t.Fatal("failed login must not authenticate")
	}
	if snap.LastError != "invalid credentials" {
		t.Fatalf("expected server message, got %q", snap.LastError)
	}
	if snap.Loading {
		t.Fatal("loading must settle after a failed login")
	}
}

func TestLoginTransportFailureUsesGenericMessage(t *testing.T) {
	auth := &fakeAuth{
		loginFn: func(context.Context, string, string) (string, error) {
			return "", perrors.New(perrors.KindTransport, "auth.login", "dial tcp: refused")
		},
	}
	mgr, _ := newTestManager(t, auth)

	if mgr.Login(context.Background(), "a@b.com", "secret") {
		t.Fatal("expected login to fail")
	}

	snap := mgr.Snapshot()
	if snap.LastError != msgConnectionFailed {
		t.Fatalf("raw transport error leaked to the user: %q", snap.LastError)
	}
}

func TestRegisterPropagatesServerError(t *testing.T) {
	auth := &fakeAuth{
		registerFn: func(context.Context, string, string, string) (string, error) {
			return "", perrors.New(perrors.KindAuth, "auth.register", "email already taken")
		},
	}
	mgr, _ := newTestManager(t, auth)

	err := mgr.Register(context.Background(), "Ana", "ana@shop.cl", "secret")
	if err == nil {
		t.Fatal("expected register to fail")
	}
	if got := perrors.MessageOf(err, ""); got != "email already taken" {
		t.Fatalf("expected propagated server error, got %q", got)
	}
	if snap := mgr.Snapshot(); snap.LastError != "email already taken" {
		t.Fatalf("server error must also be stored, got %q", snap.LastError)
	}
}

func TestRegisterSuccessEstablishesSession(t *testing.T) {
	tok := signToken(t, "ana@shop.cl", "USER")
	auth := &fakeAuth{
		registerFn: func(context.Context, string, string, string) (string, error) {
			return tok, nil
		},
	}
	mgr, _ := newTestManager(t, auth)

	if err := mgr.Register(context.Background(), "Ana", "ana@shop.cl", "secret"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	snap := mgr.Snapshot()
	if !snap.Authenticated() || snap.Identity.Subject != "ana@shop.cl" {
		t.Fatalf("unexpected state after register: %+v", snap)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	tok := signToken(t, "a@b.com", "ADMIN")
	auth := &fakeAuth{
		loginFn: func(context.Context, string, string) (string, error) { return tok, nil },
	}
	mgr, store := newTestManager(t, auth)

	if !mgr.Login(context.Background(), "a@b.com", "secret") {
		t.Fatal("login should succeed")
	}
	mgr.Logout(context.Background())

	snap := mgr.Snapshot()
	if snap.Authenticated() || snap.Token != "" || snap.LastError != "" || snap.Loading {
		t.Fatalf("expected empty state after logout, got %+v", snap)
	}
	if _, err := store.Get(context.Background(), storage.KeyAuthToken); err != storage.ErrKeyNotFound {
		t.Fatal("logout must remove the persisted token")
	}
}

func TestStaleLoginResponseIsDiscarded(t *testing.T) {
	tok := signToken(t, "slow@shop.cl", "USER")
	release := make(chan struct{})
	auth := &fakeAuth{
		loginFn: func(context.Context, string, string) (string, error) {
			<-release
			return tok, nil
		},
	}
	mgr, _ := newTestManager(t, auth)

	done := make(chan bool, 1)
	go func() {
		done <- mgr.Login(context.Background(), "slow@shop.cl", "secret")
	}()

	// Wait until the call is submitting, then supersede it with a logout.
	deadline := time.After(2 * time.Second)
	for !mgr.Snapshot().Loading {
		select {
		case <-deadline:
			t.Fatal("login never entered submitting state")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	mgr.Logout(context.Background())
	close(release)

	if ok := <-done; ok {
		t.Fatal("superseded login must report failure")
	}
	if snap := mgr.Snapshot(); snap.Authenticated() {
		t.Fatalf("stale response overwrote newer state: %+v", snap)
	}
}

func TestDecodeFailureAfterAcceptedLogin(t *testing.T) {
	auth := &fakeAuth{
		loginFn: func(context.Context, string, string) (string, error) {
			return "definitely-not-a-jwt", nil
		},
	}
	mgr, _ := newTestManager(t, auth)

	if mgr.Login(context.Background(), "a@b.com", "secret") {
		t.Fatal("login with an undecodable token must fail")
	}
	snap := mgr.Snapshot()
	if snap.Authenticated() {
		t.Fatal("undecodable token must not establish identity")
	}
	if snap.LastError == "" {
		t.Fatal("expected a user-visible error")
	}
}
