// Package identity keeps a client's local view of who is signed in and
// keeps it in step with the provider.
//
// State moves Uninitialized -> Loading -> {Authenticated, Anonymous}. A
// SignedIn or UserUpdated notification re-enters Loading and refreshes; a
// SignedOut notification goes straight to Anonymous.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"farmconnect/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

const DefaultTimeout = 15 * time.Second

type SignupInput struct {
	Name     string
	Email    string
	Role     models.Role
	Location string
	Phone    string
}

type SignupResult struct {
	RequiresEmailConfirmation bool
	Role                      models.Role
	// ProfileIncomplete is set when the account exists but its profile
	// record could not be stored. CompleteProfile retries the insert.
	ProfileIncomplete bool
}

type Manager struct {
	provider Provider
	logger   zerolog.Logger
	timeout  time.Duration

	// refreshGate admits one Refresh at a time; losers return at once.
	refreshGate *semaphore.Weighted
	// rerun asks the gate holder for another pass. Guarded by mu.
	rerun bool

	mu             sync.RWMutex
	state          State
	settled        State
	user           *models.User
	generation     uint64
	pendingProfile *models.Profile
	unsubscribe    func()

	observersMu sync.Mutex
	observers   map[int]Observer
	nextID      int
}

type Option func(*Manager)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithTimeout bounds every provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

func NewManager(p Provider, opts ...Option) *Manager {
	m := &Manager{
		provider:    p,
		logger:      log.Logger.With().Str("component", "identity").Logger(),
		timeout:     DefaultTimeout,
		refreshGate: semaphore.NewWeighted(1),
		observers:   map[int]Observer{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to provider notifications and resolves the current
// session. Calling Start again is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.unsubscribe != nil {
		m.mu.Unlock()
		return nil
	}
	m.state = Loading
	m.unsubscribe = func() {}
	m.mu.Unlock()

	unsubscribe := m.provider.OnAuthStateChange(m.handleAuthEvent)

	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	return m.Refresh(ctx)
}

func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// CurrentUser returns the last resolved user, or nil. It never blocks on
// the provider.
func (m *Manager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Subscribe(o Observer) (unsubscribe func()) {
	m.observersMu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = o
	m.observersMu.Unlock()

	return func() {
		m.observersMu.Lock()
		delete(m.observers, id)
		m.observersMu.Unlock()
	}
}

// Refresh re-derives the local user from the provider's session and the
// profile record. A call made while another Refresh is running returns nil
// immediately without waiting for it; the running call then goes round
// once more so the turned-away request is not lost. Profile lookup failures
// are logged and leave the previous state in place.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if !m.refreshGate.TryAcquire(1) {
		m.rerun = true
		m.mu.Unlock()
		return nil
	}
	m.rerun = false
	m.mu.Unlock()

	for {
		err := m.refreshOnce(ctx)

		m.mu.Lock()
		if !m.rerun {
			m.refreshGate.Release(1)
			m.mu.Unlock()
			return err
		}
		m.rerun = false
		m.mu.Unlock()

		// the caller that asked for this pass did not wait on ctx
		ctx = context.WithoutCancel(ctx)
	}
}

func (m *Manager) refreshOnce(ctx context.Context) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	gen := m.currentGeneration()

	session, err := m.provider.GetSession(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("fetch session failed")
		m.restoreSettled(gen)
		return fmt.Errorf("fetch session: %w", err)
	}

	if session == nil {
		m.settle(gen, Anonymous, nil)
		return nil
	}

	profile, err := m.provider.GetProfile(ctx, session.UserID)
	if err != nil || profile == nil {
		if err == nil {
			err = models.ErrNotFound
		}
		m.logger.Error().Err(err).Str("user_id", session.UserID).Msg("fetch profile failed")
		m.restoreSettled(gen)
		return nil
	}

	m.settle(gen, Authenticated, composeUser(session, profile))
	return nil
}

// Login signs in and refreshes. A rejected sign-in leaves local state as it
// was.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	callCtx, cancel := m.withTimeout(ctx)
	_, err := m.provider.SignInWithPassword(callCtx, email, password)
	cancel()
	if err != nil {
		return err
	}

	if err := m.Refresh(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("refresh after login failed")
	}
	return nil
}

// Signup creates the account and then its profile record. When the profile
// insert fails the account is kept, the failure is reported through
// SignupResult.ProfileIncomplete and EventProfileIncomplete, and
// CompleteProfile can retry it.
func (m *Manager) Signup(ctx context.Context, in SignupInput, password string) (SignupResult, error) {
	role := in.Role
	if role == "" {
		role = models.RoleBuyer
	}
	if !role.Valid() {
		return SignupResult{}, models.Validationf("unknown role %q", role)
	}

	callCtx, cancel := m.withTimeout(ctx)
	res, err := m.provider.SignUp(callCtx, in.Email, password, models.AccountMetadata{Name: in.Name, Role: role})
	cancel()
	if err != nil {
		return SignupResult{}, err
	}

	out := SignupResult{RequiresEmailConfirmation: res.RequiresEmailConfirmation, Role: role}
	profile := models.Profile{
		ID:       res.UserID,
		Name:     in.Name,
		Role:     role,
		Location: in.Location,
		Phone:    in.Phone,
	}

	callCtx, cancel = m.withTimeout(ctx)
	err = m.provider.InsertProfile(callCtx, profile)
	cancel()
	if err != nil {
		m.logger.Error().Err(err).Str("user_id", res.UserID).Msg("profile insert after signup failed")

		m.mu.Lock()
		m.pendingProfile = &profile
		m.mu.Unlock()

		out.ProfileIncomplete = true
		m.emit(Event{Kind: EventProfileIncomplete, User: &models.User{
			ID:    res.UserID,
			Name:  in.Name,
			Email: in.Email,
			Role:  role,
		}})
		return out, nil
	}

	if !res.RequiresEmailConfirmation {
		if err := m.Refresh(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("refresh after signup failed")
		}
	}
	return out, nil
}

// CompleteProfile retries the profile insert left over from a Signup whose
// insert failed.
func (m *Manager) CompleteProfile(ctx context.Context) error {
	m.mu.RLock()
	pending := m.pendingProfile
	m.mu.RUnlock()

	if pending == nil {
		return models.NotFoundf("no incomplete profile")
	}

	callCtx, cancel := m.withTimeout(ctx)
	err := m.provider.InsertProfile(callCtx, *pending)
	cancel()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.pendingProfile = nil
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// UpdateProfile changes the signed-in user's profile and refreshes.
func (m *Manager) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) error {
	user := m.CurrentUser()
	if user == nil {
		return fmt.Errorf("%w: not signed in", models.ErrAuthentication)
	}

	callCtx, cancel := m.withTimeout(ctx)
	err := m.provider.UpdateProfile(callCtx, user.ID, req)
	cancel()
	if err != nil {
		return err
	}
	return m.Refresh(ctx)
}

// Logout invalidates the provider session and clears local state even when
// the provider call fails. The provider error, if any, is returned.
func (m *Manager) Logout(ctx context.Context) error {
	callCtx, cancel := m.withTimeout(ctx)
	err := m.provider.SignOut(callCtx)
	cancel()
	if err != nil {
		m.logger.Warn().Err(err).Msg("provider sign out failed")
	}

	m.becomeAnonymous()
	return err
}

func (m *Manager) handleAuthEvent(ev AuthEvent) {
	switch ev.Type {
	case SignedOut:
		m.becomeAnonymous()
	case SignedIn, UserUpdated:
		m.mu.Lock()
		m.state = Loading
		m.mu.Unlock()

		if err := m.Refresh(context.Background()); err != nil {
			m.logger.Warn().Err(err).Str("event", string(ev.Type)).Msg("refresh after auth event failed")
		}
	}
}

func (m *Manager) currentGeneration() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// settle publishes a resolved state unless a sign-out happened since the
// refresh identified by gen started. A discarded result that leaves the
// manager in Loading schedules another pass.
func (m *Manager) settle(gen uint64, state State, user *models.User) {
	m.mu.Lock()
	if gen != m.generation {
		if m.state == Loading {
			m.rerun = true
		}
		m.mu.Unlock()
		return
	}
	prev := m.state
	m.state = state
	m.settled = state
	m.user = user
	m.mu.Unlock()

	switch {
	case state == Authenticated:
		u := *user
		m.emit(Event{Kind: EventAuthenticated, User: &u})
	case state == Anonymous && prev != Anonymous:
		m.emit(Event{Kind: EventAnonymous})
	}
}

// restoreSettled undoes a Loading state left by a failed refresh. With no
// earlier settled state there is no usable identity, so it becomes
// Anonymous.
func (m *Manager) restoreSettled(gen uint64) {
	m.mu.Lock()
	if m.state != Loading {
		m.mu.Unlock()
		return
	}
	if gen != m.generation {
		m.rerun = true
		m.mu.Unlock()
		return
	}
	if m.settled != Uninitialized {
		m.state = m.settled
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.settle(gen, Anonymous, nil)
}

func (m *Manager) becomeAnonymous() {
	m.mu.Lock()
	m.generation++
	prev := m.state
	m.state = Anonymous
	m.settled = Anonymous
	m.user = nil
	m.mu.Unlock()

	if prev != Anonymous {
		m.emit(Event{Kind: EventAnonymous})
	}
}

func (m *Manager) emit(e Event) {
	m.observersMu.Lock()
	observers := make([]Observer, 0, len(m.observers))
	for _, o := range m.observers {
		observers = append(observers, o)
	}
	m.observersMu.Unlock()

	for _, o := range observers {
		o.OnIdentityEvent(e)
	}
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

func composeUser(s *models.Session, p *models.Profile) *models.User {
	role := p.Role
	if role == "" {
		role = models.RoleBuyer
	}
	return &models.User{
		ID:       s.UserID,
		Name:     p.Name,
		Email:    s.Email,
		Role:     role,
		Location: p.Location,
		Phone:    p.Phone,
	}
}

// IsAuthError reports whether err is a rejected credential.
func IsAuthError(err error) bool {
	return errors.Is(err, models.ErrAuthentication)
}
