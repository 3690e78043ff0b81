// Package app contains the view controller of the todolite client: the
// two-screen navigation surface (landing and home), the authenticated-state
// machine, and the command handlers that orchestrate the session, bot-check,
// todo store, and asset upload clients.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/epavlov/todolite/internal/botcheck"
	"github.com/epavlov/todolite/internal/logging"
	"github.com/epavlov/todolite/internal/session"
	"github.com/epavlov/todolite/internal/todostore"
)

// State is the top-level view controller state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// Navigation routes. The landing route hosts the auth screen, home the
// todo list; home is reachable only through a successful authentication
// transition.
const (
	routeLanding = "/"
	routeHome    = "/home"
)

// uploader matches assets.Uploader; declared locally so the controller
// depends only on the capability it consumes.
type uploader interface {
	Upload(ctx context.Context, ownerID, filename string, data []byte) (string, error)
}

// emailCache is the persisted client state surface: the cached email is for
// greeting display only and never feeds authorization.
type emailCache interface {
	Email(ctx context.Context) (string, error)
	SetEmail(ctx context.Context, email string) error
	Clear(ctx context.Context) error
}

// App is the view controller. All collaborator clients are injected once at
// process start; there are no hidden singletons, so tests substitute fakes.
type App struct {
	sessions session.Client
	gate     botcheck.Gate
	store    todostore.Store
	uploads  uploader
	cache    emailCache
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer

	background []func(ctx context.Context)
	closers    []func() error

	mu      sync.Mutex
	state   State
	route   string
	loading bool
	todos   []*todostore.Todo
	message string
}

// NewApp wires the view controller. The initial screen is decided at Run
// time by the mount-time session check, never assumed.
func NewApp(sessions session.Client, gate botcheck.Gate, store todostore.Store, uploads uploader, cache emailCache, logger logging.Logger) *App {
	return &App{
		sessions: sessions,
		gate:     gate,
		store:    store,
		uploads:  uploads,
		cache:    cache,
		logger:   logger.With("component", "app"),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		state:    StateUnauthenticated,
		route:    routeLanding,
	}
}

// Run subscribes to session changes, performs the mount-time session check,
// and drives the command loop until ctx is cancelled or the user exits.
// The subscription is released on return so no callback can reach a
// disposed controller.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.initSignalHandler(cancel)
	defer a.closeAll(ctx)

	for _, fn := range a.background {
		go fn(ctx)
	}

	unsubscribe := a.sessions.Subscribe(a.handleSessionChange)
	defer unsubscribe()

	a.mount(ctx)
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

func (a *App) closeAll(ctx context.Context) {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.logger.Warn(ctx, "close error", "err", err)
		}
	}
}

// mount determines the initial state from the provider's current session.
func (a *App) mount(ctx context.Context) {
	s := a.sessions.Current()
	if s == nil {
		a.navigate(StateUnauthenticated, routeLanding)
		return
	}
	a.navigate(StateAuthenticated, routeHome)
	a.refreshTodos(ctx, s.UID)
}

// handleSessionChange is the single mechanism by which the controller
// learns of principal changes, including session loss detected
// asynchronously. It is authoritative: a nil session supersedes whatever
// any in-flight operation believes.
func (a *App) handleSessionChange(s *session.Session) {
	a.mu.Lock()
	wasAuthenticated := a.state == StateAuthenticated

	if s == nil {
		a.state = StateUnauthenticated
		a.route = routeLanding
		a.todos = nil
		a.mu.Unlock()
		if wasAuthenticated {
			a.setMessage(msgSessionEnded)
		}
		return
	}

	a.state = StateAuthenticated
	a.route = routeHome
	a.mu.Unlock()
}

func (a *App) navigate(state State, route string) {
	a.mu.Lock()
	a.state = state
	a.route = route
	if state == StateUnauthenticated {
		a.todos = nil
	}
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == StateAuthenticated
}

// CurrentState returns the controller state and route.
func (a *App) CurrentState() (State, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state, a.route
}

// Todos returns the controller's local view of the todo collection.
func (a *App) Todos() []*todostore.Todo {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*todostore.Todo, len(a.todos))
	copy(out, a.todos)
	return out
}

// beginOp marks an operation in flight; a second submission while one is
// running is refused. endOp must run on every exit path so the controls are
// never left permanently disabled.
func (a *App) beginOp() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loading {
		return false
	}
	a.loading = true
	return true
}

func (a *App) endOp() {
	a.mu.Lock()
	a.loading = false
	a.mu.Unlock()
}

// setMessage records and prints the single transient message area.
func (a *App) setMessage(msg string) {
	a.mu.Lock()
	a.message = msg
	a.mu.Unlock()
	if msg != "" {
		fmt.Fprintln(a.out, msg)
	}
}

func (a *App) clearMessage() {
	a.mu.Lock()
	a.message = ""
	a.mu.Unlock()
}

// Message returns the most recent outcome text.
func (a *App) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}

// status renders the prompt: the current route plus the cached email when
// signed in.
func (a *App) status() string {
	a.mu.Lock()
	state, route := a.state, a.route
	a.mu.Unlock()

	if state != StateAuthenticated {
		return route
	}
	email, err := a.cache.Email(context.Background())
	if err != nil || email == "" {
		return route
	}
	return fmt.Sprintf("%s %s", route, email)
}

// refreshTodos replaces the local collection with a fresh store snapshot.
func (a *App) refreshTodos(ctx context.Context, ownerID string) {
	todos, err := a.store.List(ctx, ownerID)
	if err != nil {
		a.setMessage(MessageFor(err))
		return
	}
	a.mu.Lock()
	a.todos = todos
	a.mu.Unlock()
}
