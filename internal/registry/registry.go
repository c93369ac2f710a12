// Package registry discovers a database client spec file and maintains the
// named pgx connection pools built from it. The client map is written once
// during initialization and read-only afterwards; there is no runtime
// add/remove of clients.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse/gatehouse/internal/metrics"
	"github.com/gatehouse/gatehouse/internal/platform/redact"
)

// DefaultSpecFile is the file name used when Initialize is called without an
// explicit path (and by getter-triggered auto-initialization).
const DefaultSpecFile = "dbclients.yaml"

const connectTimeout = 10 * time.Second

// ErrNoClients reports that initialization completed with zero registered
// clients. The registry is still Ready; the service degrades per request
// instead of aborting.
var ErrNoClients = errors.New("no database clients registered")

// ErrUnknownClient reports a lookup for a name that was never registered.
var ErrUnknownClient = errors.New("unknown database client")

// State is the registry lifecycle phase.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Client is one named pooled database handle.
type Client struct {
	Name string
	Pool *pgxpool.Pool
}

// connectFunc builds and ping-verifies a pool. Swapped out in tests.
type connectFunc func(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error)

// Registry holds the named clients and the default-resolution policy.
// Construct one per process (or per test) and inject it; there is no
// package-level instance.
type Registry struct {
	specFile string
	connect  connectFunc

	once    sync.Once
	state   atomic.Int32
	initErr error

	// clients and order are mutated only inside the single initialization
	// phase; reads after Ready need no locking.
	clients map[string]*Client
	order   []string

	defaultMu   sync.Mutex
	defaultName string
}

// Option configures a Registry.
type Option func(*Registry)

// WithSpecFile overrides the default spec file name used for discovery.
func WithSpecFile(name string) Option {
	return func(r *Registry) {
		if name != "" {
			r.specFile = name
		}
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		specFile: DefaultSpecFile,
		connect:  defaultConnect,
		clients:  make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize discovers, parses, and applies the spec file. It runs at most
// once per registry; later calls (including getter-triggered auto-init)
// return the cached outcome without retrying discovery. The registry ends in
// StateReady even when the outcome is an error.
func (r *Registry) Initialize(ctx context.Context, path string) error {
	r.once.Do(func() {
		r.initErr = r.initialize(ctx, path)
	})
	return r.initErr
}

func (r *Registry) initialize(ctx context.Context, path string) error {
	r.state.Store(int32(StateInitializing))
	defer r.state.Store(int32(StateReady))

	name := path
	if name == "" {
		name = r.specFile
	}

	resolved, err := Locate(name)
	if err != nil {
		slog.Error("database spec file not found", "error", err)
		return err
	}
	slog.Info("database spec file found", "path", resolved)

	specs, err := loadSpecs(resolved)
	if err != nil {
		slog.Error("database spec file unusable", "path", resolved, "error", err)
		return err
	}

	for i, spec := range specs {
		spec.normalize()

		if err := spec.validate(); err != nil {
			slog.Warn("skipping database client entry", "index", i, "name", spec.Name, "error", err)
			continue
		}
		if _, exists := r.clients[spec.Name]; exists {
			slog.Warn("skipping duplicate database client name", "index", i, "name", spec.Name)
			continue
		}

		dsn := spec.connString()
		pool, err := r.connect(ctx, dsn, spec.poolSize())
		if err != nil {
			slog.Warn("database client unreachable, skipping",
				"name", spec.Name, "conn", redact.ConnString(dsn), "error", err)
			continue
		}

		r.clients[spec.Name] = &Client{Name: spec.Name, Pool: pool}
		r.order = append(r.order, spec.Name)
		slog.Info("database client registered", "name", spec.Name, "pool_size", spec.poolSize())
	}

	metrics.DatabaseClients.Set(float64(len(r.clients)))

	if len(r.clients) == 0 {
		return fmt.Errorf("%w (config %s)", ErrNoClients, resolved)
	}

	r.defaultName = r.resolveDefault()
	slog.Info("default database client resolved", "name", r.defaultName, "clients", len(r.clients))
	return nil
}

// resolveDefault applies the default-selection policy: an entry named
// "default" always wins, regardless of registration order; otherwise the
// first registered entry.
func (r *Registry) resolveDefault() string {
	if _, ok := r.clients[DefaultClientName]; ok {
		return DefaultClientName
	}
	if len(r.order) > 0 {
		return r.order[0]
	}
	return ""
}

// Client returns the default client, auto-initializing the registry on first
// use. Returns nil when no clients are registered.
func (r *Registry) Client(ctx context.Context) *Client {
	_ = r.Initialize(ctx, "")

	r.defaultMu.Lock()
	if r.defaultName == "" {
		r.defaultName = r.resolveDefault()
	}
	name := r.defaultName
	r.defaultMu.Unlock()

	if name == "" {
		return nil
	}
	return r.clients[name]
}

// ClientNamed returns the client registered under name exactly.
func (r *Registry) ClientNamed(ctx context.Context, name string) (*Client, error) {
	_ = r.Initialize(ctx, "")

	cl, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, name)
	}
	return cl, nil
}

// State reports the lifecycle phase.
func (r *Registry) State() State {
	return State(r.state.Load())
}

// Size reports the number of registered clients.
func (r *Registry) Size() int {
	return len(r.clients)
}

// Close releases every pool. Only for process shutdown; the registry is not
// reusable afterwards.
func (r *Registry) Close() {
	for _, cl := range r.clients {
		cl.Pool.Close()
	}
}

func defaultConnect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolCfg.MaxConns = maxConns

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Fail fast at startup instead of lazily on the first query.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
