package glustertest

import (
	"math/rand"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/go-logr/logr"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	agent "glusterfs-e2e/common/e2e-agent"
)

// Executor runs a shell command on a cluster node and returns its
// combined output. It is the only view this package has of remote
// command execution.
type Executor interface {
	Exec(host string, cmd string) (string, error)
}

// AgentExecutor runs commands through the node resident e2e-agent.
type AgentExecutor struct{}

func (AgentExecutor) Exec(host string, cmd string) (string, error) {
	return agent.Exec(host, cmd)
}

// lockedSource serializes access to the default selection source,
// math/rand sources are not safe for concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

var defaultRand = rand.New(&lockedSource{src: rand.NewSource(time.Now().UnixNano())})

// Cluster issues gluster CLI commands against one trusted storage pool
// and implements the brick fault-injection primitives on top of the
// parsed results. All cluster state is fetched fresh on every call,
// nothing is cached across invocations.
//
// Concurrent callers operating on overlapping volumes are not
// coordinated; each call makes an independent decision from its own
// snapshot.
type Cluster struct {
	primary string // management node, gluster CLI commands run here
	exec    Executor
	log     logr.Logger
	rng     *rand.Rand
	clock   clock.Clock
}

// Option customises a Cluster.
type Option func(*Cluster)

// WithExecutor replaces the default agent based command executor.
func WithExecutor(e Executor) Option {
	return func(c *Cluster) { c.exec = e }
}

// WithLogger replaces the default logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Cluster) { c.log = l }
}

// WithRand injects a deterministic source for brick selection.
func WithRand(r *rand.Rand) Option {
	return func(c *Cluster) { c.rng = r }
}

// WithClock injects the time source used by wait operations.
func WithClock(k clock.Clock) Option {
	return func(c *Cluster) { c.clock = k }
}

// NewCluster returns a Cluster whose CLI commands run on the given
// management node.
func NewCluster(primaryNode string, opts ...Option) *Cluster {
	c := &Cluster{
		primary: primaryNode,
		exec:    AgentExecutor{},
		log:     logf.Log.WithName("glustertest"),
		rng:     defaultRand,
		clock:   clock.New(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}
