package parcore

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Config holds pool construction parameters. Use the Option helpers with
// NewRuntime rather than building a Config directly.
type Config struct {
	NumThreads      int
	PinThreads      bool
	DisableWarnings bool
	Logger          zerolog.Logger
}

// Option mutates a Config during NewRuntime.
type Option func(*Config)

// WithThreads fixes the pool size. The default is runtime.GOMAXPROCS(0),
// overridable through PARCORE_NUM_THREADS.
func WithThreads(n int) Option {
	return func(c *Config) { c.NumThreads = n }
}

// WithPinning pins each worker's OS thread to one CPU (Linux only; a
// no-op elsewhere).
func WithPinning(enabled bool) Option {
	return func(c *Config) { c.PinThreads = enabled }
}

// WithLogger attaches a structured logger for pool lifecycle events. The
// default logger discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithWarnings enables or disables runtime warnings.
func WithWarnings(enabled bool) Option {
	return func(c *Config) { c.DisableWarnings = !enabled }
}

// validate checks the assembled configuration.
func (c *Config) validate() error {
	if c.NumThreads < 1 {
		return NewConfigError("NewRuntime", "thread count must be at least 1")
	}
	return nil
}

// workPartition is the per-dispatch partitioning state: the extent and
// chunking of the current iteration space plus the shared stealing cursor.
// It is written by the invoking thread strictly before the parallel region
// opens, so workers observe it through the region's start signal.
type workPartition struct {
	total  int
	chunk  int
	nparts int
	cursor atomic.Int64
}

// Runtime owns a fixed-size pool of OS-locked worker threads and the
// per-thread scratch slots. It is the explicit handle every dispatch
// receives; there is no process-wide pool singleton.
//
// Dispatches must be issued one at a time from a single goroutine. A
// dispatch issued while another is executing, including from inside a
// functor, degrades deterministically to sequential execution.
type Runtime struct {
	cfg    Config
	log    zerolog.Logger
	device Device

	nthreads    int
	slots       []*ThreadSlot
	poolBarrier rendezvous
	work        workPartition

	// Region hand-off. regionFn is published before the start signal and
	// cleared after the join.
	regionFn func(rank int)
	start    []chan struct{}
	regionWG sync.WaitGroup
	workerWG sync.WaitGroup

	inParallel atomic.Bool
	closed     atomic.Bool
}

// NewRuntime creates a pool of worker threads and their scratch slots.
// Configuration precedence: options, then environment, then defaults.
func NewRuntime(opts ...Option) (*Runtime, error) {
	env, malformed := readEnvSettings()

	cfg := Config{
		NumThreads: runtime.GOMAXPROCS(0),
		Logger:     zerolog.Nop(),
	}
	if env.numThreads > 0 {
		cfg.NumThreads = env.numThreads
	}
	cfg.PinThreads = env.pinThreads
	cfg.DisableWarnings = env.disableWarnings

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{
		cfg:      cfg,
		log:      cfg.Logger,
		device:   detectDevice(),
		nthreads: cfg.NumThreads,
	}

	if !cfg.DisableWarnings {
		for _, name := range malformed {
			rt.log.Warn().Str("var", name).Msg("ignoring malformed environment variable")
		}
	}

	rt.slots = make([]*ThreadSlot, rt.nthreads)
	for i := range rt.slots {
		rt.slots[i] = &ThreadSlot{rank: i}
	}
	rt.poolBarrier.reset(rt.nthreads)

	// Rank 0 is the invoking thread; ranks 1..n-1 are pool workers parked
	// on their start channels.
	rt.start = make([]chan struct{}, rt.nthreads-1)
	for i := range rt.start {
		rt.start[i] = make(chan struct{})
		rt.workerWG.Add(1)
		go rt.workerLoop(i + 1)
	}

	rt.log.Debug().
		Int("threads", rt.nthreads).
		Bool("pinned", cfg.PinThreads).
		Str("cpu", rt.device.Features).
		Uint64("mem", rt.device.TotalMem).
		Msg("pool ready")

	return rt, nil
}

// workerLoop is the body of one pool worker. The goroutine is locked to
// its OS thread for the lifetime of the pool so that pinning and the
// spin-wait rendezvous behave like native threads.
func (rt *Runtime) workerLoop(rank int) {
	defer rt.workerWG.Done()
	runtime.LockOSThread()

	if rt.cfg.PinThreads {
		if err := pinThread(rank); err != nil && !rt.cfg.DisableWarnings {
			rt.log.Warn().Int("rank", rank).Err(err).Msg("thread pinning failed")
		}
	}

	for range rt.start[rank-1] {
		rt.regionFn(rank)
		rt.regionWG.Done()
	}
}

// launch opens a parallel region: every pool thread, including the calling
// one as rank 0, executes fn exactly once. launch returns after all
// participants finish. The channel send orders the invoker's pre-region
// writes (partition state, scratch sizing) before each worker's execution.
func (rt *Runtime) launch(fn func(rank int)) {
	rt.regionFn = fn
	rt.regionWG.Add(rt.nthreads - 1)
	for _, ch := range rt.start {
		ch <- struct{}{}
	}
	fn(0)
	rt.regionWG.Wait()
	rt.regionFn = nil
}

// enter marks the start of a dispatch. It returns false when a region is
// already executing, in which case the caller must run sequentially.
func (rt *Runtime) enter() bool {
	if rt.closed.Load() {
		rt.log.Error().Msg("dispatch on a closed runtime")
		panic(ErrRuntimeClosed)
	}
	return rt.inParallel.CompareAndSwap(false, true)
}

// exit marks the end of a dispatch begun with a successful enter.
func (rt *Runtime) exit() {
	rt.inParallel.Store(false)
}

// setWorkPartition records the current dispatch's iteration extent, chunk
// size, and participant count, and rewinds the stealing cursor. Called by
// the invoking thread before the region opens.
func (rt *Runtime) setWorkPartition(total, chunk, nparts int) {
	if chunk <= 0 {
		chunk = defaultChunkSize(total, nparts)
	}
	rt.work.total = total
	rt.work.chunk = chunk
	rt.work.nparts = nparts
	rt.work.cursor.Store(0)
}

// stealChunk atomically claims the next chunk of the current iteration
// space. Returns (-1, -1) once the space is exhausted; callers must treat
// a negative start as the stop signal.
func (rt *Runtime) stealChunk() (int, int) {
	w := &rt.work
	lo := int(w.cursor.Add(int64(w.chunk))) - w.chunk
	if lo >= w.total {
		return -1, -1
	}
	hi := lo + w.chunk
	if hi > w.total {
		hi = w.total
	}
	return lo, hi
}

// ensureScratch sizes every slot's arena before a region opens.
func (rt *Runtime) ensureScratch(poolReduce, teamReduce, teamShared, local int) {
	for _, s := range rt.slots {
		s.ensureScratch(poolReduce, teamReduce, teamShared, local)
	}
}

// ThreadCount returns the fixed pool size.
func (rt *Runtime) ThreadCount() int {
	return rt.nthreads
}

// InParallel reports whether a parallel region is currently executing.
func (rt *Runtime) InParallel() bool {
	return rt.inParallel.Load()
}

// DeviceInfo returns the host description detected at pool creation.
func (rt *Runtime) DeviceInfo() Device {
	return rt.device
}

// slot returns the per-thread state block for a pool rank.
func (rt *Runtime) slot(rank int) *ThreadSlot {
	return rt.slots[rank]
}

// Close shuts the pool down and releases its workers. The runtime must be
// idle; closing during a dispatch is a lifecycle error. Close is
// idempotent.
func (rt *Runtime) Close() error {
	if !rt.closed.CompareAndSwap(false, true) {
		return nil
	}
	if rt.inParallel.Load() {
		return &Error{Kind: ErrKindLifecycle, Op: "Close", Message: "runtime closed during an active dispatch"}
	}
	for _, ch := range rt.start {
		close(ch)
	}
	rt.workerWG.Wait()
	rt.log.Debug().Int("threads", rt.nthreads).Msg("pool closed")
	return nil
}
