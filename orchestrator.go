package forkwork

import (
	"fmt"
	"iter"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator launches a registered work function in isolated worker
// processes and aggregates the messages they report back. One orchestrator
// drives one work function but may be reused across many Run calls.
//
// In async mode Run never blocks; every launch is tracked in order and
// WaitAll later reaps the whole batch. In sync mode Run blocks until its one
// worker exits. Only the launcher's copy of the orchestrator ever mutates
// state: a worker process is a fresh exec with nothing but the argument
// snapshot and its channel half.
type Orchestrator struct {
	workName string
	work     WorkFunc
	async    bool

	mu        sync.Mutex
	debug     bool
	frameSize int
	tracked   []*proc // async mode, strictly in launch order
	pending   *proc   // sync mode, the most recent run
	messages  []any

	logger *zap.Logger
	stats  *Stats
}

// proc is one spawned worker process and the channel it reports over.
type proc struct {
	pid     int
	runID   string
	cmd     *exec.Cmd
	ch      *channel
	started time.Time
}

// New constructs an orchestrator for the registered work function workName.
// The WorkFunc type is the returns-boolean contract; anything else cannot be
// registered. Fails with a *ConfigError when the platform cannot spawn worker
// processes, when workName is not registered, or when the FORKWORK_*
// environment defaults are malformed.
func New(workName string, async bool) (*Orchestrator, error) {
	if err := platformCheck(); err != nil {
		return nil, &ConfigError{Op: "new", Err: err}
	}

	fn, err := lookupWork(workName)
	if err != nil {
		return nil, &ConfigError{Op: "new", Err: err}
	}

	cfg, err := EnvDefaults()
	if err != nil {
		return nil, &ConfigError{Op: "new", Err: err}
	}

	return &Orchestrator{
		workName:  workName,
		work:      fn,
		async:     async,
		debug:     cfg.Debug,
		frameSize: cfg.FrameSize,
		logger:    zap.NewNop(),
		stats:     NewStats(0),
	}, nil
}

// SetDebug toggles debug mode. Debug runs execute the work function inline in
// the launcher: no process is spawned, no pid is tracked, and sends land in
// the message list immediately.
func (o *Orchestrator) SetDebug(debug bool) {
	o.mu.Lock()
	o.debug = debug
	o.mu.Unlock()
}

// SetFrameSize changes the frame size for subsequently created channels.
// Channels already in flight keep the size they were created with. Values
// below 1 are ignored.
func (o *Orchestrator) SetFrameSize(n int) {
	if n < 1 {
		return
	}
	o.mu.Lock()
	o.frameSize = n
	o.mu.Unlock()
}

// SetLogger installs a logger for lifecycle events. The default is a no-op.
func (o *Orchestrator) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	o.mu.Lock()
	o.logger = l
	o.mu.Unlock()
}

// Async reports whether the orchestrator collects results via WaitAll.
func (o *Orchestrator) Async() bool {
	return o.async
}

// WorkName returns the name of the registered work function.
func (o *Orchestrator) WorkName() string {
	return o.workName
}

func (o *Orchestrator) debugging() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.debug
}

// Run executes the work function once with args.
//
// Debug mode runs it inline and returns its boolean directly. Sync mode
// spawns one worker and blocks until it exits, returning the worker's
// outcome. Async mode spawns the worker, tracks it in launch order and
// returns true immediately; the true signals a successful launch only, never
// the work outcome, which WaitAll reports later.
func (o *Orchestrator) Run(args ...any) (bool, error) {
	o.mu.Lock()
	frameSize := o.frameSize
	debug := o.debug
	logger := o.logger
	o.mu.Unlock()

	ch, err := newChannel(o, frameSize)
	if err != nil {
		return false, err
	}

	if debug {
		defer ch.close()
		return o.work(&Sender{ch: ch}, args...), nil
	}

	p, err := o.spawn(ch, frameSize, args, logger)
	if err != nil {
		ch.close()
		return false, err
	}

	if o.async {
		o.mu.Lock()
		o.tracked = append(o.tracked, p)
		o.mu.Unlock()
		return true, nil
	}

	o.mu.Lock()
	o.pending = p
	o.mu.Unlock()
	return o.Wait()
}

// spawn re-executes the current binary as a worker. The work name, frame
// size, run id and argument snapshot travel in the environment; the channel's
// worker half travels as fd 3.
func (o *Orchestrator) spawn(ch *channel, frameSize int, args []any, logger *zap.Logger) (*proc, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, &ConfigError{Op: "spawn", Err: err}
	}

	snap, err := packArgs(args)
	if err != nil {
		return nil, &ConfigError{Op: "spawn", Err: err}
	}

	runID := uuid.New().String()
	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(),
		envWorkerMode+"=1",
		envWorkName+"="+o.workName,
		fmt.Sprintf("%s=%d", envFrameSize, frameSize),
		envArgs+"="+snap,
		envRunID+"="+runID,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{ch.workerFile()}

	if err := cmd.Start(); err != nil {
		return nil, &ConfigError{Op: "spawn", Err: err}
	}

	// The child owns the worker half now; closing the launcher's copy lets
	// Receive see EOF once the child exits.
	if err := ch.closeWorker(); err != nil {
		logger.Warn("closing worker half failed",
			zap.String("run_id", runID), zap.Error(err))
	}

	o.stats.RecordLaunch()
	logger.Info("worker launched",
		zap.String("work", o.workName),
		zap.String("run_id", runID),
		zap.Int("pid", cmd.Process.Pid))

	return &proc{
		pid:     cmd.Process.Pid,
		runID:   runID,
		cmd:     cmd,
		ch:      ch,
		started: time.Now(),
	}, nil
}

// Wait blocks until the pending synchronous worker exits, drains at most one
// message from its channel into the message list and closes the channel.
// Returns true iff the worker exited with code 0; a signal or crash is
// failure. Fails with a *ConfigError on an async orchestrator, inside a
// worker process, or when no synchronous run is pending.
func (o *Orchestrator) Wait() (bool, error) {
	if inWorkerProcess() {
		return false, &ConfigError{Op: "wait", Err: ErrNotLauncher}
	}
	if o.async {
		return false, &ConfigError{Op: "wait", Err: ErrWrongMode}
	}

	o.mu.Lock()
	p := o.pending
	o.pending = nil
	o.mu.Unlock()
	if p == nil {
		return false, &ConfigError{Op: "wait", Err: ErrNoPendingRun}
	}

	return o.reap(p), nil
}

// WaitAll reaps every tracked worker strictly in launch order, never in
// completion order: a slow first-launched worker is waited on before an
// already-exited later one, which is what keeps the message list aligned with
// launch order. The message list is cleared first and repopulated with at
// most one message per worker. Returns true iff every worker exited with code
// 0; a worker that died on a channel overflow is indistinguishable here from
// one that deliberately returned false. Fails with a *ConfigError on a sync
// orchestrator or inside a worker process.
func (o *Orchestrator) WaitAll() (bool, error) {
	if inWorkerProcess() {
		return false, &ConfigError{Op: "waitall", Err: ErrNotLauncher}
	}
	if !o.async {
		return false, &ConfigError{Op: "waitall", Err: ErrWrongMode}
	}

	o.mu.Lock()
	procs := o.tracked
	o.tracked = nil
	o.messages = nil
	o.mu.Unlock()

	allOK := true
	for _, p := range procs {
		if !o.reap(p) {
			allOK = false
		}
	}
	return allOK, nil
}

// reap blocks until p exits, drains at most one message from its channel and
// closes the channel. Reports whether p exited cleanly with code 0.
func (o *Orchestrator) reap(p *proc) bool {
	waitErr := p.cmd.Wait()
	success := waitErr == nil

	o.mu.Lock()
	logger := o.logger
	o.mu.Unlock()

	v, ok, err := p.ch.receive()
	switch {
	case err != nil:
		logger.Warn("draining channel failed",
			zap.String("run_id", p.runID), zap.Error(err))
	case ok:
		o.AddMessage(v)
	}

	if err := p.ch.close(); err != nil {
		logger.Warn("closing channel failed",
			zap.String("run_id", p.runID), zap.Error(err))
	}

	o.stats.RecordExit(success, time.Since(p.started))
	logger.Info("worker exited",
		zap.String("work", o.workName),
		zap.String("run_id", p.runID),
		zap.Int("pid", p.pid),
		zap.Bool("success", success))

	return success
}

// HasMessages reports whether any collected messages are pending.
func (o *Orchestrator) HasMessages() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages) > 0
}

// Messages returns a lazy ordered view over the collected messages. The view
// iterates a stable snapshot, so clearing the orchestrator mid-iteration is
// safe. Fails with a *ConfigError inside a worker process: workers report
// through their Sender, they never observe the launcher's collection.
func (o *Orchestrator) Messages() (iter.Seq[any], error) {
	if inWorkerProcess() && !o.debugging() {
		return nil, &ConfigError{Op: "messages", Err: ErrNotLauncher}
	}

	o.mu.Lock()
	snapshot := make([]any, len(o.messages))
	copy(snapshot, o.messages)
	o.mu.Unlock()

	return func(yield func(any) bool) {
		for _, m := range snapshot {
			if !yield(m) {
				return
			}
		}
	}, nil
}

// AddMessage appends directly to the message list. It is the hook the debug
// bypass reports through; everything else arrives via Wait or WaitAll.
func (o *Orchestrator) AddMessage(v any) {
	o.mu.Lock()
	o.messages = append(o.messages, v)
	o.mu.Unlock()
}

// ClearMessages empties the message list without touching tracked workers or
// their channels. Useful for bounding memory when draining once per loop
// iteration in sync mode.
func (o *Orchestrator) ClearMessages() {
	o.mu.Lock()
	o.messages = nil
	o.mu.Unlock()
}

// Stats returns a snapshot of run statistics.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}
