package script

// executor.go runs generated scripts against a grid snapshot inside an
// embedded JavaScript interpreter (goja).
//
// Executions are asynchronous: Execute validates the script, acquires a
// concurrency slot, and returns an execution ID immediately. The script runs
// in a background goroutine with its own timeout; callers follow along via
// Subscribe/GetProgress and collect the outcome with GetResult, which blocks
// until the run finishes. Finished executions stay available for a grace
// period so results can be fetched, then are dropped.
//
// Scripts see two globals:
//
//	data     - {headers: [...], rows: [[...], ...]} built from a grid clone
//	progress - function(processedRows, step?) reporting callback
//
// The final value of the script is its result. It must be an object with a
// "type" field of "analysis" (summary, details), "transformation" (changes,
// optional preview) or "error" (message).

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/celled/celled/internal/engine"
)

// ExecutionTimeout is the maximum wall-clock time a single script may run.
var ExecutionTimeout = 30 * time.Second

// Status describes the lifecycle state of a script execution.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Progress is a point-in-time snapshot of a running execution.
type Progress struct {
	ExecutionID   string    `json:"executionId"`
	Status        Status    `json:"status"`
	ProcessedRows int       `json:"processedRows"`
	TotalRows     int       `json:"totalRows"`
	CurrentStep   string    `json:"currentStep"`
	Percentage    float64   `json:"percentage"`
	StartedAt     time.Time `json:"startedAt"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Result is the final outcome of a script execution. Analysis scripts fill
// Summary and Details; transformation scripts fill Changes and Preview.
type Result struct {
	ExecutionID string          `json:"executionId"`
	ScriptID    string          `json:"scriptId"`
	Type        Type            `json:"type"`
	Status      Status          `json:"status"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt time.Time       `json:"completedAt"`
	Summary     string          `json:"summary,omitempty"`
	Details     json.RawMessage `json:"details,omitempty"`
	Changes     []Change        `json:"changes,omitempty"`
	Preview     []ChangePreview `json:"preview,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// execution tracks a single script run.
type execution struct {
	ID     string
	Script Script
	Cancel context.CancelFunc

	// Result is written once before Done is closed.
	Result *Result
	Done   chan struct{}

	// mu guards Progress and Listeners.
	mu        sync.Mutex
	Progress  Progress
	Listeners []chan Progress
}

// Executor manages concurrent script executions.
type Executor struct {
	limiter *Limiter
	timeout time.Duration

	mu     sync.RWMutex
	active map[string]*execution
}

// NewExecutor creates an executor allowing at most maxConcurrent parallel
// runs, each limited to timeout wall-clock time. Zero values fall back to
// the package defaults.
func NewExecutor(maxConcurrent int, maxWait, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = ExecutionTimeout
	}

	return &Executor{
		limiter: NewLimiter(maxConcurrent, maxWait),
		timeout: timeout,
		active:  make(map[string]*execution),
	}
}

// Limiter returns the executor's concurrency limiter.
func (e *Executor) Limiter() *Limiter {
	return e.limiter
}

// Execute starts a script run against a snapshot of grid and returns its
// execution ID. The script is validated first; if all execution slots are
// occupied the call waits up to the limiter's timeout before failing with
// ErrTooManyScripts. The run itself happens in the background.
func (e *Executor) Execute(ctx context.Context, s Script, grid engine.Grid) (string, error) {
	if err := Validate(s); err != nil {
		return "", err
	}

	if err := e.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	execID := uuid.New().String()
	now := time.Now().UTC()

	// The run outlives the request; give it its own deadline.
	runCtx, cancel := context.WithTimeout(context.Background(), e.timeout)

	exec := &execution{
		ID:     execID,
		Script: s,
		Cancel: cancel,
		Progress: Progress{
			ExecutionID: execID,
			Status:      StatusPending,
			TotalRows:   grid.RowCount(),
			CurrentStep: "starting",
			StartedAt:   now,
			LastUpdated: now,
		},
		Done:      make(chan struct{}),
		Listeners: make([]chan Progress, 0),
	}

	e.mu.Lock()
	e.active[execID] = exec
	e.mu.Unlock()

	go e.run(runCtx, exec, grid.Clone())

	return execID, nil
}

// run executes the script and records the outcome.
func (e *Executor) run(ctx context.Context, exec *execution, grid engine.Grid) {
	result := &Result{
		ExecutionID: exec.ID,
		ScriptID:    exec.Script.ID,
		Type:        exec.Script.Type,
		StartedAt:   time.Now().UTC(),
	}

	defer func() {
		result.CompletedAt = time.Now().UTC()
		exec.Result = result

		exec.update(func(p *Progress) {
			p.Status = result.Status
			switch result.Status {
			case StatusCompleted:
				p.ProcessedRows = p.TotalRows
				p.Percentage = 100
				p.CurrentStep = "completed"
			case StatusCancelled:
				p.CurrentStep = "cancelled"
			default:
				p.CurrentStep = "failed"
			}
		})
		exec.notifyProgress()
		exec.closeListeners()

		close(exec.Done)
		exec.Cancel()
		e.limiter.Release()
		e.cleanup(exec.ID, 5*time.Minute)
	}()

	exec.update(func(p *Progress) {
		p.Status = StatusRunning
		p.CurrentStep = "running script"
	})
	exec.notifyProgress()

	vm := goja.New()
	if err := bindGrid(vm, grid); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("prepare runtime: %v", err)
		return
	}
	if err := bindProgress(vm, exec); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("prepare runtime: %v", err)
		return
	}

	// Interrupt the interpreter when the run is cancelled or times out.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-watchdogDone:
		}
	}()

	value, err := vm.RunString(exec.Script.Content)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				result.Status = StatusFailed
				result.Error = fmt.Sprintf("script timed out after %s", e.timeout)
			} else {
				result.Status = StatusCancelled
				result.Error = "cancelled"
			}
			return
		}
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("script error: %v", err)
		return
	}

	if err := parseResult(grid, value, result); err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return
	}

	result.Status = StatusCompleted
}

// bindGrid exposes the grid to the script as a plain data object.
// The grid must be a clone: goja arrays wrap the Go slices directly, so
// script writes would otherwise reach the caller's rows.
func bindGrid(vm *goja.Runtime, grid engine.Grid) error {
	return vm.Set("data", map[string]any{
		"headers": grid.Headers,
		"rows":    grid.Rows,
	})
}

// bindProgress exposes progress(processedRows, step?) to the script.
func bindProgress(vm *goja.Runtime, exec *execution) error {
	return vm.Set("progress", func(call goja.FunctionCall) goja.Value {
		processed := int(call.Argument(0).ToInteger())
		step := ""
		if len(call.Arguments) > 1 {
			step = call.Argument(1).String()
		}

		exec.update(func(p *Progress) {
			if processed >= 0 {
				p.ProcessedRows = processed
				if p.TotalRows > 0 && p.ProcessedRows > p.TotalRows {
					p.ProcessedRows = p.TotalRows
				}
			}
			if step != "" {
				p.CurrentStep = step
			}
		})
		exec.notifyProgress()

		return goja.Undefined()
	})
}

// scriptOutput is the JSON shape scripts return as their final value.
type scriptOutput struct {
	Type    string          `json:"type"`
	Summary string          `json:"summary"`
	Details json.RawMessage `json:"details"`
	Changes []Change        `json:"changes"`
	Preview []ChangePreview `json:"preview"`
	Message string          `json:"message"`
}

// parseResult decodes the script's final value into result. The value is
// round-tripped through JSON so scripts can return plain objects without
// caring about Go types.
func parseResult(grid engine.Grid, value goja.Value, result *Result) error {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return errors.New("script returned no result")
	}

	raw, err := json.Marshal(value.Export())
	if err != nil {
		return fmt.Errorf("decode script result: %v", err)
	}

	var out scriptOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode script result: %v", err)
	}

	switch out.Type {
	case "error":
		if out.Message == "" {
			return errors.New("script reported an error")
		}
		return errors.New(out.Message)

	case string(TypeAnalysis):
		result.Summary = out.Summary
		if result.Summary == "" {
			result.Summary = "Analysis completed"
		}
		result.Details = out.Details
		return nil

	case string(TypeTransformation):
		result.Changes = out.Changes
		result.Preview = out.Preview
		if len(result.Preview) == 0 {
			result.Preview = BuildPreview(grid, out.Changes, DefaultPreviewLimit)
		}
		return nil

	case "":
		return errors.New("script result is missing a type field")

	default:
		return fmt.Errorf("unknown script result type %q", out.Type)
	}
}

// Subscribe returns a channel that receives progress updates.
// The channel is closed when the execution completes.
func (e *Executor) Subscribe(execID string) (<-chan Progress, error) {
	e.mu.RLock()
	exec, ok := e.active[execID]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("execution not found: %s", execID)
	}

	ch := make(chan Progress, 10)

	exec.mu.Lock()
	if exec.Listeners == nil {
		// Already finished; deliver the final snapshot and close.
		select {
		case ch <- exec.Progress:
		default:
		}
		exec.mu.Unlock()
		close(ch)
		return ch, nil
	}
	exec.Listeners = append(exec.Listeners, ch)
	// Send current progress immediately
	select {
	case ch <- exec.Progress:
	default:
	}
	exec.mu.Unlock()

	return ch, nil
}

// Cancel stops an in-progress execution.
func (e *Executor) Cancel(execID string) error {
	e.mu.RLock()
	exec, ok := e.active[execID]
	e.mu.RUnlock()

	if !ok {
		return fmt.Errorf("execution not found: %s", execID)
	}

	exec.Cancel()
	return nil
}

// GetResult returns the outcome of an execution. Blocks until the execution
// completes or ctx is cancelled.
func (e *Executor) GetResult(ctx context.Context, execID string) (*Result, error) {
	e.mu.RLock()
	exec, ok := e.active[execID]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("execution not found: %s", execID)
	}

	select {
	case <-exec.Done:
		return exec.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetProgress returns the current progress without blocking.
func (e *Executor) GetProgress(execID string) (Progress, error) {
	e.mu.RLock()
	exec, ok := e.active[execID]
	e.mu.RUnlock()

	if !ok {
		return Progress{}, fmt.Errorf("execution not found: %s", execID)
	}

	exec.mu.Lock()
	p := exec.Progress
	exec.mu.Unlock()

	return p, nil
}

// Remove drops an execution immediately instead of waiting for the retention
// timer. A still-running execution is cancelled first.
func (e *Executor) Remove(execID string) {
	e.mu.Lock()
	exec, ok := e.active[execID]
	if ok {
		delete(e.active, execID)
	}
	e.mu.Unlock()

	if ok {
		exec.Cancel()
	}
}

// ActiveCount returns the number of scripts currently running.
func (e *Executor) ActiveCount() int {
	return e.limiter.ActiveCount()
}

// Drain blocks until all running executions finish or ctx is cancelled.
// Used for graceful shutdown.
func (e *Executor) Drain(ctx context.Context) error {
	return e.limiter.WaitForDrain(ctx)
}

// update applies fn to the progress snapshot under lock, stamps LastUpdated
// and recomputes the completion percentage.
func (exec *execution) update(fn func(*Progress)) {
	exec.mu.Lock()
	fn(&exec.Progress)
	exec.Progress.LastUpdated = time.Now().UTC()
	if exec.Progress.TotalRows > 0 {
		exec.Progress.Percentage = float64(exec.Progress.ProcessedRows) / float64(exec.Progress.TotalRows) * 100
	}
	exec.mu.Unlock()
}

// notifyProgress sends the current progress to all listeners.
func (exec *execution) notifyProgress() {
	exec.mu.Lock()
	defer exec.mu.Unlock()

	for _, ch := range exec.Listeners {
		select {
		case ch <- exec.Progress:
		default:
			// Listener is slow, skip this update
		}
	}
}

// closeListeners closes all listener channels.
func (exec *execution) closeListeners() {
	exec.mu.Lock()
	defer exec.mu.Unlock()

	for _, ch := range exec.Listeners {
		close(ch)
	}
	exec.Listeners = nil
}

// cleanup removes the execution from tracking after a delay.
func (e *Executor) cleanup(execID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		e.mu.Lock()
		delete(e.active, execID)
		e.mu.Unlock()
	})
}
