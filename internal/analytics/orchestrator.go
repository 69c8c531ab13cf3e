package analytics

import (
	"context"
	"sync"
	"time"
)

// State is the orchestrator's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StatePolling
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const defaultPollInterval = 2 * time.Second

// Orchestrator tracks at most one analysis job at a time. Submitting a new
// job tears down the previous job's poller first, and every state mutation is
// guarded by the generation it belongs to, so a late observation for a
// superseded job never touches visible state.
type Orchestrator struct {
	jobs     *Client
	interval time.Duration

	mu      sync.Mutex
	gen     int
	state   State
	jobID   string
	request JobRequest
	status  string
	errMsg  string
	points  []Point
	summary Summary
	cancel  context.CancelFunc
}

func NewOrchestrator(jobs *Client, interval time.Duration) *Orchestrator {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Orchestrator{jobs: jobs, interval: interval, state: StateIdle}
}

// Snapshot is an immutable view of the orchestrator for rendering.
type Snapshot struct {
	State   State      `json:"-"`
	Phase   string     `json:"phase"`
	JobID   string     `json:"jobId"`
	Request JobRequest `json:"request"`
	Status  string     `json:"status"`
	Error   string     `json:"error,omitempty"`
	Points  []Point    `json:"points"`
	Summary Summary    `json:"summary"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	points := make([]Point, len(o.points))
	copy(points, o.points)
	return Snapshot{
		State:   o.state,
		Phase:   o.state.String(),
		JobID:   o.jobID,
		Request: o.request,
		Status:  o.status,
		Error:   o.errMsg,
		Points:  points,
		Summary: o.summary,
	}
}

// Submit starts a new job. Any outstanding poller is cancelled before the
// submission goes out. On success the status is optimistically shown as
// running and polling begins; on failure the orchestrator lands in Failed and
// no polling starts.
func (o *Orchestrator) Submit(ctx context.Context, req JobRequest) (string, error) {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.gen++
	gen := o.gen
	o.state = StateSubmitting
	o.jobID = ""
	o.request = req
	o.status = StatusPending
	o.errMsg = ""
	o.points = nil
	o.summary = Summary{}
	o.mu.Unlock()

	jobID, err := o.jobs.Run(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		// Superseded while the submission was in flight.
		return "", context.Canceled
	}
	if err != nil {
		o.state = StateFailed
		o.status = StatusFailed
		o.errMsg = err.Error()
		return "", err
	}
	o.jobID = jobID
	o.state = StatePolling
	o.status = StatusRunning
	pollCtx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	go o.poll(pollCtx, gen, jobID)
	return jobID, nil
}

// Stop cancels any outstanding poller. It is the only teardown path and is
// safe to call at any time, including after a terminal state.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// poll runs one job's observation loop. Ticks are strictly sequential: the
// loop body awaits each status fetch before the next tick is taken.
func (o *Orchestrator) poll(ctx context.Context, gen int, jobID string) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st, err := o.jobs.Status(ctx, jobID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				o.fail(gen, err.Error())
				return
			}
			switch st.Status {
			case StatusCompleted:
				raw, err := o.jobs.Results(ctx, jobID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					o.fail(gen, err.Error())
					return
				}
				o.complete(gen, Normalize(raw))
				return
			case StatusFailed:
				o.fail(gen, st.Message)
				return
			default:
				o.observe(gen, st.Status)
			}
		}
	}
}

func (o *Orchestrator) observe(gen int, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen || o.state != StatePolling {
		return
	}
	o.status = status
}

func (o *Orchestrator) complete(gen int, points []Point) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return
	}
	o.state = StateCompleted
	o.status = StatusCompleted
	o.points = points
	o.summary = Summarize(points)
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *Orchestrator) fail(gen int, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return
	}
	o.state = StateFailed
	o.status = StatusFailed
	o.errMsg = message
	o.points = nil
	o.summary = Summary{}
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
