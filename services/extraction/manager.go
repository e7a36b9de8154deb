package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"cinehound/models"
	"cinehound/services/agents"
)

// Status is the lifecycle state of an extraction job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrJobNotFound    = errors.New("extraction job not found")
	ErrSearchNotFound = errors.New("search not found or expired")
	ErrInvalidIndex   = errors.New("movie index out of range")
)

// SearchStore resolves stored search results by ID.
type SearchStore interface {
	Get(searchID string) ([]models.Movie, bool)
}

// AgentResolver maps a result's source name back to its agent.
type AgentResolver interface {
	AgentBySource(source string) (agents.Agent, bool)
}

// HealthChecker classifies a batch of links.
type HealthChecker interface {
	CheckMany(ctx context.Context, urls []string) []models.LinkHealth
}

// Job is a point-in-time snapshot of an extraction job.
type Job struct {
	ID                   string                   `json:"extraction_id"`
	Status               Status                   `json:"status"`
	Progress             int                      `json:"progress"`
	MovieTitle           string                   `json:"movie_title"`
	Source               string                   `json:"source"`
	Error                string                   `json:"error,omitempty"`
	Result               *models.ExtractionResult `json:"result,omitempty"`
	StartedAt            time.Time                `json:"started_at"`
	CompletedAt          *time.Time               `json:"completed_at,omitempty"`
	HealthCheckStarted   bool                     `json:"health_check_started"`
	HealthCheckCompleted bool                     `json:"health_check_completed"`
}

type job struct {
	mu          sync.Mutex
	id          string
	movie       models.Movie
	status      Status
	progress    int
	errMsg      string
	result      *models.ExtractionResult
	startedAt   time.Time
	completedAt time.Time
	cancel      context.CancelFunc

	healthStarted bool
	healthDone    bool
	health        []models.LinkHealth
}

func (j *job) snapshot() Job {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := Job{
		ID:                   j.id,
		Status:               j.status,
		Progress:             j.progress,
		MovieTitle:           j.movie.Title,
		Source:               j.movie.Source,
		Error:                j.errMsg,
		Result:               j.result,
		StartedAt:            j.startedAt,
		HealthCheckStarted:   j.healthStarted,
		HealthCheckCompleted: j.healthDone,
	}
	if !j.completedAt.IsZero() {
		t := j.completedAt
		out.CompletedAt = &t
	}
	return out
}

// Manager runs extraction jobs in the background. Each job carries a context
// with the configured deadline; the agent's HTTP calls run under it, so Cancel
// interrupts in-flight work instead of just flipping a flag. Finished jobs
// live in a bounded TTL store.
type Manager struct {
	searches SearchStore
	resolver AgentResolver
	checker  HealthChecker

	jobs       *expirable.LRU[string, *job]
	timeout    time.Duration
	autoHealth bool

	baseCtx   context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup
}

// NewManager builds the job manager. The checker may be nil when the auto
// health check is disabled.
func NewManager(searches SearchStore, resolver AgentResolver, checker HealthChecker, maxJobs int, ttl, jobTimeout time.Duration, autoHealth bool) *Manager {
	if maxJobs <= 0 {
		maxJobs = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		searches:   searches,
		resolver:   resolver,
		checker:    checker,
		jobs:       expirable.NewLRU[string, *job](maxJobs, nil, ttl),
		timeout:    jobTimeout,
		autoHealth: autoHealth && checker != nil,
		baseCtx:    ctx,
		cancelAll:  cancel,
	}
}

// Close cancels every in-flight job and waits for the workers to drain.
func (m *Manager) Close() {
	m.cancelAll()
	m.wg.Wait()
}

// Start launches link extraction for one movie out of a stored search.
func (m *Manager) Start(searchID string, movieIndex int) (Job, error) {
	results, ok := m.searches.Get(searchID)
	if !ok {
		return Job{}, ErrSearchNotFound
	}
	if movieIndex < 0 || movieIndex >= len(results) {
		return Job{}, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, movieIndex, len(results))
	}

	movie := results[movieIndex]
	agent, ok := m.resolver.AgentBySource(movie.Source)
	if !ok {
		return Job{}, fmt.Errorf("no agent available for source %q", movie.Source)
	}

	ctx, cancel := context.WithTimeout(m.baseCtx, m.timeout)
	j := &job{
		id:        newJobID(),
		movie:     movie,
		status:    StatusProcessing,
		progress:  10,
		startedAt: time.Now(),
		cancel:    cancel,
	}
	m.jobs.Add(j.id, j)

	m.wg.Add(1)
	go m.run(ctx, j, agent)

	log.Printf("[extraction] job %s started: %q via %s", j.id, movie.Title, movie.Source)
	return j.snapshot(), nil
}

func (m *Manager) run(ctx context.Context, j *job, agent agents.Agent) {
	defer m.wg.Done()
	defer j.cancel()

	target := j.movie.DetailURL
	if target == "" {
		target = j.movie.URL
	}

	j.mu.Lock()
	j.progress = 25
	j.mu.Unlock()

	result, err := agent.ExtractLinks(ctx, target)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.completedAt = time.Now()

	switch {
	case err == nil:
		j.status = StatusCompleted
		j.progress = 100
		j.result = result
		log.Printf("[extraction] job %s completed: %d link(s)", j.id, result.TotalLinks)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		j.status = StatusCancelled
		j.errMsg = "cancelled"
		log.Printf("[extraction] job %s cancelled", j.id)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		j.status = StatusError
		j.errMsg = fmt.Sprintf("extraction timed out after %s", m.timeout)
		log.Printf("[extraction] job %s timed out", j.id)
	default:
		j.status = StatusError
		j.errMsg = err.Error()
		log.Printf("[extraction] job %s failed: %v", j.id, err)
	}
}

// Status returns the job snapshot. The first time a job is observed completed
// it kicks off the automatic link health check.
func (m *Manager) Status(id string) (Job, error) {
	j, ok := m.jobs.Get(id)
	if !ok {
		return Job{}, ErrJobNotFound
	}

	if m.autoHealth {
		m.maybeStartHealthCheck(j)
	}
	return j.snapshot(), nil
}

func (m *Manager) maybeStartHealthCheck(j *job) {
	j.mu.Lock()
	start := j.status == StatusCompleted && !j.healthStarted && j.result != nil && len(j.result.DownloadLinks) > 0
	if start {
		j.healthStarted = true
	}
	j.mu.Unlock()
	if !start {
		return
	}

	urls := make([]string, len(j.result.DownloadLinks))
	for i, l := range j.result.DownloadLinks {
		urls[i] = l.URL
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(m.baseCtx, m.timeout)
		defer cancel()

		log.Printf("[extraction] job %s: auto health check on %d link(s)", j.id, len(urls))
		results := m.checker.CheckMany(ctx, urls)

		j.mu.Lock()
		j.health = results
		j.healthDone = true
		j.mu.Unlock()
	}()
}

// HealthResults returns the auto health check output for a completed job and
// whether the check has finished.
func (m *Manager) HealthResults(id string) ([]models.LinkHealth, bool, error) {
	j, ok := m.jobs.Get(id)
	if !ok {
		return nil, false, ErrJobNotFound
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.LinkHealth(nil), j.health...), j.healthDone, nil
}

// Cancel interrupts a processing job. Cancelling a finished job is a no-op.
func (m *Manager) Cancel(id string) (Job, error) {
	j, ok := m.jobs.Get(id)
	if !ok {
		return Job{}, ErrJobNotFound
	}

	j.mu.Lock()
	processing := j.status == StatusProcessing
	j.mu.Unlock()

	if processing {
		j.cancel()
	}
	return j.snapshot(), nil
}

func newJobID() string {
	return fmt.Sprintf("extract_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
}
