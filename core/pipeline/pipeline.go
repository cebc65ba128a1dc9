package pipeline

import (
	"context"
	"fmt"
	"time"

	"marketdata-manager/core/apicache"
	"marketdata-manager/core/batch"
	"marketdata-manager/core/fetch"
	"marketdata-manager/core/source"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidateFunc rejects a task before any fetch is attempted. A non-nil
// error marks the task Skipped.
type ValidateFunc func(Task) error

// PersistFunc hands a successfully fetched payload to the concrete
// loader's transform/persist step.
type PersistFunc func(ctx context.Context, task Task, payload []byte) error

// Pipeline orchestrates cache, concurrency gate, source fallback, retry
// and process tracking for one kind of loader.
type Pipeline struct {
	cache       apicache.Store
	coordinator *source.Coordinator
	tracker     Tracker
	logger      *zap.Logger
	cfg         Config

	// sleep is swappable so tests do not wait out real backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

// New assembles a Pipeline.
func New(cache apicache.Store, coordinator *source.Coordinator, tracker Tracker, logger *zap.Logger, cfg Config) *Pipeline {
	return &Pipeline{
		cache:       cache,
		coordinator: coordinator,
		tracker:     tracker,
		logger:      logger,
		cfg:         cfg,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Run executes one batch of tasks.
//
// Cache hits complete before any concurrency slot is taken; only misses
// go through the gate. The returned error is non-nil when the run was
// aborted (first failure with ContinueOnError disabled, an auth
// failure, or a cancelled context); the BatchRun always reports the
// terminal state and counts either way.
func (p *Pipeline) Run(ctx context.Context, name string, tasks []Task, validate ValidateFunc, persist PersistFunc) (*BatchRun, []TaskResult, error) {
	run := &BatchRun{
		ID:        uuid.NewString(),
		Name:      name,
		State:     RunStateRunning,
		StartedAt: time.Now(),
	}

	if err := p.tracker.Start(ctx, run); err != nil {
		// Tracking is observability, not control flow.
		p.logger.Warn("failed to record run start", zap.String("run_id", run.ID), zap.Error(err))
	}

	p.logger.Info("starting batch run",
		zap.String("run_id", run.ID),
		zap.String("name", name),
		zap.Int("tasks", len(tasks)),
	)

	results, runErr := p.execute(ctx, tasks, validate, persist)

	for _, r := range results {
		switch r.Status {
		case StatusSucceeded:
			run.Succeeded++
		case StatusSkipped:
			run.Skipped++
		default:
			run.Failed++
		}
	}
	run.finish(time.Now())

	if err := p.tracker.Complete(ctx, run); err != nil {
		p.logger.Warn("failed to record run completion", zap.String("run_id", run.ID), zap.Error(err))
	}

	p.logger.Info("batch run finished",
		zap.String("run_id", run.ID),
		zap.String("state", string(run.State)),
		zap.Int("succeeded", run.Succeeded),
		zap.Int("failed", run.Failed),
		zap.Int("skipped", run.Skipped),
	)

	return run, results, runErr
}

// execute walks the tasks through validation and the cache, then pushes
// the remaining misses through the concurrency gate.
func (p *Pipeline) execute(ctx context.Context, tasks []Task, validate ValidateFunc, persist PersistFunc) ([]TaskResult, error) {
	results := make([]TaskResult, 0, len(tasks))
	var misses []Task

	for _, task := range tasks {
		if validate != nil {
			if err := validate(task); err != nil {
				results = append(results, TaskResult{
					Task:   task,
					Status: StatusSkipped,
					Err:    err,
				})
				continue
			}
		}

		payload, hit := p.cache.Get(ctx, task.CacheKey)
		if hit {
			r := TaskResult{Task: task, Status: StatusSucceeded, Payload: payload, FromCache: true}
			if persist != nil {
				if err := persist(ctx, task, payload); err != nil {
					r.Status = StatusFailed
					r.Err = fmt.Errorf("failed to persist cached payload: %w", err)
				}
			}
			results = append(results, r)
			continue
		}

		misses = append(misses, task)
	}

	if len(misses) == 0 {
		return results, nil
	}

	// An auth failure poisons the rest of the run: cancel fetches that
	// have not started yet so the credential problem surfaces once.
	runCtx, abort := context.WithCancelCause(ctx)
	defer abort(nil)

	gateResult, err := batch.Run(runCtx, misses, func(ctx context.Context, task Task) (TaskResult, error) {
		r := p.fetchOne(ctx, task, persist)
		if r.Status == StatusFailed {
			if fetch.KindOf(r.Err) == fetch.KindAuthFailed {
				abort(r.Err)
			}
			return r, r.Err
		}
		return r, nil
	}, batch.Options{
		MaxConcurrent:   p.cfg.MaxConcurrent,
		InterBatchDelay: p.cfg.InterBatchDelay(),
		ContinueOnError: p.cfg.ContinueOnError,
	})
	if err != nil {
		// Aborted dispatch discards the gate's partial result, so every
		// miss is failed here. Misses are walked positionally: tasks are
		// not deduplicated, and two tasks for the same symbol must both
		// end in a terminal result.
		if cause := context.Cause(runCtx); cause != nil && cause != context.Canceled {
			err = cause
		}
		for _, task := range misses {
			results = append(results, TaskResult{Task: task, Status: StatusFailed, Err: err})
		}
		return results, err
	}

	for _, r := range gateResult.Successes {
		results = append(results, r)
	}
	for _, f := range gateResult.Failures {
		results = append(results, TaskResult{Task: f.Item, Status: StatusFailed, Err: f.Err})
	}

	var runErr error
	if cause := context.Cause(runCtx); cause != nil && cause != context.Canceled {
		runErr = cause
	}
	return results, runErr
}

// fetchOne resolves a single task through source fallback with retry,
// then caches and persists the payload.
func (p *Pipeline) fetchOne(ctx context.Context, task Task, persist PersistFunc) TaskResult {
	r := TaskResult{Task: task, Status: StatusInFlight}

	resolved, err := p.resolveWithRetry(ctx, task)
	if err != nil {
		r.Status = StatusFailed
		r.Err = err
		return r
	}

	p.cache.Set(ctx, task.CacheKey, resolved.Source, task.EndpointTag, resolved.Payload, 200, p.cfg.CacheTTL())

	if persist != nil {
		if err := persist(ctx, task, resolved.Payload); err != nil {
			r.Status = StatusFailed
			r.Err = fmt.Errorf("failed to persist payload: %w", err)
			return r
		}
	}

	r.Status = StatusSucceeded
	r.Payload = resolved.Payload
	r.Source = resolved.Source
	return r
}

// resolveWithRetry wraps fallback resolution in the retry/backoff loop.
// Only retryable kinds (rate-limited, transient network) are retried;
// everything else fails immediately.
func (p *Pipeline) resolveWithRetry(ctx context.Context, task Task) (*source.Resolved, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if cause := context.Cause(ctx); cause != nil {
				return nil, cause
			}
			return nil, err
		}

		resolved, err := p.coordinator.Resolve(ctx, source.Item{
			EntityID: task.EntityID,
			Symbol:   task.Symbol,
		}, task.Sources)
		if err == nil {
			return resolved, nil
		}
		lastErr = err

		if !fetch.IsRetryable(err) || attempt >= p.cfg.MaxRetries {
			return nil, lastErr
		}

		delay := p.cfg.RetryBaseDelay() << attempt
		p.logger.Debug("retrying after backoff",
			zap.Int64("entity_id", task.EntityID),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := p.sleep(ctx, delay); err != nil {
			return nil, lastErr
		}
	}
}
