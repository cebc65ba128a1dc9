package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"marketdata-manager/core/apicache"
	"marketdata-manager/core/fetch"
	"marketdata-manager/core/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memCache is an in-memory apicache.Store for pipeline tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	return payload, ok
}

func (c *memCache) Set(_ context.Context, key, _, _ string, payload []byte, _ int, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = payload
}

func (c *memCache) CleanupExpired(context.Context, string) (int64, error) {
	return 0, nil
}

var _ apicache.Store = (*memCache)(nil)

// memMappings is an in-memory source.MappingStore.
type memMappings struct {
	mu       sync.Mutex
	mappings map[string]*source.Mapping
}

func newMemMappings() *memMappings {
	return &memMappings{mappings: make(map[string]*source.Mapping)}
}

func (s *memMappings) Find(_ context.Context, entityID int64, sourceName string) (*source.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mappings[fmt.Sprintf("%d|%s", entityID, sourceName)]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (s *memMappings) Upsert(_ context.Context, m *source.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *m
	s.mappings[fmt.Sprintf("%d|%s", m.EntityID, m.SourceName)] = &copied
	return nil
}

// flakyAdapter fails a scripted number of times before succeeding.
type flakyAdapter struct {
	mu       sync.Mutex
	name     string
	failures int
	failKind fetch.Kind
	payload  []byte
	attempts int
}

func (a *flakyAdapter) Name() string { return a.name }

func (a *flakyAdapter) Fetch(context.Context, string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts++
	if a.attempts <= a.failures {
		return nil, fetch.NewError(a.name, a.failKind, errors.New("scripted failure"))
	}
	return a.payload, nil
}

func (a *flakyAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attempts
}

// recorder collects persisted payloads.
type recorder struct {
	mu       sync.Mutex
	payloads map[string][]byte
	err      error
}

func newRecorder() *recorder {
	return &recorder{payloads: make(map[string][]byte)}
}

func (r *recorder) persist(_ context.Context, task Task, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.payloads[task.Symbol] = payload
	return nil
}

func newTestPipeline(cache apicache.Store, adapters []fetch.Adapter, cfg Config) *Pipeline {
	coord := source.NewCoordinator(adapters, newMemMappings(), zap.NewNop())
	p := New(cache, coord, NopTracker{}, zap.NewNop(), cfg)
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func testConfig() Config {
	return Config{
		MaxConcurrent:   2,
		MaxRetries:      2,
		ContinueOnError: true,
		CacheTTLMinutes: 60,
	}
}

func task(id int64, symbol string, sources ...string) Task {
	return Task{
		EntityID:    id,
		Symbol:      symbol,
		Sources:     sources,
		CacheKey:    CacheKey("test", symbol),
		EndpointTag: "test/latest",
	}
}

func TestRunFetchesCachesAndPersists(t *testing.T) {
	cache := newMemCache()
	adapter := &flakyAdapter{name: "x", payload: []byte(`{"price":42}`)}
	p := newTestPipeline(cache, []fetch.Adapter{adapter}, testConfig())
	rec := newRecorder()

	run, results, err := p.Run(context.Background(), "quotes", []Task{task(1, "AAPL", "x")}, nil, rec.persist)
	require.NoError(t, err)

	assert.Equal(t, RunStateSuccess, run.State)
	assert.Equal(t, 1, run.Succeeded)
	require.Len(t, results, 1)
	assert.Equal(t, StatusSucceeded, results[0].Status)
	assert.Equal(t, "x", results[0].Source)
	assert.False(t, results[0].FromCache)

	// Payload cached and persisted.
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, []byte(`{"price":42}`), rec.payloads["AAPL"])
}

func TestRunServesCacheHitWithoutFetching(t *testing.T) {
	cache := newMemCache()
	cache.entries[CacheKey("test", "AAPL")] = []byte(`{"cached":true}`)

	adapter := &flakyAdapter{name: "x", payload: []byte(`{"fresh":true}`)}
	p := newTestPipeline(cache, []fetch.Adapter{adapter}, testConfig())
	rec := newRecorder()

	run, results, err := p.Run(context.Background(), "quotes", []Task{task(1, "AAPL", "x")}, nil, rec.persist)
	require.NoError(t, err)

	assert.Equal(t, RunStateSuccess, run.State)
	require.Len(t, results, 1)
	assert.True(t, results[0].FromCache)
	assert.Equal(t, []byte(`{"cached":true}`), rec.payloads["AAPL"])
	// No network call, no fresh cache write.
	assert.Equal(t, 0, adapter.callCount())
	assert.Equal(t, 0, cache.sets)
}

func TestRunRetriesRateLimitedThenSucceeds(t *testing.T) {
	cache := newMemCache()
	adapter := &flakyAdapter{name: "x", failures: 2, failKind: fetch.KindRateLimited, payload: []byte(`{}`)}
	p := newTestPipeline(cache, []fetch.Adapter{adapter}, testConfig())

	run, _, err := p.Run(context.Background(), "quotes", []Task{task(1, "AAPL", "x")}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, RunStateSuccess, run.State)
	assert.Equal(t, 3, adapter.callCount())
}

func TestRunDoesNotRetryPermanentFailures(t *testing.T) {
	cache := newMemCache()
	adapter := &flakyAdapter{name: "x", failures: 10, failKind: fetch.KindNotFound}
	p := newTestPipeline(cache, []fetch.Adapter{adapter}, testConfig())

	run, results, _ := p.Run(context.Background(), "quotes", []Task{task(1, "AAPL", "x")}, nil, nil)

	assert.Equal(t, RunStateFailed, run.State)
	require.Len(t, results, 1)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Equal(t, 1, adapter.callCount())
}

func TestRunExhaustsRetries(t *testing.T) {
	cache := newMemCache()
	adapter := &flakyAdapter{name: "x", failures: 10, failKind: fetch.KindRateLimited}
	p := newTestPipeline(cache, []fetch.Adapter{adapter}, testConfig())

	run, _, _ := p.Run(context.Background(), "quotes", []Task{task(1, "AAPL", "x")}, nil, nil)

	assert.Equal(t, RunStateFailed, run.State)
	// Initial attempt plus MaxRetries.
	assert.Equal(t, 3, adapter.callCount())
}

func TestRunSkipsOnValidationReject(t *testing.T) {
	cache := newMemCache()
	adapter := &flakyAdapter{name: "x", payload: []byte(`{}`)}
	p := newTestPipeline(cache, []fetch.Adapter{adapter}, testConfig())

	validate := func(tk Task) error {
		if tk.Symbol == "BOND1" {
			return fetch.NewError("", fetch.KindUnsupported, errors.New("bonds are not quotable"))
		}
		return nil
	}

	run, results, err := p.Run(context.Background(), "quotes",
		[]Task{task(1, "AAPL", "x"), task(2, "BOND1", "x")}, validate, nil)
	require.NoError(t, err)

	assert.Equal(t, RunStateSuccess, run.State)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 0, run.Failed)

	var skipped *TaskResult
	for i := range results {
		if results[i].Status == StatusSkipped {
			skipped = &results[i]
		}
	}
	require.NotNil(t, skipped)
	assert.Equal(t, "BOND1", skipped.Task.Symbol)
	// Validation rejects never cost a network call.
	assert.Equal(t, 1, adapter.callCount())
}

func TestRunMixedOutcomesIsCompletedWithErrors(t *testing.T) {
	cache := newMemCache()
	good := &flakyAdapter{name: "good", payload: []byte(`{}`)}
	bad := &flakyAdapter{name: "bad", failures: 10, failKind: fetch.KindNotFound}
	p := newTestPipeline(cache, []fetch.Adapter{good, bad}, testConfig())

	run, _, _ := p.Run(context.Background(), "quotes",
		[]Task{task(1, "AAPL", "good"), task(2, "ZZZZ", "bad")}, nil, nil)

	assert.Equal(t, RunStateCompletedWithErrors, run.State)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 1, run.Failed)
}

func TestRunAbortsOnAuthFailure(t *testing.T) {
	cache := newMemCache()
	bad := &flakyAdapter{name: "x", failures: 10, failKind: fetch.KindAuthFailed}
	cfg := testConfig()
	cfg.MaxConcurrent = 1
	p := newTestPipeline(cache, []fetch.Adapter{bad}, cfg)

	tasks := []Task{task(1, "AAPL", "x"), task(2, "MSFT", "x"), task(3, "GOOG", "x")}
	run, results, err := p.Run(context.Background(), "quotes", tasks, nil, nil)

	require.Error(t, err)
	assert.Equal(t, fetch.KindAuthFailed, fetch.KindOf(err))
	assert.Equal(t, RunStateFailed, run.State)
	// Every task is accounted for even though the run aborted.
	assert.Len(t, results, 3)
	// Only the first task burned a vendor call.
	assert.Equal(t, 1, bad.callCount())
}

func TestRunAbortAccountsForDuplicateTasks(t *testing.T) {
	cache := newMemCache()
	bad := &flakyAdapter{name: "x", failures: 10, failKind: fetch.KindNotFound}
	cfg := testConfig()
	cfg.MaxConcurrent = 1
	cfg.ContinueOnError = false
	p := newTestPipeline(cache, []fetch.Adapter{bad}, cfg)

	// Two tasks for the same symbol share a cache key; both must still
	// end in their own terminal result when the run aborts.
	tasks := []Task{task(1, "AAPL", "x"), task(1, "AAPL", "x")}
	run, results, err := p.Run(context.Background(), "quotes", tasks, nil, nil)

	require.Error(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, StatusFailed, r.Status)
		assert.Error(t, r.Err)
	}
	assert.Equal(t, 2, run.Failed)
	assert.Equal(t, RunStateFailed, run.State)
}

func TestRunFailsTaskWhenPersistFails(t *testing.T) {
	cache := newMemCache()
	adapter := &flakyAdapter{name: "x", payload: []byte(`{}`)}
	p := newTestPipeline(cache, []fetch.Adapter{adapter}, testConfig())
	rec := newRecorder()
	rec.err = errors.New("constraint violation")

	run, results, _ := p.Run(context.Background(), "quotes", []Task{task(1, "AAPL", "x")}, nil, rec.persist)

	assert.Equal(t, RunStateFailed, run.State)
	require.Len(t, results, 1)
	assert.Equal(t, StatusFailed, results[0].Status)
}

func TestRunEmptyBatchIsSuccess(t *testing.T) {
	p := newTestPipeline(newMemCache(), nil, testConfig())

	run, results, err := p.Run(context.Background(), "quotes", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, RunStateSuccess, run.State)
	assert.Empty(t, results)
}

func TestCacheKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, CacheKey("quotes", "latest", "AAPL"), CacheKey("quotes", "latest", "AAPL"))
	assert.NotEqual(t, CacheKey("quotes", "latest", "AAPL"), CacheKey("quotes", "latest", "MSFT"))
}
