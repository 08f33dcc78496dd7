package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// LoadState is the lifecycle of a dashboard view.
type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateError   LoadState = "error"
)

// LoadFilter is the active property and date window of a dashboard view.
type LoadFilter struct {
	PropertyID string
	From       time.Time
	To         time.Time
}

// LoadResult is delivered to subscribers on every settled load. Activities
// and KPIs are populated together or not at all.
type LoadResult struct {
	State      LoadState
	Filter     LoadFilter
	Activities []models.Activity
	KPIs       models.KPIData
	Err        error
}

// Fetcher supplies the two concurrent reads a dashboard load joins.
type Fetcher interface {
	FetchActivities(ctx context.Context, f LoadFilter) ([]models.Activity, error)
	FetchKPIs(ctx context.Context, f LoadFilter) (models.KPIData, error)
}

// FetchActivities implements Fetcher on the dashboard service using the
// first page of the activity listing.
func (s *Service) FetchActivities(ctx context.Context, f LoadFilter) ([]models.Activity, error) {
	activities, _, err := s.ListActivities(ctx, ActivityQuery{
		PropertyID: f.PropertyID,
		From:       f.From,
		To:         f.To,
	})
	return activities, err
}

// FetchKPIs implements Fetcher on the dashboard service.
func (s *Service) FetchKPIs(ctx context.Context, f LoadFilter) (models.KPIData, error) {
	return s.ComputeKPIs(ctx, f.PropertyID, f.From, f.To)
}

// Loader drives the idle -> loading -> {ready, error} lifecycle of a
// dashboard view. Every Load bumps a generation counter; a fetch settling
// after a newer Load started is discarded, so a late response for an
// abandoned filter never overwrites the current view. No state is terminal.
type Loader struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	gen     uint64
	state   LoadState
	last    LoadResult
	subs    map[int]func(LoadResult)
	nextSub int
}

// NewLoader wires a loader around a fetcher. Each load is bounded by the
// given timeout.
func NewLoader(fetcher Fetcher, timeout time.Duration, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
		state:   StateIdle,
		subs:    make(map[int]func(LoadResult)),
	}
}

// Subscribe registers a callback for settled loads and returns the handle
// that releases it. Callbacks run without the loader lock held.
func (l *Loader) Subscribe(fn func(LoadResult)) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// State returns the current lifecycle state.
func (l *Loader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Last returns the most recently settled result.
func (l *Loader) Last() LoadResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Load starts fetching for the given filter, superseding any load still in
// flight. Activities and KPIs are fetched concurrently and joined: both must
// succeed or the load settles in the error state. The returned channel
// closes when this load's fetch finishes, whether or not its result was
// discarded as stale.
func (l *Loader) Load(ctx context.Context, filter LoadFilter) <-chan struct{} {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.state = StateLoading
	l.mu.Unlock()

	done := make(chan struct{})

	go func() {
		defer close(done)

		fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
		defer cancel()

		var (
			activities []models.Activity
			kpis       models.KPIData
		)

		g, gctx := errgroup.WithContext(fetchCtx)
		g.Go(func() error {
			var err error
			activities, err = l.fetcher.FetchActivities(gctx, filter)
			return err
		})
		g.Go(func() error {
			var err error
			kpis, err = l.fetcher.FetchKPIs(gctx, filter)
			return err
		})
		err := g.Wait()

		result := LoadResult{
			State:      StateReady,
			Filter:     filter,
			Activities: activities,
			KPIs:       kpis,
		}
		if err != nil {
			result = LoadResult{State: StateError, Filter: filter, Err: err}
		}

		l.settle(gen, result)
	}()

	return done
}

func (l *Loader) settle(gen uint64, result LoadResult) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.logger.Debug("discard stale load result",
			zap.String("property", result.Filter.PropertyID),
			zap.Uint64("generation", gen))
		return
	}

	l.state = result.State
	l.last = result
	subs := make([]func(LoadResult), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	if result.Err != nil {
		l.logger.Warn("dashboard load failed",
			zap.String("property", result.Filter.PropertyID),
			zap.Error(result.Err))
	}

	for _, fn := range subs {
		fn(result)
	}
}
