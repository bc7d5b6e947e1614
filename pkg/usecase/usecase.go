package usecase

import (
	"time"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
	"github.com/dakala/h5p-xapi/pkg/metrics"
	"github.com/dakala/h5p-xapi/pkg/service/correlation"
	"github.com/dakala/h5p-xapi/pkg/xapi"
)

// UseCases wires the normalizer, the repository and the correlation
// tracker into the recording pipeline.
type UseCases struct {
	repo       interfaces.Repository
	tracker    *correlation.Tracker
	normalizer *xapi.Normalizer
	retainRaw  bool
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(*UseCases)

// WithRetainRaw controls whether the original statement JSON is stored on
// the summary row. Off by default; the data grows quickly.
func WithRetainRaw(enabled bool) Option {
	return func(uc *UseCases) {
		uc.retainRaw = enabled
	}
}

// WithMetrics attaches pipeline counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

// WithClock overrides the summary timestamp source. For tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, normalizer *xapi.Normalizer, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		tracker:    correlation.NewTracker(repo),
		normalizer: normalizer,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}
