package diagnostics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

var errTransport = errors.New("connection refused")

type fakeSource struct {
	mu     sync.Mutex
	values []float64
	err    error
	calls  [][]string
}

func (f *fakeSource) FetchValues(_ context.Context, keys []string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, keys)
	if f.err != nil {
		return nil, f.err
	}

	return f.values, nil
}

func (f *fakeSource) set(values ...float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values = values
}

type fakeSession struct {
	source  ValueSource
	err     error
	service string
}

func (s *fakeSession) Service(_ context.Context, name string) (ValueSource, error) {
	s.service = name
	if s.err != nil {
		return nil, s.err
	}

	return s.source, nil
}

type fakeSink struct {
	mu      sync.Mutex
	reports []Report
	err     error
}

func (s *fakeSink) PublishReport(_ context.Context, report Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)

	return s.err
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.reports)
}

func (s *fakeSink) last() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reports[len(s.reports)-1]
}

type fakeObserver struct {
	reports  int
	failures []error
}

func (o *fakeObserver) ObserveReport(Report)     { o.reports++ }
func (o *fakeObserver) ObserveFailure(err error) { o.failures = append(o.failures, err) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newTestReporter(source ValueSource, sink Sink, joints []string, errorTemperature float64, opts ...Option) *Reporter {
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "report-1" }),
	}, opts...)

	return New(context.Background(), discardLogger(), &fakeSession{source: source}, sink, joints, errorTemperature, opts...)
}

// blockingSource holds FetchValues open until release is closed.
type blockingSource struct {
	values  []float64
	entered chan struct{}
	release chan struct{}
}

func newBlockingSource(values ...float64) *blockingSource {
	return &blockingSource{
		values:  values,
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingSource) FetchValues(ctx context.Context, _ []string) ([]float64, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
		return b.values, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
