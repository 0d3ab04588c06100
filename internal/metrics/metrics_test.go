package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	histograms []histCall
	flushCount int
	closed     bool
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func install(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	SetBackend(fb)
	t.Cleanup(func() { SetBackend(nil) })
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordStep("churn", "load", nil, 2*time.Second)
	RecordStep("churn", "store", errors.New("boom"), 1500*time.Millisecond)

	require.Len(t, fb.counters, 2)
	require.Len(t, fb.histograms, 2)

	assert.Equal(t, StepTotal, fb.counters[0].name)
	assert.Equal(t, Labels{"job": "churn", "step": "load", "status": "success"}, fb.counters[0].labels)
	assert.Equal(t, "failure", fb.counters[1].labels["status"])

	assert.Equal(t, StepDuration, fb.histograms[1].name)
	assert.Equal(t, 1.5, fb.histograms[1].value)
}

func TestRecordRows(t *testing.T) {
	fb := install(t)

	RecordRows("churn", "loaded", 7043)
	RecordRows("churn", "duplicate", 0)
	RecordRows("churn", "duplicate", -1)

	require.Len(t, fb.counters, 1)
	assert.Equal(t, RecordsTotal, fb.counters[0].name)
	assert.Equal(t, 7043.0, fb.counters[0].delta)
	assert.Equal(t, "loaded", fb.counters[0].labels["kind"])
}

func TestRecordReportRows(t *testing.T) {
	fb := install(t)

	RecordReportRows("churn", "Anomalies", true, 1)
	RecordReportRows("churn", "Data Type", false, 0)

	require.Len(t, fb.counters, 1)
	assert.Equal(t, Labels{"job": "churn", "check": "Anomalies", "degraded": "true"}, fb.counters[0].labels)
}

func TestRecordBatches(t *testing.T) {
	fb := install(t)

	RecordBatches("churn", 3)
	RecordBatches("churn", 0)

	require.Len(t, fb.counters, 1)
	assert.Equal(t, BatchesTotal, fb.counters[0].name)
	assert.Equal(t, 3.0, fb.counters[0].delta)
}

func TestFlushAndClose(t *testing.T) {
	fb := install(t)

	require.NoError(t, Flush())
	require.NoError(t, Close())
	assert.Equal(t, 2, fb.flushCount)
	assert.True(t, fb.closed)

	// After Close the no-op backend is active again.
	RecordRows("churn", "loaded", 1)
	assert.Empty(t, fb.counters)
}

func TestNopBackend(t *testing.T) {
	SetBackend(nil)
	RecordStep("j", "s", nil, time.Second)
	assert.NoError(t, Flush())
	assert.NoError(t, Close())
}
