package profiler

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	p := New(0)
	p.Record("detect", 3*time.Millisecond)
	p.Record("detect", 1*time.Millisecond)
	p.Record("detect", 2*time.Millisecond)

	s, ok := p.Operation("detect")
	require.True(t, ok)
	assert.Equal(t, int64(3), s.Count)
	assert.Equal(t, 3, s.Samples)
	assert.Equal(t, 6*time.Millisecond, s.WindowTotal)
	assert.Equal(t, 2*time.Millisecond, s.Avg)
	assert.Equal(t, 1*time.Millisecond, s.Min)
	assert.Equal(t, 3*time.Millisecond, s.Max)

	_, ok = p.Operation("missing")
	assert.False(t, ok)
}

func TestRecordDropsOldestSample(t *testing.T) {
	p := New(2)
	p.Record("fixed", 10*time.Millisecond)
	p.Record("fixed", 2*time.Millisecond)
	p.Record("fixed", 4*time.Millisecond)

	s, _ := p.Operation("fixed")
	assert.Equal(t, int64(3), s.Count)
	// the window holds 2 and 4 only
	assert.Equal(t, 2, s.Samples)
	assert.Equal(t, 6*time.Millisecond, s.WindowTotal)
	assert.Equal(t, 3*time.Millisecond, s.Avg)
	// min and max cover every sample ever seen
	assert.Equal(t, 10*time.Millisecond, s.Max)
	assert.Equal(t, 2*time.Millisecond, s.Min)
}

func TestStartOperation(t *testing.T) {
	p := New(0)
	done := p.StartOperation("order8")
	done()

	stats := p.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "order8", stats[0].Name)
	assert.Equal(t, int64(1), stats[0].Count)
}

func TestStatsSorted(t *testing.T) {
	p := New(0)
	for _, name := range []string{"order8", "difference", "fixed"} {
		p.Record(name, time.Millisecond)
	}

	var names []string
	for _, s := range p.Stats() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"difference", "fixed", "order8"}, names)
}

func TestReport(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	p := New(0)
	p.Record("difference", time.Millisecond)
	p.Record("fixed", time.Millisecond)
	p.Report(logger)

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "difference", entries[0].Data["operation"])
	assert.Equal(t, "fixed", entries[1].Data["operation"])
	assert.Equal(t, "memory usage", entries[2].Message)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}
