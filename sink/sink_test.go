package sink

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-mrf/motion"
)

type recorder struct {
	names  []string
	closed bool
	err    error
}

func (r *recorder) Write(name string, _ motion.Grid) error {
	if r.err != nil {
		return r.err
	}
	r.names = append(r.names, name)
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func detect(t *testing.T) motion.Result {
	t.Helper()
	a, err := motion.NewFrame(3, 2, []uint8{0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	b, err := motion.NewFrame(3, 2, []uint8{0, 255, 0, 0, 255, 0})
	require.NoError(t, err)

	engine, err := motion.NewThresholdEngine(motion.DefaultParameters(), motion.DefaultOptions())
	require.NoError(t, err)
	result, err := engine.Detect(a, b, motion.DefaultIterations)
	require.NoError(t, err)
	return result
}

func TestWriteResult(t *testing.T) {
	r := &recorder{}
	require.NoError(t, WriteResult(r, detect(t)))
	assert.Equal(t, []string{NameDifference, NameFixed, NameOrder4, NameOrder8}, r.names)
}

func TestWriteResultStopsOnError(t *testing.T) {
	failure := errors.New("disk full")
	r := &recorder{err: failure}

	err := WriteResult(r, detect(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure))
	assert.Contains(t, err.Error(), NameDifference)
}

func TestMulti(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	m := Multi(first, second)

	require.NoError(t, m.Write("mask", motion.Grid{}))
	require.NoError(t, m.Close())

	assert.Equal(t, []string{"mask"}, first.names)
	assert.Equal(t, []string{"mask"}, second.names)
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}
