package memcheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const freeOutput = `               total        used        free      shared  buff/cache   available
Mem:        16303412     4218936     9127340      512364     2957136    11223052
Swap:        2097148           0     2097148
`

type fakeRunner struct {
	outputs [][]byte
	errs    []error
	calls   int
	name    string
	args    []string
}

func (m *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	idx := m.calls
	m.calls++
	m.name = name
	m.args = args

	var err error
	if idx < len(m.errs) {
		err = m.errs[idx]
	}
	if err != nil {
		return nil, err
	}
	return m.outputs[idx], nil
}

func TestParseFree(t *testing.T) {
	info, err := ParseFree([]byte(freeOutput))
	require.NoError(t, err)

	assert.Equal(t, datasize.ByteSize(16303412)*datasize.KB, info.Total)
	assert.Equal(t, datasize.ByteSize(4218936)*datasize.KB, info.Used)
}

func TestParseFreeErrors(t *testing.T) {
	cases := map[string]string{
		"no memory row": "Swap: 1 2 3\n",
		"truncated":     "Mem: 100\n",
		"not a number":  "Mem: lots 10\n",
		"empty":         "",
	}

	for name, out := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFree([]byte(out))
			require.Error(t, err)
		})
	}
}

func TestFreeReader(t *testing.T) {
	runner := &fakeRunner{outputs: [][]byte{[]byte(freeOutput), []byte(freeOutput)}}
	reader := NewFreeReader([]string{"free", "-k"}, 3, WithRunner(runner), WithReaderLog(zaptest.NewLogger(t).Sugar()))

	total, err := reader.Total(context.Background())
	require.NoError(t, err)
	assert.Equal(t, datasize.ByteSize(16303412)*datasize.KB, total)

	used, err := reader.Used(context.Background())
	require.NoError(t, err)
	assert.Equal(t, datasize.ByteSize(4218936)*datasize.KB, used)

	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, "free", runner.name)
	assert.Equal(t, []string{"-k"}, runner.args)
}

func TestFreeReaderRetriesCommandFailures(t *testing.T) {
	runner := &fakeRunner{
		outputs: [][]byte{nil, nil, []byte(freeOutput)},
		errs:    []error{errors.New("exit status 1"), errors.New("exit status 1")},
	}
	reader := NewFreeReader([]string{"free"}, 3, WithRunner(runner), WithBackOff(backoff.NewConstantBackOff(time.Millisecond)))

	used, err := reader.Used(context.Background())
	require.NoError(t, err)
	assert.Equal(t, datasize.ByteSize(4218936)*datasize.KB, used)
	assert.Equal(t, 3, runner.calls)
}

func TestFreeReaderGivesUp(t *testing.T) {
	runner := &fakeRunner{
		errs: []error{errors.New("exit status 1"), errors.New("exit status 1")},
	}
	reader := NewFreeReader([]string{"free"}, 2, WithRunner(runner), WithBackOff(backoff.NewConstantBackOff(time.Millisecond)))

	_, err := reader.Total(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, runner.calls)
}

func TestFreeReaderDoesNotRetryGarbage(t *testing.T) {
	runner := &fakeRunner{outputs: [][]byte{[]byte("garbage\n")}}
	reader := NewFreeReader([]string{"free"}, 5, WithRunner(runner), WithBackOff(backoff.NewConstantBackOff(time.Millisecond)))

	_, err := reader.Total(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, runner.calls)
}

func TestNewReader(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()

	r, err := NewReader(DefaultConfig(), log)
	require.NoError(t, err)
	assert.IsType(t, &FreeReader{}, r)

	cfg := DefaultConfig()
	cfg.Source = SourceGopsutil
	r, err = NewReader(cfg, log)
	require.NoError(t, err)
	assert.IsType(t, StatReader{}, r)

	cfg.Source = "procfs"
	_, err = NewReader(cfg, log)
	require.Error(t, err)
}
