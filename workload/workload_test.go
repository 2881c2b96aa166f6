package workload

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTemplate = `
NAME: seq-write
IO_SIZE: 128k
RW_RATIO: 0
NUM_WORKERS: 2
NUM_FILES: 4
FILE_SIZE: 256
WARMUP: 10
DURATION: 60
IO_ALIGNMENT: 0
DEDUPE_PERCENTAGE: 0
COMPRESS_PERCENTAGE: 0
ACCESS_PATTERN: Sequential
BUFFERED_IO: true
DATA_TRANSFER: sync
BURST_IO: false
`

func TestLoad(t *testing.T) {
	spec, err := Load(filepath.Join("testdata", "randread-70-30.yml"))
	require.NoError(t, err)

	expected := &Spec{
		Name:               "randread-70-30",
		IOSize:             "4k",
		RWRatio:            70,
		NumWorkers:         8,
		NumFiles:           4,
		FileSize:           1024,
		Warmup:             30,
		Duration:           120,
		IOAlignment:        "4k",
		DedupePercentage:   50,
		CompressPercentage: 0,
		AccessPattern:      AccessRandom,
		BufferedIO:         false,
		DataTransfer:       TransferAsync,
		QueueDepth:         32,
		BurstIO:            true,
	}
	assert.Equal(t, expected, spec)
	assert.Equal(t, 1024*datasize.MB, spec.FileSizeBytes())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "does-not-exist.yml"))
	require.Error(t, err)
}

func TestParseSyncWithoutQueueDepth(t *testing.T) {
	spec, err := Parse([]byte(validTemplate))
	require.NoError(t, err)

	assert.Equal(t, AccessSequential, spec.AccessPattern)
	assert.Equal(t, TransferSync, spec.DataTransfer)
	assert.Equal(t, "0", spec.IOAlignment)
	assert.Zero(t, spec.QueueDepth)
}

func TestParseNormalizesEnums(t *testing.T) {
	data := strings.Replace(validTemplate, "ACCESS_PATTERN: Sequential", "ACCESS_PATTERN: RANDOM", 1)
	data = strings.Replace(data, "DATA_TRANSFER: sync", "DATA_TRANSFER: Sync", 1)

	spec, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, AccessRandom, spec.AccessPattern)
	assert.Equal(t, TransferSync, spec.DataTransfer)
	assert.Equal(t, "random", spec.AccessPattern.Fold())
}

func TestParseReportsAllMissingKeys(t *testing.T) {
	data := strings.Replace(validTemplate, "NAME: seq-write\n", "", 1)
	data = strings.Replace(data, "DURATION: 60\n", "DURATION:\n", 1)

	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required key "NAME"`)
	assert.Contains(t, err.Error(), `missing required key "DURATION"`)
	assert.NotContains(t, err.Error(), `"IO_SIZE"`)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		replace [2]string
		errMsg  string
	}{
		{
			name:    "unknown access pattern",
			replace: [2]string{"ACCESS_PATTERN: Sequential", "ACCESS_PATTERN: Strided"},
			errMsg:  "unsupported access pattern",
		},
		{
			name:    "unknown transfer mode",
			replace: [2]string{"DATA_TRANSFER: sync", "DATA_TRANSFER: mmap"},
			errMsg:  "unsupported data transfer mode",
		},
		{
			name:    "async without queue depth",
			replace: [2]string{"DATA_TRANSFER: sync", "DATA_TRANSFER: async"},
			errMsg:  "QUEUE_DEPTH must be positive",
		},
		{
			name:    "read ratio out of range",
			replace: [2]string{"RW_RATIO: 0", "RW_RATIO: 101"},
			errMsg:  "RW_RATIO must be in [0, 100]",
		},
		{
			name:    "full dedupe",
			replace: [2]string{"DEDUPE_PERCENTAGE: 0", "DEDUPE_PERCENTAGE: 100"},
			errMsg:  "DEDUPE_PERCENTAGE must be in [0, 100)",
		},
		{
			name:    "empty io size",
			replace: [2]string{"IO_SIZE: 128k", `IO_SIZE: ""`},
			errMsg:  "IO_SIZE must not be empty",
		},
		{
			name:    "no workers",
			replace: [2]string{"NUM_WORKERS: 2", "NUM_WORKERS: 0"},
			errMsg:  "NUM_WORKERS must be positive",
		},
		{
			name:    "wrong type",
			replace: [2]string{"NUM_FILES: 4", "NUM_FILES: many"},
			errMsg:  "invalid workload template",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := strings.Replace(validTemplate, c.replace[0], c.replace[1], 1)
			require.NotEqual(t, validTemplate, data)

			_, err := Parse([]byte(data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.errMsg)
		})
	}
}

func TestParseKeepsSizesVerbatim(t *testing.T) {
	for _, size := range []string{"4k,16k", "4KiB", "4ki", "512", "1m"} {
		t.Run(size, func(t *testing.T) {
			data := strings.Replace(validTemplate, "IO_SIZE: 128k", "IO_SIZE: "+size, 1)
			data = strings.Replace(data, "IO_ALIGNMENT: 0", "IO_ALIGNMENT: "+size, 1)

			spec, err := Parse([]byte(data))
			require.NoError(t, err)
			assert.Equal(t, size, spec.IOSize)
			assert.Equal(t, size, spec.IOAlignment)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("NAME: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse workload template")

	_, err = Parse([]byte(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = Parse([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a mapping")
}
