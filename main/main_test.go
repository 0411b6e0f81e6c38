package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rawbytedev/strkit/pkg/alloc"
	"github.com/rawbytedev/strkit/pkg/b16"
	"github.com/rawbytedev/strkit/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJobYAML(t *testing.T) {
	job, err := LoadJob("testdata/job.yaml")
	require.NoError(t, err)
	assert.Equal(t, Options{HexCase: "upper", BufferSize: 16, Allocator: "pool", Budget: 4096}, job.Options)
	require.Len(t, job.Forms, 2)
	assert.Equal(t, "login", job.Forms[0].Name)
	assert.Equal(t, []KV{{Key: "user", Value: "ada"}, {Key: "remember"}}, job.Forms[0].Pairs)
	assert.Equal(t, []string{"hello"}, job.Encode)
	assert.Equal(t, []string{"48656C6C6F", "zz"}, job.Decode)
}

func TestLoadJobTOML(t *testing.T) {
	job, err := LoadJob("testdata/job.toml")
	require.NoError(t, err)
	assert.Equal(t, "lower", job.Options.HexCase)
	assert.Equal(t, 8, job.Options.BufferSize)
	assert.Equal(t, "heap", job.Options.Allocator)
	require.Len(t, job.Forms, 1)
	assert.Equal(t, []KV{{Key: "user", Value: "ada"}, {Key: "remember"}}, job.Forms[0].Pairs)
	assert.Equal(t, []string{"776f726c64"}, job.Decode)
}

func TestLoadJobErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadJob(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	txt := filepath.Join(dir, "job.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o600))
	_, err = LoadJob(txt)
	require.ErrorIs(t, err, ErrUnknownFormat)

	bad := filepath.Join(dir, "job.yml")
	require.NoError(t, os.WriteFile(bad, []byte("options:\n  allocator: arena\n"), 0o600))
	_, err = LoadJob(bad)
	require.ErrorIs(t, err, ErrInvalidConfig)

	broken := filepath.Join(dir, "job.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[options\n"), 0o600))
	_, err = LoadJob(broken)
	require.Error(t, err)
}

func TestOptionsCase(t *testing.T) {
	o := DefaultOptions()
	c, err := o.Case()
	require.NoError(t, err)
	require.Equal(t, b16.Lower, c)

	o.HexCase = "UPPER"
	c, err = o.Case()
	require.NoError(t, err)
	require.Equal(t, b16.Upper, c)

	o.HexCase = "mixed"
	require.ErrorIs(t, o.Validate(), ErrInvalidConfig)

	o = DefaultOptions()
	o.BufferSize = -1
	require.ErrorIs(t, o.Validate(), ErrInvalidConfig)
}

func TestProcess(t *testing.T) {
	job, err := LoadJob("testdata/job.yaml")
	require.NoError(t, err)

	m := alloc.NewMetrics("test")
	var out bytes.Buffer
	require.NoError(t, process(&out, job, newAllocator(&job.Options, m)))

	want := "form login: user=ada&remember\n" +
		"form search: q=sales+and+marketing%2FMiami&page=2\n" +
		"encode \"hello\": 68656C6C6F\n" +
		"decode 48656C6C6F: \"Hello\"\n"
	require.Equal(t, want, out.String())

	// the search form outgrows the 16-byte buffer
	require.Positive(t, testutil.ToFloat64(m.Allocs))
	require.Zero(t, testutil.ToFloat64(m.Failures))
}

func TestProcessBudget(t *testing.T) {
	job := demoJob()
	job.Options.BufferSize = 0
	job.Options.Budget = 8

	m := alloc.NewMetrics("test")
	var out bytes.Buffer
	require.NoError(t, process(&out, job, newAllocator(&job.Options, m)))

	// the form does not fit the budget and is skipped; short results stay inline
	require.Equal(t, "encode \"strkit\": 7374726b6974\n"+
		"decode 737472206b6974: \"str kit\"\n", out.String())
	require.Positive(t, testutil.ToFloat64(m.Failures))
}

var errClosed = errors.New("closed")

type closedWriter struct{}

func (closedWriter) Write([]byte) (int, error) { return 0, errClosed }

func TestProcessOutputErrorReleases(t *testing.T) {
	jobs := map[string]*Job{
		"form":   {Forms: demoJob().Forms},
		"encode": {Encode: []string{"strkit strings"}},
		"decode": {Decode: []string{"68656c6c6f2c207374726b697420776f726c64"}},
	}
	for name, job := range jobs {
		t.Run(name, func(t *testing.T) {
			job.Options = DefaultOptions()
			job.Options.BufferSize = 0
			lim := alloc.NewLimited(alloc.NewPool(), 4096)

			var out bytes.Buffer
			require.NoError(t, process(&out, job, lim))
			require.Zero(t, lim.Used())

			require.ErrorIs(t, process(closedWriter{}, job, lim), errClosed)
			require.Zero(t, lim.Used())
		})
	}
}

func TestDecodeHex(t *testing.T) {
	lim := alloc.NewLimited(alloc.Heap, 64)

	s, err := decodeHex(view.FromLiteral("68656c6c6f2c207374726b697420776f726c64"), lim)
	require.NoError(t, err)
	require.Equal(t, "hello, strkit world", string(s.Bytes()))
	require.Equal(t, 20, lim.Used())
	s.Release()
	require.Zero(t, lim.Used())

	_, err = decodeHex(view.FromLiteral("68656c6c6f2c207374726b697420776f726c6z"), lim)
	require.ErrorIs(t, err, b16.ErrInvalidDigit)
	require.Zero(t, lim.Used())

	_, err = decodeHex(view.FromLiteral("abc"), lim)
	require.ErrorIs(t, err, b16.ErrOddLength)

	small := alloc.NewLimited(alloc.Heap, 8)
	_, err = decodeHex(view.FromLiteral("68656c6c6f2c207374726b697420776f726c64"), small)
	require.ErrorIs(t, err, alloc.ErrOutOfMemory)
	require.Zero(t, small.Used())
}

func TestRunDemo(t *testing.T) {
	require.NoError(t, run([]string{"-alloc", "pool", "-metrics"}))
	require.Error(t, run([]string{"-alloc", "arena"}))
	require.Error(t, run([]string{"extra"}))
}
