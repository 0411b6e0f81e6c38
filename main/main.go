// Command strkit runs a job of form encodings and hex conversions through
// strkit strings and reports how their storage behaved.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rawbytedev/strkit"
	"github.com/rawbytedev/strkit/pkg/alloc"
	"github.com/rawbytedev/strkit/pkg/b16"
	"github.com/rawbytedev/strkit/pkg/cursor"
	"github.com/rawbytedev/strkit/pkg/view"
	"github.com/rawbytedev/strkit/pkg/wwwform"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("strkit failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("strkit", flag.ContinueOnError)
	configPath := fs.String("config", "", "job file (.yaml, .yml or .toml); a built-in demo job when empty")
	verbose := fs.Bool("v", false, "debug logging")
	hexCase := fs.String("hex-case", "", "hex digit case: lower or upper")
	bufSize := fs.Int("buffer", -1, "caller buffer size tried before allocating")
	allocName := fs.String("alloc", "", "allocator for owned strings: heap or pool")
	budget := fs.Int("budget", -1, "maximum outstanding allocated bytes, 0 for no limit")
	metrics := fs.Bool("metrics", false, "log allocation counters when done")
	memProfile := fs.String("memprofile", "", "write a heap profile to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unknown arguments: %v", fs.Args())
	}

	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	if *verbose {
		ll.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))

	job := demoJob()
	if *configPath != "" {
		var err error
		if job, err = LoadJob(*configPath); err != nil {
			return err
		}
		slog.Debug("loaded job", "path", *configPath, "forms", len(job.Forms))
	}
	opts := &job.Options
	if *hexCase != "" {
		opts.HexCase = *hexCase
	}
	if *bufSize >= 0 {
		opts.BufferSize = *bufSize
	}
	if *allocName != "" {
		opts.Allocator = *allocName
	}
	if *budget >= 0 {
		opts.Budget = *budget
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	m := alloc.NewMetrics("strkit")
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		return err
	}
	a := newAllocator(opts, m)

	if *memProfile != "" {
		runtime.MemProfileRate = 1
	}
	start := time.Now()
	if err := process(os.Stdout, job, a); err != nil {
		return err
	}
	slog.Info("job done", "forms", len(job.Forms), "encoded", len(job.Encode), "decoded", len(job.Decode), "elapsed", time.Since(start))

	if *metrics {
		if err := logMetrics(reg); err != nil {
			return err
		}
	}
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("write heap profile: %w", err)
		}
	}
	return nil
}

// newAllocator builds the allocator stack: base, optional budget, counters.
func newAllocator(opts *Options, m *alloc.Metrics) alloc.Allocator {
	var a alloc.Allocator = alloc.Heap
	if opts.Allocator == "pool" {
		a = alloc.NewPool()
	}
	if opts.Budget > 0 {
		a = alloc.NewLimited(a, opts.Budget)
	}
	return alloc.Instrument(a, m)
}

// process writes one line per job item to w. Items that fail are logged and
// skipped; only output errors stop the job.
func process(w io.Writer, job *Job, a alloc.Allocator) error {
	hc, err := job.Options.Case()
	if err != nil {
		return err
	}
	aux := make([]byte, job.Options.BufferSize)

	for _, f := range job.Forms {
		pairs := make([]wwwform.Pair, 0, len(f.Pairs))
		for _, kv := range f.Pairs {
			pairs = append(pairs, wwwform.P(kv.Key, kv.Value))
		}
		s, err := newScratch(aux, a)
		if err != nil {
			return err
		}
		err = s.Emit(func(c *cursor.Cursor) int { return wwwform.EncodeForm(c, pairs) })
		if err != nil {
			slog.Warn("form skipped", "name", f.Name, "err", err)
			s.Release()
			continue
		}
		slog.Debug("form encoded", "name", f.Name, "len", s.Len(), "kind", s.Kind())
		_, err = fmt.Fprintf(w, "form %s: %s\n", f.Name, s.Bytes())
		s.Release()
		if err != nil {
			return err
		}
	}

	for _, in := range job.Encode {
		s, err := newScratch(aux, a)
		if err != nil {
			return err
		}
		src := view.FromLiteral(in)
		err = s.Emit(func(c *cursor.Cursor) int { return b16.EncodeTo(c, src.Data(), hc) })
		if err != nil {
			slog.Warn("encode skipped", "input", in, "err", err)
			s.Release()
			continue
		}
		slog.Debug("hex encoded", "len", s.Len(), "kind", s.Kind())
		_, err = fmt.Fprintf(w, "encode %q: %s\n", in, s.Bytes())
		s.Release()
		if err != nil {
			return err
		}
	}

	for _, in := range job.Decode {
		s, err := decodeHex(view.FromLiteral(in).TrimSpaces(), a)
		if err != nil {
			slog.Warn("decode skipped", "input", in, "err", err)
			continue
		}
		_, err = fmt.Fprintf(w, "decode %s: %q\n", in, s.Bytes())
		s.Release()
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeHex decodes the hex digits of v into a new string whose storage comes
// from a. Nothing stays allocated when it fails.
func decodeHex(v view.View, a alloc.Allocator) (strkit.Str, error) {
	n, err := b16.DecodedLen(v.Len())
	if err != nil {
		return strkit.Null(), err
	}
	s := strkit.Null()
	s.SetAllocator(a)
	if err := s.Reserve(n, 0); err != nil {
		return strkit.Null(), err
	}
	p, err := s.EnsureMutable()
	if err == nil {
		var m int
		if m, err = b16.Decode(p[:n], v); err == nil {
			err = s.SetLen(m)
		}
	}
	if err != nil {
		s.Release()
		return strkit.Null(), err
	}
	return s, nil
}

// newScratch returns an empty string that writes into aux until it outgrows
// it.
func newScratch(aux []byte, a alloc.Allocator) (strkit.Str, error) {
	s, err := strkit.BorrowMut(aux, 0)
	if err != nil {
		return strkit.Null(), err
	}
	s.SetAllocator(a)
	return s, nil
}

func logMetrics(reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			slog.Info("metric", "name", mf.GetName(), "value", m.GetCounter().GetValue())
		}
	}
	return nil
}

func demoJob() *Job {
	return &Job{
		Options: DefaultOptions(),
		Forms: []Form{{
			Name:  "demo",
			Pairs: []KV{{Key: "q", Value: "sales and marketing/Miami"}, {Key: "page", Value: "2"}},
		}},
		Encode: []string{"strkit"},
		Decode: []string{"737472206b6974"},
	}
}
