package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nxadm/tail"
)

type SourceKind string

const (
	SourceStdin SourceKind = "stdin"
	SourceFile  SourceKind = "file"
	SourceDemo  SourceKind = "demo"
)

type Options struct {
	Source         SourceKind
	Path           string
	Follow         bool
	ScanBufSize    int   // per-line max (bytes)
	BlockSizeBytes int64 // only for non-follow file read; 0 = all
	DemoInterval   time.Duration
}

type Line struct {
	Text   string
	Source string
	When   time.Time
}

// reader owns the output channels of one Read call.
type reader struct {
	ctx    context.Context
	out    chan<- Line
	errs   chan<- error
	maxBuf int
}

// Read streams lines from the configured source until it is exhausted or ctx
// is cancelled. Both channels are closed when reading stops.
func Read(ctx context.Context, opt Options) (<-chan Line, <-chan error) {
	out := make(chan Line, 1024)
	errs := make(chan error, 1)
	r := &reader{ctx: ctx, out: out, errs: errs, maxBuf: opt.ScanBufSize}
	if r.maxBuf <= 0 {
		r.maxBuf = 1 << 20
	}

	go func() {
		defer close(out)
		defer close(errs)
		switch {
		case opt.Source == SourceStdin:
			r.scan(os.Stdin, "stdin")
		case opt.Source == SourceDemo:
			r.demo(opt.DemoInterval)
		case opt.Source == SourceFile && opt.Follow:
			r.follow(opt.Path)
		case opt.Source == SourceFile:
			r.file(opt.Path, opt.BlockSizeBytes)
		default:
			r.fail(fmt.Errorf("unknown source kind %q", opt.Source))
		}
	}()
	return out, errs
}

// emit reports false once ctx is done.
func (r *reader) emit(l Line) bool {
	select {
	case r.out <- l:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// fail never blocks; later errors are dropped while one is pending.
func (r *reader) fail(err error) {
	select {
	case r.errs <- err:
	default:
	}
}

func (r *reader) scan(src io.Reader, name string) {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64<<10), r.maxBuf)
	for sc.Scan() {
		if !r.emit(Line{Text: sc.Text(), Source: name, When: time.Now()}) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		r.fail(fmt.Errorf("%s: %w", name, err))
	}
}

// file reads path once. With block > 0 only the last block bytes are read and
// the partial first line is skipped.
func (r *reader) file(path string, block int64) {
	f, err := os.Open(path)
	if err != nil {
		r.fail(err)
		return
	}
	defer f.Close()
	var src io.Reader = f
	if st, err := f.Stat(); err == nil && block > 0 && st.Size() > block {
		if _, err := f.Seek(st.Size()-block, io.SeekStart); err != nil {
			r.fail(err)
			return
		}
		br := bufio.NewReader(f)
		if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
			r.fail(err)
			return
		}
		src = br
	}
	r.scan(src, path)
}

// follow tails path from its current end, surviving rotation.
func (r *reader) follow(path string) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
		Poll:      true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
	})
	if err != nil {
		r.fail(err)
		return
	}
	defer t.Cleanup()
	defer func() { _ = t.Stop() }()
	for {
		select {
		case <-r.ctx.Done():
			return
		case l, ok := <-t.Lines:
			if !ok {
				return
			}
			if l.Err != nil {
				r.fail(l.Err)
				continue
			}
			if !r.emit(Line{Text: l.Text, Source: path, When: time.Now()}) {
				return
			}
		}
	}
}

// demo emits synthetic NDJSON request logs.
func (r *reader) demo(every time.Duration) {
	if every <= 0 {
		every = 500 * time.Millisecond
	}
	gen := NewGenerator(time.Now().UnixNano())
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case now := <-ticker.C:
			if !r.emit(Line{Text: gen.NDJSON(now), Source: "demo", When: now}) {
				return
			}
		}
	}
}
