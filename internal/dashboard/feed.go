package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"aqdash/internal/detect"
	"aqdash/internal/ingest"
	"aqdash/internal/model"
	"aqdash/internal/parse"
	"aqdash/internal/util/logx"
)

type FeedOptions struct {
	Ingest       ingest.Options
	Format       detect.Format // empty or unknown: detect from the first lines
	MaxBuffer    int
	DetectWindow time.Duration
}

// Feed reads a local request log in the background and keeps the newest
// MaxBuffer parsed rows.
type Feed struct {
	ring    *model.Ring[model.RequestLog]
	updates chan struct{}
	done    chan struct{}

	mu     sync.Mutex
	format detect.Format
	err    error

	skipped atomic.Uint64
}

// StartFeed begins reading; cancel ctx to stop it.
func StartFeed(ctx context.Context, opt FeedOptions) *Feed {
	if opt.MaxBuffer <= 0 {
		opt.MaxBuffer = 10000
	}
	if opt.DetectWindow <= 0 {
		opt.DetectWindow = time.Second
	}
	f := &Feed{
		ring:    model.NewRing[model.RequestLog](opt.MaxBuffer),
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	lines, errs := ingest.Read(ctx, opt.Ingest)
	logx.Infof("feed: source=%s path=%s follow=%v", opt.Ingest.Source, opt.Ingest.Path, opt.Ingest.Follow)
	go f.run(ctx, opt, lines, errs)
	return f
}

func (f *Feed) run(ctx context.Context, opt FeedOptions, lines <-chan ingest.Line, errs <-chan error) {
	// every reader error is recorded before Done closes
	defer func() {
		if errs != nil {
			for err := range errs {
				f.fail(err)
			}
		}
		close(f.done)
	}()

	// wait at least one window and one line before picking a parser
	const maxSample = 200
	buffered := make([]string, 0, 256)
	timer := time.NewTimer(opt.DetectWindow)
	defer timer.Stop()
	closed := false
	elapsed := false
	for !closed && !(elapsed && len(buffered) > 0) {
		select {
		case l, ok := <-lines:
			if !ok {
				closed = true
				break
			}
			buffered = append(buffered, l.Text)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				break
			}
			f.fail(err)
		case <-timer.C:
			elapsed = true
		case <-ctx.Done():
			return
		}
	}
	format := opt.Format
	if format == "" || format == detect.FormatUnknown {
		sample := buffered
		if len(sample) > maxSample {
			sample = sample[:maxSample]
		}
		g := detect.Heuristics(sample)
		format = g.Format
		logx.Infof("feed: detected format=%s conf=%.2f", g.Format, g.Confidence)
	}
	f.mu.Lock()
	f.format = format
	f.mu.Unlock()

	p := parse.NewParser(format)
	for _, text := range buffered {
		f.push(p, text)
	}
	f.notify()
	if closed {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				f.notify()
				return
			}
			f.push(p, l.Text)
			f.notify()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				break
			}
			f.fail(err)
		}
	}
}

func (f *Feed) fail(err error) {
	logx.Errorf("feed: %v", err)
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	f.notify()
}

func (f *Feed) push(p parse.Parser, text string) {
	r, ok := p.Parse(text)
	if !ok {
		f.skipped.Add(1)
		return
	}
	f.ring.Push(r)
}

func (f *Feed) notify() {
	select {
	case f.updates <- struct{}{}:
	default:
	}
}

// Updates signals (coalesced) that new rows or an error arrived.
func (f *Feed) Updates() <-chan struct{} { return f.updates }

// Done is closed when the source is exhausted or the feed was cancelled.
func (f *Feed) Done() <-chan struct{} { return f.done }

// Rows returns the buffered rows, oldest first.
func (f *Feed) Rows() []model.RequestLog {
	rows, _, _ := f.ring.Snapshot()
	return rows
}

// Stats reports parsed rows ever seen, rows evicted from the buffer and
// lines that could not be parsed.
func (f *Feed) Stats() (total, dropped, skipped uint64) {
	_, total, dropped = f.ring.Snapshot()
	return total, dropped, f.skipped.Load()
}

func (f *Feed) Format() detect.Format {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.format
}

func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
