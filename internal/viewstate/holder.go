package viewstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"versefinder/internal/model"
)

// Source looks up a passage. *repository.Repository satisfies it.
type Source interface {
	GetVerse(ctx context.Context, passage string) (*model.VerseRecord, error)
}

// Holder owns the lookup state for one screen. FetchVerse starts a request;
// readers poll State or Subscribe for changes. Only the most recently issued
// request may change the state once it settles.
type Holder struct {
	src Source
	log *slog.Logger

	ctx    context.Context // screen lifetime
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State
	seq      uint64
	inflight context.CancelFunc
	subs     map[int]chan State
	nextSub  int
	closed   bool
}

// Option configures a Holder.
type Option func(*Holder)

// WithLogger sets the logger used for request tracing. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Holder) { h.log = l }
}

// New returns an idle holder whose requests live no longer than parent.
func New(parent context.Context, src Source, opts ...Option) *Holder {
	ctx, cancel := context.WithCancel(parent)
	h := &Holder{
		src:    src,
		log:    slog.Default(),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FetchVerse starts a lookup for passage and returns immediately. The state
// moves to Loading at once; any earlier request still in flight is cancelled
// and its result will be dropped. Blank passages are sent as-is.
func (h *Holder) FetchVerse(passage string) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.log.Debug("fetch after close ignored", "passage", passage)
		return
	}
	h.seq++
	seq := h.seq
	if h.inflight != nil {
		h.inflight()
	}
	ctx, cancel := context.WithCancel(h.ctx)
	h.inflight = cancel
	h.publishLocked(State{Phase: PhaseLoading, Passage: passage, Seq: seq})
	h.wg.Add(1)
	h.mu.Unlock()

	h.log.Debug("fetching passage", "passage", passage, "seq", seq)
	go h.run(ctx, cancel, seq, passage)
}

func (h *Holder) run(ctx context.Context, cancel context.CancelFunc, seq uint64, passage string) {
	defer h.wg.Done()
	defer cancel()

	rec, err := h.lookup(ctx, passage)
	if err == nil && rec == nil {
		err = errors.New("no passage returned")
	}

	next := State{Passage: passage, Seq: seq}
	if err != nil {
		next.Phase = PhaseFailed
		next.Message = Describe(err)
	} else {
		next.Phase = PhaseSuccess
		next.Record = rec
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.ctx.Err() != nil {
		return
	}
	if seq != h.seq {
		h.log.Debug("dropping superseded result", "passage", passage, "seq", seq, "latest", h.seq)
		return
	}
	if err != nil {
		h.log.Warn("failed to fetch verse", "passage", passage, "error", err)
	} else {
		h.log.Info("fetched verse", "passage", passage, "reference", rec.Reference, "verses", len(rec.Verses))
	}
	h.inflight = nil
	h.publishLocked(next)
}

// lookup calls the source, turning a panic into an error so that a broken
// source still leaves the holder in a usable Failed state.
func (h *Holder) lookup(ctx context.Context, passage string) (rec *model.VerseRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("lookup panicked: %v", r)
		}
	}()
	return h.src.GetVerse(ctx, passage)
}

// publishLocked replaces the state and hands it to every subscriber.
// Each subscriber channel holds at most one value: the newest.
func (h *Holder) publishLocked(s State) {
	h.state = s
	for _, ch := range h.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// State returns the current snapshot.
func (h *Holder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe returns a channel that receives the current state immediately
// and then the newest state after each change. Unread intermediate states
// are overwritten. The channel is closed by the returned func or by Close.
func (h *Holder) Subscribe() (<-chan State, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan State, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- h.state
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// Wait blocks until every request started so far has settled.
func (h *Holder) Wait() {
	h.wg.Wait()
}

// Close cancels in-flight requests, waits for them to return and closes all
// subscriptions. Results of cancelled requests are never published.
func (h *Holder) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
