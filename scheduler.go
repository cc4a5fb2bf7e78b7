package corkboard

import (
	"time"

	"go.uber.org/zap"
)

// FlushStats describes the most recent flush.
type FlushStats struct {
	Requests  int           // requests coalesced into this flush
	Recompute time.Duration // time spent in the recompute pass
	Handlers  int           // OnFlush handlers run
}

type flushHandler struct {
	id uint32
	fn func()
}

// FlushHandle allows removing a registered flush callback.
type FlushHandle struct {
	id    uint32
	sched *FrameScheduler
}

// Remove unregisters this callback so it no longer fires.
func (h FlushHandle) Remove() {
	if h.sched == nil {
		return
	}
	hs := h.sched.handlers
	for i := range hs {
		if hs[i].id == h.id {
			h.sched.handlers = append(hs[:i], hs[i+1:]...)
			return
		}
	}
}

// FrameScheduler collapses many recompute requests arriving within one frame
// into a single pass. Request marks the frame dirty; Flush, called once per
// tick, runs the recompute function and every OnFlush handler exactly once.
// Requests made while a flush is running are kept for the next frame.
type FrameScheduler struct {
	recompute func()

	pending  bool
	flushing bool
	requests int

	handlers []flushHandler
	nextID   uint32

	debug bool
	stats FlushStats
}

// NewFrameScheduler creates a scheduler that calls recompute on each flush.
func NewFrameScheduler(recompute func()) *FrameScheduler {
	return &FrameScheduler{recompute: recompute}
}

// Request asks for a recompute on the next flush.
func (s *FrameScheduler) Request() {
	s.requests++
	s.pending = true
}

// Pending reports whether a flush is scheduled.
func (s *FrameScheduler) Pending() bool { return s.pending }

// Flushing reports whether a flush is running.
func (s *FrameScheduler) Flushing() bool { return s.flushing }

// OnFlush registers fn to run after every recompute pass.
func (s *FrameScheduler) OnFlush(fn func()) FlushHandle {
	s.nextID++
	s.handlers = append(s.handlers, flushHandler{id: s.nextID, fn: fn})
	return FlushHandle{id: s.nextID, sched: s}
}

// SetDebug enables per-flush timing logs.
func (s *FrameScheduler) SetDebug(on bool) { s.debug = on }

// Stats returns the statistics of the most recent flush.
func (s *FrameScheduler) Stats() FlushStats { return s.stats }

// Flush runs one pass if one is pending and reports whether it ran. Nested
// calls from inside a handler are ignored.
func (s *FrameScheduler) Flush() bool {
	if !s.pending || s.flushing {
		return false
	}
	s.flushing = true
	s.pending = false
	requests := s.requests
	s.requests = 0

	start := time.Now()
	if s.recompute != nil {
		s.recompute()
	}
	elapsed := time.Since(start)

	// Handlers may remove themselves; iterate over a snapshot.
	hs := append([]flushHandler(nil), s.handlers...)
	for _, h := range hs {
		h.fn()
	}
	s.flushing = false

	s.stats = FlushStats{Requests: requests, Recompute: elapsed, Handlers: len(hs)}
	if s.debug {
		Logger().Debug("flush",
			zap.Int("requests", requests),
			zap.Duration("recompute", elapsed),
			zap.Int("handlers", len(hs)))
	}
	return true
}
