package eventqueue

import (
	"container/heap"
	"time"

	"github.com/robfig/cron/v3"
)

// event is a single pending occurrence. seq is unique per queue and orders
// events that share a fire time.
type event struct {
	id       ID
	seq      uint64
	fireAt   time.Time
	callback Callback
	payload  any
	schedule cron.Schedule // non-nil for recurring events
	index    int
}

func (e *event) view() Event {
	return Event{
		ID:        e.id,
		FireAt:    e.fireAt,
		Payload:   e.payload,
		Recurring: e.schedule != nil,
	}
}

// eventHeap is a min-heap ordered by (fireAt, seq).
type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].fireAt.Before(h[j].fireAt)
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	e := x.(*event)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old) - 1
	e := old[n]
	old[n] = nil
	e.index = -1
	*h = old[:n]
	return e
}

func (h eventHeap) peek() *event {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// store holds the pending set and the cancellation markers. It is not safe
// for concurrent use; the queue guards it with its mutex.
//
// A marker names the cancelled occurrence by id and seq, so a later occurrence
// registered under the same id is never suppressed by it.
type store struct {
	pending   eventHeap
	live      map[ID]*event
	cancelled map[marker]struct{}
	seq       uint64

	// onSkip observes every cancelled occurrence purged from the heap.
	onSkip func(*event)
}

type marker struct {
	id  ID
	seq uint64
}

func newStore() *store {
	return &store{
		live:      make(map[ID]*event),
		cancelled: make(map[marker]struct{}),
	}
}

// insert adds e to the pending set and reports whether it is the new minimum.
func (s *store) insert(e *event) bool {
	s.seq++
	e.seq = s.seq
	heap.Push(&s.pending, e)
	s.live[e.id] = e
	return s.pending.peek() == e
}

// markCancelled tombstones the live occurrence of id. The result is advisory:
// false means the id was unknown or has already been handed off for firing.
func (s *store) markCancelled(id ID) bool {
	e, ok := s.live[id]
	if !ok {
		return false
	}
	delete(s.live, id)
	s.cancelled[marker{id: id, seq: e.seq}] = struct{}{}
	return true
}

func (s *store) isTombstone(e *event) bool {
	_, ok := s.cancelled[marker{id: e.id, seq: e.seq}]
	return ok
}

// purgeHead removes cancelled occurrences sitting at the top of the heap and
// clears their markers.
func (s *store) purgeHead() {
	for {
		e := s.pending.peek()
		if e == nil || !s.isTombstone(e) {
			return
		}
		heap.Pop(&s.pending)
		delete(s.cancelled, marker{id: e.id, seq: e.seq})
		if s.onSkip != nil {
			s.onSkip(e)
		}
	}
}

// popIfDue removes and returns the earliest live event due at now, skipping
// cancelled ones. It returns nil when nothing live is due.
func (s *store) popIfDue(now time.Time) *event {
	s.purgeHead()
	e := s.pending.peek()
	if e == nil || e.fireAt.After(now) {
		return nil
	}
	heap.Pop(&s.pending)
	delete(s.live, e.id)
	return e
}

// peekMinFireTime returns the earliest fire time not yet known to be cancelled.
func (s *store) peekMinFireTime() (time.Time, bool) {
	s.purgeHead()
	e := s.pending.peek()
	if e == nil {
		return time.Time{}, false
	}
	return e.fireAt, true
}

func (s *store) lookup(id ID) (*event, bool) {
	e, ok := s.live[id]
	return e, ok
}

// liveLen is the number of pending, non-cancelled events.
func (s *store) liveLen() int {
	return len(s.live)
}

// tombstones is the number of outstanding cancellation markers.
func (s *store) tombstones() int {
	return len(s.cancelled)
}

// snapshot returns the live events in firing order.
func (s *store) snapshot() []Event {
	h := make(eventHeap, 0, len(s.live))
	for _, e := range s.pending {
		if !s.isTombstone(e) {
			h = append(h, &event{id: e.id, seq: e.seq, fireAt: e.fireAt, payload: e.payload, schedule: e.schedule})
		}
	}
	heap.Init(&h)
	out := make([]Event, 0, len(h))
	for h.Len() > 0 {
		out = append(out, heap.Pop(&h).(*event).view())
	}
	return out
}

// reset drops every pending event and marker.
func (s *store) reset() {
	for i := range s.pending {
		s.pending[i] = nil
	}
	s.pending = s.pending[:0]
	s.live = make(map[ID]*event)
	s.cancelled = make(map[marker]struct{})
}
