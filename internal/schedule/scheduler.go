// Package schedule implements the beat-timed priority queue that drives
// temporal recursion (loops rescheduling themselves) and defers in-loop
// side effects by sub-beat offsets.
package schedule

import (
	"container/heap"
	"sync"

	"github.com/soir-live/soir/internal/logging"
	"github.com/soir-live/soir/internal/timeline"
)

var log = logging.ForService("scheduler")

// Action is a callback enqueued against a due beat. It may itself call
// Schedule on the same Scheduler; the new entry drains within the same pass
// if its due beat has already arrived.
type Action func()

// entry is one (due_beat, seq, action) triple. seq breaks ties FIFO.
type entry struct {
	due    timeline.Beat
	seq    uint64
	action Action
}

// pqueue is a container/heap min-heap ordered by (due, seq).
type pqueue []*entry

func (q pqueue) Len() int { return len(q) }
func (q pqueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}
func (q pqueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *pqueue) Push(x any)   { *q = append(*q, x.(*entry)) }
func (q *pqueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler is a priority queue of pending actions keyed by due beat, with
// stable FIFO tie-breaking by insertion order (spec §4.2).
type Scheduler struct {
	mu       sync.Mutex
	queue    pqueue
	nextSeq  uint64
	recorder QueueRecorder
}

// QueueRecorder receives queue-depth observations after each Schedule/drain.
// internal/metrics.Collector satisfies this.
type QueueRecorder interface {
	RecordSchedulerQueueDepth(depth int)
}

// New creates an empty Scheduler. recorder may be nil.
func New(recorder QueueRecorder) *Scheduler {
	return &Scheduler{recorder: recorder}
}

// Schedule enqueues action to run no earlier than due. offset_beats = 0
// (due == current beat) means "next drain".
func (s *Scheduler) Schedule(due timeline.Beat, action Action) {
	s.mu.Lock()
	s.nextSeq++
	heap.Push(&s.queue, &entry{due: due, seq: s.nextSeq, action: action})
	depth := len(s.queue)
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordSchedulerQueueDepth(depth)
	}
}

// Len reports the number of pending entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// DrainUpTo pops and runs every entry with due <= now, in (due, seq) order.
// Actions may enqueue new entries, including ones due at or before now; the
// queue is re-examined after every pop so those run within this same pass
// (spec §4.2). A panicking action is recovered, logged, and does not abort
// the drain (spec §7: "nothing in the core should panic the audio thread").
func (s *Scheduler) DrainUpTo(now timeline.Beat) int {
	ran := 0
	for {
		act, ok := s.popDue(now)
		if !ok {
			break
		}
		s.runAction(act)
		ran++
	}

	if s.recorder != nil {
		s.recorder.RecordSchedulerQueueDepth(s.Len())
	}
	return ran
}

func (s *Scheduler) popDue(now timeline.Beat) (Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 || s.queue[0].due > now {
		return nil, false
	}
	e := heap.Pop(&s.queue).(*entry)
	return e.action, true
}

func (s *Scheduler) runAction(action Action) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("scheduled action panicked", "panic", r)
		}
	}()
	action()
}
