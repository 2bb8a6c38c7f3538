package script

import (
	"sort"
	"time"
)

// TaskQueue holds the realm's pending work: posted tasks run FIFO,
// timer tasks become runnable at their due time. Each task runs to
// completion before the next starts.
type TaskQueue struct {
	tasks  []queued
	timers []queued
	seq    int
	now    func() time.Time
}

type queued struct {
	name string
	fn   func() error
	due  time.Time
	seq  int
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{now: time.Now}
}

// SetClock replaces the queue's time source.
func (q *TaskQueue) SetClock(now func() time.Time) { q.now = now }

// Post appends an immediately runnable task.
func (q *TaskQueue) Post(name string, fn func() error) {
	q.seq++
	q.tasks = append(q.tasks, queued{name: name, fn: fn, seq: q.seq})
}

// PostDelayed schedules a task to become runnable after delay.
func (q *TaskQueue) PostDelayed(name string, fn func() error, delay time.Duration) {
	q.seq++
	q.timers = append(q.timers, queued{name: name, fn: fn, due: q.now().Add(delay), seq: q.seq})
	sort.SliceStable(q.timers, func(i, j int) bool {
		if !q.timers[i].due.Equal(q.timers[j].due) {
			return q.timers[i].due.Before(q.timers[j].due)
		}
		return q.timers[i].seq < q.timers[j].seq
	})
}

// pop returns the next runnable task: posted tasks first, then due
// timers in due order.
func (q *TaskQueue) pop() (queued, bool) {
	if len(q.tasks) > 0 {
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		return t, true
	}
	if len(q.timers) > 0 && !q.timers[0].due.After(q.now()) {
		t := q.timers[0]
		q.timers = q.timers[1:]
		return t, true
	}
	return queued{}, false
}

// Pending reports how many tasks and timers remain queued.
func (q *TaskQueue) Pending() int { return len(q.tasks) + len(q.timers) }

// NextDue returns the due time of the earliest timer.
func (q *TaskQueue) NextDue() (time.Time, bool) {
	if len(q.timers) == 0 {
		return time.Time{}, false
	}
	return q.timers[0].due, true
}
