package sched

import (
	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/emirpasic/gods/trees/redblacktree"
)

// entry is a task plus its submission index, the final tie-break.
type entry struct {
	task Task
	seq  int
}

// before reports whether a should run before b once both have arrived:
// higher priority, then earlier createdAt, then earlier submission.
func before(a, b entry) bool {
	switch {
	case a.task.Priority != b.task.Priority:
		return a.task.Priority > b.task.Priority
	case a.task.CreatedAt != b.task.CreatedAt:
		return a.task.CreatedAt < b.task.CreatedAt
	default:
		return a.seq < b.seq
	}
}

// readyCmp orders the ready tree so that Left() is the next task to run.
func readyCmp(a, b any) int {
	ea, eb := a.(entry), b.(entry)
	switch {
	case ea.seq == eb.seq:
		return 0
	case before(ea, eb):
		return -1
	default:
		return 1
	}
}

// arrivalCmp orders pending tasks by arrival, then submission.
func arrivalCmp(a, b any) int {
	ea, eb := a.(entry), b.(entry)
	switch {
	case ea.task.CreatedAt < eb.task.CreatedAt:
		return -1
	case ea.task.CreatedAt > eb.task.CreatedAt:
		return 1
	case ea.seq < eb.seq:
		return -1
	case ea.seq > eb.seq:
		return 1
	default:
		return 0
	}
}

// ArrivalGate holds tasks that have not arrived yet.
type ArrivalGate struct {
	pending *binaryheap.Heap
}

// NewArrivalGate creates a gate over the batch's tasks.
func NewArrivalGate(b Batch) *ArrivalGate {
	g := &ArrivalGate{pending: binaryheap.NewWith(arrivalCmp)}
	for i, t := range b.tasks {
		g.pending.Push(entry{task: t, seq: i})
	}
	return g
}

// ReleaseTo moves every task with CreatedAt <= now into p, in arrival
// order. onArrive may be nil.
func (g *ArrivalGate) ReleaseTo(now int64, p *PrioritySelector, onArrive func(Task)) {
	for {
		v, ok := g.pending.Peek()
		if !ok || v.(entry).task.CreatedAt > now {
			return
		}
		g.pending.Pop()
		e := v.(entry)
		p.add(e)
		if onArrive != nil {
			onArrive(e.task)
		}
	}
}

// NextArrival returns the earliest CreatedAt still pending.
func (g *ArrivalGate) NextArrival() (int64, bool) {
	v, ok := g.pending.Peek()
	if !ok {
		return 0, false
	}
	return v.(entry).task.CreatedAt, true
}

func (g *ArrivalGate) Len() int { return g.pending.Size() }

// PrioritySelector is the ready set of arrived, unscheduled tasks.
type PrioritySelector struct {
	ready *redblacktree.Tree
}

// NewPrioritySelector returns an empty ready set.
func NewPrioritySelector() *PrioritySelector {
	return &PrioritySelector{ready: redblacktree.NewWith(readyCmp)}
}

func (p *PrioritySelector) add(e entry) { p.ready.Put(e, e.task) }

// Next returns the task that would run next without removing it.
func (p *PrioritySelector) Next() (Task, bool) {
	node := p.ready.Left()
	if node == nil {
		return Task{}, false
	}
	return node.Key.(entry).task, true
}

// Pop removes and returns the task that would run next.
func (p *PrioritySelector) Pop() (Task, bool) {
	node := p.ready.Left()
	if node == nil {
		return Task{}, false
	}
	e := node.Key.(entry)
	p.ready.Remove(e)
	return e.task, true
}

// Len returns the number of ready tasks.
func (p *PrioritySelector) Len() int { return p.ready.Size() }

// SelectNext picks the next task to run at now from unscheduled, which must
// be in submission order. It returns false when nothing has arrived yet.
func SelectNext(now int64, unscheduled []Task) (Task, bool) {
	var best entry
	found := false
	for i, t := range unscheduled {
		if t.CreatedAt > now {
			continue
		}
		e := entry{task: t, seq: i}
		if !found || before(e, best) {
			best, found = e, true
		}
	}
	return best.task, found
}
