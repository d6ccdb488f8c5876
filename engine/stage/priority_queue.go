package stage

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-morph/engine/game_object"
)

// PriorityQueue collects the objects whose generated data is waiting to be applied this tick.
// Its backing slice is reused across ticks.
type PriorityQueue struct {
	items []*game_object.GameObject
}

// Reset empties the queue, keeping its capacity.
func (q *PriorityQueue) Reset() {
	clear(q.items)
	q.items = q.items[:0]
}

// Push appends an object.
func (q *PriorityQueue) Push(obj *game_object.GameObject) {
	q.items = append(q.items, obj)
}

// Gather resets the queue and pushes every object that is pending with ready data.
func (q *PriorityQueue) Gather(objects []*game_object.GameObject) {
	q.Reset()
	for _, obj := range objects {
		if obj.ReadyToApply() {
			q.Push(obj)
		}
	}
}

// Sort orders the queue by pending priority, highest first, with ties broken by ascending object ID.
func (q *PriorityQueue) Sort() {
	slices.SortFunc(q.items, func(a, b *game_object.GameObject) int {
		if c := cmp.Compare(b.Tracker.PendingPriority, a.Tracker.PendingPriority); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
}

// Items returns the queued objects in their current order.
func (q *PriorityQueue) Items() []*game_object.GameObject {
	return q.items
}

// Len returns the number of queued objects.
func (q *PriorityQueue) Len() int {
	return len(q.items)
}
