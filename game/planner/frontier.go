package planner

import (
	"container/heap"

	"github.com/wricardo/mcp-training/autopilot/game/world"
)

type frontierItem struct {
	coord world.Coordinate
	key   int
	seq   int // discovery order, breaks key ties
	index int
}

// frontier is the open set: a min-heap on (key, seq) with membership lookup
type frontier struct {
	items   []*frontierItem
	members map[world.Coordinate]*frontierItem
	nextSeq int
}

func newFrontier() *frontier {
	return &frontier{members: make(map[world.Coordinate]*frontierItem)}
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	if f.items[i].key != f.items[j].key {
		return f.items[i].key < f.items[j].key
	}
	return f.items[i].seq < f.items[j].seq
}

func (f *frontier) Swap(i, j int) {
	f.items[i], f.items[j] = f.items[j], f.items[i]
	f.items[i].index = i
	f.items[j].index = j
}

func (f *frontier) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(f.items)
	f.items = append(f.items, item)
}

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	f.items = old[:n-1]
	item.index = -1
	return item
}

// add admits a newly discovered coordinate
func (f *frontier) add(c world.Coordinate, key int) {
	item := &frontierItem{coord: c, key: key, seq: f.nextSeq}
	f.nextSeq++
	f.members[c] = item
	heap.Push(f, item)
}

// contains reports whether c is currently in the open set
func (f *frontier) contains(c world.Coordinate) bool {
	_, ok := f.members[c]
	return ok
}

// update changes the key of a member, keeping its discovery order
func (f *frontier) update(c world.Coordinate, key int) {
	item := f.members[c]
	item.key = key
	heap.Fix(f, item.index)
}

// popMin removes and returns the member with the lowest key
func (f *frontier) popMin() world.Coordinate {
	item := heap.Pop(f).(*frontierItem)
	delete(f.members, item.coord)
	return item.coord
}
