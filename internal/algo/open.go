package algo

import (
	"container/heap"
	"math"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

// searchNode is a SIPP state stored in the per-search arena. Parent is an
// arena index, -1 at the root.
type searchNode struct {
	cell     core.Cell
	iv       int // Index of the safe interval within the cell's view
	ivBegin  float64
	ivEnd    float64
	g        float64 // Arrival time
	h        float64
	f        float64
	focal    float64
	heading  float64
	parent   int
	openIdx  int // Heap positions, -1 when absent
	focalIdx int
}

type nodeKey struct {
	cell core.Cell
	iv   int
}

func (n *searchNode) key() nodeKey { return nodeKey{cell: n.cell, iv: n.iv} }

// nodeHeap implements heap.Interface over arena indices, keeping each node's
// position field in sync.
type nodeHeap struct {
	arena *[]searchNode
	items []int
	less  func(a, b *searchNode, ia, ib int) bool
	pos   func(n *searchNode) *int
}

func (h *nodeHeap) node(k int) *searchNode { return &(*h.arena)[h.items[k]] }

func (h *nodeHeap) Len() int { return len(h.items) }
func (h *nodeHeap) Less(i, j int) bool {
	return h.less(h.node(i), h.node(j), h.items[i], h.items[j])
}
func (h *nodeHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	*h.pos(h.node(i)) = i
	*h.pos(h.node(j)) = j
}
func (h *nodeHeap) Push(x any) {
	idx := x.(int)
	*h.pos(&(*h.arena)[idx]) = len(h.items)
	h.items = append(h.items, idx)
}
func (h *nodeHeap) Pop() any {
	n := len(h.items)
	idx := h.items[n-1]
	h.items = h.items[:n-1]
	*h.pos(&(*h.arena)[idx]) = -1
	return idx
}

func (h *nodeHeap) top() *searchNode { return h.node(0) }

// openLess orders by f, then larger g, then cell and interval, then creation order.
func openLess(a, b *searchNode, ia, ib int) bool {
	if math.Abs(a.f-b.f) > core.Epsilon {
		return a.f < b.f
	}
	if math.Abs(a.g-b.g) > core.Epsilon {
		return a.g > b.g
	}
	if a.cell != b.cell {
		if a.cell.I != b.cell.I {
			return a.cell.I < b.cell.I
		}
		return a.cell.J < b.cell.J
	}
	if a.iv != b.iv {
		return a.iv < b.iv
	}
	return ia < ib
}

// focalLess orders by the oracle value, then as OPEN does.
func focalLess(a, b *searchNode, ia, ib int) bool {
	if math.Abs(a.focal-b.focal) > core.Epsilon {
		return a.focal < b.focal
	}
	return openLess(a, b, ia, ib)
}

// frontier is OPEN plus, when focal search is on, FOCAL: the OPEN nodes with
// f within FocalWeight of the best f seen so far.
type frontier struct {
	arena    *[]searchNode
	open     *nodeHeap
	focal    *nodeHeap
	useFocal bool
	weight   float64
	bound    float64
}

func newFrontier(arena *[]searchNode, useFocal bool, weight float64) *frontier {
	return &frontier{
		arena: arena,
		open: &nodeHeap{arena: arena, less: openLess,
			pos: func(n *searchNode) *int { return &n.openIdx }},
		focal: &nodeHeap{arena: arena, less: focalLess,
			pos: func(n *searchNode) *int { return &n.focalIdx }},
		useFocal: useFocal,
		weight:   weight,
		bound:    math.Inf(-1),
	}
}

func (fr *frontier) empty() bool { return fr.open.Len() == 0 }

func (fr *frontier) push(idx int) {
	heap.Push(fr.open, idx)
	if fr.useFocal && (*fr.arena)[idx].f <= fr.bound+core.Epsilon {
		heap.Push(fr.focal, idx)
	}
}

// remove takes a node out of both structures.
func (fr *frontier) remove(idx int) {
	n := &(*fr.arena)[idx]
	if n.openIdx >= 0 {
		heap.Remove(fr.open, n.openIdx)
	}
	if n.focalIdx >= 0 {
		heap.Remove(fr.focal, n.focalIdx)
	}
}

// pop returns the next node to expand.
func (fr *frontier) pop() int {
	if !fr.useFocal {
		return heap.Pop(fr.open).(int)
	}
	fr.raiseBound()
	idx := heap.Pop(fr.focal).(int)
	heap.Remove(fr.open, (*fr.arena)[idx].openIdx)
	return idx
}

// raiseBound lifts the focal bound to the current best f and admits the OPEN
// nodes that now fit under it. The bound never drops, since the best f of an
// admissible search is a lower bound on the solution cost.
func (fr *frontier) raiseBound() {
	bound := fr.open.top().f * fr.weight
	if bound <= fr.bound && fr.focal.Len() > 0 {
		return
	}
	fr.bound = math.Max(fr.bound, bound)
	for _, idx := range fr.open.items {
		n := &(*fr.arena)[idx]
		if n.focalIdx < 0 && n.f <= fr.bound+core.Epsilon {
			heap.Push(fr.focal, idx)
		}
	}
}
