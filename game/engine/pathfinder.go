package engine

import (
	"container/heap"

	"github.com/zyedidia/generic/mapset"
)

// PathFinder computes shortest 4-directional paths over a Grid using A*
// with a Manhattan heuristic and unit edge cost.
type PathFinder struct {
	grid *Grid
}

// NewPathFinder creates a path finder bound to a grid
func NewPathFinder(grid *Grid) *PathFinder {
	return &PathFinder{grid: grid}
}

// searchNode is a frontier entry. seq records insertion order and is kept
// when the node is relaxed, so equal-f ties resolve to the first-found node.
type searchNode struct {
	cell   Cell
	g      int
	h      int
	f      int
	parent *searchNode
	seq    int
	index  int
}

// openSet is a min-heap ordered by (f, seq)
type openSet []*searchNode

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *openSet) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*o)
	*o = append(*o, n)
}

func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*o = old[:len(old)-1]
	return n
}

// FindPath returns a minimum-length path from start to goal, both included.
// An empty path means the goal cannot be reached; that is a normal outcome.
func (pf *PathFinder) FindPath(start, goal Cell) Path {
	if pf.grid.IsBlocked(goal) {
		return Path{}
	}

	open := &openSet{}
	frontier := make(map[Cell]*searchNode)
	closed := mapset.New[Cell]()
	seq := 0

	h := ManhattanDistance(start, goal)
	root := &searchNode{cell: start, g: 0, h: h, f: h, seq: seq}
	heap.Push(open, root)
	frontier[start] = root

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		delete(frontier, current.cell)

		if current.cell == goal {
			return reconstruct(current)
		}

		closed.Put(current.cell)

		for _, n := range pf.grid.Neighbors(current.cell) {
			if closed.Has(n) {
				continue
			}

			g := current.g + 1
			if existing, ok := frontier[n]; ok {
				if g < existing.g {
					existing.g = g
					existing.f = g + existing.h
					existing.parent = current
					heap.Fix(open, existing.index)
				}
				continue
			}

			seq++
			nh := ManhattanDistance(n, goal)
			node := &searchNode{cell: n, g: g, h: nh, f: g + nh, parent: current, seq: seq}
			heap.Push(open, node)
			frontier[n] = node
		}
	}

	return Path{}
}

// Distance returns the shortest path length in steps, or -1 if unreachable
func (pf *PathFinder) Distance(start, goal Cell) int {
	path := pf.FindPath(start, goal)
	if len(path) == 0 {
		return -1
	}
	return len(path) - 1
}

// reconstruct follows back-pointers to the start and reverses the result
func reconstruct(n *searchNode) Path {
	var path Path
	for node := n; node != nil; node = node.parent {
		path = append(path, node.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
