package engine

import (
	"container/heap"

	"microcity/server/internal/world"
)

// A* over the road-adjacency graph: 4-directional unit-cost edges between
// road cells, Manhattan-distance heuristic, frontier ordered by lowest
// f = g+h. The expansion cap bounds worst-case work per query; the scheduler
// never preempts a running system. Ties on f resolve by push order, which is
// implementation-defined and not part of the contract.

// GridPoint is a cell on the road graph.
type GridPoint struct {
	X int `json:"x"`
	Z int `json:"z"`
}

type pathNode struct {
	point  GridPoint
	g      int
	f      int
	parent *pathNode
	seq    int // push order, breaks f ties deterministically
	index  int
}

type pathFrontier []*pathNode

func (f pathFrontier) Len() int { return len(f) }

func (f pathFrontier) Less(i, j int) bool {
	if f[i].f != f[j].f {
		return f[i].f < f[j].f
	}
	return f[i].seq < f[j].seq
}

func (f pathFrontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *pathFrontier) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*f)
	*f = append(*f, n)
}

func (f *pathFrontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*f = old[:len(old)-1]
	return n
}

func manhattan(a, b GridPoint) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dz := a.Z - b.Z
	if dz < 0 {
		dz = -dz
	}
	return dx + dz
}

// FindPath returns the cell sequence from start to goal over road tiles,
// inclusive of both endpoints, or false when no route exists or the
// expansion cap is exceeded. Both endpoints must be roads.
func FindPath(w *world.World, start, goal GridPoint, maxExpansions int) ([]GridPoint, bool) {
	if maxExpansions <= 0 {
		maxExpansions = pathExpansionLimit
	}
	if _, ok := w.RoadAt(start.X, start.Z); !ok {
		return nil, false
	}
	if _, ok := w.RoadAt(goal.X, goal.Z); !ok {
		return nil, false
	}
	if start == goal {
		return []GridPoint{start}, true
	}

	frontier := &pathFrontier{}
	heap.Init(frontier)
	seq := 0
	push := func(n *pathNode) {
		n.seq = seq
		seq++
		heap.Push(frontier, n)
	}

	bestG := map[GridPoint]int{start: 0}
	push(&pathNode{point: start, g: 0, f: manhattan(start, goal)})

	offsets := [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	expansions := 0

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(*pathNode)
		if current.point == goal {
			return reconstruct(current), true
		}
		if g, ok := bestG[current.point]; ok && current.g > g {
			continue // stale frontier entry
		}

		expansions++
		if expansions > maxExpansions {
			return nil, false
		}

		for _, off := range offsets {
			next := GridPoint{X: current.point.X + off[0], Z: current.point.Z + off[1]}
			if _, ok := w.RoadAt(next.X, next.Z); !ok {
				continue
			}
			g := current.g + 1
			if prev, seen := bestG[next]; seen && g >= prev {
				continue
			}
			bestG[next] = g
			push(&pathNode{
				point:  next,
				g:      g,
				f:      g + manhattan(next, goal),
				parent: current,
			})
		}
	}
	return nil, false
}

func reconstruct(n *pathNode) []GridPoint {
	var rev []GridPoint
	for ; n != nil; n = n.parent {
		rev = append(rev, n.point)
	}
	path := make([]GridPoint, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}
