package syclop

import (
	"container/heap"
	"math"
	"math/rand"
)

// Heuristic estimates the remaining cost from region u to the goal region;
// typically the projected-workspace distance between region centroids.
type Heuristic func(u, goal int) float64

// LeadBuilder chooses a lead path start->goal through a RegionGraph, either via
// A* (most of the time) or a randomized-order DFS (occasionally, to produce
// varied leads).
type LeadBuilder struct {
	Graph     *RegionGraph
	Heuristic Heuristic
	Rand      *rand.Rand
}

// NewLeadBuilder returns a LeadBuilder over graph using heuristic for A* and rng
// for both the A*-vs-DFS coin flip and the randomized DFS successor order.
func NewLeadBuilder(graph *RegionGraph, heuristic Heuristic, rng *rand.Rand) *LeadBuilder {
	return &LeadBuilder{Graph: graph, Heuristic: heuristic, Rand: rng}
}

// BuildLead computes a lead from startRegion to goalRegion and updates
// numLeadInclusions/cost on every previously-empty edge it crosses.
// probShortestPath is the probability of using A* instead of randomized DFS.
func (lb *LeadBuilder) BuildLead(startRegion, goalRegion int, probShortestPath float64) []int {
	var lead []int
	switch {
	case startRegion == goalRegion:
		lead = []int{startRegion}
	case lb.Rand.Float64() < probShortestPath:
		lead = lb.aStarLead(startRegion, goalRegion)
	default:
		lead = lb.randomizedDFSLead(startRegion, goalRegion)
	}

	for i := 0; i+1 < len(lead); i++ {
		adj := lb.Graph.adjacency(lead[i], lead[i+1])
		if adj != nil && adj.Empty {
			adj.NumLeadInclusions++
			lb.Graph.UpdateEdge(adj)
		}
	}
	return lead
}

// aStarItem is a priority-queue entry keyed by f = g + h.
type aStarItem struct {
	region int
	g, f   float64
}

type aStarQueue []*aStarItem

func (q aStarQueue) Len() int            { return len(q) }
func (q aStarQueue) Less(i, j int) bool  { return q[i].f < q[j].f }
func (q aStarQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *aStarQueue) Push(x interface{}) { *q = append(*q, x.(*aStarItem)) }
func (q *aStarQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// aStarLead runs A* over the RegionGraph weighted by Adjacency.Cost, using
// Heuristic as the admissible estimate to goal. It replaces OMPL's
// boost::astar_search + exception-for-goal-found with a plain early return once
// the goal is popped off the open set.
func (lb *LeadBuilder) aStarLead(start, goal int) []int {
	n := len(lb.Graph.Regions)
	dist := make([]float64, n)
	parent := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		parent[i] = -1
	}
	dist[start] = 0

	pq := aStarQueue{{region: start, g: 0, f: lb.Heuristic(start, goal)}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*aStarItem)
		u := item.region
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == goal {
			return reconstructPath(parent, start, goal)
		}
		for _, v := range lb.Graph.Neighbors(u) {
			if visited[v] {
				continue
			}
			adj := lb.Graph.adjacency(u, v)
			if adj == nil {
				continue
			}
			g := dist[u] + adj.Cost
			if g < dist[v] {
				dist[v] = g
				parent[v] = u
				heap.Push(&pq, &aStarItem{region: v, g: g, f: g + lb.Heuristic(v, goal)})
			}
		}
	}
	// Unreachable under the assumption that a lead always exists between a
	// start and goal region reachable through the decomposition; fall back to a
	// direct two-element lead rather than returning nil.
	return []int{start, goal}
}

func reconstructPath(parent []int, start, goal int) []int {
	path := []int{goal}
	for path[len(path)-1] != start {
		p := parent[path[len(path)-1]]
		if p < 0 {
			break
		}
		path = append(path, p)
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// randomizedDFSLead: push start; while the stack is non-empty, pop v, collect
// unvisited neighbors (recording parents), then repeatedly pick a uniformly
// random remaining neighbor, swap it to the front, and push it — finalizing
// the lead the moment the goal is chosen.
func (lb *LeadBuilder) randomizedDFSLead(start, goal int) []int {
	n := len(lb.Graph.Regions)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	parent[start] = start

	stack := []int{start}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var neighbors []int
		for _, w := range lb.Graph.Neighbors(v) {
			if parent[w] < 0 {
				neighbors = append(neighbors, w)
				parent[w] = v
			}
		}

		for i := 0; i < len(neighbors); i++ {
			choice := i + lb.Rand.Intn(len(neighbors)-i)
			if neighbors[choice] == goal {
				return reconstructPathFromParentChain(parent, start, goal)
			}
			stack = append(stack, neighbors[choice])
			neighbors[i], neighbors[choice] = neighbors[choice], neighbors[i]
		}
	}
	return []int{start, goal}
}

func reconstructPathFromParentChain(parent []int, start, goal int) []int {
	var lead []int
	region := goal
	for region != start {
		lead = append(lead, region)
		region = parent[region]
	}
	lead = append(lead, start)
	for i, j := 0, len(lead)-1; i < j; i, j = i+1, j-1 {
		lead[i], lead[j] = lead[j], lead[i]
	}
	return lead
}
