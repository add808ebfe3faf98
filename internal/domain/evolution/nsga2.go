package evolution

import (
	"math"
	"sort"
)

// SortNondominated partitions the population into Pareto fronts.  Front 0
// holds the non-dominated individuals; each later front is non-dominated
// once all earlier fronts are removed.
func SortNondominated(pop []*Individual) [][]*Individual {
	n := len(pop)
	if n == 0 {
		return nil
	}

	dominated := make([][]int, n)
	domCount := make([]int, n)
	fits := make([]Objectives, n)
	for i, ind := range pop {
		fits[i], _ = ind.Fitness()
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case fits[i].Dominates(fits[j]):
				dominated[i] = append(dominated[i], j)
				domCount[j]++
			case fits[j].Dominates(fits[i]):
				dominated[j] = append(dominated[j], i)
				domCount[i]++
			}
		}
	}

	var first []int
	for i := 0; i < n; i++ {
		if domCount[i] == 0 {
			first = append(first, i)
		}
	}

	var fronts [][]*Individual
	current := first
	for len(current) > 0 {
		front := make([]*Individual, 0, len(current))
		for _, i := range current {
			front = append(front, pop[i])
		}
		fronts = append(fronts, front)

		var next []int
		for _, i := range current {
			for _, j := range dominated[i] {
				domCount[j]--
				if domCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		current = next
	}
	return fronts
}

// CrowdingDistances computes the crowding distance of each individual in a
// single front, aligned by index with the input slice.  Boundary points get
// +Inf so they always survive truncation.
func CrowdingDistances(front []*Individual) []float64 {
	n := len(front)
	dist := make([]float64, n)
	if n == 0 {
		return dist
	}
	if n <= 2 {
		for i := range dist {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	order := make([]int, n)
	for obj := 0; obj < NumObjectives; obj++ {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			fa, _ := front[order[a]].Fitness()
			fb, _ := front[order[b]].Fitness()
			return fa.weighted()[obj] < fb.weighted()[obj]
		})

		loFit, _ := front[order[0]].Fitness()
		hiFit, _ := front[order[n-1]].Fitness()
		span := hiFit.weighted()[obj] - loFit.weighted()[obj]

		dist[order[0]] = math.Inf(1)
		dist[order[n-1]] = math.Inf(1)
		if span == 0 {
			continue
		}
		for k := 1; k < n-1; k++ {
			prev, _ := front[order[k-1]].Fitness()
			next, _ := front[order[k+1]].Fitness()
			dist[order[k]] += (next.weighted()[obj] - prev.weighted()[obj]) / span
		}
	}
	return dist
}

// SelectNSGA2 selects k individuals by non-dominated rank, breaking ties in
// the last admitted front by descending crowding distance.
func SelectNSGA2(pop []*Individual, k int) []*Individual {
	if k <= 0 {
		return nil
	}
	if k >= len(pop) {
		out := make([]*Individual, len(pop))
		copy(out, pop)
		return out
	}

	selected := make([]*Individual, 0, k)
	for _, front := range SortNondominated(pop) {
		if len(selected)+len(front) <= k {
			selected = append(selected, front...)
			if len(selected) == k {
				break
			}
			continue
		}

		need := k - len(selected)
		dist := CrowdingDistances(front)
		order := make([]int, len(front))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return dist[order[a]] > dist[order[b]]
		})
		for _, i := range order[:need] {
			selected = append(selected, front[i])
		}
		break
	}
	return selected
}

//Personal.AI order the ending
