package retrieve

import (
	"cmp"
	"slices"

	"github.com/fwojciec/passage"
)

// DefaultWindow is the number of leading pool candidates MMR scores per
// step. It bounds selection to O(K × Window) similarity evaluations.
const DefaultWindow = 200

// SelectOptions configures Snapshot.Select.
type SelectOptions struct {
	K      int     // Number of chunks to select; values below 1 select one
	Lambda float64 // Relevance weight in [0, 1]
	Window int     // Candidates scored per step; 0 means DefaultWindow
}

// Select greedily picks up to opts.K chunk indices by Maximal Marginal
// Relevance. The candidate pool is every chunk ordered by descending query
// similarity, ties kept in chunk order. The first pick is the most similar
// chunk; each later pick maximises
//
//	Lambda·sim(q, c) − (1−Lambda)·max sim(c, s) over selected s
//
// among the first Window remaining candidates, ties going to the earlier
// pool entry. A query sharing no terms with the corpus scores every chunk
// zero, so the pool stays in chunk order and only redundancy separates
// candidates.
func (s *Snapshot) Select(query string, opts SelectOptions) []int {
	if s.Empty() {
		return nil
	}
	k := max(opts.K, 1)
	lambda := passage.ClampLambda(opts.Lambda)
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}

	q := s.Model.Transform(query)
	qDense := q.Dense(s.Model.Size())
	simQ := make([]float64, len(s.Matrix))
	for i, row := range s.Matrix {
		simQ[i] = row.DotDense(qDense)
	}

	pool := make([]int, len(s.Matrix))
	for i := range pool {
		pool[i] = i
	}
	slices.SortStableFunc(pool, func(a, b int) int {
		return cmp.Compare(simQ[b], simQ[a])
	})

	// maxSim[c] holds the largest similarity between c and the first
	// seen[c] selected chunks; it is brought up to date only when c is
	// scored.
	maxSim := make([]float64, len(s.Matrix))
	seen := make([]int, len(s.Matrix))

	selected := make([]int, 0, min(k, len(pool)))
	selected = append(selected, pool[0])
	pool = pool[1:]

	for len(selected) < k && len(pool) > 0 {
		best, bestScore := 0, 0.0
		for j, c := range pool[:min(window, len(pool))] {
			for _, sel := range selected[seen[c]:] {
				maxSim[c] = max(maxSim[c], s.Matrix[c].Dot(s.Matrix[sel]))
			}
			seen[c] = len(selected)

			score := lambda*simQ[c] - (1-lambda)*maxSim[c]
			if j == 0 || score > bestScore {
				best, bestScore = j, score
			}
		}
		selected = append(selected, pool[best])
		pool = slices.Delete(pool, best, best+1)
	}

	return selected
}
