package retrieve_test

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/fwojciec/passage"
	"github.com/fwojciec/passage/retrieve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSnapshot builds a snapshot with one page per body. Bodies without
// markers produce exactly one chunk each, so chunk i belongs to page i.
func buildSnapshot(t *testing.T, bodies ...string) *retrieve.Snapshot {
	t.Helper()
	pages := make([]*passage.Page, len(bodies))
	for i, body := range bodies {
		pages[i] = &passage.Page{
			Title: fmt.Sprintf("Page %d", i),
			URL:   fmt.Sprintf("https://example.com/p%d", i),
			Body:  body,
		}
	}
	snap, err := (&retrieve.Builder{}).Build(context.Background(), pages)
	require.NoError(t, err)
	return snap
}

func simQ(snap *retrieve.Snapshot, query string) []float64 {
	q := snap.Model.Transform(query)
	sims := make([]float64, len(snap.Matrix))
	for i, row := range snap.Matrix {
		sims[i] = q.Dot(row)
	}
	return sims
}

var mmrCorpus = []string{
	"install the command line tool with the package manager",
	"install the command line tool with the package manager today",
	"plugins extend the tool with extra commands",
	"billing invoices are sent monthly",
	"install plugins from the registry",
}

func TestSnapshot_Select(t *testing.T) {
	t.Parallel()

	t.Run("top one is the most similar chunk for any lambda", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, mmrCorpus...)
		sims := simQ(snap, "install the tool")
		want := 0
		for i, s := range sims {
			if s > sims[want] {
				want = i
			}
		}

		for _, lambda := range []float64{0, 0.25, 0.5, 0.75, 1} {
			got := snap.Select("install the tool", retrieve.SelectOptions{K: 1, Lambda: lambda})
			assert.Equal(t, []int{want}, got, "lambda=%v", lambda)
		}
	})

	t.Run("lambda one ranks by relevance only", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, mmrCorpus...)
		sims := simQ(snap, "install the command line tool")
		want := []int{0, 1, 2, 3, 4}
		slices.SortStableFunc(want, func(a, b int) int {
			switch {
			case sims[a] > sims[b]:
				return -1
			case sims[a] < sims[b]:
				return 1
			}
			return 0
		})

		got := snap.Select("install the command line tool", retrieve.SelectOptions{K: 5, Lambda: 1})

		assert.Equal(t, want, got)
	})

	t.Run("lambda zero avoids near duplicates of selected chunks", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, mmrCorpus...)

		relevance := snap.Select("install the command line tool", retrieve.SelectOptions{K: 2, Lambda: 1})
		diverse := snap.Select("install the command line tool", retrieve.SelectOptions{K: 2, Lambda: 0})

		require.Len(t, relevance, 2)
		require.Len(t, diverse, 2)
		assert.ElementsMatch(t, []int{0, 1}, relevance)
		assert.Equal(t, relevance[0], diverse[0])
		assert.NotContains(t, []int{0, 1}, diverse[1])
	})

	t.Run("returns every chunk when k exceeds the corpus", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, mmrCorpus...)

		got := snap.Select("install", retrieve.SelectOptions{K: 20, Lambda: 0.5})

		assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, got)
	})

	t.Run("window of one degrades to relevance order", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, mmrCorpus...)

		windowed := snap.Select("install the command line tool", retrieve.SelectOptions{K: 5, Lambda: 0, Window: 1})
		relevance := snap.Select("install the command line tool", retrieve.SelectOptions{K: 5, Lambda: 1})

		assert.Equal(t, relevance, windowed)
	})

	t.Run("selects in chunk order for a query with no known terms", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, mmrCorpus...)

		got := snap.Select("ZZQQ", retrieve.SelectOptions{K: 3, Lambda: 1})

		assert.Equal(t, []int{0, 1, 2}, got)
	})

	t.Run("selects chunks for a single character query", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, "料金プランの変更方法", "料金の支払い方法について")

		got := snap.Select("料", retrieve.SelectOptions{K: 3, Lambda: 0.5})

		assert.Len(t, got, 2)
		assert.ElementsMatch(t, []int{0, 1}, got)
	})

	t.Run("returns nothing for an empty snapshot", func(t *testing.T) {
		t.Parallel()

		var nilSnap *retrieve.Snapshot

		assert.Empty(t, nilSnap.Select("install", retrieve.SelectOptions{K: 5}))
		assert.Empty(t, (&retrieve.Snapshot{}).Select("install", retrieve.SelectOptions{K: 5}))
	})

	t.Run("selects no chunk twice", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, mmrCorpus...)

		got := snap.Select("install plugins", retrieve.SelectOptions{K: 5, Lambda: 0.3})

		assert.Len(t, got, 5)
		seen := make(map[int]bool)
		for _, idx := range got {
			assert.False(t, seen[idx])
			seen[idx] = true
		}
	})
}
