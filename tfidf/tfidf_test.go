package tfidf_test

import (
	"math"
	"testing"

	"github.com/fwojciec/passage/tfidf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v tfidf.Vector) float64 {
	var sum float64
	for _, x := range v.Values {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestFitTransform(t *testing.T) {
	t.Parallel()

	t.Run("returns one normalised row per document", func(t *testing.T) {
		t.Parallel()

		docs := []string{"install the cli", "configure the server", "設定を保存する"}

		model, rows := tfidf.FitTransform(docs, tfidf.Options{})

		require.Len(t, rows, 3)
		assert.Positive(t, model.Size())
		for _, row := range rows {
			assert.InDelta(t, 1.0, norm(row), 1e-5)
			for i := 1; i < len(row.Indices); i++ {
				assert.Less(t, row.Indices[i-1], row.Indices[i])
			}
		}
	})

	t.Run("builds character n-grams between min and max length", func(t *testing.T) {
		t.Parallel()

		model := tfidf.Fit([]string{"abc"}, tfidf.Options{MinN: 2, MaxN: 3})

		assert.Equal(t, 3, model.Size()) // ab, bc, abc
		assert.True(t, model.Contains("ab"))
		assert.True(t, model.Contains("abc"))
		assert.False(t, model.Contains("a"))
	})

	t.Run("lowercases and collapses whitespace", func(t *testing.T) {
		t.Parallel()

		model := tfidf.Fit([]string{"A \n\t B"}, tfidf.Options{MinN: 3, MaxN: 3})

		assert.Equal(t, 1, model.Size())
		assert.True(t, model.Contains("a b"))
	})

	t.Run("caps vocabulary at the most frequent terms", func(t *testing.T) {
		t.Parallel()

		// "aa" occurs three times, every other bigram once.
		model := tfidf.Fit([]string{"aaaa", "xy"}, tfidf.Options{MinN: 2, MaxN: 2, MaxFeatures: 1})

		assert.Equal(t, 1, model.Size())
		assert.True(t, model.Contains("aa"))
		assert.False(t, model.Contains("xy"))
	})

	t.Run("identical documents have similarity one", func(t *testing.T) {
		t.Parallel()

		_, rows := tfidf.FitTransform([]string{"getting started guide", "getting started guide", "xyz qv"}, tfidf.Options{})

		assert.InDelta(t, 1.0, rows[0].Dot(rows[1]), 1e-5)
		assert.InDelta(t, 0.0, rows[0].Dot(rows[2]), 1e-5)
	})

	t.Run("partial overlap scores between zero and one", func(t *testing.T) {
		t.Parallel()

		_, rows := tfidf.FitTransform([]string{"getting started guide", "billing"}, tfidf.Options{})

		sim := rows[0].Dot(rows[1])
		assert.Greater(t, sim, 0.0)
		assert.Less(t, sim, 1.0)
	})

	t.Run("handles empty corpus", func(t *testing.T) {
		t.Parallel()

		model, rows := tfidf.FitTransform(nil, tfidf.Options{})

		assert.Empty(t, rows)
		assert.Equal(t, 0, model.Size())
		assert.True(t, model.Transform("anything").IsZero())
	})
}

func TestVectorizer_Transform(t *testing.T) {
	t.Parallel()

	t.Run("ignores out-of-vocabulary terms", func(t *testing.T) {
		t.Parallel()

		model := tfidf.Fit([]string{"install guide"}, tfidf.Options{})

		assert.True(t, model.Transform("zzzz").IsZero())
	})

	t.Run("does not grow the vocabulary", func(t *testing.T) {
		t.Parallel()

		model := tfidf.Fit([]string{"install guide"}, tfidf.Options{})
		size := model.Size()

		model.Transform("completely new words here")

		assert.Equal(t, size, model.Size())
	})

	t.Run("ranks the closer document higher", func(t *testing.T) {
		t.Parallel()

		model, rows := tfidf.FitTransform([]string{
			"how to reset your password",
			"billing and invoices overview",
		}, tfidf.Options{})

		q := model.Transform("reset password")

		assert.Greater(t, q.Dot(rows[0]), q.Dot(rows[1]))
		assert.InDelta(t, q.Dot(rows[0]), rows[0].DotDense(q.Dense(model.Size())), 1e-6)
	})
}

func TestVector_Dot(t *testing.T) {
	t.Parallel()

	a := tfidf.Vector{Indices: []int32{0, 2, 5}, Values: []float32{1, 2, 3}}
	b := tfidf.Vector{Indices: []int32{2, 3, 5}, Values: []float32{4, 1, 2}}

	assert.InDelta(t, 14.0, a.Dot(b), 1e-9)
	assert.InDelta(t, 14.0, b.Dot(a), 1e-9)
	assert.InDelta(t, 0.0, a.Dot(tfidf.Vector{}), 1e-9)
	assert.Equal(t, 3, a.Len())
}
