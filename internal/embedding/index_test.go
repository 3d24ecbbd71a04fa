package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(t.TempDir(), "test-model")
	require.NoError(t, err)
	return idx
}

func TestIndex_UpsertNormalizes(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert("a", []float32{3, 4}))

	hits := idx.Query([]float32{3, 4}, 1, nil)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6, "a vector matched against itself scores 1")
}

func TestIndex_QueryOrdersByScore(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert("orthogonal", []float32{0, 1}))
	require.NoError(t, idx.Upsert("aligned", []float32{1, 0}))
	require.NoError(t, idx.Upsert("diagonal", []float32{1, 1}))

	hits := idx.Query([]float32{1, 0}, 3, nil)
	require.Len(t, hits, 3)
	assert.Equal(t, "aligned", hits[0].Name)
	assert.Equal(t, "diagonal", hits[1].Name)
	assert.Equal(t, "orthogonal", hits[2].Name)

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score, "scores are non-increasing")
	}
}

func TestIndex_QueryRespectsK(t *testing.T) {
	idx := newTestIndex(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, idx.Upsert(name, []float32{1, 0}))
	}

	assert.Len(t, idx.Query([]float32{1, 0}, 2, nil), 2)
	assert.Len(t, idx.Query([]float32{1, 0}, 10, nil), 5)
	assert.Empty(t, idx.Query([]float32{1, 0}, 0, nil))
}

func TestIndex_TiesKeepInsertionOrder(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert("first", []float32{1, 0}))
	require.NoError(t, idx.Upsert("second", []float32{1, 0}))
	require.NoError(t, idx.Upsert("third", []float32{1, 0}))

	hits := idx.Query([]float32{1, 0}, 3, nil)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{hits[0].Name, hits[1].Name, hits[2].Name})
}

func TestIndex_HiddenFilterIsLive(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert("visible", []float32{1, 0}))
	require.NoError(t, idx.Upsert("shy", []float32{1, 0}))

	hiddenSet := map[string]bool{"shy": true}
	hidden := func(name string) bool { return hiddenSet[name] }

	hits := idx.Query([]float32{1, 0}, 10, hidden)
	require.Len(t, hits, 1)
	assert.Equal(t, "visible", hits[0].Name)

	// Unhiding needs no re-embed: the vector never left the index.
	hiddenSet["shy"] = false
	hits = idx.Query([]float32{1, 0}, 10, hidden)
	assert.Len(t, hits, 2)
}

func TestIndex_NegativeScoresClampToZero(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert("opposed", []float32{-1, 0}))

	hits := idx.Query([]float32{1, 0}, 1, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.0, hits[0].Score)
}

func TestIndex_EmptyQuery(t *testing.T) {
	idx := newTestIndex(t)
	hits := idx.Query([]float32{1, 0}, 4, nil)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestIndex_DeleteAndHas(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Upsert("a", []float32{1, 0}))
	assert.True(t, idx.Has("a"))

	require.NoError(t, idx.Delete("a"))
	assert.False(t, idx.Has("a"))
	assert.Equal(t, 0, idx.Len())

	require.NoError(t, idx.Delete("absent"))
}

func TestIndex_PersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewIndex(dir, "test-model")
	require.NoError(t, err)
	require.NoError(t, idx.Upsert("kept", []float32{1, 2, 2}))

	reloaded, err := NewIndex(dir, "test-model")
	require.NoError(t, err)
	assert.True(t, reloaded.Has("kept"))

	hits := reloaded.Query([]float32{1, 2, 2}, 1, nil)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestIndex_ModelChangeDiscardsVectors(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewIndex(dir, "old-model")
	require.NoError(t, err)
	require.NoError(t, idx.Upsert("stale", []float32{1, 0}))

	reloaded, err := NewIndex(dir, "new-model")
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Len())
}

func TestNormalize_ZeroVector(t *testing.T) {
	out := normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, out)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-0.3))
	assert.Equal(t, 1.0, clamp(1.0000001))
	assert.InDelta(t, 0.5, clamp(0.5), math.SmallestNonzeroFloat64)
}
