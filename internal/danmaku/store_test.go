package danmaku

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBvid1 = "BV1j4411W7F7"
	testBvid2 = "BV1yt4y1Q7SS"
)

func TestStore_AppendIsCumulative(t *testing.T) {
	s := NewStore()
	s.Append(testBvid1, "Testing danmaku1")
	s.Append(testBvid1, "Testing danmaku2")

	assert.Equal(t, 1, s.Size())
	assert.Equal(t, []string{testBvid1}, s.Bvids())
	got, err := s.Get(testBvid1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Testing danmaku1", "Testing danmaku2"}, got)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Append(testBvid1, "Testing danmaku")
	s.Set(testBvid2, []string{"a", "b"})
	require.Equal(t, 2, s.Size())

	s.Clear()
	assert.Equal(t, 0, s.Size())
	assert.Empty(t, s.Bvids())
	assert.Empty(t, s.Items())
	assert.False(t, s.Has(testBvid1))
}

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore()
	_, err := s.Get("BVnothere123")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestStore_SetOverwritesInPlace(t *testing.T) {
	s := NewStore()
	s.Set("A", []string{"1"})
	s.Set("B", []string{"2"})
	s.Set("A", []string{"3", "4"})

	assert.Equal(t, []string{"A", "B"}, s.Bvids())
	got, _ := s.Get("A")
	assert.Equal(t, []string{"3", "4"}, got)
	assert.Equal(t, 3, s.Total())
}

func TestStore_EmptyEntryCounts(t *testing.T) {
	s := NewStore()
	s.Set("C", nil)

	assert.Equal(t, 1, s.Size())
	assert.True(t, s.Has("C"))
	got, err := s.Get("C")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_NoAliasing(t *testing.T) {
	s := NewStore()
	in := []string{"x", "y"}
	s.Set("A", in)
	in[0] = "mutated"

	out, _ := s.Get("A")
	assert.Equal(t, []string{"x", "y"}, out)
	out[1] = "mutated"

	items := s.Items()
	items[0].Danmakus[0] = "mutated"

	again, _ := s.Get("A")
	assert.Equal(t, []string{"x", "y"}, again)
}

func TestStore_Replace(t *testing.T) {
	s := NewStore()
	s.Set("old", []string{"1"})
	other := NewStore()
	other.Set("new", []string{"2"})

	s.Replace(other)
	assert.Equal(t, []string{"new"}, s.Bvids())

	s.Replace(s)
	assert.Equal(t, []string{"new"}, s.Bvids())
}

func makeComments(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i%26))
	}
	return out
}

func TestStore_Page(t *testing.T) {
	s := NewStore()
	comments := makeComments(25)
	s.Set(testBvid1, comments)

	tests := []struct {
		name      string
		size      int
		page      int
		wantData  []string
		wantCount int
	}{
		{"second page", 10, 2, comments[10:20], 3},
		{"last partial page", 10, 3, comments[20:25], 3},
		{"clamped to last page", 10, 99, comments[20:25], 3},
		{"size zero means all", 0, 1, comments, 1},
		{"negative size means all", -5, 4, comments, 1},
		{"size capped to total", 100, 1, comments, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Page(testBvid1, tt.size, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, p.Data)
			assert.Equal(t, len(tt.wantData), p.PageSize)
			assert.Equal(t, tt.wantCount, p.PageCount)
			assert.Equal(t, 25, p.TotalCount)
		})
	}
}

func TestStore_PageErrors(t *testing.T) {
	s := NewStore()
	s.Set(testBvid1, makeComments(3))
	s.Set("empty", nil)

	_, err := s.Page("missing", 10, 1)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = s.Page(testBvid1, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	p, err := s.Page("empty", 10, 1)
	require.NoError(t, err)
	assert.Empty(t, p.Data)
	assert.Zero(t, p.PageCount)
}
