package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTupleCompare(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b []int
		want int
	}{
		{"equal", []int{3, 9}, []int{3, 9}, 0},
		{"minor less", []int{3, 8}, []int{3, 9}, -1},
		{"minor greater", []int{3, 10}, []int{3, 9}, 1},
		{"major wins", []int{3, 13}, []int{4, 0}, -1},
		{"prefix is less", []int{3}, []int{3, 0}, -1},
		{"longer is greater", []int{3, 8}, []int{3}, 1},
		{"major only equal", []int{3}, []int{3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tupleCompare(tt.a, tt.b))
		})
	}
}

func TestCompareSatisfies(t *testing.T) {
	t.Parallel()
	assert.True(t, compareSatisfies(-1, "<"))
	assert.True(t, compareSatisfies(0, "<="))
	assert.True(t, compareSatisfies(1, ">"))
	assert.True(t, compareSatisfies(0, ">="))
	assert.True(t, compareSatisfies(0, "=="))
	assert.True(t, compareSatisfies(1, "!="))
	assert.False(t, compareSatisfies(0, "<"))
	assert.False(t, compareSatisfies(-1, ">="))
	assert.False(t, compareSatisfies(0, "unknown"))
}
