package handlers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	cases := []struct {
		name               string
		page, size         int
		total              int
		wantStart, wantEnd int
	}{
		{"first page", 1, 50, 3, 0, 3},
		{"middle page", 2, 2, 5, 2, 4},
		{"last partial page", 3, 2, 5, 4, 5},
		{"exact end", 2, 5, 10, 5, 10},
		{"past the end", 4, 5, 10, 10, 10},
		{"empty store", 1, 50, 0, 0, 0},
		{"huge page", math.MaxInt / 10, 50, 2, 2, 2},
		{"max int page", math.MaxInt, maxPageSize, 7, 7, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := pageBounds(tc.page, tc.size, tc.total)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantEnd, end)
		})
	}
}
