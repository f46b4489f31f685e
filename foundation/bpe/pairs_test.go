package bpe

import (
	"maps"
	"slices"
	"testing"
)

func TestCountPairs(t *testing.T) {
	got := CountPairs([]int{1, 2, 3}, []int{3, 1, 2}, []int{7})

	exp := map[Pair]int{
		{1, 2}: 2,
		{2, 3}: 1,
		{3, 1}: 1,
	}

	if !maps.Equal(got, exp) {
		t.Fatalf("got %v, exp %v", got, exp)
	}
}

func TestMostFrequentTieBreak(t *testing.T) {
	counts := map[Pair]int{
		{256, 97}: 2,
		{97, 98}:  2,
		{98, 100}: 1,
		{97, 99}:  2,
	}

	pair, count := mostFrequent(counts)
	if pair != (Pair{97, 98}) || count != 2 {
		t.Fatalf("got %v/%d, exp [97 98]/2", pair, count)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		pair Pair
		exp  []int
	}{
		{"none", []int{1, 2, 3}, Pair{3, 1}, []int{1, 2, 3}},
		{"all", []int{1, 2, 1, 2}, Pair{1, 2}, []int{9, 9}},
		{"overlap", []int{5, 5, 5}, Pair{5, 5}, []int{9, 5}},
		{"overlap even", []int{5, 5, 5, 5}, Pair{5, 5}, []int{9, 9}},
		{"tail", []int{1, 3, 4}, Pair{3, 4}, []int{1, 9}},
		{"single", []int{3}, Pair{3, 3}, []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := merge(tt.ids, tt.pair, 9)
			if !slices.Equal(got, tt.exp) {
				t.Fatalf("got %v, exp %v", got, tt.exp)
			}
		})
	}
}
