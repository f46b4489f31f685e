package bpe

// Pair represents two adjacent token ids.
type Pair [2]int

// less reports whether p sorts before o, comparing the first id and then
// the second.
func (p Pair) less(o Pair) bool {
	if p[0] != o[0] {
		return p[0] < o[0]
	}

	return p[1] < o[1]
}

// CountPairs counts every adjacent pair in the specified sequences. Counts
// are summed across sequences, but pairs never span two sequences.
func CountPairs(seqs ...[]int) map[Pair]int {
	counts := make(map[Pair]int)

	for _, seq := range seqs {
		for i := 0; i < len(seq)-1; i++ {
			counts[Pair{seq[i], seq[i+1]}]++
		}
	}

	return counts
}

// mostFrequent returns the pair with the highest count. Ties go to the
// smallest pair so the choice never depends on map iteration order.
func mostFrequent(counts map[Pair]int) (Pair, int) {
	var best Pair
	bestCount := 0

	for pair, count := range counts {
		if count > bestCount || (count == bestCount && pair.less(best)) {
			best, bestCount = pair, count
		}
	}

	return best, bestCount
}

// merge replaces every occurrence of pair in ids with id. It is a single
// left to right pass, so overlapping occurrences are consumed greedily:
// merging (5,5) in [5,5,5] produces [id,5].
func merge(ids []int, pair Pair, id int) []int {
	out := make([]int, 0, len(ids))

	for i := 0; i < len(ids); {
		if i < len(ids)-1 && ids[i] == pair[0] && ids[i+1] == pair[1] {
			out = append(out, id)
			i += 2
			continue
		}

		out = append(out, ids[i])
		i++
	}

	return out
}
