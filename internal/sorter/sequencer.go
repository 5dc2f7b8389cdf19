package sorter

import (
	"fmt"
	"math"
	"sort"

	"facesort/internal/fingerprint"
)

// SortScalar orders items by their scalar fingerprint. The sort is stable,
// so ties keep their enumeration order.
func SortScalar(items []Item, direction Direction) SequencedList {
	seq := make(SequencedList, len(items))
	copy(seq, items)
	sort.SliceStable(seq, func(i, j int) bool {
		if direction == Descending {
			return seq[i].Print.ScalarValue() > seq[j].Print.ScalarValue()
		}
		return seq[i].Print.ScalarValue() < seq[j].Print.ScalarValue()
	})
	return seq
}

// ChainSort orders items so each one is the nearest remaining neighbor of
// its predecessor. The first input item anchors the chain. The scan uses a
// strict less-than, so a distance tie resolves to the earliest candidate and
// repeated runs over the same input are identical.
func ChainSort(items []Item, compare fingerprint.Comparator) (SequencedList, error) {
	seq := make(SequencedList, len(items))
	copy(seq, items)

	for i := 0; i < len(seq)-1; i++ {
		minScore := math.Inf(1)
		minIndex := i + 1
		for j := i + 1; j < len(seq); j++ {
			score, err := compare(seq[i].Print, seq[j].Print)
			if err != nil {
				return nil, fmt.Errorf("failed to compare %s with %s: %w", seq[i].Path, seq[j].Path, err)
			}
			if score < minScore {
				minScore = score
				minIndex = j
			}
		}
		seq[i+1], seq[minIndex] = seq[minIndex], seq[i+1]
	}
	return seq, nil
}

// SortByTotalDissimilarity ranks every item by the sum of its distances to
// all other items and orders the set descending, so the items least like the
// rest come first. Equal totals keep their enumeration order.
func SortByTotalDissimilarity(items []Item, compare fingerprint.Comparator) (SequencedList, error) {
	totals := make([]float64, len(items))
	for i := range items {
		for j := range items {
			if i == j {
				continue
			}
			score, err := compare(items[i].Print, items[j].Print)
			if err != nil {
				return nil, fmt.Errorf("failed to compare %s with %s: %w", items[i].Path, items[j].Path, err)
			}
			totals[i] += score
		}
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return totals[order[a]] > totals[order[b]]
	})

	seq := make(SequencedList, len(items))
	for i, j := range order {
		seq[i] = items[j]
	}
	return seq, nil
}
