package sorter

import (
	"math"

	"facesort/internal/fingerprint"
)

// EqualSplit distributes the ordered sequence contiguously into numBins
// groups. When the count does not divide evenly, the whole remainder fills
// the last bin from the tail of the sequence, last item first.
func EqualSplit(seq SequencedList, numBins int) Bins {
	perBin := len(seq) / numBins
	remainder := len(seq) % numBins

	bins := make(Bins, numBins)
	idx := 0
	for i := range bins {
		bins[i] = make([]Item, 0, perBin)
		for n := 0; n < perBin; n++ {
			bins[i] = append(bins[i], seq[idx])
			idx++
		}
	}
	for i := 1; i <= remainder; i++ {
		bins[numBins-1] = append(bins[numBins-1], seq[len(seq)-i])
	}
	return bins
}

// SplitEdges returns numBins+1 cumulative edges over [0, span]. The first
// span%numBins bins are one unit wider than the rest.
func SplitEdges(span, numBins int) []int {
	quotient := span / numBins
	remainder := span % numBins

	edges := make([]int, 1, numBins+1)
	upper := 0
	for i := 0; i < numBins; i++ {
		width := quotient
		if i < remainder {
			width++
		}
		upper += width
		edges = append(edges, upper)
	}
	return edges
}

// ThresholdEdgeSplit bins scalar items over the closed range [0, 100]. An
// item lands in the bin whose lower edge is the largest one not exceeding
// its value: exactly 25.0 with four bins goes to bin 1, 24.999 to bin 0.
// Values at the very top of the range land in the last bin.
func ThresholdEdgeSplit(seq SequencedList, numBins int) Bins {
	edges := SplitEdges(100, numBins)

	bins := make(Bins, numBins)
	for i := range bins {
		bins[i] = []Item{}
	}
	for _, item := range seq {
		value := item.Print.ScalarValue()
		idx := 0
		for k := 1; k < len(edges); k++ {
			if float64(edges[k]) <= value {
				idx = k
			}
		}
		if idx > numBins-1 {
			idx = numBins - 1
		}
		bins[idx] = append(bins[idx], item)
	}
	return bins
}

// Cluster groups items one at a time in sequence order. Each group retains
// every fingerprint accepted into it; a new item joins the group with the
// lowest mean distance to those references when that mean is below the
// threshold, otherwise it seeds a new group. Matching always runs against
// the full reference set, never a centroid.
func Cluster(seq SequencedList, compare fingerprint.Comparator, threshold float64) Bins {
	if len(seq) == 0 {
		return Bins{}
	}

	references := [][]fingerprint.Fingerprint{{seq[0].Print}}
	bins := Bins{{seq[0]}}

	for _, item := range seq[1:] {
		best := -1
		bestScore := math.Inf(1)
		for g, refs := range references {
			score := meanDistance(item.Print, refs, compare)
			if score < bestScore {
				best = g
				bestScore = score
			}
		}

		if bestScore < threshold {
			references[best] = append(references[best], item.Print)
			bins[best] = append(bins[best], item)
		} else {
			references = append(references, []fingerprint.Fingerprint{item.Print})
			bins = append(bins, []Item{item})
		}
	}
	return bins
}

// meanDistance averages the comparator distance from print to every retained
// reference of a group. Comparator failures and empty groups read as
// infinitely far, which excludes the group without aborting the run.
func meanDistance(print fingerprint.Fingerprint, refs []fingerprint.Fingerprint, compare fingerprint.Comparator) float64 {
	if len(refs) == 0 {
		return math.Inf(1)
	}
	var total float64
	for _, ref := range refs {
		score, err := compare(print, ref)
		if err != nil {
			return math.Inf(1)
		}
		total += score
	}
	return total / float64(len(refs))
}
