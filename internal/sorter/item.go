// Package sorter turns fingerprinted items into a total ordering or a
// partition into similarity groups.
package sorter

import "facesort/internal/fingerprint"

// Item pairs an image path with its fingerprint under the active metric.
// Items are immutable after creation; the path is the stable identifier.
type Item struct {
	Path  string
	Print fingerprint.Fingerprint
}

// SequencedList is a totally ordered view of the input items. Its multiset
// of items always equals the input's.
type SequencedList []Item

// Bins partitions items into groups; the slice index is the group number.
// Every input item appears in exactly one bin.
type Bins [][]Item

// Direction selects ascending or descending scalar ordering.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// OrderPolicy names a sequencing algorithm.
type OrderPolicy int

const (
	// OrderScalar sorts by a precomputed scalar key.
	OrderScalar OrderPolicy = iota
	// OrderChain walks a greedy nearest-neighbor chain.
	OrderChain
	// OrderDissimilarity ranks items by total distance to the rest of the set.
	OrderDissimilarity
)

// GroupPolicy names a partitioning algorithm.
type GroupPolicy int

const (
	// GroupEqualSplit cuts the ordered sequence into equally sized bins.
	GroupEqualSplit GroupPolicy = iota
	// GroupThresholdEdge bins scalars over the closed range [0, 100].
	GroupThresholdEdge
	// GroupCluster clusters items online against retained references.
	GroupCluster
)
