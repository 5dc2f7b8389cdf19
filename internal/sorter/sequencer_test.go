package sorter

import (
	"fmt"
	"testing"

	"facesort/internal/fingerprint"
)

func scalarItems(values ...float64) []Item {
	items := make([]Item, len(values))
	for i, v := range values {
		items[i] = Item{Path: fmt.Sprintf("img_%02d.png", i), Print: fingerprint.Scalar(v)}
	}
	return items
}

// assertPermutation checks that seq holds exactly the input items.
func assertPermutation(t *testing.T, items []Item, seq SequencedList) {
	t.Helper()
	if len(seq) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(seq))
	}
	seen := make(map[string]int)
	for _, item := range seq {
		seen[item.Path]++
	}
	for _, item := range items {
		if seen[item.Path] != 1 {
			t.Errorf("item %s appears %d times in output", item.Path, seen[item.Path])
		}
	}
}

func TestSortScalar_Ascending(t *testing.T) {
	items := scalarItems(3, 1, 2)
	seq := SortScalar(items, Ascending)
	assertPermutation(t, items, seq)

	for i := 1; i < len(seq); i++ {
		if seq[i-1].Print.ScalarValue() > seq[i].Print.ScalarValue() {
			t.Errorf("sequence not ascending at %d: %f > %f", i, seq[i-1].Print.ScalarValue(), seq[i].Print.ScalarValue())
		}
	}
}

func TestSortScalar_Descending(t *testing.T) {
	items := scalarItems(1, 3, 2)
	seq := SortScalar(items, Descending)
	assertPermutation(t, items, seq)

	if seq[0].Print.ScalarValue() != 3 || seq[2].Print.ScalarValue() != 1 {
		t.Errorf("unexpected descending order: %v", seq)
	}
}

func TestSortScalar_StableOnTies(t *testing.T) {
	items := scalarItems(2, 1, 2, 1)
	seq := SortScalar(items, Ascending)

	// equal keys keep input order
	want := []string{"img_01.png", "img_03.png", "img_00.png", "img_02.png"}
	for i, path := range want {
		if seq[i].Path != path {
			t.Errorf("expected position %d to hold %s, got %s", i, path, seq[i].Path)
		}
	}
}

func TestChainSort_WalksNearestNeighbor(t *testing.T) {
	// Starting at 5, the greedy chain prefers 6 (the earliest of the two
	// candidates at distance 1), then 8, 4 and finally 1.
	items := scalarItems(5, 8, 1, 6, 4)
	seq, err := ChainSort(items, fingerprint.ScalarDistance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPermutation(t, items, seq)

	want := []float64{5, 6, 8, 4, 1}
	for i, v := range want {
		if seq[i].Print.ScalarValue() != v {
			t.Errorf("expected value %f at position %d, got %f", v, i, seq[i].Print.ScalarValue())
		}
	}
}

func TestChainSort_Deterministic(t *testing.T) {
	items := scalarItems(5, 8, 1, 6, 4, 4, 9)
	first, err := ChainSort(items, fingerprint.ScalarDistance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ChainSort(items, fingerprint.ScalarDistance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i].Path != second[i].Path {
			t.Fatalf("runs disagree at position %d: %s vs %s", i, first[i].Path, second[i].Path)
		}
	}
}

func TestChainSort_TiePicksEarliestCandidate(t *testing.T) {
	// Both 4s are equally close to the anchor 5; the earlier index wins.
	items := []Item{
		{Path: "anchor.png", Print: fingerprint.Scalar(5)},
		{Path: "left.png", Print: fingerprint.Scalar(4)},
		{Path: "right.png", Print: fingerprint.Scalar(4)},
	}
	seq, err := ChainSort(items, fingerprint.ScalarDistance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq[1].Path != "left.png" {
		t.Errorf("expected earliest tied candidate left.png, got %s", seq[1].Path)
	}
}

func TestChainSort_ComparatorErrorIsFatal(t *testing.T) {
	items := []Item{
		{Path: "a.png", Print: fingerprint.Scalar(1)},
		{Path: "b.png", Print: fingerprint.Vector([]float32{1})},
	}
	if _, err := ChainSort(items, fingerprint.ScalarDistance); err == nil {
		t.Error("expected error for mixed fingerprint kinds")
	}
}

func TestSortByTotalDissimilarity(t *testing.T) {
	// 10 is farthest from everything else in total and must come first.
	items := scalarItems(1, 10, 2, 3)
	seq, err := SortByTotalDissimilarity(items, fingerprint.ScalarDistance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPermutation(t, items, seq)

	if seq[0].Print.ScalarValue() != 10 {
		t.Errorf("expected the outlier 10 first, got %f", seq[0].Print.ScalarValue())
	}
}

func TestSortByTotalDissimilarity_Empty(t *testing.T) {
	seq, err := SortByTotalDissimilarity(nil, fingerprint.ScalarDistance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seq) != 0 {
		t.Errorf("expected empty sequence, got %d items", len(seq))
	}
}
