package metric

import "fmt"

// MissingMetadataError aborts the whole run: the input faceset lacks the
// alignment data the chosen metric needs. It is never downgraded to a
// per-item skip.
type MissingMetadataError struct {
	Metric ID
	Path   string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("%s carries no alignment data, which the %q metric requires; "+
		"re-extract the faces from the source alignments file to regenerate it", e.Path, e.Metric)
}
