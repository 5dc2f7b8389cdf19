// Package changelog accumulates the audit record of one curation run: every
// relocation that fully succeeded, keyed by source path.
package changelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Log is the single-writer accumulator for one run. Entries are recorded
// only after the corresponding filesystem operation succeeded, and the log
// is persisted exactly once at the end of the run. A nil *Log drops all
// records, so callers never need to branch on whether logging is enabled.
type Log struct {
	entries map[string]string
}

func New() *Log {
	return &Log{entries: make(map[string]string)}
}

// Record remembers one completed source→destination relocation.
func (l *Log) Record(src, dst string) {
	if l == nil {
		return
	}
	l.entries[src] = dst
}

func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns a copy of the recorded relocations.
func (l *Log) Entries() map[string]string {
	out := make(map[string]string, l.Len())
	if l != nil {
		for k, v := range l.entries {
			out[k] = v
		}
	}
	return out
}

// Save persists the log once, in the format selected by the target path's
// extension. JSON is the default. Saving a nil *Log writes nothing.
func (l *Log) Save(path string) error {
	if l == nil {
		return nil
	}
	var out []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err = yaml.Marshal(l.entries)
	case ".toml":
		out, err = toml.Marshal(l.entries)
	default:
		out, err = json.MarshalIndent(l.entries, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize change log: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write change log: %w", err)
	}
	return nil
}
