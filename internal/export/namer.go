package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// outputTimestampLayout renders capture timestamps the way Steam labels its
// own exports; folder names carry second precision, so centiseconds are
// always zero.
const outputTimestampLayout = "2006.01.02 - 15.04.05"

// unknownTimestamp is the sentinel used when a folder name carries no
// parseable timestamp.
const unknownTimestamp = "unknown"

// Namer hands out collision-free output paths within a directory. The
// check-then-claim sequence runs under one mutex shared by all workers, and
// names are held in a claims map as well as checked on disk, because a
// claimed name only materializes when the final mux finishes.
type Namer struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

// NewNamer builds a namer for one batch.
func NewNamer() *Namer {
	return &Namer{claimed: make(map[string]struct{})}
}

// Reserve returns a unique output path for the given label and timestamp,
// appending an incrementing numeric suffix while the candidate collides with
// an existing file or a name already claimed by another worker.
func (n *Namer) Reserve(dir, label string, timestamp time.Time, ext string) string {
	base := SanitizeLabel(label) + " " + formatTimestamp(timestamp)
	ext = "." + strings.TrimPrefix(ext, ".")

	n.mu.Lock()
	defer n.mu.Unlock()

	candidate := filepath.Join(dir, base+ext)
	for counter := 1; n.taken(candidate); counter++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}
	n.claimed[candidate] = struct{}{}
	return candidate
}

func (n *Namer) taken(path string) bool {
	if _, ok := n.claimed[path]; ok {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func formatTimestamp(timestamp time.Time) string {
	if timestamp.IsZero() {
		return unknownTimestamp
	}
	return timestamp.Format(outputTimestampLayout) + ".00"
}

// SanitizeLabel strips filesystem-hostile characters from a display name.
func SanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "Clip"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "-", "?", "", "\"", "", "<", "", ">", "", "|", "")
	cleaned := strings.TrimSpace(replacer.Replace(label))
	if cleaned == "" {
		return "Clip"
	}
	return cleaned
}
