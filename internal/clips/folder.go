package clips

import (
	"path/filepath"
	"strings"
	"time"
)

// RecordingType distinguishes manual clips from background recordings.
type RecordingType string

const (
	RecordingManual     RecordingType = "clip"
	RecordingBackground RecordingType = "background"
)

// folderTimestampLayout matches the <YYYYMMDD><HHMMSS> pair embedded in
// capture folder names.
const folderTimestampLayout = "20060102150405"

// CaptureFolder identifies one recording capture on disk. It is immutable
// input to the export engine; the engine never mutates or renames it.
type CaptureFolder struct {
	Path      string
	GameID    string
	Type      RecordingType
	Timestamp time.Time // zero when the folder name carries no parseable timestamp
}

// ParseFolder derives capture metadata from a folder path. Folders that do
// not follow the naming convention still produce a usable CaptureFolder; the
// timestamp stays zero and GameID empty.
func ParseFolder(path string) CaptureFolder {
	folder := CaptureFolder{Path: path, Type: RecordingManual}

	base := filepath.Base(path)
	parts := strings.Split(base, "_")
	if len(parts) == 0 {
		return folder
	}

	if strings.EqualFold(parts[0], "bg") {
		folder.Type = RecordingBackground
	}

	if len(parts) >= 2 && parts[1] != "" {
		folder.GameID = parts[1]
	}

	if len(parts) >= 3 {
		raw := parts[len(parts)-2] + parts[len(parts)-1]
		if ts, err := time.ParseInLocation(folderTimestampLayout, raw, time.Local); err == nil {
			folder.Timestamp = ts
		}
	}

	return folder
}

// HasTimestamp reports whether the folder name carried a parseable timestamp.
func (c CaptureFolder) HasTimestamp() bool {
	return !c.Timestamp.IsZero()
}
