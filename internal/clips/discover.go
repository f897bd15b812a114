package clips

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverSteamIDs lists the numeric account directories under a Steam
// userdata root, sorted ascending.
func DiscoverSteamIDs(userdataDir string) ([]string, error) {
	entries, err := os.ReadDir(userdataDir)
	if err != nil {
		return nil, fmt.Errorf("read userdata directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isNumeric(name) {
			continue
		}
		ids = append(ids, name)
	}
	sort.Strings(ids)
	return ids, nil
}

// DiscoverCaptures returns every capture folder recorded for a Steam account,
// newest first. Both manual clips and background recordings are included.
func DiscoverCaptures(userdataDir, steamID string) ([]CaptureFolder, error) {
	recordingsDir := filepath.Join(userdataDir, steamID, "gamerecordings")

	var captures []CaptureFolder
	for _, sub := range []string{"clips", "video"} {
		dir := filepath.Join(recordingsDir, sub)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read recordings directory %q: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			captures = append(captures, ParseFolder(filepath.Join(dir, entry.Name())))
		}
	}

	sort.SliceStable(captures, func(i, j int) bool {
		return captures[i].Timestamp.After(captures[j].Timestamp)
	})
	return captures, nil
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FilterByGame keeps only captures recorded for the given game ID.
func FilterByGame(captures []CaptureFolder, gameID string) []CaptureFolder {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return captures
	}
	filtered := make([]CaptureFolder, 0, len(captures))
	for _, capture := range captures {
		if capture.GameID == gameID {
			filtered = append(filtered, capture)
		}
	}
	return filtered
}
