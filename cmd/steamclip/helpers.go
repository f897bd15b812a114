package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Nastas95/SteamClip/internal/clips"
)

// selectSteamID picks the account to operate on. With one account on disk the
// flag is optional; with several it must name one of them.
func selectSteamID(userdataDir, flagValue string) (string, error) {
	ids, err := clips.DiscoverSteamIDs(userdataDir)
	if err != nil {
		return "", fmt.Errorf("discover steam accounts: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no steam accounts found under %s", userdataDir)
	}

	flagValue = strings.TrimSpace(flagValue)
	if flagValue == "" {
		if len(ids) == 1 {
			return ids[0], nil
		}
		return "", fmt.Errorf("multiple steam accounts found (%s); pick one with --steamid", strings.Join(ids, ", "))
	}
	for _, id := range ids {
		if id == flagValue {
			return id, nil
		}
	}
	return "", fmt.Errorf("steam account %q not found (available: %s)", flagValue, strings.Join(ids, ", "))
}

// dirSize sums the file sizes under a directory. Unreadable entries are
// skipped rather than failing the listing.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func recordingTypeLabel(t clips.RecordingType) string {
	if t == clips.RecordingBackground {
		return "background"
	}
	return "clip"
}
