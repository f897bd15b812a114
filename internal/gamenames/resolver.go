package gamenames

import (
	"compress/bzip2"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Resolver maps Steam app IDs to human-readable game names.
type Resolver struct {
	names map[string]string
}

type appList struct {
	AppList struct {
		Apps []struct {
			AppID int64  `json:"appid"`
			Name  string `json:"name"`
		} `json:"apps"`
	} `json:"applist"`
}

// Load builds a resolver from the cached app list and the custom overrides
// file. Either file may be missing; a resolver with no entries still answers
// lookups with the fallback label.
func Load(appListPath, customPath string) (*Resolver, error) {
	resolver := &Resolver{names: make(map[string]string)}

	if appListPath != "" {
		if err := resolver.loadAppList(appListPath); err != nil {
			return nil, err
		}
	}
	if customPath != "" {
		if err := resolver.loadOverrides(customPath); err != nil {
			return nil, err
		}
	}
	return resolver, nil
}

func (r *Resolver) loadAppList(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open app list: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".bz2") {
		reader = bzip2.NewReader(file)
	}

	var list appList
	if err := json.NewDecoder(reader).Decode(&list); err != nil {
		return fmt.Errorf("decode app list: %w", err)
	}
	for _, app := range list.AppList.Apps {
		if app.Name == "" {
			continue
		}
		r.names[strconv.FormatInt(app.AppID, 10)] = app.Name
	}
	return nil
}

func (r *Resolver) loadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read custom game names: %w", err)
	}

	overrides := make(map[string]string)
	if err := json.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("decode custom game names: %w", err)
	}
	for id, name := range overrides {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r.names[strings.TrimSpace(id)] = name
	}
	return nil
}

// Lookup returns the known name for a game ID.
func (r *Resolver) Lookup(gameID string) (string, bool) {
	name, ok := r.names[strings.TrimSpace(gameID)]
	return name, ok
}

// Label returns a display label for a game ID, falling back to
// "GameID <id>" for unknown games so exports always carry a usable name.
func (r *Resolver) Label(gameID string) string {
	gameID = strings.TrimSpace(gameID)
	if name, ok := r.names[gameID]; ok {
		return name
	}
	if gameID == "" {
		return "Clip"
	}
	return "GameID " + gameID
}

// Count reports how many names are loaded. Used by the doctor command.
func (r *Resolver) Count() int {
	return len(r.names)
}
