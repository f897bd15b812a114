package clips

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ManifestName is the per-capture descriptor Steam writes next to the
// segment files.
const ManifestName = "session.mpd"

const segmentExt = ".m4s"

// Track holds one stream's segment paths in playback order.
type Track struct {
	Index  int
	Init   string
	Chunks []string
}

// SegmentSet groups the tracks described by a single manifest.
type SegmentSet struct {
	Manifest string
	Dir      string
	Tracks   []Track
}

// Track returns the track with the given index, if present.
func (s SegmentSet) Track(index int) (Track, bool) {
	for _, track := range s.Tracks {
		if track.Index == index {
			return track, true
		}
	}
	return Track{}, false
}

// FindSegmentSets walks a capture folder and resolves a SegmentSet for every
// manifest found. A capture without manifests yields an empty slice, not an
// error; the caller decides how to treat it.
func FindSegmentSets(root string) ([]SegmentSet, error) {
	var manifests []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ManifestName {
			manifests = append(manifests, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk capture folder: %w", err)
	}
	sort.Strings(manifests)

	sets := make([]SegmentSet, 0, len(manifests))
	for _, manifest := range manifests {
		set, err := resolveSegmentSet(manifest)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func resolveSegmentSet(manifest string) (SegmentSet, error) {
	dir := filepath.Dir(manifest)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return SegmentSet{}, fmt.Errorf("read segment directory: %w", err)
	}

	type chunkRef struct {
		seq  int
		path string
	}
	inits := make(map[int]string)
	chunks := make(map[int][]chunkRef)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if index, ok := parseInitName(name); ok {
			inits[index] = filepath.Join(dir, name)
			continue
		}
		if index, seq, ok := parseChunkName(name); ok {
			chunks[index] = append(chunks[index], chunkRef{seq: seq, path: filepath.Join(dir, name)})
		}
	}

	indexSet := make(map[int]struct{}, len(inits)+len(chunks))
	for index := range inits {
		indexSet[index] = struct{}{}
	}
	for index := range chunks {
		indexSet[index] = struct{}{}
	}
	indices := make([]int, 0, len(indexSet))
	for index := range indexSet {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	set := SegmentSet{Manifest: manifest, Dir: dir}
	for _, index := range indices {
		refs := chunks[index]
		// Playback order is the numeric suffix, never directory order.
		sort.Slice(refs, func(i, j int) bool { return refs[i].seq < refs[j].seq })
		track := Track{Index: index, Init: inits[index]}
		for _, ref := range refs {
			track.Chunks = append(track.Chunks, ref.path)
		}
		set.Tracks = append(set.Tracks, track)
	}
	return set, nil
}

// parseInitName matches init-stream<N>.m4s.
func parseInitName(name string) (int, bool) {
	if !strings.HasSuffix(name, segmentExt) {
		return 0, false
	}
	stem := strings.TrimSuffix(name, segmentExt)
	rest, ok := strings.CutPrefix(stem, "init-stream")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(rest)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

// parseChunkName matches chunk-stream<N>-<seq>.m4s.
func parseChunkName(name string) (index, seq int, ok bool) {
	if !strings.HasSuffix(name, segmentExt) {
		return 0, 0, false
	}
	stem := strings.TrimSuffix(name, segmentExt)
	rest, found := strings.CutPrefix(stem, "chunk-stream")
	if !found {
		return 0, 0, false
	}
	indexPart, seqPart, found := strings.Cut(rest, "-")
	if !found {
		return 0, 0, false
	}
	index, err := strconv.Atoi(indexPart)
	if err != nil || index < 0 {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(seqPart)
	if err != nil || seq < 0 {
		return 0, 0, false
	}
	return index, seq, true
}
