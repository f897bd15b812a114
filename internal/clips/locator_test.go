package clips

import (
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func writeSegment(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindSegmentSetsResolvesTracks(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, "video", "session")
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatal(err)
	}

	writeSegment(t, data, "session.mpd")
	writeSegment(t, data, "init-stream0.m4s")
	writeSegment(t, data, "init-stream1.m4s")
	writeSegment(t, data, "chunk-stream0-00001.m4s")
	writeSegment(t, data, "chunk-stream0-00002.m4s")
	writeSegment(t, data, "chunk-stream1-00001.m4s")
	writeSegment(t, data, "unrelated.txt")

	sets, err := FindSegmentSets(root)
	if err != nil {
		t.Fatalf("FindSegmentSets: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(sets))
	}
	set := sets[0]
	if len(set.Tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(set.Tracks))
	}

	video, ok := set.Track(0)
	if !ok || video.Init == "" || len(video.Chunks) != 2 {
		t.Fatalf("bad video track: %+v", video)
	}
	audio, ok := set.Track(1)
	if !ok || audio.Init == "" || len(audio.Chunks) != 1 {
		t.Fatalf("bad audio track: %+v", audio)
	}
}

func TestFindSegmentSetsEmptyWhenNoManifest(t *testing.T) {
	root := t.TempDir()
	writeSegment(t, root, "init-stream0.m4s")

	sets, err := FindSegmentSets(root)
	if err != nil {
		t.Fatalf("FindSegmentSets: %v", err)
	}
	if len(sets) != 0 {
		t.Fatalf("expected no sets, got %d", len(sets))
	}
}

// Chunk order must follow the numeric suffix even when lexical order
// disagrees, e.g. chunk-stream0-10 sorts lexically before chunk-stream0-9.
func TestChunksOrderedNumerically(t *testing.T) {
	root := t.TempDir()
	writeSegment(t, root, "session.mpd")
	writeSegment(t, root, "init-stream0.m4s")

	const chunkCount = 120
	names := make([]string, 0, chunkCount)
	for i := 0; i < chunkCount; i++ {
		names = append(names, "chunk-stream0-"+strconv.Itoa(i)+".m4s")
	}
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	for _, name := range names {
		writeSegment(t, root, name)
	}

	sets, err := FindSegmentSets(root)
	if err != nil {
		t.Fatalf("FindSegmentSets: %v", err)
	}
	track, ok := sets[0].Track(0)
	if !ok {
		t.Fatal("track 0 missing")
	}
	if len(track.Chunks) != chunkCount {
		t.Fatalf("got %d chunks, want %d", len(track.Chunks), chunkCount)
	}
	for i, chunk := range track.Chunks {
		want := "chunk-stream0-" + strconv.Itoa(i) + ".m4s"
		if filepath.Base(chunk) != want {
			t.Fatalf("chunk %d = %q, want %q", i, filepath.Base(chunk), want)
		}
	}
}

func TestFindSegmentSetsMultipleManifests(t *testing.T) {
	root := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		dir := filepath.Join(root, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		writeSegment(t, dir, "session.mpd")
		writeSegment(t, dir, "init-stream0.m4s")
		writeSegment(t, dir, "chunk-stream0-0.m4s")
	}

	sets, err := FindSegmentSets(root)
	if err != nil {
		t.Fatalf("FindSegmentSets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("got %d sets, want 2", len(sets))
	}
}

func TestParseChunkName(t *testing.T) {
	index, seq, ok := parseChunkName("chunk-stream1-00042.m4s")
	if !ok || index != 1 || seq != 42 {
		t.Fatalf("got index=%d seq=%d ok=%v", index, seq, ok)
	}
	if _, _, ok := parseChunkName("chunk-stream1.m4s"); ok {
		t.Fatal("expected failure without sequence part")
	}
	if _, _, ok := parseChunkName("init-stream0.m4s"); ok {
		t.Fatal("expected failure for init segment")
	}
}
