package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nastas95/SteamClip/internal/clips"
)

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Reconstruction is byte-exact: output size equals the init segment plus the
// sum of all chunks, in order.
func TestReconstructTrackByteExact(t *testing.T) {
	dir := t.TempDir()
	track := clips.Track{
		Index: 0,
		Init:  writeFile(t, filepath.Join(dir, "init-stream0.m4s"), []byte("INIT")),
		Chunks: []string{
			writeFile(t, filepath.Join(dir, "chunk-stream0-0.m4s"), []byte("AAA")),
			writeFile(t, filepath.Join(dir, "chunk-stream0-1.m4s"), []byte("BB")),
			writeFile(t, filepath.Join(dir, "chunk-stream0-2.m4s"), []byte("CCCCC")),
		},
	}

	dst := filepath.Join(dir, "track.mp4")
	if err := reconstructTrack(track, dst); err != nil {
		t.Fatalf("reconstructTrack: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := "INITAAABBCCCCC"
	if string(got) != want {
		t.Fatalf("reconstructed bytes = %q, want %q", got, want)
	}
}

func TestReconstructTrackMissingInit(t *testing.T) {
	dir := t.TempDir()
	track := clips.Track{
		Index:  1,
		Chunks: []string{writeFile(t, filepath.Join(dir, "chunk-stream1-0.m4s"), []byte("A"))},
	}

	err := reconstructTrack(track, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestReconstructTrackNoChunks(t *testing.T) {
	dir := t.TempDir()
	track := clips.Track{
		Index: 0,
		Init:  writeFile(t, filepath.Join(dir, "init-stream0.m4s"), []byte("INIT")),
	}

	err := reconstructTrack(track, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestReconstructTrackUnreadableSegment(t *testing.T) {
	dir := t.TempDir()
	track := clips.Track{
		Index:  0,
		Init:   writeFile(t, filepath.Join(dir, "init-stream0.m4s"), []byte("INIT")),
		Chunks: []string{filepath.Join(dir, "gone.m4s")},
	}

	err := reconstructTrack(track, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
