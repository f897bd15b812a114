package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Nastas95/SteamClip/internal/clips"
)

// reconstructTrack streams a track's initialization segment followed by its
// chunks, already in numeric order, into dst. Purely sequential I/O; nothing
// is buffered whole and nothing is transcoded.
func reconstructTrack(track clips.Track, dst string) error {
	if track.Init == "" || len(track.Chunks) == 0 {
		return wrap(ErrValidation, "reconstruct", fmt.Sprintf("initialization data missing for stream %d", track.Index), nil)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create track file: %w", err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	for _, segment := range append([]string{track.Init}, track.Chunks...) {
		if err := appendSegment(writer, segment); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush track file: %w", err)
	}
	return out.Close()
}

func appendSegment(writer io.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return wrap(ErrValidation, "reconstruct", "read segment", err)
	}
	defer in.Close()

	if _, err := io.Copy(writer, in); err != nil {
		return fmt.Errorf("copy segment %q: %w", path, err)
	}
	return nil
}
