package export

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Nastas95/SteamClip/internal/ffmpeg"
	"github.com/Nastas95/SteamClip/internal/profiles"
)

// muxer drives the two ffmpeg invocations of a job: the per-media-type
// lossless concatenation and the final profile-applying mux.
type muxer struct {
	binary string
	exec   ffmpeg.Executor
}

// concatCopy concatenates the reconstructed track files listed in listFile
// into one intermediate container using a lossless stream copy. The encoding
// profile never applies here.
func (m muxer) concatCopy(ctx context.Context, listFile, out string) error {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-f", "concat", "-safe", "0",
		"-i", listFile,
		"-c", "copy",
		"-movflags", "+faststart",
		out,
	}
	if _, err := m.exec.Run(ctx, m.binary, args); err != nil {
		return wrap(ErrExternalTool, "concat", "", err)
	}
	return nil
}

// mux combines the video and audio intermediates into the destination file,
// applying the selected profile's argument list.
func (m muxer) mux(ctx context.Context, videoPath, audioPath string, profile profiles.Profile, out string) error {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", videoPath,
		"-i", audioPath,
	}
	args = append(args, profile.Args...)
	args = append(args, out)
	if _, err := m.exec.Run(ctx, m.binary, args); err != nil {
		return wrap(ErrExternalTool, "mux", "", err)
	}
	return nil
}

// writeConcatList writes an ffmpeg concat-demuxer list file. Single quotes in
// paths are escaped per the demuxer's quoting rules.
func writeConcatList(path string, files []string) error {
	var sb strings.Builder
	for _, file := range files {
		sb.WriteString("file '")
		sb.WriteString(strings.ReplaceAll(file, "'", `'\''`))
		sb.WriteString("'\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
