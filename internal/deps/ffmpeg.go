package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpeg reports the FFmpeg binary exports will execute.
//
// The configured value may be a bare name resolved from PATH or an explicit
// path. Explicit paths are checked for existence and executability so status
// output matches what an export would actually run.
func CheckFFmpeg(configured string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used to concatenate and mux exported clips",
	}

	binary := strings.TrimSpace(configured)
	if binary == "" {
		binary = "ffmpeg"
	}

	if strings.ContainsRune(binary, os.PathSeparator) {
		abs, err := filepath.Abs(binary)
		if err == nil {
			binary = abs
		}
		result.Command = binary
		info, err := os.Stat(binary)
		if err != nil || !isExecutable(info) {
			result.Detail = fmt.Sprintf("binary %q not found or not executable", binary)
			return result
		}
		result.Available = true
		return result
	}

	if resolved, err := exec.LookPath(binary); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}

	result.Command = binary
	result.Detail = fmt.Sprintf("binary %q not found", binary)
	return result
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
