package profiles

import (
	"context"
	"strings"

	"github.com/Nastas95/SteamClip/internal/ffmpeg"
)

// KeyCopy is the stream-passthrough profile; it never re-encodes and is
// available regardless of host capability.
const KeyCopy = "copy"

// Profile maps a key to the ffmpeg arguments used at the final mux step.
type Profile struct {
	Key         string
	DisplayName string
	// Encoder gates availability; empty means always available.
	Encoder string
	Args    []string
}

// Hardware reports whether the profile uses a hardware encoder.
func (p Profile) Hardware() bool {
	return p.Encoder != "" && p.Encoder != "libx264"
}

var registry = []Profile{
	{
		Key:         KeyCopy,
		DisplayName: "Stream copy (no re-encode)",
		Args:        []string{"-c", "copy"},
	},
	{
		Key:         "x264",
		DisplayName: "H.264 software (libx264)",
		Encoder:     "libx264",
		Args:        []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "23", "-c:a", "aac", "-b:a", "192k"},
	},
	{
		Key:         "nvenc",
		DisplayName: "H.264 NVIDIA (NVENC)",
		Encoder:     "h264_nvenc",
		Args:        []string{"-c:v", "h264_nvenc", "-preset", "p5", "-cq", "23", "-c:a", "aac", "-b:a", "192k"},
	},
	{
		Key:         "amf",
		DisplayName: "H.264 AMD (AMF)",
		Encoder:     "h264_amf",
		Args:        []string{"-c:v", "h264_amf", "-quality", "balanced", "-c:a", "aac", "-b:a", "192k"},
	},
	{
		Key:         "qsv",
		DisplayName: "H.264 Intel (Quick Sync)",
		Encoder:     "h264_qsv",
		Args:        []string{"-c:v", "h264_qsv", "-global_quality", "23", "-c:a", "aac", "-b:a", "192k"},
	},
	{
		Key:         "vaapi",
		DisplayName: "H.264 VA-API",
		Encoder:     "h264_vaapi",
		Args: []string{
			"-vaapi_device", "/dev/dri/renderD128",
			"-vf", "format=nv12,hwupload",
			"-c:v", "h264_vaapi", "-qp", "23",
			"-c:a", "aac", "-b:a", "192k",
		},
	},
}

// All returns every registered profile in presentation order.
func All() []Profile {
	cp := make([]Profile, len(registry))
	copy(cp, registry)
	return cp
}

// Get looks up a profile by key.
func Get(key string) (Profile, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, profile := range registry {
		if profile.Key == key {
			return profile, true
		}
	}
	return Profile{}, false
}

// Detect returns the profiles usable on this machine: copy always, plus
// every profile whose encoder the probe reports.
func Detect(ctx context.Context, probe *ffmpeg.Probe) ([]Profile, error) {
	available := make([]Profile, 0, len(registry))
	for _, profile := range registry {
		if profile.Encoder == "" {
			available = append(available, profile)
			continue
		}
		ok, err := probe.Supports(ctx, profile.Encoder)
		if err != nil {
			return nil, err
		}
		if ok {
			available = append(available, profile)
		}
	}
	return available, nil
}

// Contains reports whether a profile key is in the given set.
func Contains(set []Profile, key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, profile := range set {
		if profile.Key == key {
			return true
		}
	}
	return false
}
