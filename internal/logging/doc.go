// Package logging wires log/slog for SteamClip.
//
// New builds a logger from explicit options; NewFromConfig derives options
// from application config, appending a steamclip.log file under the log
// directory. The console handler favors short human-readable lines; the JSON
// handler is for machine consumption.
package logging
