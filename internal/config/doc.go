// Package config loads and validates SteamClip configuration from TOML.
//
// Load resolves the config path (explicit flag, then the default location
// under ~/.config/steamclip), merges the file over repository defaults,
// expands ~ in every path field, and validates the result. Callers receive a
// fully normalized Config; path fields are always absolute.
package config
