// Package gamenames resolves Steam app IDs to display names from local cache
// files: a Steam app-list snapshot (JSON, optionally bz2-compressed) and a
// user-maintained overrides file. Overrides win. The export engine never sees
// this package; the CLI passes a lookup callback into it.
package gamenames
