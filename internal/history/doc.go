// Package history persists finished export jobs to a local SQLite database
// so past batches can be inspected and cleared from the CLI.
package history
