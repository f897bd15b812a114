// Command steamclip converts Steam Game Recording captures into playable
// video files and manages the local export history.
package main
