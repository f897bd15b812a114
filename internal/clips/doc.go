// Package clips models Steam game-recording capture folders and locates the
// segment files inside them.
//
// A capture folder is named clip_<gameid>_<YYYYMMDD>_<HHMMSS> (manual clips)
// or bg_<gameid>_<YYYYMMDD>_<HHMMSS> (background recordings) and contains,
// somewhere beneath it, one or more session.mpd manifests. Each manifest sits
// next to init-stream{N}.m4s and chunk-stream{N}-*.m4s segment files per
// track. The locator walks the tree, groups segments per manifest, and orders
// chunks by the numeric index embedded in the filename; lexical order is
// wrong once indices exceed one digit.
package clips
