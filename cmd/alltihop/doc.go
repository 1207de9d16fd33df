// Command alltihop renames, tags, and restores the assets of an exported
// music-collaboration archive. See `alltihop --help`.
package main
