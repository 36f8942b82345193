// Package dump persists logger histories to session files and loads them
// back for presentation.
//
// A session file is a JSON array that is appended to in place: the first
// save writes "[\n" + dump + "\n]", and each later save overwrites the
// trailing "\n]" with ",\n" + dump + "\n]". The file is a valid array after
// every append, provided nothing else writes to it. Appends to one file are
// serialized within the process.
//
// Loading is forgiving. A file that cannot be read or parsed yields no dumps
// and an error; a malformed element or entry is skipped with a warning and
// the rest of the file still loads.
//
// Loaded dumps are presented through two views: the collated view, one
// timeline across modules, and the module view, grouped by module. Either
// can be folded into a severity tree with Tree.
package dump
