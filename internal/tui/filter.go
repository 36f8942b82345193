package tui

import (
	"strings"

	"github.com/Iron-Ham/foldlog/internal/dump"
)

// modulePrefix marks a filter word as a module glob pattern.
const modulePrefix = "module:"

// ParseFilter turns a filter prompt into a dump.Filter. Words of the form
// module:<glob> select modules; the remaining words, joined by single
// spaces, must appear in the entry text.
//
//	reset module:net.*  →  text "reset" in modules matching net.*
func ParseFilter(input string) dump.Filter {
	var (
		f     dump.Filter
		words []string
	)
	for _, w := range strings.Fields(input) {
		if pattern, ok := strings.CutPrefix(w, modulePrefix); ok {
			if pattern != "" {
				f.Modules = append(f.Modules, pattern)
			}
			continue
		}
		words = append(words, w)
	}
	f.MessageContains = strings.Join(words, " ")
	return f
}
