package appstate

import (
	"regexp"
	"strings"

	"github.com/annoforge/annoforge/internal/core/item"
)

// filter applies opts to files and returns the matching subset in the
// original order. An empty (or whitespace-only) term yields the full
// list no matter what the regex and invert flags say. In regex mode a
// malformed pattern matches nothing, so inverted it matches everything.
func filter(files []item.Item, opts SearchOptions) []item.Item {
	term := strings.TrimSpace(opts.Term)
	if term == "" {
		out := make([]item.Item, len(files))
		copy(out, files)
		return out
	}

	var re *regexp.Regexp
	if opts.Regex {
		re, _ = regexp.Compile("(?i)" + term)
	}
	lower := strings.ToLower(term)

	out := make([]item.Item, 0, len(files))
	for _, it := range files {
		text := it.Filename + " " + it.Caption
		var hit bool
		if opts.Regex {
			hit = re != nil && re.MatchString(text)
		} else {
			hit = strings.Contains(strings.ToLower(text), lower)
		}
		if hit != opts.Invert {
			out = append(out, it)
		}
	}
	return out
}
