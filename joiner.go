package minify

import "strings"

// join is the Output Joiner: it restores fragment placeholders and,
// if MaxLineLength is set, wraps the result to that width without ever
// breaking immediately before a closing tag (so `</div>` never ends up
// split across the line boundary) when NoNewlinesBeforeTagClose is set.
func join(out string, f *fragmentTables, o Options) string {
	out = f.restore(out, o.TrimCustomFragments)
	if o.MaxLineLength <= 0 {
		return out
	}
	return wrapLines(out, o.MaxLineLength, o.NoNewlinesBeforeTagClose)
}

// wrapLines inserts a newline after the last space of a line once the line
// grows past column width; a line with no space in it is never broken. If
// noBreakBeforeClose, a space directly followed by "</" is not used as a
// break point, and the line runs on until a later space can be used.
func wrapLines(s string, width int, noBreakBeforeClose bool) string {
	if width <= 0 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	lastSpace := -1 // index into b's pending line buffer, via pending slice
	var pending []byte

	flush := func(upTo int) {
		b.Write(pending[:upTo])
		b.WriteByte('\n')
		pending = pending[upTo:]
		lineLen = len(pending)
		lastSpace = -1
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		pending = append(pending, c)
		lineLen++
		if c == '\n' {
			b.Write(pending)
			pending = pending[:0]
			lineLen = 0
			lastSpace = -1
			continue
		}
		if c == ' ' {
			lastSpace = len(pending)
		}
		if lineLen > width {
			breakAt := lastSpace
			if breakAt > 0 {
				if noBreakBeforeClose && breakAt+1 < len(pending) && pending[breakAt] == '<' && breakAt+1 < len(pending) && pending[breakAt+1] == '/' {
					// would break right before a closing tag; no break
					// is made at this space.
					breakAt = -1
				}
			}
			if breakAt > 0 {
				flush(breakAt)
			}
		}
	}
	b.Write(pending)
	return b.String()
}
