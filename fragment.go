package minify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/aurorahtml/minify/subminify"
)

var ignoreMarkerRe = regexp.MustCompile(`<!--\s*htmlmin:ignore\s*-->`)

// customChunk is one captured custom-fragment match: the original text,
// plus the whitespace immediately surrounding it in the source so it can
// be reinstated with the same spacing semantics it had before replacement.
type customChunk struct {
	leading  string
	content  string
	trailing string
}

// fragmentTables holds the Fragment Preserver's placeholder bookkeeping
// for a single Minify call: the random per-document UID seed, the
// verbatim htmlmin:ignore regions, and the custom-fragment captures.
type fragmentTables struct {
	uid          string
	ignoreChunks []string
	customChunks []customChunk
}

func newFragmentTables() *fragmentTables {
	return &fragmentTables{uid: strings.ReplaceAll(uuid.NewString(), "-", "")}
}

func (f *fragmentTables) ignorePlaceholder(i int) string {
	return fmt.Sprintf("<!--%s%d-->", f.uid, i)
}

func (f *fragmentTables) customPlaceholder(i int) string {
	return fmt.Sprintf("\t%s%dUID\t", f.uid, i)
}

// customPlaceholderRe matches any customPlaceholder token this fragmentTables
// instance may have emitted.
func (f *fragmentTables) customPlaceholderRe() *regexp.Regexp {
	return regexp.MustCompile(`\t` + regexp.QuoteMeta(f.uid) + `(\d+)UID\t`)
}

func (f *fragmentTables) ignorePlaceholderRe() *regexp.Regexp {
	return regexp.MustCompile(`<!--` + regexp.QuoteMeta(f.uid) + `(\d+)-->`)
}

// extractIgnoreRegions replaces every <!-- htmlmin:ignore --> ... <!--
// htmlmin:ignore --> pair with a single-comment placeholder, recording the
// verbatim content between the markers.
func (f *fragmentTables) extractIgnoreRegions(src string) string {
	for {
		loc := ignoreMarkerRe.FindStringIndex(src)
		if loc == nil {
			return src
		}
		rest := src[loc[1]:]
		loc2 := ignoreMarkerRe.FindStringIndex(rest)
		if loc2 == nil {
			return src
		}
		content := rest[:loc2[0]]
		idx := len(f.ignoreChunks)
		f.ignoreChunks = append(f.ignoreChunks, content)
		src = src[:loc[0]] + f.ignorePlaceholder(idx) + rest[loc2[1]:]
	}
}

// extractCustomFragments replaces every match of any pattern in patterns
// with a custom-fragment placeholder. The patterns are applied exactly as
// compiled; no limit is imposed on the repetition of their quantifiers.
func (f *fragmentTables) extractCustomFragments(src string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		src = replaceAllCapturingWhitespace(src, re, f)
	}
	return src
}

// replaceAllCapturingWhitespace replaces every match of re in src with a
// custom-fragment placeholder, capturing the run of whitespace
// immediately before and after the match so it can be reinstated exactly.
func replaceAllCapturingWhitespace(src string, re *regexp.Regexp, f *fragmentTables) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(src, -1) {
		start, end := loc[0], loc[1]
		if start < last {
			continue // overlapping match already consumed
		}
		b.WriteString(src[last:start])

		ws, content := start, src[start:end]
		for ws > last && isWhitespace(src[ws-1]) {
			ws--
		}
		leading := src[ws:start]

		we := end
		for we < len(src) && isWhitespace(src[we]) {
			we++
		}
		trailing := src[end:we]

		// Drop the captured leading whitespace from the already-written
		// buffer so it isn't duplicated; it is stored in the chunk with the
		// trailing run, and restoring the placeholder reinstates both.
		out := b.String()
		out = out[:len(out)-len(leading)]
		b.Reset()
		b.WriteString(out)

		idx := len(f.customChunks)
		f.customChunks = append(f.customChunks, customChunk{leading: leading, content: content, trailing: trailing})
		b.WriteString(f.customPlaceholder(idx))

		last = we
	}
	b.WriteString(src[last:])
	return b.String()
}

// restore replaces every placeholder left in out with its captured
// content: ignore regions verbatim, custom fragments optionally re-
// trimmed/collapsed per trimCustomFragments.
func (f *fragmentTables) restore(out string, trimCustom bool) string {
	out = f.ignorePlaceholderRe().ReplaceAllStringFunc(out, func(m string) string {
		sub := f.ignorePlaceholderRe().FindStringSubmatch(m)
		idx := atoiSafe(sub[1])
		if idx < 0 || idx >= len(f.ignoreChunks) {
			return m
		}
		return f.ignoreChunks[idx]
	})

	out = f.customPlaceholderRe().ReplaceAllStringFunc(out, func(m string) string {
		sub := f.customPlaceholderRe().FindStringSubmatch(m)
		idx := atoiSafe(sub[1])
		if idx < 0 || idx >= len(f.customChunks) {
			return m
		}
		c := f.customChunks[idx]
		if trimCustom {
			return c.content
		}
		return c.leading + c.content + c.trailing
	})

	return out
}

// expandInline re-expands any custom-fragment placeholder found in s back
// to its original whitespace-surrounded form, used inside no-trim
// elements (chars() step 6) where the placeholder must not linger as a
// literal tab-UID-tab token in preformatted text.
func (f *fragmentTables) expandInline(s string) string {
	if len(f.customChunks) == 0 {
		return s
	}
	return f.customPlaceholderRe().ReplaceAllStringFunc(s, func(m string) string {
		sub := f.customPlaceholderRe().FindStringSubmatch(m)
		idx := atoiSafe(sub[1])
		if idx < 0 || idx >= len(f.customChunks) {
			return m
		}
		c := f.customChunks[idx]
		return c.leading + c.content + c.trailing
	})
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// wrapForFragments wraps a sub-minifier Func so that any custom-fragment
// placeholder in the text it receives is expanded to its original content
// before the underlying Func runs (so CSS/JS parsing isn't confronted
// with an opaque tab-UID-tab token), and is folded back to the
// placeholder afterward so later restoration still finds it.
func wrapForFragments(fn subminify.Func, f *fragmentTables) subminify.Func {
	if fn == nil || f == nil || len(f.customChunks) == 0 {
		return fn
	}
	re := f.customPlaceholderRe()
	return func(ctx context.Context, text string, hint subminify.Hint) (string, error) {
		expanded := f.expandInline(text)
		out, err := fn(ctx, expanded, hint)
		if err != nil {
			return "", err
		}
		if expanded == text {
			return out, nil
		}
		for i, c := range f.customChunks {
			full := c.leading + c.content + c.trailing
			if full == "" {
				continue
			}
			out = strings.ReplaceAll(out, full, f.customPlaceholder(i))
		}
		_ = re
		return out, nil
	}
}
