package minify

import "sort"

// tokenChain counts, across a whole document, how often each token was
// seen to precede each other token within the same bag (a tag's attribute
// names, or a class list). It produces a total order that groups
// frequently-co-occurring, frequently-leading tokens together, the same
// idea a Huffman-style frequency table expresses for symbols.
type tokenChain struct {
	firstSeen map[string]int
	precedes  map[string]map[string]int
	seen      int
}

func newTokenChain() *tokenChain {
	return &tokenChain{
		firstSeen: map[string]int{},
		precedes:  map[string]map[string]int{},
	}
}

// add records one document-order bag of tokens (attribute names on one
// start tag, or one class attribute's value list).
func (c *tokenChain) add(tokens []string) {
	for _, t := range tokens {
		if _, ok := c.firstSeen[t]; !ok {
			c.firstSeen[t] = c.seen
			c.seen++
		}
	}
	for i, a := range tokens {
		row := c.precedes[a]
		if row == nil {
			row = map[string]int{}
			c.precedes[a] = row
		}
		for _, b := range tokens[i+1:] {
			row[b]++
		}
	}
}

// score returns, for token a, the total number of times it was recorded
// as preceding some other token; tokens that habitually lead have a
// higher score and sort earlier.
func (c *tokenChain) score(a string) int {
	total := 0
	for _, n := range c.precedes[a] {
		total += n
	}
	return total
}

// less orders a before b by descending precedes-score, falling back to
// first-appearance order (stable, deterministic for unseen tokens).
func (c *tokenChain) less(a, b string) bool {
	sa, sb := c.score(a), c.score(b)
	if sa != sb {
		return sa > sb
	}
	fa, aok := c.firstSeen[a]
	fb, bok := c.firstSeen[b]
	if aok && bok {
		return fa < fb
	}
	return aok
}

// sortAnalyser holds the two chains that analyseSortOrder's preliminary
// pass over the document feeds — one for attribute bags keyed by tag, one shared across all
// class lists — and produces the AttrSortFunc/ClassSortFunc the driver
// installs when Options.SortAttributes/SortClassName is set.
type sortAnalyser struct {
	attrChains  map[string]*tokenChain
	classChain  *tokenChain
	attrMemo    map[string][]string
	classMemo   map[string]string
}

func newSortAnalyser() *sortAnalyser {
	return &sortAnalyser{
		attrChains: map[string]*tokenChain{},
		classChain: newTokenChain(),
		attrMemo:   map[string][]string{},
		classMemo:  map[string]string{},
	}
}

// observe feeds one start tag's attribute names (and, if present, its
// class list) into the chains. Called once per tag during the analysis
// pass that precedes transformation, so the comparators it later produces
// are informed by the whole document rather than a prefix of it.
func (s *sortAnalyser) observe(tag string, attrs []Attribute) {
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
		if a.Name == "class" && a.Value != "" {
			s.classChain.add(splitTokens(a.Value))
		}
	}
	chain := s.attrChains[tag]
	if chain == nil {
		chain = newTokenChain()
		s.attrChains[tag] = chain
	}
	chain.add(names)
}

func splitTokens(value string) []string {
	var out []string
	start := -1
	for i := 0; i < len(value); i++ {
		if isWhitespace(value[i]) {
			if start >= 0 {
				out = append(out, value[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, value[start:])
	}
	return out
}

func memoKey(tag string, names []string) string {
	k := tag + "\x00"
	for _, n := range names {
		k += n + "\x01"
	}
	return k
}

// sortAttrs reorders attrs in place per tag's learned token-chain order,
// memoised by the exact (tag, attribute-name-set) seen.
func (s *sortAnalyser) sortAttrs(tag string, attrs []Attribute) {
	chain := s.attrChains[tag]
	if chain == nil || len(attrs) < 2 {
		return
	}
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	key := memoKey(tag, names)
	if order, ok := s.attrMemo[key]; ok {
		reorderAttrs(attrs, order)
		return
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		return chain.less(attrs[i].Name, attrs[j].Name)
	})
	order := make([]string, len(attrs))
	for i, a := range attrs {
		order[i] = a.Name
	}
	s.attrMemo[key] = order
}

// reorderAttrs applies a previously memoised name order to attrs in
// place, preserving stability among duplicate names.
func reorderAttrs(attrs []Attribute, order []string) {
	pos := make(map[string][]int, len(order))
	for i, a := range attrs {
		pos[a.Name] = append(pos[a.Name], i)
	}
	out := make([]Attribute, 0, len(attrs))
	used := make(map[string]int, len(order))
	for _, name := range order {
		idxs := pos[name]
		k := used[name]
		if k < len(idxs) {
			out = append(out, attrs[idxs[k]])
			used[name]++
		}
	}
	copy(attrs, out)
}

// sortClassName reorders value's space-separated tokens per the learned
// class token-chain, returning the rejoined string.
func (s *sortAnalyser) sortClassName(value string) string {
	tokens := splitTokens(value)
	if len(tokens) < 2 {
		return value
	}
	key := memoKey("", tokens)
	if out, ok := s.classMemo[key]; ok {
		return out
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return s.classChain.less(tokens[i], tokens[j])
	})
	out := joinTokens(tokens)
	s.classMemo[key] = out
	return out
}

func joinTokens(tokens []string) string {
	var b []byte
	for i, t := range tokens {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, t...)
	}
	return string(b)
}
