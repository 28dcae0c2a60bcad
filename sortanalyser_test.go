package minify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortAnalyser_AttrsOrderedByLeadingFrequency(t *testing.T) {
	s := newSortAnalyser()
	s.observe("div", []Attribute{{Name: "class"}, {Name: "id"}})
	s.observe("div", []Attribute{{Name: "class"}, {Name: "id"}})
	s.observe("div", []Attribute{{Name: "id"}, {Name: "class"}})

	attrs := []Attribute{{Name: "id"}, {Name: "class"}}
	s.sortAttrs("div", attrs)
	require.Equal(t, "class", attrs[0].Name)
	require.Equal(t, "id", attrs[1].Name)
}

func TestSortAnalyser_UnknownTagLeavesAttrsUntouched(t *testing.T) {
	s := newSortAnalyser()
	attrs := []Attribute{{Name: "b"}, {Name: "a"}}
	s.sortAttrs("span", attrs)
	require.Equal(t, "b", attrs[0].Name)
	require.Equal(t, "a", attrs[1].Name)
}

func TestSortAnalyser_ClassNameOrdering(t *testing.T) {
	s := newSortAnalyser()
	s.observe("div", []Attribute{{Name: "class", Value: "btn primary"}})
	s.observe("div", []Attribute{{Name: "class", Value: "btn primary"}})

	got := s.sortClassName("primary btn")
	require.Equal(t, "btn primary", got)
}

func TestSplitTokens(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, splitTokens("  a  b\tc "))
	require.Nil(t, splitTokens("   "))
}
