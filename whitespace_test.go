package minify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollapseWhitespaceSmart_InteriorRunsCollapseToOneSpace(t *testing.T) {
	o := DefaultOptions()
	o.CollapseWhitespace = true

	got := collapseWhitespaceSmart("a   b\n\tc", "p", "p", nil, nil, o, nil, nil)
	require.Equal(t, "a b c", got)
}

func TestCollapseWhitespaceSmart_TrimsBetweenBlockTags(t *testing.T) {
	o := DefaultOptions()
	o.CollapseWhitespace = true

	got := collapseWhitespaceSmart("   ", "/div", "div", nil, nil, o, nil, nil)
	require.Equal(t, "", got)
}

func TestCollapseWhitespaceSmart_KeepsSpaceBetweenInlineTags(t *testing.T) {
	o := DefaultOptions()
	o.CollapseWhitespace = true

	got := collapseWhitespaceSmart(" ", "/span", "span", nil, nil, o, nil, nil)
	require.Equal(t, " ", got)
}

func TestCollapseWhitespaceSmart_ConservativeNeverDropsToEmpty(t *testing.T) {
	o := DefaultOptions()
	o.CollapseWhitespace = true
	o.ConservativeCollapse = true

	got := collapseWhitespaceSmart("   ", "/div", "div", nil, nil, o, nil, nil)
	require.Equal(t, " ", got)
}

func TestIsHiddenInput(t *testing.T) {
	require.True(t, isHiddenInput("input", []Attribute{{Name: "type", Value: "hidden", HasValue: true}}))
	require.False(t, isHiddenInput("input", []Attribute{{Name: "type", Value: "text", HasValue: true}}))
	require.False(t, isHiddenInput("div", []Attribute{{Name: "type", Value: "hidden", HasValue: true}}))
}
