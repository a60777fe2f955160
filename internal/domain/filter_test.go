package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGroups() []*Group {
	return []*Group{
		{ID: "g1", Name: "Friday Poker Night", Category: "Poker", Description: "Casual texas hold'em"},
		{ID: "g2", Name: "Morning Run", Category: "Sports", Description: "Easy 5k around Princes Park"},
		{ID: "g3", Name: "COMP30022 Study Session", Category: "Study", Description: "IT project revision"},
		{ID: "g4", Name: "Board Games", Category: "Gaming", Description: "Includes poker chips but no poker"},
	}
}

func TestFilterGroups_EmptyTermAllCategory_ReturnsAllPreservingOrder(t *testing.T) {
	groups := sampleGroups()

	got := FilterGroups(groups, "", "All")

	require.Len(t, got, len(groups))
	for i := range groups {
		assert.Equal(t, groups[i].ID, got[i].ID)
	}
}

func TestFilterGroups_SearchTerm_CaseInsensitiveNameOrDescription(t *testing.T) {
	groups := sampleGroups()

	got := FilterGroups(groups, "poker", "")

	require.Len(t, got, 2)
	assert.Equal(t, "g1", got[0].ID)
	assert.Equal(t, "g4", got[1].ID)

	// Same subset regardless of term casing.
	upper := FilterGroups(groups, "POKER", "")
	require.Len(t, upper, 2)
}

func TestFilterGroups_CategoryExactMatch(t *testing.T) {
	groups := sampleGroups()

	got := FilterGroups(groups, "", "Poker")

	require.Len(t, got, 1)
	assert.Equal(t, "g1", got[0].ID)
}

func TestFilterGroups_TermAndCategoryCombine(t *testing.T) {
	groups := sampleGroups()

	got := FilterGroups(groups, "poker", "Gaming")

	require.Len(t, got, 1)
	assert.Equal(t, "g4", got[0].ID)
}

func TestFilterGroups_NoMatches(t *testing.T) {
	got := FilterGroups(sampleGroups(), "badminton", "")
	assert.Empty(t, got)
}

func TestFilterGroups_Idempotent(t *testing.T) {
	groups := sampleGroups()

	first := FilterGroups(groups, "poker", "")
	second := FilterGroups(first, "poker", "")

	require.Equal(t, first, second)
	// The input slice is untouched.
	assert.Len(t, groups, 4)
}
