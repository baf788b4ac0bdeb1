package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

func TestParseKeyValuePairs(t *testing.T) {
	result, err := ParseKeyValuePairs([]string{"tier=Gold,Silver", "status=Open"})
	require.NoError(t, err)
	assert.Equal(t, "Gold,Silver", result["tier"])
	assert.Equal(t, "Open", result["status"])
}

func TestParseKeyValuePairs_MissingSeparator(t *testing.T) {
	_, err := ParseKeyValuePairs([]string{"tier"})
	assert.Error(t, err)
}

func TestParseKeyValuePairs_EmptyKey(t *testing.T) {
	_, err := ParseKeyValuePairs([]string{"=Gold"})
	assert.Error(t, err)
}

func TestParseKeyValuePairs_EmptyValueAllowed(t *testing.T) {
	result, err := ParseKeyValuePairs([]string{"tier="})
	require.NoError(t, err)
	assert.Equal(t, "", result["tier"])
}

func TestParseChoiceSets(t *testing.T) {
	sets, err := ParseChoiceSets([]string{"tier=Gold,Silver,Bronze", "status=Open,Closed"})
	require.NoError(t, err)
	require.Len(t, sets, 2)

	assert.Equal(t, "tier", sets[0].Name)
	assert.True(t, sets[0].Global)
	require.Len(t, sets[0].Options, 3)
	assert.Equal(t, "Gold", sets[0].Options[0].Label)
	assert.Equal(t, mdv.ChoiceValueBase, sets[0].Options[0].Value)
	assert.Equal(t, mdv.ChoiceValueBase+2, sets[0].Options[2].Value)

	assert.Equal(t, "status", sets[1].Name)
	require.Len(t, sets[1].Options, 2)
}

func TestParseChoiceSets_TrimsAndSkipsEmptyLabels(t *testing.T) {
	sets, err := ParseChoiceSets([]string{"tier= Gold , ,Silver "})
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Options, 2)
	assert.Equal(t, "Gold", sets[0].Options[0].Label)
	assert.Equal(t, "Silver", sets[0].Options[1].Label)
}

func TestParseChoiceSets_Duplicate(t *testing.T) {
	_, err := ParseChoiceSets([]string{"tier=Gold", "tier=Silver"})
	assert.Error(t, err)
}

func TestParseChoiceSets_NoOptions(t *testing.T) {
	_, err := ParseChoiceSets([]string{"tier="})
	assert.Error(t, err)
}

func TestParseChoiceSets_BadFormat(t *testing.T) {
	_, err := ParseChoiceSets([]string{"tier"})
	assert.Error(t, err)
}
