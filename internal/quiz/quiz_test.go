package quiz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
}

func TestParse_OnlyWhitespace(t *testing.T) {
	assert.Empty(t, Parse("   \n\t\n  \n"))
}

func TestParse_SinglePair(t *testing.T) {
	items := Parse("Q1\nA1")
	require.Len(t, items, 1)
	assert.Equal(t, "Q1", items[0].Question)
	assert.Equal(t, "A1", items[0].Answer)
}

func TestParse_TrailingLineDropped(t *testing.T) {
	items := Parse("Q1\nA1\nQ2")
	require.Len(t, items, 1)
	assert.Equal(t, "Q1", items[0].Question)
	assert.Equal(t, "A1", items[0].Answer)
}

func TestParse_BlankLinesRemovedBeforePairing(t *testing.T) {
	items := Parse("Q1\n\nA1")
	require.Len(t, items, 1)
	assert.Equal(t, "Q1", items[0].Question)
	assert.Equal(t, "A1", items[0].Answer)
}

func TestParse_SingleLineYieldsNothing(t *testing.T) {
	assert.Empty(t, Parse("only one line"))
}

func TestParse_PreservesInteriorWhitespace(t *testing.T) {
	items := Parse("  What is   2 + 2?  \nThe answer\tis 4")
	require.Len(t, items, 1)
	assert.Equal(t, "What is   2 + 2?", items[0].Question)
	assert.Equal(t, "The answer\tis 4", items[0].Answer)
}

func TestParse_WindowsLineEndings(t *testing.T) {
	items := Parse("Q1\r\nA1\r\n")
	require.Len(t, items, 1)
	assert.Equal(t, "Q1", items[0].Question)
	assert.Equal(t, "A1", items[0].Answer)
}

func TestParse_TenLinesFiveItems(t *testing.T) {
	lines := []string{
		"1. What is the powerhouse of the cell? A) Nucleus B) Mitochondria C) Ribosome",
		"B) Mitochondria",
		"2. Which molecule carries genetic information? A) RNA B) DNA C) ATP",
		"B) DNA",
		"3. What process converts glucose to energy? A) Photosynthesis B) Respiration C) Osmosis",
		"B) Respiration",
		"4. Where does protein synthesis occur? A) Ribosome B) Golgi C) Lysosome",
		"A) Ribosome",
		"5. What is the basic unit of life? A) Atom B) Molecule C) Cell",
		"C) Cell",
	}

	items := Parse(strings.Join(lines, "\n"))
	require.Len(t, items, 5)

	for i, item := range items {
		assert.Equal(t, lines[2*i], item.Question)
		assert.Equal(t, lines[2*i+1], item.Answer)
	}
}

func TestParse_OrderPreserved(t *testing.T) {
	items := Parse("Q1\nA1\nQ2\nA2\nQ3\nA3")
	require.Len(t, items, 3)
	assert.Equal(t, "Q2", items[1].Question)
	assert.Equal(t, "A3", items[2].Answer)
}
