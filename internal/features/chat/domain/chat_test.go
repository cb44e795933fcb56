package domain

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeRequest(t *testing.T) {
	tests := []struct {
		name      string
		prompt    string
		block     string
		autoPilot bool
		want      string
	}{
		{
			name:   "manual draft includes the prompt",
			prompt: "a cat",
			want:   "Prompt: a cat\n\nSeed:12345678\n\nInstructions: do it\n\nResponse: ",
		},
		{
			name:      "autopilot leaves the prompt out",
			prompt:    "a cat",
			autoPilot: true,
			want:      "Seed:12345678\n\nInstructions: do it\n\nResponse: ",
		},
		{
			name:   "modifier block sits before the seed",
			prompt: "a cat",
			block:  "Suggested style modifiers: \nStyle: oil\n\n",
			want:   "Prompt: a cat\n\nSuggested style modifiers: \nStyle: oil\n\nSeed:12345678\n\nInstructions: do it\n\nResponse: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeRequest(tt.prompt, tt.block, 12345678, "do it", tt.autoPilot)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeDelta(t *testing.T) {
	assert.Equal(t, "a red cat 1.2", SanitizeDelta("a red: cat\n 1.2"))
	assert.Equal(t, "", SanitizeDelta(":\n"))
}

func TestNewSeedHasEightDigits(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		seed := NewSeed(r)
		assert.GreaterOrEqual(t, seed, 10000000)
		assert.Less(t, seed, 100000000)
	}
}

func TestSettings_InstructionsFor(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, DefaultInstructions, s.InstructionsFor(false))
	assert.Equal(t, DefaultAutoPilotInstructions, s.InstructionsFor(true))
}

const catalogYAML = `
- category: Style
  modifiers: [Oil Painting, Watercolor, Pixel Art]
- category: Lighting
  modifiers: [Golden Hour]
- category: Empty
  modifiers: []
`

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	require.Len(t, cat, 2, "empty categories are dropped")
	assert.Equal(t, "Style", cat[0].Category)
	assert.Equal(t, []string{"Oil Painting", "Watercolor", "Pixel Art"}, cat[0].Modifiers)

	_, err = ParseCatalog([]byte("category: [unterminated"))
	assert.Error(t, err)
}

func TestLoadCatalog_MissingFileIsEmpty(t *testing.T) {
	cat, err := LoadCatalog(t.TempDir() + "/none.yaml")
	require.NoError(t, err)
	assert.Empty(t, cat)
}

func TestCatalog_Roll(t *testing.T) {
	cat, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)

	known := map[string]bool{}
	for _, c := range cat {
		for _, m := range c.Modifiers {
			known[m] = true
		}
	}

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		roll := cat.Roll(r)
		require.NotEmpty(t, roll.Tags)
		assert.True(t, strings.HasPrefix(roll.Block, "Suggested style modifiers: \n"))
		assert.True(t, strings.HasSuffix(roll.Block, "\n\n"))

		seen := map[string]bool{}
		for _, tag := range roll.Tags {
			assert.True(t, known[tag], "unknown tag %q", tag)
			assert.False(t, seen[tag], "repeated tag %q", tag)
			seen[tag] = true
			assert.Contains(t, roll.Block, tag)
		}
	}

	assert.Equal(t, Roll{}, Catalog{}.Roll(r))
}

func TestLoadCatalog_ShippedFile(t *testing.T) {
	cat, err := LoadCatalog("../../../../config/modifiers.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, cat)
	for _, c := range cat {
		assert.NotEmpty(t, c.Category)
		assert.NotEmpty(t, c.Modifiers)
	}
}
