package copygen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_Defaults(t *testing.T) {
	prompt := BuildPrompt(Options{})

	assert.Contains(t, prompt, "expert e-commerce copywriter")
	assert.Contains(t, prompt, "Image description: No description provided")
	assert.Contains(t, prompt, "Target audience: general")
	assert.Contains(t, prompt, "Include emojis: no")
	assert.Contains(t, prompt, "Custom hashtags: none")
	assert.Contains(t, prompt, "max 300 characters")
	assert.NotContains(t, prompt, "Theme:")
}

func TestBuildPrompt_AllOptions(t *testing.T) {
	prompt := BuildPrompt(Options{
		ImageDescription: "red leather handbag on marble",
		Theme:            "summer sale",
		TargetAudience:   "luxury shoppers",
		IncludeEmojis:    true,
		CustomHashtags:   "#style #handmade",
		TextLength:       LengthLong,
	})

	assert.Contains(t, prompt, "Image description: red leather handbag on marble")
	assert.Contains(t, prompt, "Theme: summer sale")
	assert.Contains(t, prompt, "Target audience: luxury shoppers")
	assert.Contains(t, prompt, "Include emojis: yes")
	assert.Contains(t, prompt, "Custom hashtags: #style #handmade")
	assert.Contains(t, prompt, "max 1000 characters")
}

func TestParseCopies_ThreeParagraphs(t *testing.T) {
	raw := "First variation here.\n\nSecond variation here.\n\nThird variation here."

	copies := ParseCopies(raw)

	assert.Equal(t, []string{
		"First variation here.",
		"Second variation here.",
		"Third variation here.",
	}, copies)
}

func TestParseCopies_SkipsBlankSegments(t *testing.T) {
	raw := "One.\n\n\n\n   \n\nTwo."

	copies := ParseCopies(raw)

	assert.Equal(t, []string{"One.", "Two."}, copies)
}

func TestParseCopies_CapsAtThree(t *testing.T) {
	raw := strings.Join([]string{"a", "b", "c", "d", "e"}, "\n\n")

	copies := ParseCopies(raw)

	assert.Len(t, copies, 3)
	assert.Equal(t, []string{"a", "b", "c"}, copies)
}

func TestParseCopies_TrimsWhitespace(t *testing.T) {
	copies := ParseCopies("  padded copy \n\n\tanother one\t")

	assert.Equal(t, []string{"padded copy", "another one"}, copies)
}

func TestParseCopies_EmptyInput(t *testing.T) {
	assert.Empty(t, ParseCopies(""))
	assert.Empty(t, ParseCopies("\n\n \n\n"))
}
