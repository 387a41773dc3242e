package copygen

import (
	"fmt"
	"strings"
)

// Text length classes and their character ceilings.
const (
	LengthShort = "short"
	LengthLong  = "long"

	shortMaxChars = 300
	longMaxChars  = 1000

	maxVariations = 3
)

// Options carries the user's preferences for one generation.
type Options struct {
	ImageDescription string
	Theme            string
	TargetAudience   string
	IncludeEmojis    bool
	CustomHashtags   string
	TextLength       string
}

// BuildPrompt assembles the copywriter instruction for the model. The
// image itself travels as a separate message part.
func BuildPrompt(opts Options) string {
	description := opts.ImageDescription
	if description == "" {
		description = "No description provided"
	}
	audience := opts.TargetAudience
	if audience == "" {
		audience = "general"
	}
	hashtags := opts.CustomHashtags
	if hashtags == "" {
		hashtags = "none"
	}
	emojis := "no"
	if opts.IncludeEmojis {
		emojis = "yes"
	}

	maxChars := shortMaxChars
	if opts.TextLength == LengthLong {
		maxChars = longMaxChars
	}

	var b strings.Builder
	b.WriteString("You are an expert e-commerce copywriter.\n")
	fmt.Fprintf(&b, "Create %d short, compelling product copy variations for social media.\n\n", maxVariations)
	fmt.Fprintf(&b, "Image description: %s\n", description)
	if opts.Theme != "" {
		fmt.Fprintf(&b, "Theme: %s\n", opts.Theme)
	}
	fmt.Fprintf(&b, "Target audience: %s\n\n", audience)
	b.WriteString("Preferences:\n")
	fmt.Fprintf(&b, "- Include emojis: %s\n", emojis)
	b.WriteString("- Include automatic hashtags: yes\n")
	fmt.Fprintf(&b, "- Custom hashtags: %s\n\n", hashtags)
	fmt.Fprintf(&b, "Each copy should be max %d characters.\n", maxChars)
	b.WriteString("Be creative, emotional, objective, and encourage action.\n\n")
	b.WriteString("Format your response as three separate paragraphs, one for each variation.")

	return b.String()
}

// ParseCopies splits the model response on blank lines and keeps the
// first non-empty variations.
func ParseCopies(raw string) []string {
	parts := strings.Split(raw, "\n\n")
	copies := make([]string, 0, maxVariations)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		copies = append(copies, p)
		if len(copies) == maxVariations {
			break
		}
	}
	return copies
}
