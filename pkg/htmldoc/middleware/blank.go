package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRegex = regexp.MustCompile(`^ htmldoc-blank tag="[^"]+" index="\d+" $`)

// DefaultBlankTags are the tags whose content the default chain hides from the parser.
var DefaultBlankTags = []string{"template", "script", "style", "textarea"}

// BlankTag swaps every <tag>...</tag> block for a placeholder comment before
// parsing and puts the original text back after serializing, so the parser
// never escapes or restructures the block.
//
// Captured blocks accumulate across loads on the same instance and a block
// seen before reuses its placeholder. Call Reset between unrelated documents
// when one instance is kept for a long time.
type BlankTag struct {
	Base
	tag          string
	pattern      *regexp.Regexp
	replacements []string
	index        map[string]int
}

// NewBlankTag creates a BlankTag for tag, which is matched case-insensitively.
func NewBlankTag(tag string) *BlankTag {
	tag = strings.ToLower(strings.TrimSpace(tag))
	name := regexp.QuoteMeta(tag)

	return &BlankTag{
		tag:     tag,
		pattern: regexp.MustCompile(`(?is)<` + name + `(\s[^>]*)?>.*?</` + name + `\s*>`),
		index:   make(map[string]int),
	}
}

func (b *BlankTag) Kind() Kind { return KindBlankTag }

// Tag returns the blanked tag name.
func (b *BlankTag) Tag() string { return b.tag }

// Len returns the number of captured blocks.
func (b *BlankTag) Len() int { return len(b.replacements) }

// Reset forgets every captured block.
func (b *BlankTag) Reset() {
	b.replacements = nil
	b.index = make(map[string]int)
}

func (b *BlankTag) BeforeLoad(markup string) string {
	return b.pattern.ReplaceAllStringFunc(markup, func(block string) string {
		i, ok := b.index[block]
		if !ok {
			i = len(b.replacements)
			b.replacements = append(b.replacements, block)
			b.index[block] = i
		}
		return b.placeholder(i)
	})
}

func (b *BlankTag) AfterSave(markup string) string {
	for i, block := range b.replacements {
		markup = strings.ReplaceAll(markup, b.placeholder(i), block)
	}
	return markup
}

func (b *BlankTag) placeholder(i int) string {
	return fmt.Sprintf(`<!-- htmldoc-blank tag="%s" index="%d" -->`, b.tag, i)
}

// IsPlaceholder reports whether comment, the data of a comment node, is a
// placeholder left by a BlankTag.
func IsPlaceholder(comment string) bool {
	return placeholderRegex.MatchString(comment)
}
