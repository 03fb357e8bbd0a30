package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSeparator joins words in a slug.
const DefaultSeparator = "-"

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength int
	separator string
	lowercase bool
}

func defaultConfig() *config {
	return &config{
		separator: DefaultSeparator,
		lowercase: true,
	}
}

// MaxLength truncates the slug to n runes. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxLength = n
		}
	}
}

// Separator replaces the default "-" word separator.
func Separator(s string) Option {
	return func(c *config) {
		if s != "" {
			c.separator = s
		}
	}
}

// Lowercase controls case folding. Enabled by default.
func Lowercase(enabled bool) Option {
	return func(c *config) {
		c.lowercase = enabled
	}
}

// fold strips combining marks after canonical decomposition: é → e + ◌́ → e.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Make converts s into a slug: diacritics folded, runs of anything that is not
// an ASCII letter or digit collapsed into a single separator, separators
// trimmed from both ends.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s = fold(s)

	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	for _, r := range s {
		if cfg.lowercase {
			r = unicode.ToLower(r)
		}
		if !isASCIIAlnum(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteString(cfg.separator)
			pendingSep = false
		}
		b.WriteRune(r)
	}

	result := b.String()
	if cfg.maxLength > 0 {
		if rs := []rune(result); len(rs) > cfg.maxLength {
			result = strings.TrimRight(string(rs[:cfg.maxLength]), cfg.separator)
		}
	}
	return result
}

// Numbered appends a numeric suffix: Numbered("acme", 2) == "acme-2".
// n <= 0 returns base unchanged.
func Numbered(base string, n int, opts ...Option) string {
	if n <= 0 {
		return base
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return base + cfg.separator + strconv.Itoa(n)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
