package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenancy/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "company name", input: "Acme Inc", expected: "acme-inc"},
		{name: "trailing punctuation", input: "Acme Inc.", expected: "acme-inc"},
		{name: "collapses runs", input: "Too    Many -- Separators", expected: "too-many-separators"},
		{name: "trims both ends", input: "  --Trim Me!!  ", expected: "trim-me"},
		{name: "keeps digits", input: "Product 123", expected: "product-123"},
		{name: "folds diacritics", input: "Crème Brûlée Co", expected: "creme-brulee-co"},
		{name: "folds umlaut", input: "Müller GmbH", expected: "muller-gmbh"},
		{name: "empty", input: "", expected: ""},
		{name: "only symbols", input: "!!! ???", expected: ""},
		{name: "custom separator", input: "Hello World", opts: []slug.Option{slug.Separator("_")}, expected: "hello_world"},
		{name: "keep case", input: "Hello World", opts: []slug.Option{slug.Lowercase(false)}, expected: "Hello-World"},
		{name: "max length", input: "Hello World", opts: []slug.Option{slug.MaxLength(5)}, expected: "hello"},
		{name: "max length drops dangling separator", input: "Hello World", opts: []slug.Option{slug.MaxLength(6)}, expected: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestNumbered(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme-inc", slug.Numbered("acme-inc", 0))
	assert.Equal(t, "acme-inc-1", slug.Numbered("acme-inc", 1))
	assert.Equal(t, "acme-inc-12", slug.Numbered("acme-inc", 12))
	assert.Equal(t, "acme_2", slug.Numbered("acme", 2, slug.Separator("_")))
}
