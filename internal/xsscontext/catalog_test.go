package xsscontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOrder(t *testing.T) {
	want := []string{
		Tag, HTMLText, HTMLComment, AttrName, AttrSingleQuote, AttrDoubleQuote,
		ScriptMultiComment, ScriptLineComment, ScriptSingleQuote, ScriptDoubleQuote, ScriptText,
		StyleText, StyleComment, StyleSingleQuote, StyleDoubleQuote,
	}

	var got []string
	for _, v := range Catalog() {
		got = append(got, v.Name())
	}
	assert.Equal(t, want, got)
}

func TestCatalogIsACopy(t *testing.T) {
	c := Catalog()
	c[0] = nil
	assert.NotNil(t, Catalog()[0])
}

func TestLookup(t *testing.T) {
	v, ok := Lookup(ScriptDoubleQuote)
	require.True(t, ok)
	assert.Equal(t, RegionScript, v.Region())
	assert.Equal(t, byte('"'), v.Quote())
	assert.Equal(t, ScriptDoubleQuote, v.String())

	v, ok = Lookup(HTMLText)
	require.True(t, ok)
	assert.Equal(t, RegionHTML, v.Region())
	assert.Equal(t, byte(0), v.Quote())

	_, ok = Lookup("html_text")
	assert.False(t, ok)
}

func TestVariantIsMatch(t *testing.T) {
	v, _ := Lookup(AttrDoubleQuote)
	assert.True(t, v.IsMatch(`<img src="`))
	assert.False(t, v.IsMatch(`<img src='`))
	assert.False(t, v.IsMatch(`<img src="x">`))
}

func TestMustVariantRejectsIncompleteRows(t *testing.T) {
	match := func(*state) bool { return true }
	breaker := func(*Variant, string) bool { return true }

	assert.Panics(t, func() { mustVariant(variantSpec{match: match, canBreak: breaker}) })
	assert.Panics(t, func() { mustVariant(variantSpec{name: "X", canBreak: breaker}) })
	assert.Panics(t, func() { mustVariant(variantSpec{name: "X", match: match}) })
	assert.Panics(t, func() { mustVariant(variantSpec{name: "X", region: Region(7), match: match, canBreak: breaker}) })
	assert.Panics(t, func() { mustVariant(variantSpec{name: "X", quote: '`', match: match, canBreak: breaker}) })
	assert.NotPanics(t, func() { mustVariant(variantSpec{name: "X", match: match, canBreak: breaker}) })
}
