// Package i18n resolves UI strings and validation messages by key.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// GetString looks up the message registered under key and formats it with
// args. Unknown keys are formatted as-is.
type GetString func(key string, args ...any) string

var (
	supported = []language.Tag{language.English, language.German}
	matcher   = language.NewMatcher(supported)
	builder   = newCatalog()
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range english {
		_ = b.SetString(language.English, key, msg)

		// German falls back to English for untranslated keys.
		if de, ok := german[key]; ok {
			msg = de
		}
		_ = b.SetString(language.German, key, msg)
	}
	return b
}

// New returns a lookup bound to the given language.
func New(tag language.Tag) GetString {
	p := message.NewPrinter(tag, message.Catalog(builder))
	return func(key string, args ...any) string {
		return p.Sprintf(key, args...)
	}
}

// Default is the English lookup.
func Default() GetString { return New(language.English) }

// FromAcceptLanguage picks the best supported language for an HTTP
// Accept-Language header value.
func FromAcceptLanguage(header string) GetString {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	tag, _, _ := matcher.Match(tags...)
	base, _ := tag.Base()
	return New(language.Make(base.String()))
}
