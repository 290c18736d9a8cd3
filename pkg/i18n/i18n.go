// Package i18n localizes user-facing notification strings.
// Translations are compiled into the binary; lookups fall back to English.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Fallback language used when a key or language is not found.
const DefaultLang = "en"

// Supported lists the language codes with translations, default first.
var Supported = []string{"en", "ru", "tr", "tk"}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Russian,
	language.Turkish,
	language.Make("tk"),
})

// Translate returns a localized string for key in lang.
// Extra args are passed to fmt.Sprintf if the translation contains format verbs.
func Translate(key, lang string, args ...interface{}) string {
	if lang == "" {
		lang = DefaultLang
	}

	langMap, ok := translations[key]
	if !ok {
		// Unknown keys come back unchanged.
		return key
	}

	tmpl, ok := langMap[lang]
	if !ok {
		tmpl, ok = langMap[DefaultLang]
		if !ok {
			return key
		}
	}

	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// FromAcceptLanguage picks the best supported language for an Accept-Language header
func FromAcceptLanguage(header string) string {
	if header == "" {
		return DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	return Supported[idx]
}
