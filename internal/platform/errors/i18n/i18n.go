// Package i18n provides localized user-facing messages for engine
// error codes.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated as a string alias
// to avoid importing the errors package in a cycle).
type Code = string

// BaseLocale is the fallback locale when no catalog matches.
const BaseLocale = "en-US"

var supported = []language.Tag{
	language.AmericanEnglish,     // en-US (base)
	language.BrazilianPortuguese, // pt-BR
}

var matcher = language.NewMatcher(supported)

var catalogs = map[string]map[Code]string{
	"en-US": enUS,
	"pt-BR": ptBR,
}

// Format renders the localized message template for a code, falling
// back to en-US for unknown locales and to the code itself when no
// template exists. Templates are executed even with empty metadata so
// output stays consistent.
func Format(locale string, code Code, metadata map[string]string) string {
	messages := catalogFor(locale)
	tmpl, ok := messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// Locale resolves a requested locale to the best supported match.
func Locale(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return BaseLocale
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return BaseLocale
	}
	_, index, _ := matcher.Match(tag)
	switch index {
	case 1:
		return "pt-BR"
	default:
		return BaseLocale
	}
}

func catalogFor(locale string) map[Code]string {
	if messages, ok := catalogs[Locale(locale)]; ok {
		return messages
	}
	return enUS
}
