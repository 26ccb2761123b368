package models

import "strings"

// Lang - язык интерфейса. Поддерживаются только арабский и английский.
type Lang string

const (
	LangAr Lang = "ar"
	LangEn Lang = "en"

	DefaultLang = LangAr
)

// ParseLang returns the language for a query or session value, falling back to
// DefaultLang for anything unknown.
func ParseLang(s string) Lang {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case LangEn:
		return LangEn
	case LangAr:
		return LangAr
	default:
		return DefaultLang
	}
}

// Dir is the HTML text direction for the language.
func (l Lang) Dir() string {
	if l == LangAr {
		return "rtl"
	}
	return "ltr"
}

// LocalizedText хранит обе версии текста. Колонки в БД: <prefix>ar / <prefix>en.
type LocalizedText struct {
	Ar string `gorm:"column:ar" json:"ar"`
	En string `gorm:"column:en" json:"en"`
}

// Text builds a LocalizedText from both variants.
func Text(ar, en string) LocalizedText {
	return LocalizedText{Ar: ar, En: en}
}

// Resolve picks the variant for lang. An empty English variant falls back to Arabic.
func (t LocalizedText) Resolve(lang Lang) string {
	if lang == LangEn && t.En != "" {
		return t.En
	}
	if t.Ar == "" {
		return t.En
	}
	return t.Ar
}

// Complete reports whether both variants are filled in.
func (t LocalizedText) Complete() bool {
	return strings.TrimSpace(t.Ar) != "" && strings.TrimSpace(t.En) != ""
}
