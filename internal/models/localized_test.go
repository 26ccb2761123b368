package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLang(t *testing.T) {
	tests := []struct {
		in   string
		want Lang
	}{
		{"en", LangEn},
		{"EN ", LangEn},
		{"ar", LangAr},
		{"", LangAr},
		{"fr", LangAr},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLang(tt.in))
		})
	}
}

func TestLocalizedText_Resolve(t *testing.T) {
	txt := Text("مرحبا", "Hello")
	assert.Equal(t, "Hello", txt.Resolve(LangEn))
	assert.Equal(t, "مرحبا", txt.Resolve(LangAr))

	onlyAr := Text("مرحبا", "")
	assert.Equal(t, "مرحبا", onlyAr.Resolve(LangEn))

	onlyEn := Text("", "Hello")
	assert.Equal(t, "Hello", onlyEn.Resolve(LangAr))
}

func TestLocalizedText_Complete(t *testing.T) {
	assert.True(t, Text("a", "b").Complete())
	assert.False(t, Text("a", " ").Complete())
	assert.False(t, LocalizedText{}.Complete())
}
