// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMessagesForMatchesLocale(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"", language.TraditionalChinese},
		{"zh-TW", language.TraditionalChinese},
		{"en", language.English},
		{"en-US", language.English},
		{"not a locale", language.TraditionalChinese},
		{"und", language.TraditionalChinese},
		{"fr", language.TraditionalChinese},
		{"sw", language.TraditionalChinese},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want.String(), MessagesFor(tt.locale).Tag().String(), tt.locale)
	}
}

func TestMessagesText(t *testing.T) {
	en := MessagesFor("en")
	assert.Equal(t, "Select at least one journal", en.NoJournal())
	assert.Equal(t, "Loading Econometrica, Journal of Econometrics...", en.Loading("Econometrica", "Journal of Econometrics"))
	assert.Equal(t, "Could not load data for Econometrica", en.LoadFailed("Econometrica"))
	assert.Equal(t, "No matching papers found", en.NoResults())
	assert.Equal(t, "120 papers found, showing first 50", en.Found(120, 50))

	zh := MessagesFor("zh-TW")
	assert.Equal(t, "找到 120 篇論文，顯示前 50 篇", zh.Found(120, 50))
	assert.Equal(t, "沒有找到符合條件的論文", zh.NoResults())
}
