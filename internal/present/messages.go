// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultLocale is the interface language when none is configured.
const DefaultLocale = "zh-TW"

const (
	keyNoJournal  = "no journal selected"
	keyLoading    = "loading %s"
	keyLoadFailed = "load failed %s"
	keyNoResults  = "no results"
	keyFound      = "%d found, showing %d"
)

// supported lists the locales with translations; the first is the fallback.
var supported = []language.Tag{language.TraditionalChinese, language.English}

var matcher = language.NewMatcher(supported)

var translations = func() *catalog.Builder {
	b := catalog.NewBuilder()
	for _, m := range []struct {
		tag      language.Tag
		key, msg string
	}{
		{language.TraditionalChinese, keyNoJournal, "請至少選擇一個期刊"},
		{language.TraditionalChinese, keyLoading, "正在載入 %s 的資料..."},
		{language.TraditionalChinese, keyLoadFailed, "無法載入 %s 的資料"},
		{language.TraditionalChinese, keyNoResults, "沒有找到符合條件的論文"},
		{language.TraditionalChinese, keyFound, "找到 %d 篇論文，顯示前 %d 篇"},
		{language.English, keyNoJournal, "Select at least one journal"},
		{language.English, keyLoading, "Loading %s..."},
		{language.English, keyLoadFailed, "Could not load data for %s"},
		{language.English, keyNoResults, "No matching papers found"},
		{language.English, keyFound, "%d papers found, showing first %d"},
	} {
		if err := b.SetString(m.tag, m.key, m.msg); err != nil {
			panic(err)
		}
	}
	return b
}()

// Messages renders localized status lines.
type Messages struct {
	tag language.Tag
	p   *message.Printer
}

// MessagesFor returns the messages best matching locale. Unknown or empty
// locales get Traditional Chinese.
func MessagesFor(locale string) Messages {
	if locale == "" {
		locale = DefaultLocale
	}
	tag := supported[0]
	if want, err := language.Parse(locale); err == nil && want != language.Und {
		if _, idx, conf := matcher.Match(want); conf != language.No {
			tag = supported[idx]
		}
	}
	return Messages{tag: tag, p: message.NewPrinter(tag, message.Catalog(translations))}
}

// Tag returns the matched language.
func (m Messages) Tag() language.Tag { return m.tag }

func (m Messages) NoJournal() string { return m.p.Sprintf(keyNoJournal) }

func (m Messages) Loading(journals ...string) string {
	return m.p.Sprintf(keyLoading, strings.Join(journals, ", "))
}

func (m Messages) LoadFailed(journal string) string { return m.p.Sprintf(keyLoadFailed, journal) }

func (m Messages) NoResults() string { return m.p.Sprintf(keyNoResults) }

func (m Messages) Found(total, shown int) string { return m.p.Sprintf(keyFound, total, shown) }
