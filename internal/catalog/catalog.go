// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog lists the journals covered by the corpus and maps them to
// data file names.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrUnknownJournal is returned when a journal name is not in the catalog.
var ErrUnknownJournal = errors.New("unknown journal")

// Journal is one catalog entry.
type Journal struct {
	// Name is the display name, which is also the value of the journal column.
	Name string `json:"name" yaml:"name"`

	// ListingURL is the econpapers page listing the journal's volumes.
	ListingURL string `json:"listing_url" yaml:"listing_url"`
}

// Journals is the fixed journal catalog.
var Journals = []Journal{
	{"American Economic Review", "https://econpapers.repec.org/article/aeaaecrev/"},
	{"The Quarterly Journal of Economics", "https://econpapers.repec.org/article/oupqjecon/"},
	{"Journal of Political Economy", "https://econpapers.repec.org/article/ucpjpolec/"},
	{"The Review of Economic Studies", "https://econpapers.repec.org/article/ouprestud/"},
	{"Econometrica", "https://econpapers.repec.org/article/wlyemetrp/"},
	{"The Review of Economics and Statistics", "https://econpapers.repec.org/article/tprrestat/"},
	{"Journal of Econometrics", "https://econpapers.repec.org/article/eeeeconom/"},
	{"Journal of Economic Literature", "https://econpapers.repec.org/article/aeajeclit/"},
	{"AEJ: Applied Economics", "https://econpapers.repec.org/article/aeaaejapp/"},
	{"AEJ: Economic Policy", "https://econpapers.repec.org/article/aeaaejpol/"},
}

// DefaultYears is the supported year range used when none is configured.
var DefaultYears = []int{2020, 2021, 2022, 2023, 2024, 2025}

// Names returns the display names of all catalog journals in catalog order.
func Names() []string {
	names := make([]string, len(Journals))
	for i, j := range Journals {
		names[i] = j.Name
	}
	return names
}

// Lookup finds a journal by display name or by normalized file name,
// ignoring case.
func Lookup(name string) (Journal, error) {
	for _, j := range Journals {
		if strings.EqualFold(j.Name, name) || strings.EqualFold(Normalize(j.Name), name) {
			return j, nil
		}
	}
	return Journal{}, fmt.Errorf("%w: %q", ErrUnknownJournal, name)
}

// Normalize turns a journal display name into its file name stem: characters
// other than letters, digits, underscore, whitespace and hyphen are dropped,
// the result is trimmed and spaces become underscores.
// "AEJ: Applied Economics" becomes "AEJ_Applied_Economics".
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

// FileName returns the data file name for a journal and year.
func FileName(journal string, year int) string {
	return fmt.Sprintf("%s_%d.csv", Normalize(journal), year)
}

// Years returns a sorted, de-duplicated copy of configured, or DefaultYears
// when configured is empty.
func Years(configured []int) []int {
	if len(configured) == 0 {
		configured = DefaultYears
	}
	seen := make(map[int]bool, len(configured))
	years := make([]int, 0, len(configured))
	for _, y := range configured {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}
