// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/internal/catalog"
	"github.com/pdiddy/paper-search/internal/dataset"
	"github.com/pdiddy/paper-search/pkg/types"
)

const mainPage = `<html><body>
<h1>Econometrica</h1>
<p><a href="default1.htm">Volume 87</a> (2019)<br>
<a href="default2.htm">Volume 86</a> (2018)<br></p>
<b>Volume 92, issue 2, 2024</b>
<dl>
<dt><a href="v92i2p1.htm">Search and Matching</a></dt><dd>Alice Smith and Bob Jones</dd>
<dt><a href="v92i2p2.htm">Inflation Dynamics</a></dt><dd>Carol White</dd>
</dl>
<b>Volume 92, issue 1, 2024</b>
<dl>
<dt><a href="v92i1p1.htm">Labor Market Frictions</a></dt><dd>Dan Brown</dd>
<dt><a href="front.htm">Front Matter</a></dt>
</dl>
<b>Volume 91, issue 6, 2023</b>
<dl><dt><a href="v91i6p1.htm">Auctions</a></dt><dd>Eve Black</dd></dl>
</body></html>`

const oldPage = `<html><body>
<b>Volume 87, issue 1, 2019</b>
<dl><dt><a href="/article/emet/old1.htm">Old Paper</a></dt><dd>Frank Green</dd></dl>
</body></html>`

const detailPage = `<html><body><p>
<b>Abstract:</b> We study search frictions, "in detail".<br>
<b>Downloads:</b> (external link)<br>
<a href="http://hdl.handle.net/10.3982/ECTA1">http://hdl.handle.net/10.3982/ECTA1</a><br>
</p></body></html>`

const abstractOnly = `<html><body><p><b>Abstract:</b> Frictions in labor markets.</p></body></html>`

func doc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return d
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestYearPages(t *testing.T) {
	base := "https://econpapers.repec.org/article/wlyemetrp/"
	got := YearPages(doc(t, mainPage), mustURL(t, base))
	assert.Equal(t, map[int]string{
		2024: base,
		2023: base,
		2019: base + "default1.htm",
		2018: base + "default2.htm",
	}, got)
}

func TestPapersForYear(t *testing.T) {
	base := mustURL(t, "https://econpapers.repec.org/article/wlyemetrp/")
	got := PapersForYear(doc(t, mainPage), 2024, base)
	require.Len(t, got, 3, "entries without authors are skipped")
	assert.Equal(t, Listing{
		Title:   "Search and Matching",
		Authors: "Alice Smith and Bob Jones",
		PageURL: "https://econpapers.repec.org/article/wlyemetrp/v92i2p1.htm",
	}, got[0])
	assert.Equal(t, "Labor Market Frictions", got[2].Title)

	assert.Len(t, PapersForYear(doc(t, mainPage), 2023, base), 1)
	assert.Empty(t, PapersForYear(doc(t, mainPage), 2010, base))
}

func TestPaperDetail(t *testing.T) {
	d := PaperDetail(doc(t, detailPage))
	assert.Equal(t, `We study search frictions, "in detail".`, d.Abstract)
	assert.Equal(t, "http://hdl.handle.net/10.3982/ECTA1", d.Link)

	d = PaperDetail(doc(t, abstractOnly))
	assert.Equal(t, "Frictions in labor markets.", d.Abstract)
	assert.Empty(t, d.Link)

	d = PaperDetail(doc(t, `<div><b>Downloads:</b><p><a href="x">late</a></p></div>`))
	assert.Empty(t, d.Link, "a paragraph ends the downloads section")

	assert.Equal(t, Detail{}, PaperDetail(doc(t, `<p>nothing here</p>`)))
}

// site serves a small econpapers mirror and counts requests per path.
type site struct {
	mu   sync.Mutex
	hits map[string]int
	srv  *httptest.Server
}

func newSite(t *testing.T) *site {
	t.Helper()
	pages := map[string]string{
		"/article/emet/":             mainPage,
		"/article/emet/default1.htm": oldPage,
		"/article/emet/v92i2p1.htm":  detailPage,
		"/article/emet/v92i1p1.htm":  abstractOnly,
		"/article/emet/v91i6p1.htm":  abstractOnly,
		"/article/emet/old1.htm":     abstractOnly,
	}
	s := &site{hits: map[string]int{}}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *site) journal() catalog.Journal {
	return catalog.Journal{Name: "Econometrica", ListingURL: s.srv.URL + "/article/emet/"}
}

func (s *site) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := OpenLedger(filepath.Join(t.TempDir(), "ledger", "scrape.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func newTestScraper(out string, ledger *Ledger, opts ...Option) *Scraper {
	return New(types.ScrapeConfig{OutDir: out, RequestsPerSecond: 1000}, ledger, opts...)
}

func readCSV(t *testing.T, path string) []types.PaperRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := dataset.Parse(f)
	require.NoError(t, err)
	return records
}

func TestScrapeYearWritesLoadableFile(t *testing.T) {
	s := newSite(t)
	out := t.TempDir()
	ledger := testLedger(t)
	sc := newTestScraper(out, ledger)

	res, err := sc.ScrapeYear(context.Background(), s.journal(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Papers)
	assert.Equal(t, 1, res.DetailFailures)
	assert.Equal(t, filepath.Join(out, "Econometrica_2024.csv"), res.Path)

	records := readCSV(t, res.Path)
	require.Len(t, records, 3)
	assert.Equal(t, types.PaperRecord{
		Journal:  "Econometrica",
		Year:     "2024",
		Title:    "Search and Matching",
		Authors:  "Alice Smith and Bob Jones",
		Abstract: `We study search frictions, "in detail".`,
		URL:      "http://hdl.handle.net/10.3982/ECTA1",
	}, records[0])
	assert.Empty(t, records[1].Abstract, "unreadable paper page leaves details empty")

	done, err := ledger.FileDone(context.Background(), "Econometrica", 2024)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestScrapeYearSkipsWrittenFiles(t *testing.T) {
	s := newSite(t)
	out := t.TempDir()
	ledger := testLedger(t)

	_, err := newTestScraper(out, ledger).ScrapeYear(context.Background(), s.journal(), 2024)
	require.NoError(t, err)
	listingHits := s.count("/article/emet/")

	res, err := newTestScraper(out, ledger).ScrapeYear(context.Background(), s.journal(), 2024)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, listingHits, s.count("/article/emet/"))

	res, err = newTestScraper(out, ledger, WithForce(true)).ScrapeYear(context.Background(), s.journal(), 2024)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 3, res.Papers)
	assert.Equal(t, 1, s.count("/article/emet/v92i2p1.htm"), "known paper pages come from the ledger")
	assert.Equal(t, 2, s.count("/article/emet/v92i2p2.htm"), "failed pages are retried")
}

func TestScrapeYearUnavailable(t *testing.T) {
	s := newSite(t)
	_, err := newTestScraper(t.TempDir(), nil).ScrapeYear(context.Background(), s.journal(), 2030)
	assert.ErrorIs(t, err, ErrYearUnavailable)
}

func TestAvailableYears(t *testing.T) {
	s := newSite(t)
	years, err := newTestScraper(t.TempDir(), nil).AvailableYears(context.Background(), s.journal())
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2023, 2019, 2018}, years)
}

func TestRunAllYears(t *testing.T) {
	s := newSite(t)
	out := t.TempDir()
	var buf bytes.Buffer

	sum := newTestScraper(out, testLedger(t)).Run(context.Background(), []catalog.Journal{s.journal()}, nil, &buf)

	assert.Equal(t, 3, sum.Written)
	assert.Equal(t, 1, sum.Failed, "2018 page is missing")
	assert.Equal(t, 5, sum.Papers)
	assert.Equal(t, 1, s.count("/article/emet/"), "listing page fetched once per journal")
	assert.Contains(t, buf.String(), "failed:  Econometrica 2018")
	assert.Contains(t, buf.String(), "Scrape summary: 3 written, 0 skipped, 0 empty, 1 failed (total: 4)")

	old := readCSV(t, filepath.Join(out, "Econometrica_2019.csv"))
	require.Len(t, old, 1)
	assert.Equal(t, "Frictions in labor markets.", old[0].Abstract)
}

func TestRunListingFailure(t *testing.T) {
	s := newSite(t)
	j := catalog.Journal{Name: "Journal of Econometrics", ListingURL: s.srv.URL + "/article/missing/"}
	var buf bytes.Buffer

	sum := newTestScraper(t.TempDir(), nil).Run(context.Background(), []catalog.Journal{j}, []int{2023, 2024}, &buf)
	assert.Equal(t, 2, sum.Failed)
	assert.Contains(t, buf.String(), "failed:  Journal of Econometrics")
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "AEJ_Applied_Economics_2021.csv")
	want := []types.PaperRecord{{
		Journal:  "AEJ: Applied Economics",
		Year:     "2021",
		Title:    `Quotes "and", commas`,
		Authors:  "A, B",
		Abstract: "line one\nline two",
	}}
	require.NoError(t, WriteCSV(path, want))
	assert.Equal(t, want, readCSV(t, path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLedgerPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrape.db")
	ctx := context.Background()

	l, err := OpenLedger(path)
	require.NoError(t, err)
	require.NoError(t, l.SaveDetail(ctx, "https://x/p1.htm", Detail{Abstract: "a", Link: "l"}))
	require.NoError(t, l.SaveDetail(ctx, "https://x/p1.htm", Detail{Abstract: "b", Link: "l"}))
	require.NoError(t, l.MarkFile(ctx, FileEntry{Journal: "Econometrica", Year: 2024, Path: "data/Econometrica_2024.csv", Papers: 3}))
	require.NoError(t, l.Close())

	l, err = OpenLedger(path)
	require.NoError(t, err)
	defer l.Close()

	d, ok, err := l.Detail(ctx, "https://x/p1.htm")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Detail{Abstract: "b", Link: "l"}, d)

	_, ok, err = l.Detail(ctx, "https://x/unknown.htm")
	require.NoError(t, err)
	assert.False(t, ok)

	files, err := l.Files(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 3, files[0].Papers)
	assert.False(t, files[0].WrittenAt.IsZero())

	done, err := l.FileDone(ctx, "Econometrica", 2023)
	require.NoError(t, err)
	assert.False(t, done)
}
