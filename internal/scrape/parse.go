// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Listing is one paper entry on a volume listing page.
type Listing struct {
	Title   string
	Authors string
	PageURL string
}

// Detail is what a paper page adds to a listing.
type Detail struct {
	Abstract string
	Link     string
}

// YearPages maps each year found on a journal's main listing page to the
// page that lists its papers. Older years link to separate default*.htm
// pages followed by "(year)"; recent years appear in volume headers of the
// main page itself.
func YearPages(doc *goquery.Document, base *url.URL) map[int]string {
	pages := make(map[int]string)
	doc.Find("a[href*='default']").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		next := a.Nodes[0].NextSibling
		if next == nil || next.Type != html.TextNode {
			return
		}
		year, ok := digits(strings.Trim(strings.TrimSpace(next.Data), "()"))
		if !ok {
			return
		}
		if u, err := base.Parse(href); err == nil {
			pages[year] = u.String()
		}
	})

	doc.Find("b").Each(func(_ int, b *goquery.Selection) {
		parts := strings.Split(b.Text(), ",")
		if len(parts) < 2 {
			return
		}
		year, ok := digits(strings.TrimSpace(parts[len(parts)-1]))
		if !ok {
			return
		}
		if _, seen := pages[year]; !seen {
			pages[year] = base.String()
		}
	})
	return pages
}

// PapersForYear returns the papers listed under every volume header that
// mentions year. Entries without an author line are skipped.
func PapersForYear(doc *goquery.Document, year int, base *url.URL) []Listing {
	var out []Listing
	y := strconv.Itoa(year)
	doc.Find("b").Each(func(_ int, b *goquery.Selection) {
		if !strings.Contains(b.Text(), y) {
			return
		}
		dl := b.NextAllFiltered("dl").First()
		dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
			a := dt.Find("a").First()
			if a.Length() == 0 {
				return
			}
			dd := dt.NextAllFiltered("dd").First()
			if dd.Length() == 0 {
				return
			}
			href, _ := a.Attr("href")
			page, err := base.Parse(href)
			if err != nil {
				return
			}
			out = append(out, Listing{
				Title:   strings.TrimSpace(a.Text()),
				Authors: strings.TrimSpace(dd.Text()),
				PageURL: page.String(),
			})
		})
	})
	return out
}

// PaperDetail reads the abstract and the first download link from a paper
// page. Missing parts are left empty.
func PaperDetail(doc *goquery.Document) Detail {
	var d Detail
	if b := label(doc, "Abstract:"); b != nil {
		if next := b.NextSibling; next != nil && next.Type == html.TextNode {
			d.Abstract = strings.TrimSpace(next.Data)
		}
	}
	if b := label(doc, "Downloads:"); b != nil {
		for n := b.NextSibling; n != nil; n = n.NextSibling {
			if n.Type != html.ElementNode {
				continue
			}
			if n.Data == "p" {
				break
			}
			if n.Data == "a" {
				a := goquery.NewDocumentFromNode(n).Selection
				d.Link = strings.TrimSpace(a.Text())
				if d.Link == "" {
					d.Link, _ = a.Attr("href")
				}
				break
			}
		}
	}
	return d
}

// label returns the first <b> element whose text is exactly text.
func label(doc *goquery.Document, text string) *html.Node {
	b := doc.Find("b").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == text
	}).First()
	if b.Length() == 0 {
		return nil
	}
	return b.Nodes[0]
}

func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
