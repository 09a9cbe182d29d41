// Package extract turns sports portal markup into records. Every function is
// pure: it reads a parsed document and never performs I/O.
package extract

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	firstDigits = regexp.MustCompile(`\d+`)
	number      = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	jpDate      = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	clockTime   = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// ParseDocument parses page markup into a queryable document.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// PlayerIDFromHref prefixes the league to the second-to-last path segment of a
// player link ("/npb/player/1300001/top" -> "npb1300001").
func PlayerIDFromHref(league, href string) (string, bool) {
	raw, ok := RawPlayerID(href)
	if !ok {
		return "", false
	}
	return league + raw, true
}

// RawPlayerID returns the site-local id embedded in a player link.
func RawPlayerID(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if u, err := url.Parse(href); err == nil {
		href = u.Path
	}
	parts := strings.Split(href, "/")
	if len(parts) < 2 {
		return "", false
	}
	id := strings.TrimSpace(parts[len(parts)-2])
	if id == "" {
		return "", false
	}
	return id, true
}

// text returns the trimmed text of the first match, or nil when there is no
// match or the text is blank.
func text(sel *goquery.Selection) *string {
	if sel.Length() == 0 {
		return nil
	}
	v := strings.TrimSpace(sel.First().Text())
	if v == "" {
		return nil
	}
	return &v
}

func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// digits parses the first run of digits ignoring thousands separators
// ("31,523人" -> 31523).
func digits(raw string) *int {
	m := firstDigits.FindString(strings.ReplaceAll(raw, ",", ""))
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

func roundInt(raw string) (int, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", raw, err)
	}
	return int(math.Round(f)), nil
}

func indexOf(values []string, i int) *string {
	if i < 0 || i >= len(values) || values[i] == "" {
		return nil
	}
	v := values[i]
	return &v
}
