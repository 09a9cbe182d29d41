package extract

import "github.com/PuerkitoBio/goquery"

const scheduleCardSelector = "a.bb-score__content"

// GameNumbers lists the site game numbers linked from a schedule page in page
// order. A page without game cards yields an empty slice.
func GameNumbers(doc *goquery.Document) []string {
	numbers := []string{}
	doc.Find(scheduleCardSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if n := firstDigits.FindString(href); n != "" {
			numbers = append(numbers, n)
		}
	})
	return numbers
}
