package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

const playerPage = "player"

const (
	memberLinkSelector   = "td[class='bb-playerTable__data bb-playerTable__data--player'] a"
	profileNameSelector  = "ruby[class='bb-profile__name']"
	profileNumber        = "p.bb-profile__number"
	profileTitleSelector = "dt[class='bb-profile__title']"
	profileTextSelector  = "dd[class='bb-profile__text']"
	profileSummary       = "p[class='bb-profile__summary']"
	profilePhoto         = "div[class='bb-profile__photo'] img"
)

// Profile labels as printed on the player page.
const (
	labelBirth      = "生年月日（満年齢）"
	labelBirthPlace = "出身地"
	labelHeight     = "身長"
	labelWeight     = "体重"
	labelBloodType  = "血液型"
	labelThrowBat   = "投打"
	labelDraft      = "ドラフト年（順位）"
	labelProYears   = "プロ通算年"
	labelCareer     = "経歴"
)

// TeamPlayerIDs lists the site-local player ids on a team member list page in
// page order.
func TeamPlayerIDs(doc *goquery.Document) []string {
	ids := []string{}
	doc.Find(memberLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if id, ok := RawPlayerID(href); ok {
			ids = append(ids, id)
		}
	})
	return ids
}

// PlayerProfile extracts a profile. The name is required; every other field
// degrades to absent when its label or element is missing.
func PlayerProfile(doc *goquery.Document, playerID string) (baseball.PlayerProfile, error) {
	nameBlock := doc.Find(profileNameSelector).First()
	name := text(nameBlock.Find("h1"))
	if name == nil {
		return baseball.PlayerProfile{}, &baseball.ExtractionError{Page: playerPage, Field: "name", Reason: "profile name absent"}
	}
	profile := baseball.PlayerProfile{
		PlayerID:      playerID,
		Name:          *name,
		NameKana:      kana(nameBlock.Find("rt")),
		UniformNumber: text(doc.Find(profileNumber)),
		BioText:       text(doc.Find(profileSummary)),
	}
	if src, ok := doc.Find(profilePhoto).First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		profile.PhotoURL = baseball.Ptr(strings.TrimSpace(src))
	}

	fields := ProfileFields(doc)
	if v, ok := fields[labelBirth]; ok {
		if d, ok := parseJPDate(v); ok {
			profile.BirthDate = &d
		}
	}
	profile.BirthPlace = field(fields, labelBirthPlace)
	profile.BloodType = field(fields, labelBloodType)
	profile.ThrowBat = field(fields, labelThrowBat)
	profile.DraftYear = field(fields, labelDraft)
	profile.CareerText = field(fields, labelCareer)
	if v, ok := fields[labelHeight]; ok {
		profile.HeightCM = digits(v)
	}
	if v, ok := fields[labelWeight]; ok {
		profile.WeightKG = digits(v)
	}
	if v, ok := fields[labelProYears]; ok {
		profile.ProYears = digits(v)
	}
	return profile, nil
}

// ProfileFields zips the profile labels with their values by position. Extra
// labels or values beyond the shorter list are ignored.
func ProfileFields(doc *goquery.Document) map[string]string {
	titles := texts(doc.Find(profileTitleSelector))
	values := texts(doc.Find(profileTextSelector))
	n := min(len(titles), len(values))
	out := make(map[string]string, n)
	for i := range n {
		out[titles[i]] = values[i]
	}
	return out
}

func field(fields map[string]string, label string) *string {
	v, ok := fields[label]
	if !ok || v == "" || v == "-" {
		return nil
	}
	return &v
}

// kana strips the surrounding brackets from the reading ("（やまだ）").
func kana(sel *goquery.Selection) *string {
	raw := text(sel)
	if raw == nil {
		return nil
	}
	r := []rune(*raw)
	if len(r) <= 2 {
		return nil
	}
	v := string(r[1 : len(r)-1])
	return &v
}
