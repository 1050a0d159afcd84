package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/skydaily/internal/daily"
	"github.com/pfrederiksen/skydaily/internal/logger"
)

const (
	treasureHeading = "今日の日替わり大キャンドル"
	seasonalHeading = "今日のシーズンキャンドル"
	questLinkText   = "今日のデイリークエスト"

	// The site does not name rotations; its images show every location.
	defaultRotation = "Rotation 1"

	maxQuests       = 4
	minQuestRunes   = 6
	imageSearchSpan = 5
)

var questHeader = regexp.MustCompile(`今日.*デイリークエスト|デイリークエスト.*(1[0-2]|[1-9])月`)

var (
	sectionKeywords = []string{"キャンドル", "闇の破片", "専用通貨", "イベント", "更新"}
	questNoise      = []string{"攻略", "掲示板", "目次", "トップ", "詳細", "▲"}
)

// topPage is what the 9-bit top page tells us.
type topPage struct {
	treasureRealm string
	treasureImage string
	seasonalRealm string
	seasonalImage string
	questURL      string
}

// FetchDailies collects the candle rotations and the translated daily quests.
// The quests come from a second page; when it cannot be found or fetched the
// candles are still returned with no quests.
func (s *Scraper) FetchDailies(ctx context.Context, now time.Time) (*daily.Dailies, error) {
	body, err := s.get(ctx, s.nineBitURL)
	if err != nil {
		return nil, fmt.Errorf("fetching 9-bit top page: %w", err)
	}

	top, err := parseTopPage(bytes.NewReader(body), s.nineBitURL)
	if err != nil {
		return nil, err
	}

	dailies := &daily.Dailies{
		Treasure: treasureCandles(top, now.In(s.location)),
		Seasonal: seasonalCandles(top),
	}

	quests, err := s.fetchQuests(ctx, top.questURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Daily quests unavailable", logger.Fields{"error": err.Error()})
	}
	dailies.Quests = quests

	return dailies, nil
}

func (s *Scraper) fetchQuests(ctx context.Context, questURL string) ([]string, error) {
	if questURL == "" {
		return nil, ErrNoQuestLink
	}

	body, err := s.get(ctx, questURL)
	if err != nil {
		return nil, fmt.Errorf("fetching quest page: %w", err)
	}

	raw, err := parseQuests(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	quests := make([]string, 0, len(raw))
	for _, q := range raw {
		quests = append(quests, daily.TranslateQuest(q))
	}
	return quests, nil
}

func treasureCandles(top *topPage, now time.Time) *daily.Candles {
	realm := top.treasureRealm
	if realm == "" {
		realm = daily.TreasureRealmFallback(now)
		logger.Debug("Treasure realm from date cycle", logger.Fields{"realm": realm})
	}
	return &daily.Candles{
		Realm:        realm,
		Rotation:     defaultRotation,
		Descriptions: daily.TreasureDescriptions(realm, defaultRotation),
		Images:       nonEmpty(top.treasureImage),
	}
}

func seasonalCandles(top *topPage) *daily.Candles {
	return &daily.Candles{
		Realm:        top.seasonalRealm,
		Rotation:     defaultRotation,
		Descriptions: daily.SeasonalDescriptions(top.seasonalRealm),
		Images:       nonEmpty(top.seasonalImage),
	}
}

func parseTopPage(r io.Reader, pageURL string) (*topPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	top := &topPage{}
	headings := doc.Find("h2, h3, h4")

	if h := headingContaining(headings, treasureHeading); h != nil {
		top.treasureRealm = daily.RealmFromText(h.Text())
		if top.treasureRealm == "" {
			if next := h.Next(); goquery.NodeName(next) == "p" {
				top.treasureRealm = daily.RealmFromText(next.Text())
			}
		}
		top.treasureImage = imageAfter(h, pageURL)
	}

	if h := headingContaining(headings, seasonalHeading); h != nil {
		top.seasonalRealm = daily.RealmFromText(h.Text())
		top.seasonalImage = imageAfter(h, pageURL)
	}

	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(a.Text(), questLinkText) {
			return true
		}
		if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
			top.questURL = resolveURL(pageURL, strings.TrimSpace(href))
			return false
		}
		return true
	})

	return top, nil
}

func headingContaining(headings *goquery.Selection, text string) *goquery.Selection {
	var found *goquery.Selection
	headings.EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.Contains(h.Text(), text) {
			found = h
			return false
		}
		return true
	})
	return found
}

// imageAfter returns the first image in the few siblings following h.
func imageAfter(h *goquery.Selection, pageURL string) string {
	curr := h.Next()
	for i := 0; i < imageSearchSpan && curr.Length() > 0; i++ {
		img := curr.Filter("img")
		if img.Length() == 0 {
			img = curr.Find("img").First()
		}
		if img.Length() > 0 {
			if src := imageSource(img); src != "" {
				return resolveURL(pageURL, src)
			}
		}
		curr = curr.Next()
	}
	return ""
}

// imageSource prefers the lazy-load attribute over a placeholder src.
func imageSource(img *goquery.Selection) string {
	if src, ok := img.Attr("data-src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	src, _ := img.Attr("src")
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "data:") {
		return ""
	}
	return src
}

// parseQuests collects up to maxQuests lines following the daily quest
// header, stopping at the next "today's ..." section.
func parseQuests(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var quests []string
	collecting := false

	for _, line := range strings.Split(selectionText(doc.Find("body")), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if questHeader.MatchString(line) {
			collecting = true
			quests = quests[:0]
			continue
		}
		if !collecting {
			continue
		}

		if containsAny(line, sectionKeywords) && (strings.Contains(line, "今日の") || strings.Contains(line, "更新履歴")) {
			break
		}
		if containsAny(line, questNoise) {
			continue
		}
		if utf8.RuneCountInString(line) >= minQuestRunes {
			quests = append(quests, line)
			if len(quests) >= maxQuests {
				break
			}
		}
	}

	return quests, nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
