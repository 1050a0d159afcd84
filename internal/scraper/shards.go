package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/skydaily/internal/daily"
	"github.com/pfrederiksen/skydaily/internal/logger"
)

var shardDatePattern = regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`)

// Images are tried in this order; the first one present wins.
var mapImageSelectors = []string{
	`img[src*="map_varient"]`,
	`img[src*="memory"]`,
	`img.map_clement`,
}

var mapCardHeadings = []string{"克萊門特的地圖", "SHATTERING SHARD LOCATION", "Clement's Map"}

// ShardPageURL returns the shard site page for date's calendar day.
func (s *Scraper) ShardPageURL(date time.Time) string {
	return fmt.Sprintf("%s/%s/%04d/%02d/%02d",
		strings.TrimRight(s.shardURL, "/"), s.shardLang, date.Year(), int(date.Month()), date.Day())
}

// FetchShard fetches and parses the shard page for date's calendar day.
func (s *Scraper) FetchShard(ctx context.Context, date time.Time) (*daily.Shard, error) {
	date = date.In(s.location)
	pageURL := s.ShardPageURL(date)

	body, err := s.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching shard page: %w", err)
	}

	return parseShard(bytes.NewReader(body), pageURL, date)
}

// FetchShardForecast returns today's shard, or when today has none the first
// shard day within ForecastDays, marked with its ForecastDate. If no later day
// has a shard either, today's no-shard record is returned.
func (s *Scraper) FetchShardForecast(ctx context.Context, now time.Time) (*daily.Shard, error) {
	today, err := s.FetchShard(ctx, now)
	if err != nil {
		return nil, err
	}
	if !today.NoShard {
		return today, nil
	}

	local := now.In(s.location)
	for i := 1; i <= ForecastDays; i++ {
		day := local.AddDate(0, 0, i)
		next, err := s.FetchShard(ctx, day)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping forecast day", logger.Fields{
				"date":  day.Format("2006-01-02"),
				"error": err.Error(),
			})
			continue
		}
		if !next.NoShard {
			next.ForecastDate = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
			return next, nil
		}
	}

	return today, nil
}

// parseShard extracts the shard record from one day's page. date supplies the
// calendar day the eruption times belong to.
func parseShard(r io.Reader, pageURL string, date time.Time) (*daily.Shard, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	bodyText := selectionText(doc.Find("body"))
	dateText := shardDateText(doc)

	if daily.IsNoShardText(bodyText) {
		return daily.NoShardRecord(daily.CleanDate(dateText)), nil
	}

	typeText := textOr(doc.Find(".shard-Type").First(), "無")
	mapText := textOr(doc.Find(".shard-Map").First(), "未知")
	statusText := selectionText(doc.Find(".shard-Countdown").First())
	fullText := strings.Join([]string{dateText, typeText, mapText, statusText}, "\n")

	ranges := eruptionColumns(doc)
	if len(ranges) == 0 {
		ranges = daily.FindEruptionRanges(fullText)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	shard := &daily.Shard{
		Date:      daily.CorrectDateLag(daily.CleanDate(dateText), date),
		Type:      daily.DetectShardType(fullText),
		Map:       daily.ExtractMap(fullText, mapText),
		Rewards:   daily.ExtractRewards(selectionText(doc.Find(".shard-Rewards").First()), fullText),
		ImageURL:  mapImage(doc, pageURL),
		Eruptions: daily.ParseEruptions(ranges, day),
	}
	return shard, nil
}

// shardDateText returns the .shard-Date block or, failing that, the first
// heading or div that carries a full date.
func shardDateText(doc *goquery.Document) string {
	if sel := doc.Find(".shard-Date").First(); sel.Length() > 0 {
		return selectionText(sel)
	}

	var found string
	doc.Find("h1, h2, h3, div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := selectionText(sel)
		if shardDatePattern.MatchString(text) {
			found = text
			return false
		}
		return true
	})
	return found
}

// eruptionColumns reads "start - end" from each countdown column.
func eruptionColumns(doc *goquery.Document) []string {
	var ranges []string
	doc.Find(".shard-Countdown-columns .column").Each(func(_ int, col *goquery.Selection) {
		start := strings.TrimSpace(col.Find(".start-time").First().Text())
		end := strings.TrimSpace(col.Find(".end-time").First().Text())
		if start != "" && end != "" {
			ranges = append(ranges, start+" - "+end)
		}
	})
	return ranges
}

// mapImage locates the landing map image and resolves it against pageURL.
func mapImage(doc *goquery.Document, pageURL string) string {
	var img *goquery.Selection
	for _, selector := range mapImageSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			img = sel
			break
		}
	}

	// Headings before divs, so a page-wide wrapper div is the last resort.
	for _, selector := range []string{"h1, h2, h3", "div"} {
		if img != nil {
			break
		}
		doc.Find(selector).EachWithBreak(func(_ int, heading *goquery.Selection) bool {
			if !containsAny(heading.Text(), mapCardHeadings) {
				return true
			}
			card := heading.Closest(".column, .card")
			if card.Length() == 0 {
				card = heading.Parent()
			}
			if sel := card.Find("img").First(); sel.Length() > 0 {
				img = sel
				return false
			}
			return true
		})
	}

	if img == nil {
		return ""
	}
	src, ok := img.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return ""
	}
	return resolveURL(pageURL, strings.TrimSpace(src))
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func textOr(sel *goquery.Selection, fallback string) string {
	if sel.Length() == 0 {
		return fallback
	}
	if text := selectionText(sel); text != "" {
		return text
	}
	return fallback
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
