package daily

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var noShardMarkers = []string{"No Shard", "沒有碎石", "沒有紅色碎石", "今天沒有"}

var (
	landingPattern  = regexp.MustCompile(`降落在\s*(.+?)(?:\n|$|獎勵)`)
	rewardsPattern  = regexp.MustCompile(`(獎勵.+?)(?:\n|$)`)
	datePattern     = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	weekdayPattern  = regexp.MustCompile(`星期[日一二三四五六]`)
	eruptionPattern = regexp.MustCompile(`([上下]午\d{1,2}:\d{2}(?::\d{2})?)\s*-\s*([上下]午\d{1,2}:\d{2}(?::\d{2})?)`)
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "星期一",
	time.Tuesday:   "星期二",
	time.Wednesday: "星期三",
	time.Thursday:  "星期四",
	time.Friday:    "星期五",
	time.Saturday:  "星期六",
	time.Sunday:    "星期日",
}

// IsNoShardText reports whether the page text announces a day without shards.
func IsNoShardText(text string) bool {
	for _, marker := range noShardMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// DetectShardType reads the shard colour from the page wording.
func DetectShardType(text string) ShardType {
	switch {
	case strings.Contains(text, "紅色碎石"):
		return ShardRed
	case strings.Contains(text, "黑色碎石"):
		return ShardBlack
	default:
		return ShardUnknown
	}
}

// ExtractMap returns the landing location from "降落在 …" in text, or the
// short fallback label when the sentence is missing.
func ExtractMap(text, fallback string) string {
	if m := landingPattern.FindStringSubmatch(text); m != nil {
		if loc := strings.TrimSpace(m[1]); loc != "" {
			return loc
		}
	}
	fallback = strings.TrimSpace(fallback)
	if fallback != "" && fallback != "未知" && utf8.RuneCountInString(fallback) < 20 {
		return fallback
	}
	return "未知地點"
}

// ExtractRewards keeps the scraped rewards unless they are empty, in which
// case the "獎勵…" line is taken from text.
func ExtractRewards(rewards, text string) string {
	rewards = strings.TrimSpace(rewards)
	if utf8.RuneCountInString(rewards) >= 2 {
		return rewards
	}
	if m := rewardsPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return rewards
}

// FindEruptionRanges pulls "上午HH:MM - 下午HH:MM" ranges out of free text.
func FindEruptionRanges(text string) []string {
	matches := eruptionPattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1]+" - "+m[2])
	}
	return out
}

// CleanDate reduces a scraped date block to "YYYY年M月D日 星期X".
func CleanDate(raw string) string {
	clean := strings.TrimSpace(strings.SplitN(raw, "\n", 2)[0])
	if m := datePattern.FindString(raw); m != "" {
		clean = m
		if wd := weekdayPattern.FindString(raw); wd != "" {
			clean += " " + wd
		}
	}
	return clean
}

// CorrectDateLag rewrites a date that names yesterday to today. The shard
// site rolls over on server time, which trails the display zone.
func CorrectDateLag(date string, now time.Time) string {
	m := datePattern.FindStringSubmatch(date)
	if m == nil {
		return date
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	yesterday := now.AddDate(0, 0, -1)
	if time.Month(month) != yesterday.Month() || day != yesterday.Day() {
		return date
	}
	return fmt.Sprintf("%d年%d月%d日 %s", now.Year(), int(now.Month()), now.Day(), weekdayNames[now.Weekday()])
}
