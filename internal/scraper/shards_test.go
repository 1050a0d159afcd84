package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/skydaily/internal/daily"
)

const redShardPage = `<html><body>
<div class="shard-Date">2026年1月5日 星期一</div>
<div class="shard-Type">紅色碎石</div>
<div class="shard-Map">暮土 戰場</div>
<div class="shard-Countdown">紅色碎石將降落在 暮土戰場
獎勵可達 3.5 支昇華蠟燭</div>
<div class="shard-Rewards">3.5 支昇華蠟燭</div>
<div class="shard-Countdown-columns">
  <div class="column"><span class="start-time">下午06:00:00</span><span class="end-time">下午10:00:00</span></div>
  <div class="column"><span class="start-time">上午10:00:00</span><span class="end-time">下午02:00:00</span></div>
</div>
<div class="card"><h3>克萊門特的地圖</h3><img src="/images/map_varient/wasteland.webp"></div>
</body></html>`

const noShardPage = `<html><body>
<div class="shard-Date">2026年1月6日 星期二</div>
<p>今天沒有碎石</p>
</body></html>`

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestShardPageURL(t *testing.T) {
	s := NewWithOptions(Options{ShardURL: "https://shards.example/", ShardLang: "ja"})
	want := "https://shards.example/ja/2026/01/05"
	if got := s.ShardPageURL(day("2026-01-05")); got != want {
		t.Errorf("ShardPageURL() = %q, want %q", got, want)
	}
}

func TestParseShard(t *testing.T) {
	pageURL := "https://shards.example/zh-TW/2026/01/05"
	shard, err := parseShard(strings.NewReader(redShardPage), pageURL, day("2026-01-05"))
	if err != nil {
		t.Fatalf("parseShard() error = %v", err)
	}

	if shard.NoShard {
		t.Fatal("NoShard should be false")
	}
	if shard.Date != "2026年1月5日 星期一" {
		t.Errorf("Date = %q", shard.Date)
	}
	if shard.Type != daily.ShardRed {
		t.Errorf("Type = %s, want red", shard.Type)
	}
	if shard.Map != "暮土戰場" {
		t.Errorf("Map = %q", shard.Map)
	}
	if shard.Rewards != "3.5 支昇華蠟燭" {
		t.Errorf("Rewards = %q", shard.Rewards)
	}
	if shard.ImageURL != "https://shards.example/images/map_varient/wasteland.webp" {
		t.Errorf("ImageURL = %q", shard.ImageURL)
	}

	if len(shard.Eruptions) != 2 {
		t.Fatalf("Eruptions = %d, want 2", len(shard.Eruptions))
	}
	first := shard.Eruptions[0]
	if first.Range() != "上午10:00:00 - 下午02:00:00" {
		t.Errorf("first eruption = %q", first.Range())
	}
	if !first.Start.Equal(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("first start = %s", first.Start)
	}
}

func TestParseShard_Fallbacks(t *testing.T) {
	page := `<html><body>
<h2>2026年1月4日 星期日</h2>
<div class="shard-Countdown">黑色碎石 下午07:38:40 - 下午11:30:00</div>
<div class="column"><h3>SHATTERING SHARD LOCATION</h3><img src="https://cdn.example/forest.png"></div>
</body></html>`

	shard, err := parseShard(strings.NewReader(page), "https://shards.example/zh-TW/2026/01/05", day("2026-01-05"))
	if err != nil {
		t.Fatalf("parseShard() error = %v", err)
	}

	if shard.Date != "2026年1月5日 星期一" {
		t.Errorf("Date = %q, want lag-corrected date", shard.Date)
	}
	if shard.Type != daily.ShardBlack {
		t.Errorf("Type = %s, want black", shard.Type)
	}
	if shard.Map != "未知地點" {
		t.Errorf("Map = %q, want 未知地點", shard.Map)
	}
	if len(shard.Eruptions) != 1 || shard.Eruptions[0].Range() != "下午07:38:40 - 下午11:30:00" {
		t.Errorf("Eruptions = %+v", shard.Eruptions)
	}
	if shard.ImageURL != "https://cdn.example/forest.png" {
		t.Errorf("ImageURL = %q", shard.ImageURL)
	}
}

func TestParseShard_NoShard(t *testing.T) {
	shard, err := parseShard(strings.NewReader(noShardPage), "https://shards.example/", day("2026-01-06"))
	if err != nil {
		t.Fatalf("parseShard() error = %v", err)
	}
	if !shard.NoShard || shard.Type != daily.ShardNone {
		t.Errorf("shard = %+v, want no-shard record", shard)
	}
	if shard.Date != "2026年1月6日 星期二" {
		t.Errorf("Date = %q", shard.Date)
	}
}

// shardServer serves pages by path; missing paths get the no-shard page and
// paths mapped to "" return 500.
func shardServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		switch {
		case !ok:
			w.Write([]byte(noShardPage)) // nolint:errcheck
		case page == "":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(page)) // nolint:errcheck
		}
	}))
}

func TestFetchShard(t *testing.T) {
	server := shardServer(t, map[string]string{"/zh-TW/2026/01/05": redShardPage})
	defer server.Close()

	shard, err := testScraper(server.URL).FetchShard(context.Background(), time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchShard() error = %v", err)
	}
	if shard.Type != daily.ShardRed {
		t.Errorf("Type = %s", shard.Type)
	}
	if !strings.HasPrefix(shard.ImageURL, server.URL) {
		t.Errorf("ImageURL = %q, want it resolved against %s", shard.ImageURL, server.URL)
	}
}

func TestFetchShard_HTTPError(t *testing.T) {
	server := shardServer(t, map[string]string{"/zh-TW/2026/01/05": ""})
	defer server.Close()

	if _, err := testScraper(server.URL).FetchShard(context.Background(), day("2026-01-05")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetchShardForecast(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		pages        map[string]string
		wantNoShard  bool
		wantForecast string
	}{
		{
			name:  "today has a shard",
			pages: map[string]string{"/zh-TW/2026/01/05": redShardPage},
		},
		{
			name:         "forecast skips failing days",
			pages:        map[string]string{"/zh-TW/2026/01/06": "", "/zh-TW/2026/01/07": redShardPage},
			wantForecast: "2026-01-07",
		},
		{
			name:        "no shard all week",
			pages:       map[string]string{},
			wantNoShard: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := shardServer(t, tt.pages)
			defer server.Close()

			shard, err := testScraper(server.URL).FetchShardForecast(context.Background(), now)
			if err != nil {
				t.Fatalf("FetchShardForecast() error = %v", err)
			}

			if shard.NoShard != tt.wantNoShard {
				t.Errorf("NoShard = %v, want %v", shard.NoShard, tt.wantNoShard)
			}
			gotForecast := ""
			if shard.IsForecast() {
				gotForecast = shard.ForecastDate.Format("2006-01-02")
			}
			if gotForecast != tt.wantForecast {
				t.Errorf("ForecastDate = %q, want %q", gotForecast, tt.wantForecast)
			}
		})
	}
}
