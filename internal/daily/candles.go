package daily

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Realm keys, as used by the candle tables.
const (
	RealmIsle      = "Isle of Dawn"
	RealmPrairie   = "Daylight Prairie"
	RealmForest    = "Hidden Forest"
	RealmValley    = "Valley of Triumph"
	RealmWasteland = "Golden Wasteland"
	RealmVault     = "Vault of Knowledge"
)

var realmLabels = map[string]string{
	RealmIsle:      "晨島",
	RealmPrairie:   "雲野",
	RealmForest:    "雨林",
	RealmValley:    "霞谷",
	RealmWasteland: "暮土",
	RealmVault:     "禁閣",
}

// RealmLabel returns the Traditional Chinese realm name, or realm itself.
func RealmLabel(realm string) string {
	if label, ok := realmLabels[realm]; ok {
		return label
	}
	return realm
}

// realmKeywords maps Japanese place names to realm keys; first match wins.
var realmKeywords = []struct {
	keyword string
	realm   string
}{
	{"草原", RealmPrairie},
	{"雨林", RealmForest},
	{"峡谷", RealmValley},
	{"暮土", RealmWasteland},
	{"捨てられた地", RealmWasteland},
	{"墓場", RealmWasteland},
	{"書庫", RealmVault},
}

// RealmFromText finds the realm named in a Japanese heading or paragraph.
func RealmFromText(text string) string {
	for _, k := range realmKeywords {
		if strings.Contains(text, k.keyword) {
			return k.realm
		}
	}
	return ""
}

// treasureCycle is the five-realm treasure candle cycle, anchored so that
// 2026-01-05 lands on index 3.
var (
	treasureCycle  = []string{RealmPrairie, RealmForest, RealmValley, RealmWasteland, RealmVault}
	treasureAnchor = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
)

// TreasureRealmFallback predicts the treasure candle realm for day's date.
func TreasureRealmFallback(day time.Time) string {
	y, m, d := day.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(date.Sub(treasureAnchor).Hours() / 24)
	idx := ((days+3)%len(treasureCycle) + len(treasureCycle)) % len(treasureCycle)
	return treasureCycle[idx]
}

var rotationNumber = regexp.MustCompile(`\d+`)

// TreasureDescriptions returns the candle locations for a realm's rotation.
// Combined rotations such as "Rotation 1 and 2" list each rotation in turn.
func TreasureDescriptions(realm, rotation string) []string {
	table, ok := treasureCandles[realm]
	if !ok {
		return nil
	}
	if descs, ok := table[rotation]; ok {
		return descs
	}

	var out []string
	for _, n := range rotationNumber.FindAllString(rotation, -1) {
		out = append(out, table["Rotation "+n]...)
	}
	if len(out) > 0 {
		return out
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(k, rotation) || strings.Contains(rotation, k) {
			return table[k]
		}
	}
	return nil
}

// SeasonalDescriptions returns the seasonal candle locations for a realm.
func SeasonalDescriptions(realm string) []string {
	return seasonalCandles[realm]
}

var treasureCandles = map[string]map[string][]string{
	RealmIsle: {
		"Permanent": {"晨島沒有每日輪替的大蠟燭，只有永久蠟燭點 (None)"},
	},
	RealmPrairie: {
		"Rotation 1": {
			"雲野大廳 (Social Space)：左前方地圖神像附近",
			"蝴蝶平原 (Butterfly Fields)：左側小山丘底部靠近隱藏洞穴入口",
			"蝴蝶平原：右側通往三塔圖的雲洞入口前",
			"雲野神殿：神殿內",
		},
		"Rotation 2": {
			"雲野大廳：右側先祖石碑旁",
			"蝴蝶平原：中央大平原，靠近八人門（Cozy Hideout）的入口左側",
			"三塔圖 (Three Towers)：左側的山丘頂部",
			"浮島圖 (Floating Islands)：主島後方雲層邊緣",
		},
		"Rotation 3": {
			"雲野大廳：中央神壇後方，前往蝴蝶平原的雲洞入口",
			"蝴蝶平原：中央偏右的大石頭旁邊",
			"三塔圖：右側山丘頂部",
			"浮島圖：前往神殿的雲洞入口前",
		},
	},
	RealmForest: {
		"Rotation 1": {
			"雨林大廳：左側先祖石碑旁",
			"靜謐庭院 (Brook)：第一扇雙人門後，烤火點旁邊",
			"螢光森林 (Walled Area)：進入後直走左側涼亭",
			"密林遺跡 (Elevated Clearing)：出口大門前，被雨淋到的地方",
		},
		"Rotation 2": {
			"雨林大廳 (Social Space)：右側先祖石碑旁",
			"靜謐庭院：第一個亭子（有長椅的）頂部",
			"螢光小菇地圖 (Walled Area with Boats)：進入區域後右側帶屋簷的走廊上",
			"樹木繁茂區域 (Treed Area)：通往斷橋的最後一個樹洞內",
		},
		"Rotation 3": {
			"雨林大廳 (Social Space)：左前方地圖神像旁",
			"靜謐庭院：往螢光森林前進的路上，左側的樹洞裡",
			"樹狀隧道 (Tree Tunnels)：通往斷橋區域 (Forest End) 的小樹洞入口內",
			"雨林終點 (Forest End)：湖邊後方",
		},
	},
	RealmValley: {
		"Rotation 1": {
			"社交空間/大廳：位於區域左側，靠近衣櫃旁邊。",
			"溜冰場：位於區域中央，通往霞光城橋樑上。",
			"霞光城/城堡：通過第一個拱門後，位於第二個平臺上。",
			"競技場/體育館：位於左側邊緣，看臺底部。",
		},
		"Rotation 2": {
			"社交空間/大廳：位於區域右側，滑道起點處。",
			"溜冰場：位於冰面上，在橋樑的左側。",
			"霞光城/城堡：經過最高的拱門後，位於第二個平臺上。",
			"競技場/體育館：位於右側邊緣，看臺底部。",
		},
	},
	RealmWasteland: {
		"Rotation 1": {
			"暮土大廳 (Social Space)：前往第一張圖的雙人門前",
			"破敗神殿 (Broken Temple)：入口右側",
			"四龍圖 (Graveyard)：第二個有螃蟹點燃架的小亭子旁",
			"戰場 (Battlefield)：出口城牆邊緣",
		},
		"Rotation 2": {
			"暮土大廳：左側先祖石碑旁",
			"破敗神殿：神殿內右側角落",
			"四龍圖：中央偏左的石柱後面",
			"螃蟹平原 (Crab Fields)：地圖中央的建築廢墟頂部",
		},
		"Rotation 3": {
			"暮土大廳：右側樓梯下方",
			"破敗神殿：神殿內左側角落",
			"四龍圖：進入後左前方第一根柱子後方",
			"戰場：被黑水淹沒的區域，右側的傾斜建築結構上",
		},
	},
	RealmVault: {
		"Rotation 1": {
			"禁閣大廳 (Social Space)：右側先祖石碑旁",
			"第一層：四人門電梯旁",
			"第三層：中心浮台旁邊",
			"第五層：前往頂樓神殿的路上",
		},
		"Rotation 2": {
			"禁閣大廳：左側地圖神像旁",
			"第一層：四人門內，點燃蠟燭後出現的隱藏燭火",
			"第四層：圖書館區域右側，光之子附近",
			"第五層：中心浮台上方，隱藏空間入口處",
		},
	},
}

var seasonalCandles = map[string][]string{
	RealmPrairie: {
		"雲野大廳：前往蝴蝶平原的雲洞入口左側。",
		"雲野大廳：前往蝴蝶平原的雲洞入口右側。",
		"蝴蝶平原（第一張圖）：進入後左側山丘底部草地。",
		"蝴蝶平原（第一張圖）：右側前往三塔圖洞穴的入口前。",
	},
	RealmForest: {
		"雨林大廳：左側先祖石碑附近。",
		"雨林大廳：右側先祖石碑附近。",
		"靜謐庭院（第一張圖）：進入區域後的第一個亭子下方。",
		"螢光森林（第二張圖）：進入後，在右側有屋簷的走廊起點。",
	},
	RealmValley: {
		"霞谷大廳：左側樓梯旁。",
		"霞谷大廳：右側樓梯旁。",
		"滑冰場（第一張圖）：中央競技場入口（雙人門）右側。",
		"滑冰場（第一張圖）：左側前往隱藏圖（有螃蟹的洞）的通道附近。",
	},
	RealmWasteland: {
		"暮土大廳：前往第一張圖的雙人門左側。",
		"暮土大廳：前往第一張圖的雙人門右側。",
		"破敗神殿（第一張圖）：神殿入口正前方。",
		"破敗神殿（第一張圖）：神殿右側建築殘骸後方。",
	},
	RealmVault: {
		"禁閣大廳：左側先祖石碑附近。",
		"禁閣大廳：右側地圖神像附近。",
		"第一層：四人門所在的浮島邊緣。",
		"第二層：中心高塔的樓梯底部。",
	},
}
