package daily

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

var spaceRun = regexp.MustCompile(`[ \t\x{3000}]+`)

// NormalizeText folds full-width ASCII to its narrow form (and half-width
// katakana to full width), collapses runs of spaces and trims.
func NormalizeText(s string) string {
	s = width.Fold.String(s)
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type term struct {
	from, to string
}

// questTerms maps Japanese quest wording to Traditional Chinese.
var questTerms = []term{
	// Realms
	{"孤島", "晨島"}, {"草原", "雲野"}, {"雨林", "雨林"}, {"峡谷", "霞谷"},
	{"捨てられた地", "暮土"}, {"書庫", "禁閣"},

	{"クエスト", "任務"}, {"デイリー", "每日"},

	// Spirits
	{"採集者", "收集者"}, {"光採取者", "光芒收集者"}, {"採取者", "收集者"},
	{"日光浴者", "日光浴者"},
	{"笑う", "偷笑"}, {"ダブルタッチ", "擊掌"}, {"くつろぐ", "放鬆"},
	{"笑う光採取者", "偷笑光芒收集者"},
	{"ダブルタッチの光採取者", "擊掌光芒收集者"},
	{"くつろぐ日光浴者", "放鬆日浴者"},

	{"精霊", "先祖"}, {"フレンド", "好友"}, {"プレイヤー", "玩家"},
	{"キャンドル", "蠟燭"}, {"星のキャンドル", "昇華蠟燭"},
	{"シーズンキャンドル", "季節蠟燭"},
	{"赤色の光", "紅光"}, {"青色の光", "藍光"}, {"水色の光", "青光"},
	{"緑色の光", "綠光"}, {"紫色の光", "紫光"}, {"橙色の光", "橙光"},
	{"光の探求者", "光之探求者"},
	{"ハイタッチ", "擊掌"}, {"ハグ", "擁抱"}, {"おんぶ", "背背"}, {"チャット", "聊天"},
	{"ジェスチャー", "動作"}, {"使用する", "使用"},

	// Forest
	{"雨林で光をつかまえる", "抓住雨林之光"},
	{"光のキノコにエナジーを回復してもらう", "透過光菇重新恢復能量"},
	{"雨林の雨が途切れる地で瞑想する", "在樹林高處冥想"},
	{"雨が途切れる地", "樹林高處"},
	{"大樹の案内人の食卓を整える", "整理大樹嚮導(歸屬季)的長桌"},
	{"雨林の高台広場にある想いを編む先祖の食卓を片付ける", "在雨林的樹林高處整理歸屬季的先祖圓桌"},
	{"高台広場", "樹林高處"}, {"にある", "在"},
	{"想いを編む", "歸屬季的"}, {"先祖の食卓", "先祖圓桌"}, {"を片付ける", "整理"},
	{"食卓", "長桌/餐桌"}, {"整える", "整理/打掃"},
	{"テーブル", "長桌"},
	{"雨林を訪れしばしの間若木を愛でる", "欣賞一下雨林小樹苗"},
	{"雨林で精霊の記憶を呼び起こす", "重溫一位雨林先靈的記憶"},

	// Valley
	{"峡谷を訪れしばしの間若木を愛でる", "欣賞一下霞谷小樹苗"},
	{"峡谷で光をつかまえる", "抓住霞谷之光"},
	{"峡谷で精霊の記憶を呼び起こす", "重溫一位霞谷先靈的記憶"},

	// Wasteland
	{"捨てられた地を訪れしばしの間若木を愛でる", "欣賞一下暮土小樹苗"},
	{"捨てられた地で光をつかまえる", "抓住暮土之光"},
	{"捨てられた地で精霊の記憶を呼び起こす", "重溫一位暮土先靈的記憶"},
	{"墓場で精霊の記憶を呼び起こす", "重溫一位暮土先靈的記憶"},

	// Prairie
	{"草原を訪れしばしの間若木を愛でる", "欣賞一下雲野小樹苗"},
	{"草原で光をつかまえる", "抓住雲野之光"},
	{"草原で精霊の記憶を呼び起こす", "重溫一位雲野先靈的記憶"},

	// Vault
	{"書庫を訪れしばしの間若木を愛でる", "欣賞一下禁閣小樹苗"},
	{"書庫で光をつかまえる", "抓住禁閣之光"},
	{"書庫で精霊の記憶を呼び起こす", "重溫一位禁閣先靈的記憶"},

	{"精霊の記憶を呼び起こす", "重溫一位先靈的記憶"},
	{"20本のキャンドルに火を灯す", "點亮 20 根蠟燭"},
	{"キャンドルに火を灯す", "點亮蠟燭"},
	{"20本", "20根"},
	{"本", "根"},

	{"エナジー", "能量"}, {"回復する", "恢復"}, {"回復", "恢復"},
	{"してもらう", ""}, {"をつかまえる", "抓住"},
	{"神殿", "神廟"}, {"広場", "廣場"}, {"参道", "參道"},
	{"小川", "小溪"}, {"ツリーハウス", "樹屋"},
	{"する", ""},

	{"記憶を呼び起こすクエスト", "重溫先祖美好回憶"},
	{"記憶を呼び起こす", "重溫先祖美好回憶"},
	{"追体験", "重溫先祖美好回憶"},

	{"光をつかまえる", "抓住之光"},
	{"雨林の光", "雨林之光"},
	{"の光をつかまえる", "之光"},

	{"集める", "收集30滴燭火"},
	{"灯りを", "點燃"}, {"灯す", "點燃"},
	{"瞑想", "冥想"},
	{"スケーター", "滑冰者"},

	{"若木", "花樹/幼苗"}, {"愛でる", "賞花(在旁待60秒)"},
	{"虹", "彩虹"}, {"眺める", "觀賞"},
	{"カニ", "螃蟹"}, {"倒す", "掀翻5隻"}, {"気絶", "掀翻"},
	{"暗黒竜", "冥龍"}, {"対峙", "面對"},
	{"マンタ", "遙鯤"}, {"蝕む闇", "黑暗植物"}, {"溶かす", "燒掉10株"},
	{"光を捕まえる", "捕捉光芒"},
	{"メッセージ", "留言"}, {"キャンドルボート", "紙船/蠟燭"},
	{"ギフト", "禮物"}, {"送る", "送出心火"},
	{"鳥", "鳥"},
	{"手をつなぐ", "牽手"}, {"グループ", "隊伍"},
	{"精霊にかえる", "回歸天際 (向嚮導/先祖回報)"},
	{"会う", "拜訪/見面"},
	{"座る", "坐下"}, {"ベンチ", "長椅"}, {"交流", "交流"},
	{"の", "的"}, {"で", "在"}, {"と", "和"},
}

// questCleanup runs in order; later pairs see the output of earlier ones.
var questCleanup = []term{
	{"在在", "在"},
	{"的在", "在"},
	{"任務任務", "任務"},
	{"重溫美好回憶先祖", "重溫先祖美好回憶"},
	{"重溫先祖美好回憶任務", "重溫先祖美好回憶"},
}

// sortedQuestTerms is questTerms ordered longest first so a fragment never
// rewrites the inside of a longer phrase.
var sortedQuestTerms = func() []term {
	out := make([]term, len(questTerms))
	copy(out, questTerms)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].from) > utf8.RuneCountInString(out[j].from)
	})
	return out
}()

// TranslateQuest rewrites a Japanese daily quest in Traditional Chinese.
func TranslateQuest(text string) string {
	text = NormalizeText(text)

	if strings.Contains(text, "30個") && strings.Contains(text, "集める") {
		return "收集 30 滴燭火"
	}

	for _, t := range sortedQuestTerms {
		text = strings.ReplaceAll(text, t.from, t.to)
	}

	return cleanQuest(text)
}

func cleanQuest(text string) string {
	for _, t := range questCleanup {
		text = strings.ReplaceAll(text, t.from, t.to)
	}
	return text
}
