package record

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMessage is shown for categories without a template.
const DefaultMessage = "信号を捕捉。データの完全性を確認中。"

// NarrativeHeader heads every auto-generated narrative.
const NarrativeHeader = "OBSERVATION SIGNAL RECEIVED"

var categoryMessages = map[string]string{
	"FIELD":       "観測手記を検知。テキスト・ノードよりデータの移送を確認した。",
	"SONIC":       "音響信号を受信。周波数解析の結果、有効なパターンを検出した。",
	"FRAGMENTS":   "視覚断片を抽出。再構成された光の軌跡をアーカイブへ格納した。",
	"MOTION":      "動的シーケンスを記録。境界点における事象の連続性を確認した。",
	"COEXISTENCE": "共鳴パターンの変動を観測。境界領域における相互作用を解析中。",
	"OBSERVERS":   "観測体からの信号を解析。個体パスの追跡とデータ集積を継続する。",
	"ARCHIVE":     "全データの統合完了。マスターアーカイブへの同期を実行した。",
}

// Categories returns the categories that have a template, in display order.
func Categories() []string {
	return []string{"FIELD", "SONIC", "FRAGMENTS", "MOTION", "COEXISTENCE", "OBSERVERS", "ARCHIVE"}
}

// Message returns the template text for a category. Unknown categories get
// DefaultMessage.
func Message(category string) string {
	if msg, ok := categoryMessages[category]; ok {
		return msg
	}
	return DefaultMessage
}

var upper = cases.Upper(language.Und)

// NewNarrative builds the narrative block for a signal.
func NewNarrative(source Source, kind Kind, url string) *Narrative {
	return &Narrative{
		Header: NarrativeHeader,
		Lines: []string{
			"外界信号を受信。",
			"記録を開始します。",
			"観測チャネル：" + upper.String(string(source)),
			"対象：" + upper.String(string(kind)),
			"座標：<" + url + ">",
		},
	}
}
