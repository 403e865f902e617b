package settings

import (
	"strings"
	"unicode/utf16"
)

// DefaultPrompt is used until the user stores their own prompt.
const DefaultPrompt = `說明這家公司的主要業務範圍、主要客戶。
是否為集團的母公司或子公司。
若為母公司則詳細列出相關子公司與子公司各家近期的股價表現狀況(列表)。
判斷是否有明顯季節性循環。

比較最近兩季 "營運現金"、"營業利益"、"自由現金" 三項 🟢正數 與 🔴負數 的狀態關係(意涵)，做成表格，欄位為 "項目"、"Qx"、"Qx-1""意涵"，最新的一季列在右邊欄位，前一季列在左邊欄位。
最後在表格外用文字簡述這個表格結論.

確切說明近10天股價漲跌表現的原因。`

// PromptExportName is the file name used when exporting the prompt.
const PromptExportName = "附加提示詞.txt"

// IsPromptOnly reports whether text carries nothing but the prompt itself.
// Trimmed lengths are compared as well as contents, so a capture of the same
// length as the prompt is treated as boilerplate.
func (p PromptConfig) IsPromptOnly(text string) bool {
	t := strings.TrimSpace(text)
	prompt := strings.TrimSpace(p.AdditionalPrompt)
	return textLen(t) == textLen(prompt) || t == prompt
}

// textLen counts UTF-16 code units, the length the page itself reports.
func textLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}
