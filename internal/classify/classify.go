// Package classify assigns notes to topical categories by keyword containment.
package classify

import (
	"strings"

	"github.com/starford/kbsite/internal/models"
)

// Categories, in the order the index page lists them.
var (
	Buddhism   = models.Category{Name: "佛學", Key: "buddhism"}
	Thinking   = models.Category{Name: "思維方法", Key: "thinking"}
	AI         = models.Category{Name: "AI技術", Key: "ai"}
	Claude     = models.Category{Name: "Claude_Code", Key: "claude"}
	Game       = models.Category{Name: "遊戲開發", Key: "game"}
	Security   = models.Category{Name: "資訊安全", Key: "security"}
	OpenSource = models.Category{Name: "開源生態", Key: "opensource"}
	Other      = models.Category{Name: "其他", Key: "other"}
)

type rule struct {
	category models.Category
	keywords []string
}

// rules are evaluated in order; the first rule with any matching keyword wins.
var rules = []rule{
	{Buddhism, []string{"佛", "楞嚴", "禪", "心經", "金剛", "維摩", "咒", "淨土", "法華", "教觀", "阿彌陀"}},
	{Game, []string{"遊戲", "Canvas遊戲", "HTML5遊戲", "正念記憶", "六根淨化", "貪吃蛇", "配對遊戲", "打字遊戲", "game"}},
	{Claude, []string{"Claude", "claude-code", "Claude Code", "Daily-Digest", "daily-digest", "Skill品質", "Hook", "Hooks"}},
	{AI, []string{"AI", "LLM", "GPT", "Gemini", "模型", "深度學習", "機器學習", "Agent", "LangGraph", "Anthropic", "DeepSeek", "Unsloth", "DensePose", "WiFi"}},
	{Security, []string{"安全", "SQL注入", "Cookie", "QA System", "security"}},
	{Thinking, []string{"思維", "邏輯", "哲學", "認知", "心智", "決策", "批判", "方法論", "費曼", "學習法", "洞見"}},
	{OpenSource, []string{"GitHub熱門", "開源專案", "GitHub趨勢"}},
}

// DefaultKeywords is the topical keyword list a note must hit to be published.
var DefaultKeywords = []string{
	"佛", "楞嚴", "禪", "心經", "金剛", "維摩", "淨土", "法華", "教觀", "阿彌陀",
	"思維", "邏輯", "哲學", "認知", "心智", "費曼", "批判",
	"AI", "LLM", "Claude", "GPT", "Agent", "Gemini", "模型", "深度學習", "機器學習",
	"程式", "資訊", "技術", "API", "MCP", "RAG", "Anthropic", "研究", "決策", "方法",
	"遊戲", "Canvas", "HTML5", "正念", "安全", "Hook", "Skill", "Log", "優化",
	"GitHub", "WiFi", "Unsloth", "JSONL", "QA", "DensePose", "DeepSeek",
	"Daily-Digest", "daily-digest", "知識庫", "系統", "洞見",
}

// Classify returns the category for a note. Matching is case-sensitive
// substring containment against the title followed by the comma-joined tags.
func Classify(title string, tags []string) models.Category {
	combined := title + strings.Join(tags, ",")
	for _, r := range rules {
		if containsAny(combined, r.keywords) {
			return r.category
		}
	}
	return Other
}

// Relevant reports whether a note belongs on the site at all: it needs a
// title and at least one keyword in "title tag1,tag2".
func Relevant(title string, tags []string, keywords []string) bool {
	if title == "" {
		return false
	}
	return containsAny(title+" "+strings.Join(tags, ","), keywords)
}

// Order returns every category in listing order.
func Order() []models.Category {
	return []models.Category{Buddhism, Thinking, AI, Claude, Game, Security, OpenSource, Other}
}

// ByName looks up a category by display name.
func ByName(name string) (models.Category, bool) {
	for _, c := range Order() {
		if c.Name == name {
			return c, true
		}
	}
	return models.Category{}, false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
