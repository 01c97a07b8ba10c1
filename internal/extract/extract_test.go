package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tableTokenizer replays a canned morpheme table, keyed by surface order.
type tableTokenizer struct {
	tokens []Token
}

func (t *tableTokenizer) Tokenize(string) []Token { return t.tokens }

func noun(surface, sub, sub2 string) Token {
	return Token{Surface: surface, Features: []string{"名詞", sub, sub2, "*"}}
}

func TestExtractRegionNouns(t *testing.T) {
	tok := &tableTokenizer{tokens: []Token{
		noun("箱根", "固有名詞", "地域"),
		{Surface: "に", Features: []string{"助詞", "格助詞", "一般"}},
		{Surface: "行っ", Features: []string{"動詞", "自立", "*"}},
		{Surface: "た", Features: []string{"助動詞", "*", "*"}},
	}}
	got := NewExtractor(tok).Extract("箱根に行った")
	assert.Equal(t, []string{"箱根"}, got)
}

func TestExtractKeepsFirstAppearanceOrderAndDuplicates(t *testing.T) {
	tok := &tableTokenizer{tokens: []Token{
		noun("京都", "固有名詞", "地域"),
		noun("奈良", "固有名詞", "地域"),
		noun("京都", "固有名詞", "地域"),
	}}
	got := NewExtractor(tok).Extract("京都と奈良と京都")
	assert.Equal(t, []string{"京都", "奈良", "京都"}, got)
}

func TestExtractNeverReturnsExcludedWords(t *testing.T) {
	tok := &tableTokenizer{tokens: []Token{
		noun("日本", "固有名詞", "地域"),
		noun("関東", "固有名詞", "地域"),
		noun("北", "一般", "地域"),
		noun("札幌", "固有名詞", "地域"),
	}}
	got := NewExtractor(tok).Extract("日本の関東の北の札幌")
	assert.Equal(t, []string{"札幌"}, got)
	for _, c := range got {
		assert.False(t, allowedIsExcluded(c), "excluded word leaked: %s", c)
	}
}

func allowedIsExcluded(surface string) bool {
	_, ok := exclusionList[surface]
	return ok
}

func TestExtractHotSpringKeywordRecoversNonRegionNouns(t *testing.T) {
	// 温泉 terms are often tagged 一般 without the 地域 subclass; the keyword
	// rule must recover them anyway.
	tok := &tableTokenizer{tokens: []Token{
		noun("箱根温泉", "一般", "*"),
	}}
	got := NewExtractor(tok).Extract("箱根温泉に行った")
	assert.Equal(t, []string{"箱根温泉"}, got)
	assert.True(t, strings.Contains(got[0], hotSpringKeyword))
}

func TestExtractRejectsNonNounsAndPlainNouns(t *testing.T) {
	tok := &tableTokenizer{tokens: []Token{
		{Surface: "走る", Features: []string{"動詞", "自立", "*"}},
		noun("りんご", "一般", "*"),
		{Surface: "京都", Features: []string{"名詞"}}, // truncated feature row
	}}
	got := NewExtractor(tok).Extract("走るりんご京都")
	assert.Empty(t, got)
}

func TestExtractEmptyText(t *testing.T) {
	got := NewExtractor(&tableTokenizer{}).Extract("")
	assert.Empty(t, got)
}
