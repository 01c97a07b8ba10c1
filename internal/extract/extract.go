package extract

import "strings"

// Token is one morpheme with its IPA-dictionary feature row
// (品詞,品詞細分類1,品詞細分類2,...).
type Token struct {
	Surface  string
	Features []string
}

// Tokenizer is the morphological tagger collaborator.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// hotSpringKeyword recovers place-like terms (温泉地 etc.) that the tagger
// under-classifies as plain nouns.
const hotSpringKeyword = "温泉"

// exclusionList drops overly generic geographic terms that the dictionary
// tags as 地域 but that never identify a concrete place.
// See https://qiita.com/yineleyici/items/73296d4b7491bdb77cd0
var exclusionList = map[string]struct{}{
	"新開発": {},
	"日本":  {},
	"関東":  {},
	"関西":  {},
	"東北":  {},
	"東":   {},
	"西":   {},
	"南":   {},
	"北":   {},
}

// Extractor pulls candidate place names out of free text.
type Extractor struct {
	tokenizer Tokenizer
}

func NewExtractor(t Tokenizer) *Extractor { return &Extractor{tokenizer: t} }

// Extract returns candidate place names in order of first appearance.
// Duplicates are kept; the result may be empty. Pure function of text.
func (e *Extractor) Extract(text string) []string {
	var candidates []string
	for _, tok := range e.tokenizer.Tokenize(text) {
		if !allowed(tok.Surface) {
			continue
		}
		if len(tok.Features) < 2 {
			continue
		}
		sub := tok.Features[1]
		if sub != "固有名詞" && sub != "一般" {
			continue
		}
		isRegion := len(tok.Features) > 2 && tok.Features[2] == "地域"
		if isRegion || strings.Contains(tok.Surface, hotSpringKeyword) {
			candidates = append(candidates, tok.Surface)
		}
	}
	return candidates
}

func allowed(surface string) bool {
	_, excluded := exclusionList[surface]
	return !excluded
}
