package extract

import (
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// KagomeTokenizer is the default Tokenizer, backed by kagome with the
// embedded IPA dictionary.
type KagomeTokenizer struct {
	t *tokenizer.Tokenizer
}

func NewKagomeTokenizer() (*KagomeTokenizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &KagomeTokenizer{t: t}, nil
}

func (k *KagomeTokenizer) Tokenize(text string) []Token {
	morphemes := k.t.Tokenize(text)
	tokens := make([]Token, 0, len(morphemes))
	for _, m := range morphemes {
		tokens = append(tokens, Token{Surface: m.Surface, Features: m.Features()})
	}
	return tokens
}
