package tokenizer

import "github.com/pkoukk/tiktoken-go"

// Tiktoken adapts a github.com/pkoukk/tiktoken-go BPE encoding to the
// Tokenizer capability. Unlike Simple, ids are stateless — any subset of a
// previously tokenized id sequence can be decoded independently, and one
// instance is safe for concurrent use by multiple callers.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding (e.g. "cl100k_base"). Encodings are
// cached process-wide by the tiktoken-go package itself.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Tokenize(text string) []int {
	if text == "" {
		return nil
	}
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	return t.enc.Decode(ids)
}
