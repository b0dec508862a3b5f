package tokenizer

import (
	"errors"
	"unicode/utf8"
)

// CountResult captures the outcome of counting one document.
type CountResult struct {
	Tokens  int
	Counted bool
}

var errNilCounter = errors.New("nil tokenizer counter")

// CountDocument estimates tokens for document. Text that is not valid UTF-8 is left
// uncounted.
func CountDocument(counter Counter, document string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if !utf8.ValidString(document) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(document)
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
