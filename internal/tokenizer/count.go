package tokenizer

import (
	"errors"
	"unicode/utf8"
)

var errNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a report.
type CountResult struct {
	Tokens  int
	Model   string
	Counted bool
}

// CountText estimates tokens for text. Invalid UTF-8 is not counted.
func CountText(counter Counter, text string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if !utf8.ValidString(text) {
		return CountResult{Model: counter.Name()}, nil
	}
	tokens, err := counter.CountString(text)
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Model: counter.Name(), Counted: true}, nil
}
