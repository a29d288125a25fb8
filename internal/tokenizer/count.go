package tokenizer

import "errors"

// CountDocument estimates tokens for a complete rendered document.
func CountDocument(counter Counter, document string) (int, error) {
	if counter == nil {
		return 0, errors.New("nil tokenizer counter")
	}
	if document == "" {
		return 0, nil
	}
	return counter.CountString(document)
}
