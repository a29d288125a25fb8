// Package tokenizer estimates how many model tokens a rendered document uses.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	// Name returns the encoding the counter uses.
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel        = "gpt-4o"
	fallbackEncoding    = tiktoken.MODEL_CL100K_BASE
	fallbackLabelFormat = "%s via %s"
)

type encodingCounter struct {
	encoding     *tiktoken.Tiktoken
	encodingName string
}

func (counter encodingCounter) Name() string {
	return counter.encodingName
}

func (counter encodingCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

// NewCounter returns a Counter for the requested model together with the
// label printed in the summary. Models unknown to tiktoken are counted with
// cl100k_base and labelled "<model> via cl100k_base".
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	encodingName, known := EncodingForModel(model)
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, "", fmt.Errorf("load %s encoding for %s: %w", encodingName, model, err)
	}
	label := model
	if !known {
		label = fmt.Sprintf(fallbackLabelFormat, model, encodingName)
	}
	return encodingCounter{encoding: encoding, encodingName: encodingName}, label, nil
}

// EncodingForModel names the tiktoken encoding of model. Exact model names
// win over prefixes and the longest matching prefix wins among those. The
// boolean is false when model is unknown and the fallback encoding is used.
func EncodingForModel(model string) (string, bool) {
	lowerModel := strings.ToLower(strings.TrimSpace(model))
	if encodingName, ok := tiktoken.MODEL_TO_ENCODING[lowerModel]; ok {
		return encodingName, true
	}
	matchedPrefix := ""
	for prefix := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(lowerModel, prefix) && len(prefix) > len(matchedPrefix) {
			matchedPrefix = prefix
		}
	}
	if matchedPrefix != "" {
		return tiktoken.MODEL_PREFIX_TO_ENCODING[matchedPrefix], true
	}
	return fallbackEncoding, false
}
