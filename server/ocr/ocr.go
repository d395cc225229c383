// Package ocr reads business card photos into lead fields.
package ocr

import (
	"context"
	"errors"
	"fmt"

	"github.com/Daskott/zantag/server/cardtext"
)

var (
	ErrEmptyImage       = errors.New("image is empty")
	ErrImageTooLarge    = errors.New("image is too large")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// Engine turns an encoded image into plain text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Scan is the outcome of reading one card.
type Scan struct {
	RawText string          `json:"raw_text"`
	Fields  cardtext.Fields `json:"fields"`
}

// ScanCard normalises image, runs it through engine & classifies the text.
// maxBytes <= 0 disables the size check.
func ScanCard(ctx context.Context, engine Engine, image []byte, maxBytes int64) (*Scan, error) {
	prepared, err := PrepareImage(image, maxBytes)
	if err != nil {
		return nil, err
	}

	text, err := engine.Recognize(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", engine.Name(), err)
	}

	return &Scan{RawText: text, Fields: cardtext.Classify(text)}, nil
}
