package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/osanchez-dev/revisia/internal/core"
)

var _ core.TextExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor converts uploaded pdf/doc/docx/txt files to plain text.
// The review pipeline itself only ever sees the extracted text; extraction
// happens once at upload time.
type DocconvExtractor struct{}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

func (e *DocconvExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	if strings.HasPrefix(contentType, "text/plain") || contentType == "" {
		return normalize(string(data)), nil
	}

	res, err := docconv.Convert(bytes.NewReader(data), contentType, false)
	if err != nil {
		return "", fmt.Errorf("docconv %s: %w", contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if res.Body == "" {
		return "", fmt.Errorf("docconv %s: extracted empty text", contentType)
	}
	return normalize(res.Body), nil
}

// normalize unifies line endings so paragraph splitting on blank lines works
// the same regardless of the source file.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}
