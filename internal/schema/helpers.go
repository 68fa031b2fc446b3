// file: internal/schema/helpers.go
package schema

import (
	"bytes"
)

// maxPreviewLen caps tool input echoed into validation error context.
const maxPreviewLen = 100

// calculatePreview returns a log-safe prefix of data with control characters masked.
func calculatePreview(data []byte) string {
	suffix := ""
	if len(data) > maxPreviewLen {
		data = data[:maxPreviewLen]
		suffix = "..."
	}
	return string(bytes.Map(maskControl, data)) + suffix
}

func maskControl(r rune) rune {
	if r < 32 || r == 127 {
		return '.'
	}
	return r
}
