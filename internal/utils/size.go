package utils

import (
	"fmt"
	"strings"
)

var fileSizeUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(byteCount int64) string {
	if byteCount <= 0 {
		return "0b"
	}
	scaled := float64(byteCount)
	unitIndex := 0
	for scaled >= 1024 && unitIndex < len(fileSizeUnits)-1 {
		scaled /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%d%s", byteCount, fileSizeUnits[0])
	}
	if scaled < 10 {
		return strings.TrimSuffix(fmt.Sprintf("%.1f", scaled), ".0") + fileSizeUnits[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", scaled, fileSizeUnits[unitIndex])
}
