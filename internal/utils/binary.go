package utils

import "unicode/utf8"

const (
	// sniffLength bounds the prefix inspected for control characters.
	sniffLength = 1024
	// controlByteRatioLimit is the share of control bytes above which content is binary.
	controlByteRatioLimit = 0.10
)

// IsBinary reports whether data looks like binary rather than UTF-8 text.
// The first sniffLength bytes are rejected when they contain a NUL byte or
// more than ten percent control bytes; the whole slice must be valid UTF-8.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > sniffLength {
		sample = sample[:sniffLength]
	}
	controlBytes := 0
	for _, byteValue := range sample {
		if byteValue == 0 {
			return true
		}
		if isControlByte(byteValue) {
			controlBytes++
		}
	}
	if float64(controlBytes)/float64(len(sample)) > controlByteRatioLimit {
		return true
	}
	return !utf8.Valid(data)
}

// isControlByte excludes tab, line feed, form feed and carriage return.
func isControlByte(byteValue byte) bool {
	switch {
	case byteValue >= 0x01 && byteValue <= 0x08:
		return true
	case byteValue == 0x0B:
		return true
	case byteValue >= 0x0E && byteValue <= 0x1F:
		return true
	}
	return false
}
