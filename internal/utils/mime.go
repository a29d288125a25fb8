package utils

import "net/http"

// DetectMimeType returns the sniffed MIME type of already loaded content.
func DetectMimeType(data []byte) string {
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	return http.DetectContentType(data)
}
