package upload

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
)

// FallbackMIMEType is used whenever the content type cannot be detected.
const FallbackMIMEType = "application/octet-stream"

// DetectMIMEType sniffs the MIME type of the file at path from its first
// 512 bytes, ignoring the client-declared type. Parameters such as charset
// are dropped. On any failure it returns FallbackMIMEType with the error.
func DetectMIMEType(path string) (string, error) {
	if path == "" {
		return FallbackMIMEType, fmt.Errorf("%w: empty path", ErrFailedToOpenFile)
	}

	file, err := os.Open(path)
	if err != nil {
		return FallbackMIMEType, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = file.Close() }()

	// 512 bytes is the maximum http.DetectContentType reads
	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return FallbackMIMEType, err
	}

	return cleanMIMEType(http.DetectContentType(buffer[:n])), nil
}

// cleanMIMEType strips parameters and rejects values that are not type/subtype.
func cleanMIMEType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil || !strings.Contains(mediaType, "/") {
		return FallbackMIMEType
	}
	return mediaType
}

// mimeClass returns the part of a MIME type before the slash, e.g. "image".
func mimeClass(mimetype string) string {
	if i := strings.LastIndex(mimetype, "/"); i >= 0 {
		return mimetype[:i]
	}
	return ""
}
