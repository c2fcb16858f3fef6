package domain

import (
	"mime"
	"net/http"
	"strings"
)

// DetectContentType trusts the declared type unless it is missing or
// generic, in which case the bytes are sniffed. Parameters are dropped.
func DetectContentType(declared string, content []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		mt = strings.ToLower(mt)
		if mt != "application/octet-stream" {
			return mt
		}
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(content))
	return sniffed
}
