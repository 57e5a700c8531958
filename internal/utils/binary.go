package utils

import "unicode/utf8"

// IsBinary reports whether the provided byte slice appears to contain binary
// data rather than decodable text. Invalid UTF‑8 or an embedded NUL byte
// classifies the content as binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}
