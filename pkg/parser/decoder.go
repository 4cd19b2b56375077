package parser

import (
	"encoding/base64"
	"strings"

	"hostel-sync-service/internal/domain/entity"
)

var base64Encodings = []*base64.Encoding{
	base64.URLEncoding,
	base64.RawURLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

// DecodeBody returns the best plain-text representation of a MIME part tree.
// text/plain wins over text/html; nested multipart parts are searched depth
// first. A tree without any usable body yields "".
func DecodeBody(part *entity.MessagePart) string {
	if part == nil {
		return ""
	}

	if part.HasBody() {
		if text, ok := partText(part); ok {
			return text
		}
	}

	if len(part.Parts) == 0 {
		return ""
	}

	for _, child := range part.Parts {
		mimeType := mediaType(child.MimeType)
		if mimeType == "text/plain" && child.HasBody() {
			if text, ok := partText(child); ok {
				return text
			}
		}
		if strings.HasPrefix(mimeType, "multipart/") {
			if text := DecodeBody(child); text != "" {
				return text
			}
		}
	}

	for _, child := range part.Parts {
		if mediaType(child.MimeType) == "text/html" && child.HasBody() {
			if text, ok := partText(child); ok {
				return text
			}
		}
	}

	return ""
}

// partText returns the UTF-8 body of a part. Undecodable data counts as absent.
func partText(part *entity.MessagePart) (string, bool) {
	if len(part.Data) > 0 {
		return string(part.Data), true
	}

	data, ok := decodeBase64(part.EncodedData)
	if !ok {
		return "", false
	}
	return string(data), true
}

// decodeBase64 accepts the URL-safe alphabet Gmail uses as well as the
// standard one, padded or not
func decodeBase64(s string) ([]byte, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	for _, enc := range base64Encodings {
		if data, err := enc.DecodeString(s); err == nil {
			return data, true
		}
	}
	return nil, false
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
