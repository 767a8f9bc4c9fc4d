package gmail

import (
	"encoding/base64"
	"strings"
	"time"
	"unicode/utf8"

	gmail "google.golang.org/api/gmail/v1"
)

// ExtractBody extracts the first decodable text/plain or text/html body from a
// message part tree. The traversal is depth-first and prefers a part's own
// body before descending into nested parts, and earlier-listed parts over
// later ones. Malformed or absent content is not an error; it yields "".
func ExtractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if isTextPart(part.MimeType) && part.Body != nil && part.Body.Data != "" {
		if decoded, ok := decodeBody(part.Body.Data); ok {
			return decoded
		}
	}

	for _, subpart := range part.Parts {
		if body := ExtractBody(subpart); body != "" {
			return body
		}
	}

	return ""
}

func isTextPart(mimeType string) bool {
	return mimeType == "text/plain" || mimeType == "text/html" || mimeType == ""
}

// decodeBody decodes base64url-encoded body data (Gmail API uses RFC 4648
// base64url encoding) with a standard base64 fallback.
func decodeBody(data string) (string, bool) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", false
		}
	}
	return string(decoded), true
}

// HeaderValue extracts a header value from a Gmail message
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, mph := range m.Payload.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

// dateLayouts are the Date header formats seen in the wild, most common first.
var dateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
}

// parseDate parses an email Date header. An unparseable header yields the
// zero time rather than an error; the date is advisory input for extraction.
func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Truncate bounds s to max bytes without splitting the trailing rune.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
