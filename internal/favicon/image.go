package favicon

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// accepted maps sniffed MIME types to the extension they are stored with.
var accepted = map[string]string{
	"image/png":                "png",
	"image/jpeg":               "jpg",
	"image/gif":                "gif",
	"image/x-icon":             "ico",
	"image/vnd.microsoft.icon": "ico",
}

var errNotDataURL = errors.New("not a base64 image data url")

// sniff validates icon bytes and returns the extension to store them with.
// The MIME type is detected from content; declared types are ignored.
func sniff(data []byte, maxBytes int64) (string, bool) {
	if len(data) == 0 || int64(len(data)) > maxBytes {
		return "", false
	}
	ext, ok := accepted[http.DetectContentType(data)]
	return ext, ok
}

// decodeDataURL decodes data:image/<type>;base64,<payload>.
func decodeDataURL(s string) ([]byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:image/")
	if !ok {
		return nil, errNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return nil, errNotDataURL
	}
	typ, enc, ok := strings.Cut(meta, ";")
	if !ok || typ == "" || enc != "base64" {
		return nil, errNotDataURL
	}

	// Some exporters wrap the payload.
	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
