package archive

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// minConfidence is the chardet confidence below which a declared or
// guessed charset is preferred.
const minConfidence = 50

// DecodeText turns document bytes into a string. Valid UTF-8 passes
// through with any BOM removed. Other input is converted from the charset
// named by a BOM or meta declaration, else the one chardet detects; bytes
// that still do not decode are replaced. It returns the text and the
// charset used.
func DecodeText(raw []byte) (string, string) {
	data := bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}

	label := detectCharset(raw)
	r, err := charset.NewReaderLabel(label, bytes.NewReader(raw))
	if err == nil {
		if decoded, err := io.ReadAll(r); err == nil {
			return strings.TrimPrefix(string(decoded), "\uFEFF"), label
		}
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), "utf-8"
}

// detectCharset prefers what the document declares; when nothing is
// declared the html package guesses windows-1252, and chardet gets a say.
func detectCharset(raw []byte) string {
	_, name, certain := charset.DetermineEncoding(raw, "text/html")
	if certain || name != "windows-1252" {
		return name
	}
	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || result == nil || result.Confidence < minConfidence {
		return name
	}
	return strings.ToLower(result.Charset)
}
