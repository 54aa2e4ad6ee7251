package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text extracts searchable text from an uploaded file. PDFs are walked page
// by page; text/* content passes through as-is; anything else yields "".
func Text(mime string, data []byte) (string, error) {
	switch {
	case mime == "application/pdf":
		return pdfText(data)
	case strings.HasPrefix(mime, "text/"):
		return string(data), nil
	}
	return "", nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
