package inbound

import (
	"errors"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

const maxPartSize = 1 << 20

// bodiesFromRaw extracts the first text/plain and text/html parts of a raw
// RFC 5322 message. Attachments are skipped.
func bodiesFromRaw(raw string) (text, html string, err error) {
	mr, err := mail.CreateReader(strings.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return "", "", err
	}
	defer mr.Close()

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (p == nil || !message.IsUnknownCharset(err)) {
			return text, html, err
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		if ct != "text/plain" && ct != "text/html" {
			continue
		}

		b, err := io.ReadAll(io.LimitReader(p.Body, maxPartSize))
		if err != nil {
			return text, html, err
		}
		switch {
		case ct == "text/plain" && text == "":
			text = string(b)
		case ct == "text/html" && html == "":
			html = string(b)
		}
	}
	return text, html, nil
}
