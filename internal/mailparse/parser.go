// Package mailparse turns a raw RFC 5322 document into the normalized
// EmailMessage the pipeline works with.
package mailparse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"

	"mail-webhook-relay/internal/model"
)

// ParseError marks input that could not be parsed as an email message.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed email message: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FirstAddress returns the bare address form of the first entry of a
// parsed address header, or "" when the list is empty. Address headers
// may carry a single value or an ordered list; only the first entry is
// relevant to rule matching, and the bare user@host form keeps the
// glob matcher behaviour identical across the JSON and MIME branches.
func FirstAddress(list []*mail.Address) string {
	if len(list) == 0 || list[0] == nil {
		return ""
	}
	return list[0].Address
}

// Parse reads a raw RFC 5322 message and extracts the headers and the
// text/html bodies. Attachments are ignored; only inline parts
// contribute to the body.
func Parse(raw []byte) (*model.EmailMessage, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	msg := &model.EmailMessage{}

	if from, err := mr.Header.AddressList("From"); err == nil {
		msg.From = FirstAddress(from)
	}
	if to, err := mr.Header.AddressList("To"); err == nil {
		msg.To = FirstAddress(to)
	}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if id, err := mr.Header.MessageID(); err == nil {
		msg.MessageID = id
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken part after valid headers: keep what we have.
			logrus.Warnf("Failed to read message part: %v", err)
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		mediaType, _, _ := header.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			logrus.Warnf("Failed to read part body: %v", err)
			continue
		}

		switch {
		case strings.EqualFold(mediaType, "text/html"):
			if msg.HTML == "" {
				msg.HTML = string(body)
			}
		default:
			if msg.Body == "" {
				msg.Body = string(body)
			}
		}
	}

	return msg, nil
}
