// Package mailfile reads RFC 5322 messages (.eml files or raw IMAP bodies)
// into the provider-neutral message tree.
package mailfile

import (
	"fmt"
	"io"
	"net/textproto"
	"strings"
	"time"

	"hostel-sync-service/internal/domain/entity"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Parse reads one message. Transfer encodings and charsets are decoded, so
// every leaf part carries its body in Data.
func Parse(id string, r io.Reader) (*entity.RawMessage, error) {
	e, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to read message %s: %w", id, err)
	}

	payload, err := buildPart(e)
	if err != nil {
		return nil, fmt.Errorf("failed to read parts of %s: %w", id, err)
	}

	msg := &entity.RawMessage{
		ID:      id,
		Headers: headers(e.Header),
		Payload: payload,
	}
	if date, err := (&mail.Header{Header: e.Header}).Date(); err == nil {
		msg.ReceivedAt = date
	}
	return msg, nil
}

func buildPart(e *message.Entity) (*entity.MessagePart, error) {
	mediaType, params, _ := e.Header.ContentType()
	if mediaType == "" {
		mediaType = "text/plain"
	}

	part := &entity.MessagePart{MimeType: mediaType}
	if _, dispParams, err := e.Header.ContentDisposition(); err == nil {
		part.Filename = dispParams["filename"]
	}
	if part.Filename == "" {
		part.Filename = params["name"]
	}

	if mr := e.MultipartReader(); mr != nil {
		for {
			child, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil && !message.IsUnknownCharset(err) {
				return part, err
			}
			childPart, err := buildPart(child)
			if err != nil {
				return part, err
			}
			part.Parts = append(part.Parts, childPart)
		}
		return part, nil
	}

	data, err := io.ReadAll(e.Body)
	if err != nil {
		return part, err
	}
	part.Data = data
	return part, nil
}

func headers(h message.Header) []entity.Header {
	var out []entity.Header
	fields := h.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		out = append(out, entity.Header{
			Name:  textproto.CanonicalMIMEHeaderKey(fields.Key()),
			Value: strings.TrimSpace(value),
		})
	}
	return out
}

func receivedOr(msg *entity.RawMessage, fallback time.Time) {
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = fallback
	}
}
