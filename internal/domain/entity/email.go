package entity

import (
	"time"
)

// Header is a single message header. Names keep the provider's casing.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessagePart is a node of a MIME part tree. A part either carries an inline
// body (Data already transfer-decoded, or EncodedData as base64 text the way
// the Gmail API delivers it) or child parts.
type MessagePart struct {
	MimeType    string         `json:"mimeType"`
	Filename    string         `json:"filename,omitempty"`
	Data        []byte         `json:"-"`
	EncodedData string         `json:"data,omitempty"`
	Parts       []*MessagePart `json:"parts,omitempty"`
}

// HasBody reports whether the part carries inline body data
func (p *MessagePart) HasBody() bool {
	return p != nil && (len(p.Data) > 0 || p.EncodedData != "")
}

// RawMessage is an inbound email as fetched from a mail source. It lives for
// one sync run and is never persisted.
type RawMessage struct {
	ID         string       `json:"id"`
	Headers    []Header     `json:"headers"`
	Payload    *MessagePart `json:"payload"`
	ReceivedAt time.Time    `json:"receivedAt"`
}

// Header returns the first header value with exactly the given name
func (m *RawMessage) Header(name string) string {
	for _, h := range m.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// Subject returns the Subject header
func (m *RawMessage) Subject() string {
	return m.Header("Subject")
}

// From returns the From header
func (m *RawMessage) From() string {
	return m.Header("From")
}

// MailQuery filters a mailbox by sender and subject
type MailQuery struct {
	From    string
	Subject string
}
