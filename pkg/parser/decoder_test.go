package parser

import (
	"encoding/base64"
	"testing"

	"hostel-sync-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func enc(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestDecodeBody_TopLevelBody(t *testing.T) {
	part := &entity.MessagePart{MimeType: "text/plain", EncodedData: enc("hello")}
	assert.Equal(t, "hello", DecodeBody(part))
}

func TestDecodeBody_PrefersPlainOverHTML(t *testing.T) {
	part := &entity.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*entity.MessagePart{
			{MimeType: "text/html", EncodedData: enc("<p>html</p>")},
			{MimeType: "text/plain", EncodedData: enc("plain")},
		},
	}
	assert.Equal(t, "plain", DecodeBody(part))
}

func TestDecodeBody_HTMLFallback(t *testing.T) {
	part := &entity.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*entity.MessagePart{
			{MimeType: "text/html", EncodedData: enc("<p>only html</p>")},
		},
	}
	assert.Equal(t, "<p>only html</p>", DecodeBody(part))
}

func TestDecodeBody_NestedMultipart(t *testing.T) {
	part := &entity.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*entity.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*entity.MessagePart{
					{MimeType: "text/plain", EncodedData: enc("nested plain")},
				},
			},
			{MimeType: "application/pdf", Filename: "voucher.pdf", EncodedData: enc("%PDF")},
		},
	}
	assert.Equal(t, "nested plain", DecodeBody(part))
}

func TestDecodeBody_EmptyNestedFallsThroughToHTML(t *testing.T) {
	part := &entity.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*entity.MessagePart{
			{MimeType: "multipart/related"},
			{MimeType: "text/html", EncodedData: enc("<b>x</b>")},
		},
	}
	assert.Equal(t, "<b>x</b>", DecodeBody(part))
}

func TestDecodeBody_RawDataAndContentTypeParams(t *testing.T) {
	part := &entity.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*entity.MessagePart{
			{MimeType: "text/plain; charset=utf-8", Data: []byte("raw bytes")},
		},
	}
	assert.Equal(t, "raw bytes", DecodeBody(part))
}

func TestDecodeBody_UnpaddedAndStandardAlphabet(t *testing.T) {
	raw := base64.RawURLEncoding.EncodeToString([]byte("no padding?"))
	assert.Equal(t, "no padding?", DecodeBody(&entity.MessagePart{EncodedData: raw}))

	std := base64.StdEncoding.EncodeToString([]byte("std>>>???"))
	assert.Equal(t, "std>>>???", DecodeBody(&entity.MessagePart{EncodedData: std}))
}

func TestDecodeBody_NoBody(t *testing.T) {
	assert.Equal(t, "", DecodeBody(nil))
	assert.Equal(t, "", DecodeBody(&entity.MessagePart{MimeType: "multipart/mixed"}))
	assert.Equal(t, "", DecodeBody(&entity.MessagePart{
		MimeType: "multipart/mixed",
		Parts:    []*entity.MessagePart{{MimeType: "image/png", EncodedData: enc("png")}},
	}))
}
