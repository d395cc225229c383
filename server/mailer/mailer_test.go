package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationMessage(t *testing.T) {
	msg := VerificationMessage("https://zantag.io/", "jane@acme.io", "Jane", "a b+c")

	assert.Equal(t, "jane@acme.io", msg.To)
	assert.Contains(t, msg.Body, "Hi Jane,")
	assert.Contains(t, msg.Body, "https://zantag.io/verify?token=a+b%2Bc")
}

func TestRawMessage(t *testing.T) {
	raw := string(RawMessage("no-reply@zantag.io", Message{
		To:      "jane@acme.io",
		Subject: "Héllo",
		Body:    "line one\nline two",
	}))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	assert.True(t, found)
	assert.Contains(t, headers, "From: no-reply@zantag.io\r\n")
	assert.Contains(t, headers, "To: jane@acme.io\r\n")
	assert.Contains(t, headers, "Subject: =?utf-8?q?H=C3=A9llo?=")
	assert.Equal(t, "line one\r\nline two", body)
}

func TestLogMailer(t *testing.T) {
	assert.Nil(t, LogMailer{}.Send(context.Background(), Message{To: "x@y.io"}))
}
