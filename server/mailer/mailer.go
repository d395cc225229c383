package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/Daskott/zantag/server/logger"
	"github.com/Daskott/zantag/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

var logg = logger.NewNamedLogger("mailer")

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type GmailMailer struct {
	service *gmail.Service
	sender  string
}

// NewGmailMailer sends mail as config.Sender, authenticating with a long lived
// OAuth2 refresh token.
func NewGmailMailer(ctx context.Context, config shared.GmailConfig) (*GmailMailer, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	tokenSource := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken})

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Gmail client: %v", err)
	}

	return &GmailMailer{service: service, sender: config.Sender}, nil
}

func (gm *GmailMailer) Send(ctx context.Context, msg Message) error {
	raw := base64.URLEncoding.EncodeToString(RawMessage(gm.sender, msg))

	_, err := gm.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send: %v", err)
	}

	return nil
}

// LogMailer only logs messages, for dev mode & when Gmail is not configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logg.Infof("Email to %v: %v\n%v", msg.To, msg.Subject, msg.Body)
	return nil
}

// RawMessage renders msg as a plain text RFC 822 message.
func RawMessage(from string, msg Message) []byte {
	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))

	return []byte(b.String())
}

// VerificationMessage is the welcome email carrying the verification link.
func VerificationMessage(appURL, to, name, token string) Message {
	link := fmt.Sprintf("%v/verify?token=%v", strings.TrimSuffix(appURL, "/"), url.QueryEscape(token))

	return Message{
		To:      to,
		Subject: "Verify your ZanTag email",
		Body: fmt.Sprintf(
			"Hi %v,\n\nWelcome to ZanTag! Confirm your email address to activate your card:\n\n%v\n\nIf you did not sign up, ignore this email.\n",
			name,
			link,
		),
	}
}
