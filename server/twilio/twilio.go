package twilio

import (
	"fmt"

	"github.com/Daskott/zantag/server/logger"
	"github.com/Daskott/zantag/shared"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var logg = logger.NewNamedLogger("twilio")

// Notifier sends text messages.
type Notifier interface {
	SendMessage(to, msg string) error
}

type ClientWrapper struct {
	client  *twilio.RestClient
	config  shared.TwilioConfig
	devMode bool
}

// NewClient returns a client that logs messages instead of sending them when
// in dev mode or when credentials are missing.
func NewClient(config shared.TwilioConfig, devMode bool) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &ClientWrapper{
		client:  client,
		config:  config,
		devMode: devMode || !config.Configured(),
	}
}

func (cw *ClientWrapper) SendMessage(to, msg string) error {
	if to == "" {
		return nil
	}

	if cw.devMode {
		logg.Infof("SMS to %v: %v", to, msg)
		return nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetMessagingServiceSid(cw.config.MessagingServiceSid)
	params.SetTo(to)
	params.SetBody(msg)

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return err
	}

	if resp.ErrorMessage != nil {
		return fmt.Errorf("twilio: %v", *resp.ErrorMessage)
	}

	return nil
}

// NewLeadMessage is the alert a profile owner gets when a visitor leaves their details.
func NewLeadMessage(displayName, leadName, leadEmail, leadPhone string) string {
	msg := fmt.Sprintf("Hi %v, %v just shared their details with you on ZanTag.", displayName, leadName)

	if leadEmail != "" {
		msg += "\nEmail: " + leadEmail
	}
	if leadPhone != "" {
		msg += "\nPhone: " + leadPhone
	}

	return msg
}
