package twilio

import (
	"testing"

	"github.com/Daskott/zantag/shared"
	"github.com/stretchr/testify/assert"
)

func TestSendMessageWithoutCredentials(t *testing.T) {
	client := NewClient(shared.TwilioConfig{}, false)

	assert.Nil(t, client.SendMessage("+14155550192", "hello"))
	assert.Nil(t, client.SendMessage("", "hello"))
}

func TestNewLeadMessage(t *testing.T) {
	testCases := []struct {
		description string
		email       string
		phone       string
		expected    string
	}{
		{
			description: "Should list every detail shared",
			email:       "john@doe.io",
			phone:       "+1 415-555-0192",
			expected:    "Hi Jane, John just shared their details with you on ZanTag.\nEmail: john@doe.io\nPhone: +1 415-555-0192",
		},
		{
			description: "Should skip missing details",
			expected:    "Hi Jane, John just shared their details with you on ZanTag.",
		},
	}

	for _, tcase := range testCases {
		t.Run(tcase.description, func(t *testing.T) {
			assert.Equal(t, tcase.expected, NewLeadMessage("Jane", "John", tcase.email, tcase.phone))
		})
	}
}
