package server

import (
	"strings"
	"unicode"

	"github.com/Daskott/zantag/server/models"
	"github.com/emersion/go-vcard"
)

// VCard renders profile as a vCard 3.0 contact. Phone & email links become
// TEL & EMAIL entries, website & social links URL entries.
func VCard(profile *models.Profile) (string, error) {
	name := singleLine(profile.DisplayName)
	if strings.TrimSpace(name) == "" {
		name = profile.Username
	}

	card := vcard.Card{}
	card.SetValue(vcard.FieldVersion, "3.0")
	card.SetValue(vcard.FieldFormattedName, name)
	card.SetName(&vcard.Name{FamilyName: strings.ReplaceAll(name, ";", ",")})

	if profile.Bio != "" {
		card.SetValue(vcard.FieldNote, profile.Bio)
	}

	for _, link := range profile.Links {
		value := singleLine(link.URL)

		switch link.Type {
		case models.PHONE_LINK:
			card.Add(vcard.FieldTelephone, &vcard.Field{
				Value:  strings.TrimPrefix(value, "tel:"),
				Params: vcard.Params{vcard.ParamType: {vcard.TypeCell}},
			})
		case models.EMAIL_LINK:
			card.Add(vcard.FieldEmail, &vcard.Field{
				Value:  strings.TrimPrefix(value, "mailto:"),
				Params: vcard.Params{vcard.ParamType: {vcard.TypeWork}},
			})
		case models.WEBSITE_LINK, models.SOCIAL_LINK:
			card.AddValue(vcard.FieldURL, value)
		}
	}

	var buf strings.Builder
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// singleLine drops control characters so a value can never start a new property.
func singleLine(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}
