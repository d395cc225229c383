package models

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const INVITATION_ONLY_SETTING = "invitationOnly"

type SystemSetting struct {
	BaseModel
	Name  string `json:"name" gorm:"not null;unique"`
	Value string `json:"value"`
}

type Settings struct {
	InvitationOnly bool `json:"invitation_only"`
}

func GetSetting(name string) (string, error) {
	setting := SystemSetting{}
	err := db.First(&setting, "name = ?", name).Error
	if err != nil {
		return "", err
	}

	return setting.Value, nil
}

func SetSetting(name, value string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&SystemSetting{Name: name, Value: value}).Error
}

// InvitationOnly reports whether signups need an invite code. A missing
// setting counts as true.
func InvitationOnly() (bool, error) {
	value, err := GetSetting(INVITATION_ONLY_SETTING)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	invitationOnly, err := strconv.ParseBool(value)
	if err != nil {
		return true, nil
	}
	return invitationOnly, nil
}

func SetInvitationOnly(invitationOnly bool) error {
	return SetSetting(INVITATION_ONLY_SETTING, strconv.FormatBool(invitationOnly))
}

func CurrentSettings() (*Settings, error) {
	invitationOnly, err := InvitationOnly()
	if err != nil {
		return nil, err
	}

	return &Settings{InvitationOnly: invitationOnly}, nil
}
