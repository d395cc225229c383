package models

import "gorm.io/gorm"

// Contact is a lead captured for a profile. Contacts are never edited, only deleted.
type Contact struct {
	BaseModel
	ProfileID uint   `json:"profile_id" gorm:"not null;index"`
	Name      string `json:"name" validate:"required,max=200" gorm:"not null"`
	Email     string `json:"email" validate:"omitempty,email,max=320"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Notes     string `json:"notes" validate:"max=5000"`
	Source    string `json:"source" gorm:"not null"`
}

func (profile *Profile) AddContact(contact *Contact) error {
	contact.ID = 0
	contact.ProfileID = profile.ID
	return db.Create(contact).Error
}

func (profile *Profile) FetchContacts(page, pageSize int) ([]Contact, *Paging, error) {
	var total int64
	contacts := []Contact{}

	err := db.Model(&Contact{}).Where("profile_id = ?", profile.ID).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, pageSize)).Order("created_at desc").
		Find(&contacts, "profile_id = ?", profile.ID).Error
	if err != nil {
		return nil, nil, err
	}

	return contacts, newPaging(int64(page), int64(pageSize), total), nil
}

func (profile *Profile) FindContact(id interface{}) (*Contact, error) {
	contact := Contact{}
	err := db.First(&contact, "id = ? AND profile_id = ?", id, profile.ID).Error
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

func (profile *Profile) DeleteContact(id interface{}) error {
	res := db.Where("profile_id = ?", profile.ID).Delete(&Contact{}, id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
