package models

import "gorm.io/gorm"

type Document struct {
	BaseModel
	ProfileID   uint   `json:"profile_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	ObjectKey   string `json:"-" gorm:"not null;unique"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (profile *Profile) AddDocument(document *Document) error {
	document.ProfileID = profile.ID
	return db.Create(document).Error
}

func FindDocument(id interface{}) (*Document, error) {
	document := Document{}
	err := db.First(&document, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &document, nil
}

func (profile *Profile) DeleteDocument(id interface{}) (*Document, error) {
	document := Document{}
	err := db.First(&document, "id = ? AND profile_id = ?", id, profile.ID).Error
	if err != nil {
		return nil, err
	}

	res := db.Delete(&document)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &document, nil
}
