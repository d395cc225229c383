package models

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken = errors.New("organization slug is already taken")

	slugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

type Organization struct {
	BaseModel
	Name    string `json:"name" validate:"required,max=200" gorm:"not null"`
	Slug    string `json:"slug" gorm:"not null;unique"`
	AdminID *uint  `json:"admin_id,omitempty"`
	Staff   []User `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

// Slugify lower-cases name & collapses every run of non [a-z0-9] chars into '-'.
func Slugify(name string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// CreateOrganization stores org, deriving its slug from the name when none is set.
// When org.AdminID is set that user joins the org as its BUSINESS_ADMIN.
func CreateOrganization(org *Organization) error {
	if org.Slug == "" {
		org.Slug = Slugify(org.Name)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Organization{}).Where("slug = ?", org.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugTaken
		}

		if err := tx.Omit("Staff").Create(org).Error; err != nil {
			return err
		}

		return assignAdmin(tx, org)
	})
}

func (org *Organization) Update(data map[string]interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if name, ok := data["name"].(string); ok {
			org.Name = name
		}

		if adminID, ok := data["admin_id"].(uint); ok {
			org.AdminID = &adminID
		}

		err := tx.Model(&Organization{}).Where("id = ?", org.ID).
			Updates(map[string]interface{}{"name": org.Name, "admin_id": org.AdminID}).Error
		if err != nil {
			return err
		}

		return assignAdmin(tx, org)
	})
}

// FetchStaff returns every user that belongs to the organization.
func (org *Organization) FetchStaff() ([]User, error) {
	users := []User{}
	err := db.Preload("Role").Select(allFieldsExceptPassword).Order("name asc").
		Find(&users, "organization_id = ?", org.ID).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

func FindOrganization(id interface{}) (*Organization, error) {
	org := Organization{}
	err := db.First(&org, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &org, nil
}

func FetchOrganizations(page int) ([]Organization, *Paging, error) {
	var total int64
	orgs := []Organization{}

	err := db.Model(&Organization{}).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, MAX_PAGE_SIZE)).Order("name asc").Find(&orgs).Error
	if err != nil {
		return nil, nil, err
	}

	return orgs, newPaging(int64(page), MAX_PAGE_SIZE, total), nil
}

// DeleteOrganization removes the org; its staff are detached, not deleted.
func DeleteOrganization(id interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&User{}).Where("organization_id = ?", id).Update("organization_id", nil).Error
		if err != nil {
			return err
		}

		err = tx.Model(&InviteCode{}).Where("organization_id = ?", id).Update("organization_id", nil).Error
		if err != nil {
			return err
		}

		res := tx.Delete(&Organization{}, id)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func assignAdmin(tx *gorm.DB, org *Organization) error {
	if org.AdminID == nil {
		return nil
	}

	role := Role{}
	if err := tx.First(&role, "name = ?", BUSINESS_ADMIN_ROLE).Error; err != nil {
		return err
	}

	res := tx.Model(&User{}).Where("id = ?", *org.AdminID).
		Updates(map[string]interface{}{"organization_id": org.ID, "role_id": role.ID})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
