package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const INVITE_CODE_PREFIX = "INV-"

type InviteCode struct {
	BaseModel
	Code           string `json:"code" gorm:"not null;unique"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	RoleName       string `json:"role_name" validate:"omitempty,role" gorm:"not null"`
	IsUsed         bool   `json:"is_used" gorm:"default:false"`
	OrganizationID *uint  `json:"organization_id,omitempty"`
	CreatedByID    *uint  `json:"created_by_id,omitempty"`
	UsedByID       *uint  `json:"used_by_id,omitempty"`
}

// NewInviteCodeValue returns INV- followed by 8 upper-case hex chars.
func NewInviteCodeValue() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return INVITE_CODE_PREFIX + strings.ToUpper(id[:8])
}

// CreateInviteCode stores invite, generating its code & defaulting its role to INDIVIDUAL.
func CreateInviteCode(invite *InviteCode) error {
	invite.Code = strings.TrimSpace(invite.Code)
	if invite.Code == "" {
		invite.Code = NewInviteCodeValue()
	}

	if invite.RoleName == "" {
		invite.RoleName = INDIVIDUAL_ROLE
	}
	if !RoleNameMap[invite.RoleName] {
		return fmt.Errorf("unknown role %q", invite.RoleName)
	}

	invite.Email = strings.ToLower(strings.TrimSpace(invite.Email))
	invite.IsUsed = false
	invite.UsedByID = nil

	return db.Create(invite).Error
}

func FindInviteCode(id interface{}) (*InviteCode, error) {
	invite := InviteCode{}
	err := db.First(&invite, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &invite, nil
}

// FetchInviteCodes lists invite codes, newest first. A non-nil organizationID
// restricts the list to codes minted for that organization.
func FetchInviteCodes(page int, organizationID *uint) ([]InviteCode, *Paging, error) {
	var total int64
	invites := []InviteCode{}

	query := func() *gorm.DB {
		if organizationID == nil {
			return db.Model(&InviteCode{})
		}
		return db.Model(&InviteCode{}).Where("organization_id = ?", *organizationID)
	}

	err := query().Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = query().Scopes(paginate(page, MAX_PAGE_SIZE)).Order("id desc").Find(&invites).Error
	if err != nil {
		return nil, nil, err
	}

	return invites, newPaging(int64(page), MAX_PAGE_SIZE, total), nil
}

func DeleteInviteCode(id interface{}) error {
	res := db.Delete(&InviteCode{}, id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
