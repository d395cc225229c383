package models

import (
	"fmt"
	"strings"

	"github.com/Daskott/zantag/server/auth"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInviteCodeInvalid  = errors.New("invalid or expired invite code")
	ErrInviteCodeRequired = errors.New("invite code is required")
	ErrInvalidToken       = errors.New("invalid or expired verification token")

	allFieldsExceptPassword = []string{"id",
		"name",
		"email",
		"phone_number",
		"role_id",
		"organization_id",
		"is_email_verified",
		"created_at",
		"updated_at",
	}

	updatableFields = []string{"name",
		"email",
		"phone_number",
		"password",
		"role_id",
		"organization_id",
	}
)

type User struct {
	BaseModel
	Name              string   `json:"name"`
	Email             string   `json:"email" validate:"required,email" gorm:"not null;unique"`
	Password          string   `json:"password,omitempty" validate:"required,password" gorm:"not null"`
	PhoneNumber       string   `json:"phone_number,omitempty" validate:"omitempty,e164"`
	RoleID            uint     `json:"role_id" gorm:"null"`
	Role              *Role    `json:"role,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	OrganizationID    *uint    `json:"organization_id,omitempty"`
	IsEmailVerified   bool     `json:"is_email_verified" gorm:"default:false"`
	VerificationToken *string  `json:"-" gorm:"unique"`
	Profile           *Profile `json:"profile,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// RoleName returns the name of the user's role, the role must be preloaded.
func (user *User) RoleName() string {
	if user.Role == nil {
		return ""
	}
	return user.Role.Name
}

func (user *User) IsAdmin() bool {
	return user.RoleName() == SUPER_ADMIN_ROLE
}

func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(fmt.Sprintf("%v", data["password"]))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	if email, ok := data["email"].(string); ok && email != user.Email {
		taken, err := emailTaken(db, email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
	}

	return db.Model(&User{}).Where("id = ?", user.ID).Select(updatableFields).Updates(data).Error
}

func (user *User) SetRole(roleName string) error {
	role, err := FindRole(roleName)
	if err != nil {
		return err
	}

	err = db.Model(&User{}).Where("id = ?", user.ID).Update("role_id", role.ID).Error
	if err != nil {
		return err
	}

	user.RoleID = role.ID
	user.Role = role
	return nil
}

// CreateUser hashes the user's password & stores the user with the given role.
func CreateUser(user *User, roleName string) error {
	return createUser(db, user, roleName)
}

// RegisterUser creates a self-registered user. The very first user becomes the
// SUPER_ADMIN & needs no invite code; after that the code is required when
// invitationOnly is set, and when given it must exist, be unused and match the
// email it was minted for. The code is consumed in the same transaction.
func RegisterUser(user *User, code string, invitationOnly bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&User{}).Count(&users).Error; err != nil {
			return err
		}

		if users == 0 {
			return createUser(tx, user, SUPER_ADMIN_ROLE)
		}

		code = strings.TrimSpace(code)
		if code == "" {
			if invitationOnly {
				return ErrInviteCodeRequired
			}
			return createUser(tx, user, INDIVIDUAL_ROLE)
		}

		invite := InviteCode{}
		err := tx.First(&invite, "code = ?", code).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteCodeInvalid
		}
		if err != nil {
			return err
		}

		if invite.IsUsed || (invite.Email != "" && !strings.EqualFold(invite.Email, user.Email)) {
			return ErrInviteCodeInvalid
		}

		roleName := invite.RoleName
		if roleName == "" {
			roleName = INDIVIDUAL_ROLE
		}
		user.OrganizationID = invite.OrganizationID

		if err := createUser(tx, user, roleName); err != nil {
			return err
		}

		res := tx.Model(&InviteCode{}).Where("id = ? AND is_used = ?", invite.ID, false).
			Updates(map[string]interface{}{"is_used": true, "used_by_id": user.ID})
		if res.Error != nil {
			return res.Error
		}

		// Lost a race with another signup using the same code
		if res.RowsAffected == 0 {
			return ErrInviteCodeInvalid
		}

		return nil
	})
}

// VerifyEmail marks the owner of token as verified & clears the token.
func VerifyEmail(token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}

	user := User{}
	err := db.Preload("Role").Select(allFieldsExceptPassword).First(&user, "verification_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	err = db.Model(&User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"is_email_verified":  true,
		"verification_token": nil,
	}).Error
	if err != nil {
		return nil, err
	}

	user.IsEmailVerified = true
	return &user, nil
}

// VerificationTokenFor returns the pending verification token of the user, or
// "" once the email is verified.
func VerificationTokenFor(userID uint) (string, error) {
	user := User{}
	err := db.Select("id", "verification_token").First(&user, "id = ?", userID).Error
	if err != nil {
		return "", err
	}

	if user.VerificationToken == nil {
		return "", nil
	}
	return *user.VerificationToken, nil
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Preload("Role").Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUserWithPassword returns the user with the given email, password hash included.
func FindUserWithPassword(email string) (*User, error) {
	user := User{}
	err := db.Preload("Role").First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FetchUsers(page int) ([]User, *Paging, error) {
	var total int64
	users := []User{}

	err := db.Model(&User{}).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, MAX_PAGE_SIZE)).Preload("Role").
		Select(allFieldsExceptPassword).Order("created_at desc").Find(&users).Error
	if err != nil {
		return nil, nil, err
	}

	return users, newPaging(int64(page), MAX_PAGE_SIZE, total), nil
}

// DeleteUser removes the user; their profile, links, documents & contacts
// cascade, organizations they administer lose their admin.
func DeleteUser(id interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Organization{}).Where("admin_id = ?", id).Update("admin_id", nil).Error
		if err != nil {
			return err
		}

		res := tx.Delete(&User{}, id)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func AtLeastOneUserExists() (bool, error) {
	var count int64
	err := db.Model(&User{}).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func createUser(tx *gorm.DB, user *User, roleName string) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	taken, err := emailTaken(tx, user.Email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	role := Role{}
	if err := tx.First(&role, "name = ?", roleName).Error; err != nil {
		return errors.Wrapf(err, "role %q", roleName)
	}

	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}

	token := uuid.NewString()
	user.Password = passwordHash
	user.RoleID = role.ID
	user.Role = &role
	user.VerificationToken = &token

	if err := tx.Omit("Role").Create(user).Error; err != nil {
		return err
	}

	return nil
}

func emailTaken(tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := tx.Model(&User{}).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Count(&count).Error
	return count > 0, err
}
