package server

import (
	"github.com/Daskott/zantag/server/auth"
	"github.com/Daskott/zantag/server/cardtext"
	"github.com/Daskott/zantag/server/models"
)

type RequestContextKey string

type ResponsePayload struct {
	Errors  []string    `json:"errors"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type DecodedJWT struct {
	Claims   *auth.ZantagTokenClaims
	User     *models.User
	ErrorMsg string
}

type PagedData struct {
	Items  interface{}    `json:"items"`
	Paging *models.Paging `json:"paging"`
}

type SessionData struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ScanResult is the pre-filled lead form after a card scan. Warnings never
// block saving the form.
type ScanResult struct {
	Form     cardtext.LeadForm `json:"form"`
	Fields   cardtext.Fields   `json:"fields"`
	Warnings []string          `json:"warnings"`
}

type SignUpRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=320"`
	Password   string `json:"password" validate:"required,password,min=6,max=72"`
	InviteCode string `json:"invite_code"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password,min=6,max=72"`
}

type ProfileSetupRequest struct {
	Username    string `json:"username" validate:"required,username"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Bio         string `json:"bio" validate:"max=500"`
}

type ProfileUpdateRequest struct {
	Username       *string       `json:"username" validate:"omitempty,username"`
	DisplayName    *string       `json:"display_name" validate:"omitempty,min=1,max=100"`
	Bio            *string       `json:"bio" validate:"omitempty,max=500"`
	PrimaryColor   *string       `json:"primary_color" validate:"omitempty,hex_color"`
	SecondaryColor *string       `json:"secondary_color" validate:"omitempty,hex_color"`
	Links          []models.Link `json:"links" validate:"omitempty,max=50,dive"`
}

type LeadRequest struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Email  string          `json:"email" validate:"omitempty,email,max=320"`
	Phone  string          `json:"phone" validate:"max=50"`
	Notes  string          `json:"notes" validate:"max=5000"`
	Source cardtext.Source `json:"source"`
}

type UserUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email          *string `json:"email" validate:"omitempty,email,max=320"`
	Role           *string `json:"role" validate:"omitempty,role"`
	OrganizationID *uint   `json:"organization_id"`
}

type OrganizationRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Slug    string `json:"slug" validate:"omitempty,max=100"`
	AdminID *uint  `json:"admin_id"`
}

type InvitationRequest struct {
	Email          string `json:"email" validate:"omitempty,email"`
	RoleName       string `json:"role" validate:"omitempty,role"`
	OrganizationID *uint  `json:"organization_id"`
}

type SettingsRequest struct {
	InvitationOnly *bool `json:"invitation_only" validate:"required"`
}
