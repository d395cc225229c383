package models

const (
	SOCIAL_LINK  = "SOCIAL"
	PHONE_LINK   = "PHONE"
	EMAIL_LINK   = "EMAIL"
	WEBSITE_LINK = "WEBSITE"
)

var LinkTypeMap = map[string]bool{
	SOCIAL_LINK:  true,
	PHONE_LINK:   true,
	EMAIL_LINK:   true,
	WEBSITE_LINK: true,
}

type Link struct {
	BaseModel
	ProfileID uint   `json:"profile_id" gorm:"not null;index"`
	Title     string `json:"title" validate:"required,max=100" gorm:"not null"`
	URL       string `json:"url" validate:"required,max=2048,link_url" gorm:"not null"`
	Type      string `json:"type" validate:"omitempty,link_type" gorm:"not null"`
	Icon      string `json:"icon,omitempty" validate:"max=100"`
}
