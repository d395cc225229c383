package models

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	RECENT_LEADS_LIMIT      = 5
	DEFAULT_PRIMARY_COLOR   = "#0f172a"
	DEFAULT_SECONDARY_COLOR = "#f8fafc"
)

var (
	ErrUsernameTaken = errors.New("username is already taken")
	ErrProfileExists = errors.New("profile already exists")

	usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,32}$`)
	colorPattern    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	updatableProfileFields = []string{"display_name",
		"bio",
		"primary_color",
		"secondary_color",
		"username",
	}
)

type Profile struct {
	BaseModel
	UserID         uint       `json:"user_id" gorm:"not null;unique"`
	Username       string     `json:"username" gorm:"not null;unique"`
	DisplayName    string     `json:"display_name" gorm:"not null"`
	Bio            string     `json:"bio"`
	AvatarKey      string     `json:"avatar_key,omitempty"`
	PrimaryColor   string     `json:"primary_color"`
	SecondaryColor string     `json:"secondary_color"`
	Views          int64      `json:"views" gorm:"default:0"`
	Links          []Link     `json:"links,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Documents      []Document `json:"documents,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Contacts       []Contact  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
}

type ProfileStats struct {
	Views          int64            `json:"views"`
	Leads          int64            `json:"leads"`
	Documents      int64            `json:"documents"`
	Links          int64            `json:"links"`
	ConversionRate float64          `json:"conversion_rate"`
	LeadsByMonth   []MonthlyCount   `json:"leads_by_month"`
	LeadsBySource  map[string]int64 `json:"leads_by_source"`
	RecentLeads    []Contact        `json:"recent_leads"`
}

// ValidUsername reports whether username is 3-32 chars of [a-z0-9_-].
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// ValidColor reports whether color is a #rrggbb hex color.
func ValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

// CreateProfile sets up the public card of profile.UserID.
func CreateProfile(profile *Profile) error {
	profile.Username = strings.ToLower(strings.TrimSpace(profile.Username))
	if profile.PrimaryColor == "" {
		profile.PrimaryColor = DEFAULT_PRIMARY_COLOR
	}
	if profile.SecondaryColor == "" {
		profile.SecondaryColor = DEFAULT_SECONDARY_COLOR
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Profile{}).Where("user_id = ?", profile.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrProfileExists
		}

		taken, err := usernameTaken(tx, profile.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		return tx.Create(profile).Error
	})
}

func (profile *Profile) Update(data map[string]interface{}) error {
	if username, ok := data["username"].(string); ok {
		username = strings.ToLower(strings.TrimSpace(username))
		taken, err := usernameTaken(db, username, profile.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
		data["username"] = username
	}

	return db.Model(&Profile{}).Where("id = ?", profile.ID).Select(updatableProfileFields).Updates(data).Error
}

func (profile *Profile) SetAvatar(key string) error {
	err := db.Model(&Profile{}).Where("id = ?", profile.ID).Update("avatar_key", key).Error
	if err != nil {
		return err
	}

	profile.AvatarKey = key
	return nil
}

// SyncLinks makes the profile's links match links: entries with an id owned
// by this profile are updated, entries without one are created, and every
// stored link missing from links is deleted.
func (profile *Profile) SyncLinks(links []Link) error {
	return db.Transaction(func(tx *gorm.DB) error {
		keep := []uint{}

		for i := range links {
			link := links[i]
			if link.Type == "" {
				link.Type = SOCIAL_LINK
			}

			if link.ID != 0 {
				res := tx.Model(&Link{}).Where("id = ? AND profile_id = ?", link.ID, profile.ID).
					Updates(map[string]interface{}{
						"title": link.Title,
						"url":   link.URL,
						"type":  link.Type,
						"icon":  link.Icon,
					})
				if res.Error != nil {
					return res.Error
				}

				// Ignore ids that belong to another profile or were deleted meanwhile
				if res.RowsAffected > 0 {
					keep = append(keep, link.ID)
				}
				continue
			}

			link.ProfileID = profile.ID
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			keep = append(keep, link.ID)
		}

		query := tx.Where("profile_id = ?", profile.ID)
		if len(keep) > 0 {
			query = query.Where("id NOT IN ?", keep)
		}

		return query.Delete(&Link{}).Error
	})
}

func (profile *Profile) LoadLinks() error {
	return db.Order("id asc").Find(&profile.Links, "profile_id = ?", profile.ID).Error
}

func (profile *Profile) LoadDocuments() error {
	return db.Order("created_at desc").Find(&profile.Documents, "profile_id = ?", profile.ID).Error
}

func (profile *Profile) Stats() (*ProfileStats, error) {
	stats := ProfileStats{Views: profile.Views, LeadsBySource: map[string]int64{}}

	counts := map[interface{}]*int64{
		&Contact{}:  &stats.Leads,
		&Document{}: &stats.Documents,
		&Link{}:     &stats.Links,
	}
	for model, count := range counts {
		err := db.Model(model).Where("profile_id = ?", profile.ID).Count(count).Error
		if err != nil {
			return nil, err
		}
	}

	if stats.Views > 0 {
		stats.ConversionRate = math.Round(float64(stats.Leads)/float64(stats.Views)*1000) / 10
	}

	contacts := []Contact{}
	err := db.Select("created_at", "source").Find(&contacts, "profile_id = ?", profile.ID).Error
	if err != nil {
		return nil, err
	}

	byMonth := map[string]int64{}
	for _, contact := range contacts {
		byMonth[contact.CreatedAt.Format("2006-01")]++
		stats.LeadsBySource[contact.Source]++
	}

	stats.LeadsByMonth = []MonthlyCount{}
	for month, total := range byMonth {
		stats.LeadsByMonth = append(stats.LeadsByMonth, MonthlyCount{Month: month, Total: total})
	}
	sort.Slice(stats.LeadsByMonth, func(i, j int) bool {
		return stats.LeadsByMonth[i].Month < stats.LeadsByMonth[j].Month
	})

	err = db.Order("created_at desc").Limit(RECENT_LEADS_LIMIT).Find(&stats.RecentLeads, "profile_id = ?", profile.ID).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// FindProfileBy returns the profile where field = value, links & documents preloaded.
func FindProfileBy(field string, value interface{}) (*Profile, error) {
	profile := Profile{}
	err := db.Preload("Links", func(db *gorm.DB) *gorm.DB {
		return db.Order("links.id asc")
	}).Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("documents.created_at desc")
	}).First(&profile, fieldCondition(field), value).Error
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// FindProfileByID returns the profile without associations.
func FindProfileByID(id interface{}) (*Profile, error) {
	profile := Profile{}
	err := db.First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// FindProfileByUserID returns the profile owned by userID without associations.
func FindProfileByUserID(userID interface{}) (*Profile, error) {
	profile := Profile{}
	err := db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func IncrementProfileViews(id uint) error {
	return db.Model(&Profile{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func usernameTaken(tx *gorm.DB, username string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&Profile{}).Where("username = ? AND id <> ?", username, exceptID).Count(&count).Error
	return count > 0, err
}

func fieldCondition(field string) string {
	return field + " = ?"
}
