package models

const (
	SUPER_ADMIN_ROLE    = "SUPER_ADMIN"
	BUSINESS_ADMIN_ROLE = "BUSINESS_ADMIN"
	BUSINESS_STAFF_ROLE = "BUSINESS_STAFF"
	INDIVIDUAL_ROLE     = "INDIVIDUAL"
)

var RoleNameMap = map[string]bool{
	SUPER_ADMIN_ROLE:    true,
	BUSINESS_ADMIN_ROLE: true,
	BUSINESS_STAFF_ROLE: true,
	INDIVIDUAL_ROLE:     true,
}

type Role struct {
	BaseModel
	Name string `json:"name" gorm:"not null;unique"`
}

func FindRole(name string) (*Role, error) {
	role := Role{}
	err := db.Select("id", "name").First(&role, "name = ?", name).Error
	if err != nil {
		return nil, err
	}

	return &role, nil
}
