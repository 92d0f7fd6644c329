package domain

type Role string

const (
	RoleOrdinary Role = "ordinary"
	RoleAdmin    Role = "admin"
	RoleRoot     Role = "root"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOrdinary, RoleAdmin, RoleRoot:
		return true
	default:
		return false
	}
}

type User struct {
	Model
	Name         string `gorm:"size:255;not null;uniqueIndex:idx_users_name_live,where:deleted_at IS NULL" json:"name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         Role   `gorm:"size:16;not null;default:ordinary;check:chk_users_role,role IN ('ordinary','admin','root')" json:"role"`
}
