package models

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is an authenticated caller. Guests created through the anonymous flow
// have no email or password hash. Only Role == UserRoleAdmin grants admin
// access; every other value, including an unset column, means non-admin.
type User struct {
	BaseModel
	Email        *string  `json:"email,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash *string  `json:"-" gorm:"type:text"`
	Name         *string  `json:"name,omitempty" gorm:"type:varchar(255)"`
	Phone        *string  `json:"phone,omitempty" gorm:"type:varchar(50)"`
	AvatarURL    *string  `json:"avatarURL,omitempty" gorm:"type:text"`
	IsAnonymous  bool     `json:"isAnonymous" gorm:"not null;default:false"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
