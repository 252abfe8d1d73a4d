package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User covers both panel staff and print-shop customers. Customers are
// usually created from the order form, with a generated password sent by SMS.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(80)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(80)" json:"last_name"`
	Mobile    string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"mobile"`
	Email     string    `gorm:"type:varchar(150)" json:"email"`

	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Mobile
	}
	return name
}
