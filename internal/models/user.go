package models

import (
	"github.com/jinzhu/gorm"
)

// Group names used for role checks. A user's role is a set membership:
// a user may belong to several groups at once, and customers belong to none.
const (
	GroupAdmins       = "Admins"
	GroupManagers     = "Managers"
	GroupDeliveryCrew = "Delivery_Crew"
)

// User represents an account that can browse the menu, build a cart and
// place orders. Staff roles are expressed through group membership.
type User struct {
	gorm.Model
	Username     string  `gorm:"unique_index;not null" json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	IsStaff      bool    `json:"is_staff"`
	Groups       []Group `gorm:"many2many:user_groups" json:"-"`
}

// Group is a named role container (Admins, Managers, Delivery_Crew).
type Group struct {
	gorm.Model
	Name string `gorm:"unique_index;not null" json:"name"`
}

// InGroup reports whether the user is a member of the named group.
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
