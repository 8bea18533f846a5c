package user

import "time"

const (
	StatusInactive int64 = 0
	StatusActive   int64 = 1
)

type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CompanyID int64     `gorm:"not null;index" json:"companyId"`
	LastName  string    `gorm:"size:100;not null" json:"lastName"`
	FirstName string    `gorm:"size:100;not null" json:"firstName"`
	Status    int64     `gorm:"not null;default:1" json:"status"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.LastName + " " + u.FirstName
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
