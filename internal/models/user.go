package models

import "time"

const (
	RoleCitizen = "citizen"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

func ValidRole(r string) bool {
	return r == RoleCitizen || r == RoleStaff || r == RoleAdmin
}

type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              string     `json:"role"`
	IsVerified        bool       `json:"isVerified"`
	VerificationToken string     `json:"-"`
	Name              string     `json:"name,omitempty"`
	Age               *int       `json:"age,omitempty"`
	DOB               *time.Time `json:"dob,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Bio               string     `json:"bio,omitempty"`
	ProfilePic        string     `json:"profilePic,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ProfileUpdate carries the editable profile fields. A nil ProfilePic keeps
// the current picture.
type ProfileUpdate struct {
	Name       string
	Age        *int
	DOB        *time.Time
	Phone      string
	Bio        string
	ProfilePic *string
}

// PublicProfile is what anyone holding a profile link may see.
type PublicProfile struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Name       string     `json:"name,omitempty"`
	Age        *int       `json:"age,omitempty"`
	DOB        *time.Time `json:"dob,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	ProfilePic string     `json:"profilePic,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Age:        u.Age,
		DOB:        u.DOB,
		Phone:      u.Phone,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}
