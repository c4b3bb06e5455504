package models

import "time"

// Роли участников — фиксированный список, как на фронте
var ValidRoles = []string{
	"frontend",
	"backend",
	"fullstack",
	"designer",
	"project-manager",
	"data-scientist",
	"mobile",
	"other",
}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Profile limits
const (
	MaxNameLength       = 100
	MaxBioLength        = 500
	MaxExperienceLength = 1000
	MaxSkillsCount      = 20
	MaxSkillLength      = 50
)

type Profile struct {
	Name           string   `json:"name"`
	Role           string   `json:"role"`
	Skills         []string `json:"skills"`
	Experience     string   `json:"experience"`
	Bio            string   `json:"bio"`
	LookingForTeam bool     `json:"lookingForTeam"`
}

type User struct {
	ID         int       `json:"id"`
	TelegramID string    `json:"-"` // внешний идентификатор, наружу не отдаём
	Username   string    `json:"username"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
	Profile    Profile   `json:"profile"`
	AuthDate   time.Time `json:"-"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

type ProfileUpdate struct {
	Name           *string   `json:"name"`
	Role           *string   `json:"role"`
	Skills         *[]string `json:"skills"`
	Experience     *string   `json:"experience"`
	Bio            *string   `json:"bio"`
	LookingForTeam *bool     `json:"lookingForTeam"`
}

// UserFilter narrows the teammate listing.
type UserFilter struct {
	ExcludeID      int
	LookingForTeam *bool
	Role           string
	Limit          int
	Offset         int
}
