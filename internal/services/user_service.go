package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"teamfinder/internal/models"
	"teamfinder/internal/repositories"
)

var ErrUserNotFound = errors.New("user not found")

// ValidationError carries the bounds-check failure back to the handler.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type UserService interface {
	GetOrCreateByTelegram(telegramID, username, firstName, lastName string) (*models.User, error)
	GetByID(id int) (*models.User, error)
	UpdateProfile(userID int, upd models.ProfileUpdate) (*models.User, error)
	ListUsers(filter models.UserFilter) ([]*models.User, error)
}

type userService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

// GetOrCreateByTelegram is the bot-side registration path: first /start
// creates the account, later ones just return it.
func (s *userService) GetOrCreateByTelegram(telegramID, username, firstName, lastName string) (*models.User, error) {
	user, err := s.repo.GetByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	if username == "" {
		username = "user_" + telegramID
	}
	user = &models.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		AuthDate:   time.Now(),
	}
	user.Profile.Role = "other"
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	log.Printf("[users] created userID=%d from telegram", user.ID)
	return user, nil
}

func (s *userService) GetByID(id int) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies only the fields present in the request, after
// bounds checks. Unknown roles and oversized fields are rejected outright.
func (s *userService) UpdateProfile(userID int, upd models.ProfileUpdate) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if len(*upd.Name) > models.MaxNameLength {
			return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("longer than %d chars", models.MaxNameLength)}
		}
		user.Profile.Name = *upd.Name
	}
	if upd.Role != nil {
		if !models.IsValidRole(*upd.Role) {
			return nil, &ValidationError{Field: "role", Reason: "unknown role"}
		}
		user.Profile.Role = *upd.Role
	}
	if upd.Skills != nil {
		if len(*upd.Skills) > models.MaxSkillsCount {
			return nil, &ValidationError{Field: "skills", Reason: fmt.Sprintf("more than %d skills", models.MaxSkillsCount)}
		}
		for _, skill := range *upd.Skills {
			if len(skill) > models.MaxSkillLength {
				return nil, &ValidationError{Field: "skills", Reason: fmt.Sprintf("skill longer than %d chars", models.MaxSkillLength)}
			}
		}
		user.Profile.Skills = *upd.Skills
	}
	if upd.Experience != nil {
		if len(*upd.Experience) > models.MaxExperienceLength {
			return nil, &ValidationError{Field: "experience", Reason: fmt.Sprintf("longer than %d chars", models.MaxExperienceLength)}
		}
		user.Profile.Experience = *upd.Experience
	}
	if upd.Bio != nil {
		if len(*upd.Bio) > models.MaxBioLength {
			return nil, &ValidationError{Field: "bio", Reason: fmt.Sprintf("longer than %d chars", models.MaxBioLength)}
		}
		user.Profile.Bio = *upd.Bio
	}
	if upd.LookingForTeam != nil {
		user.Profile.LookingForTeam = *upd.LookingForTeam
	}

	if err := s.repo.UpdateProfile(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(filter models.UserFilter) ([]*models.User, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(filter)
}
