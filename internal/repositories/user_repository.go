package repositories

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"teamfinder/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByTelegramID(telegramID string) (*models.User, error)
	UpdateProfile(user *models.User) error
	List(filter models.UserFilter) ([]*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
        id, telegram_id, username, first_name, last_name, COALESCE(photo_url, ''),
        COALESCE(name, ''), COALESCE(role, 'other'), COALESCE(skills, '{}'),
        COALESCE(experience, ''), COALESCE(bio, ''), looking_for_team,
        auth_date, created_at, updated_at
`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var skills pq.StringArray
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.PhotoURL,
		&u.Profile.Name, &u.Profile.Role, &skills,
		&u.Profile.Experience, &u.Profile.Bio, &u.Profile.LookingForTeam,
		&u.AuthDate, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Profile.Skills = []string(skills)
	return u, nil
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
                INSERT INTO users (telegram_id, username, first_name, last_name, photo_url, role, auth_date)
                VALUES ($1, $2, $3, $4, NULLIF($5, ''), 'other', $6)
                RETURNING id, created_at, updated_at
        `
	return r.DB.QueryRow(q,
		user.TelegramID, user.Username, user.FirstName, user.LastName, user.PhotoURL, user.AuthDate,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) GetByTelegramID(telegramID string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	u, err := scanUser(r.DB.QueryRow(q, telegramID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) UpdateProfile(user *models.User) error {
	const q = `
                UPDATE users
                SET name = $2, role = $3, skills = $4, experience = $5, bio = $6,
                    looking_for_team = $7, updated_at = now()
                WHERE id = $1
                RETURNING updated_at
        `
	return r.DB.QueryRow(q,
		user.ID,
		user.Profile.Name, user.Profile.Role, pq.Array(user.Profile.Skills),
		user.Profile.Experience, user.Profile.Bio, user.Profile.LookingForTeam,
	).Scan(&user.UpdatedAt)
}

func (r *userRepository) List(filter models.UserFilter) ([]*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id <> $1`
	args := []any{filter.ExcludeID}
	if filter.LookingForTeam != nil {
		args = append(args, *filter.LookingForTeam)
		q += fmt.Sprintf(" AND looking_for_team = $%d", len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		q += fmt.Sprintf(" AND role = $%d", len(args))
	}
	args = append(args, filter.Limit)
	q += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
