package repositories

import (
	"database/sql"

	"teamfinder/internal/models"
)

// MessageRepository is the append-only message store. Read state only ever
// moves false -> true, and only through MarkRead which is scoped to the
// recipient — there is deliberately no generic update.
type MessageRepository interface {
	Create(fromID, toID int, content string) (*models.Message, error)
	ListByParticipant(userID int) ([]*models.Message, error)
	ListBetween(userID, partnerID int) ([]*models.Message, error)
	UnreadCountsByPartner(userID int) (map[int]int, error)
	CountUnread(userID int) (int, error)
	MarkRead(fromID, toID int) (int64, error)
}

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{DB: db}
}

func (r *messageRepository) Create(fromID, toID int, content string) (*models.Message, error) {
	const q = `
                INSERT INTO messages (from_id, to_id, content)
                VALUES ($1, $2, $3)
                RETURNING id, created_at
        `
	msg := &models.Message{
		FromID:  fromID,
		ToID:    toID,
		Content: content,
	}
	if err := r.DB.QueryRow(q, fromID, toID, content).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListByParticipant returns every message the user sent or received, newest
// first. Ties on created_at are ordered by id descending so scan order is
// deterministic.
func (r *messageRepository) ListByParticipant(userID int) ([]*models.Message, error) {
	const q = `
                SELECT id, from_id, to_id, content, read, created_at
                FROM messages
                WHERE from_id = $1 OR to_id = $1
                ORDER BY created_at DESC, id DESC
        `
	return r.queryMessages(q, userID)
}

func (r *messageRepository) ListBetween(userID, partnerID int) ([]*models.Message, error) {
	const q = `
                SELECT id, from_id, to_id, content, read, created_at
                FROM messages
                WHERE (from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1)
                ORDER BY created_at ASC, id ASC
        `
	return r.queryMessages(q, userID, partnerID)
}

func (r *messageRepository) queryMessages(q string, args ...any) ([]*models.Message, error) {
	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.FromID, &msg.ToID, &msg.Content, &msg.Read, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

func (r *messageRepository) UnreadCountsByPartner(userID int) (map[int]int, error) {
	const q = `
                SELECT from_id, COUNT(*)
                FROM messages
                WHERE to_id = $1 AND NOT read
                GROUP BY from_id
        `
	rows, err := r.DB.Query(q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var partnerID, n int
		if err := rows.Scan(&partnerID, &n); err != nil {
			return nil, err
		}
		counts[partnerID] = n
	}
	return counts, rows.Err()
}

func (r *messageRepository) CountUnread(userID int) (int, error) {
	const q = `SELECT COUNT(*) FROM messages WHERE to_id = $1 AND NOT read`
	var n int
	err := r.DB.QueryRow(q, userID).Scan(&n)
	return n, err
}

// MarkRead flips every unread message from one user to another in a single
// statement. The predicate is evaluated at update time, so a message that
// lands between a caller's fetch and this call is still covered.
func (r *messageRepository) MarkRead(fromID, toID int) (int64, error) {
	const q = `UPDATE messages SET read = TRUE WHERE from_id = $1 AND to_id = $2 AND NOT read`
	res, err := r.DB.Exec(q, fromID, toID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
