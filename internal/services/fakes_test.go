package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"teamfinder/internal/models"
)

// fakeUserRepo is an in-memory repositories.UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) add(telegramID, username string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &models.User{
		ID:         r.nextID,
		TelegramID: telegramID,
		Username:   username,
		AuthDate:   time.Now(),
	}
	u.Profile.Role = "other"
	r.users[u.ID] = u
	r.nextID++
	return u
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.users[user.ID] = user
	r.nextID++
	return nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByTelegramID(telegramID string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateProfile(user *models.User) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.New("no such user")
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(filter models.UserFilter) ([]*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.ID == filter.ExcludeID {
			continue
		}
		if filter.Role != "" && u.Profile.Role != filter.Role {
			continue
		}
		if filter.LookingForTeam != nil && u.Profile.LookingForTeam != *filter.LookingForTeam {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else {
		out = nil
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// fakeMessageRepo mirrors the SQL ordering contracts of the real repository.
type fakeMessageRepo struct {
	mu     sync.Mutex
	nextID int
	msgs   []*models.Message
	err    error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1}
}

func (r *fakeMessageRepo) addAt(fromID, toID int, content string, at time.Time) *models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := &models.Message{ID: r.nextID, FromID: fromID, ToID: toID, Content: content, CreatedAt: at}
	r.nextID++
	r.msgs = append(r.msgs, msg)
	return msg
}

func (r *fakeMessageRepo) Create(fromID, toID int, content string) (*models.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.addAt(fromID, toID, content, time.Now()), nil
}

func (r *fakeMessageRepo) ListByParticipant(userID int) ([]*models.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.msgs {
		if m.FromID == userID || m.ToID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	// created_at DESC, id DESC — как в SQL
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *fakeMessageRepo) ListBetween(userID, partnerID int) ([]*models.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.msgs {
		if (m.FromID == userID && m.ToID == partnerID) || (m.FromID == partnerID && m.ToID == userID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMessageRepo) UnreadCountsByPartner(userID int) (map[int]int, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[int]int)
	for _, m := range r.msgs {
		if m.ToID == userID && !m.Read {
			counts[m.FromID]++
		}
	}
	return counts, nil
}

func (r *fakeMessageRepo) CountUnread(userID int) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.ToID == userID && !m.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) MarkRead(fromID, toID int) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.msgs {
		if m.FromID == fromID && m.ToID == toID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

// fakeNotifier records notifications for assertions.
type fakeNotifier struct {
	mu        sync.Mutex
	authCodes []string
	loginURLs []string
	previews  []string
}

func (n *fakeNotifier) NotifyAuthCode(telegramID, code, loginURL string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.authCodes = append(n.authCodes, code)
	n.loginURLs = append(n.loginURLs, loginURL)
}

func (n *fakeNotifier) NotifyNewMessage(telegramID, senderName, preview string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.previews = append(n.previews, preview)
}
