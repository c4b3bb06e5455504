package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"teamfinder/internal/models"
	"teamfinder/internal/repositories"
)

var (
	ErrThrottled       = errors.New("too many failed attempts")
	ErrInvalidCode     = errors.New("invalid or expired auth code")
	ErrSubjectNotFound = errors.New("user not found for redeemed code")
)

// Session is what a successful code exchange produces. The web layer turns
// it into a JWT; the service itself keeps no session state.
type Session struct {
	UserID        int
	EstablishedAt time.Time
}

// Notifier is the out-of-band channel (Telegram bot). Delivery is
// best-effort: implementations log failures and never return them.
type Notifier interface {
	NotifyAuthCode(telegramID, code, loginURL string)
	NotifyNewMessage(telegramID, senderName, preview string)
}

// AuthService обменивает одноразовый код из Telegram на веб-сессию.
// Порядок проверок в Login жёсткий: сначала троттлинг (заблокированный
// клиент не трогает хранилище кодов вообще), потом погашение кода.
type AuthService struct {
	codes    *TokenStore
	throttle *AttemptThrottle
	userRepo repositories.UserRepository
	notifier Notifier
	appURL   string
	now      func() time.Time
}

func NewAuthService(
	codes *TokenStore,
	throttle *AttemptThrottle,
	userRepo repositories.UserRepository,
	notifier Notifier,
	appURL string,
) *AuthService {
	return &AuthService{
		codes:    codes,
		throttle: throttle,
		userRepo: userRepo,
		notifier: notifier,
		appURL:   appURL,
		now:      time.Now,
	}
}

// Login validates the code for the requester (keyed by client IP) and
// returns the authenticated user plus a fresh session.
func (s *AuthService) Login(requesterKey, code string) (*models.User, Session, error) {
	if s.throttle.IsBlocked(requesterKey) {
		log.Printf("[auth][login] blocked requester=%s", requesterKey)
		return nil, Session{}, ErrThrottled
	}

	telegramID, ok := s.codes.Redeem(code)
	if !ok {
		s.throttle.RecordFailure(requesterKey)
		log.Printf("[auth][login] bad code requester=%s", requesterKey)
		return nil, Session{}, ErrInvalidCode
	}

	s.throttle.Clear(requesterKey)

	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		return nil, Session{}, fmt.Errorf("lookup user by telegram id: %w", err)
	}
	if user == nil {
		// код ссылается на удалённого пользователя — это аномалия данных,
		// а не ошибка клиента
		log.Printf("[auth][login] ANOMALY: valid code for missing telegram_id=%s", telegramID)
		return nil, Session{}, ErrSubjectNotFound
	}

	log.Printf("[auth][login] success userID=%d", user.ID)
	return user, Session{UserID: user.ID, EstablishedAt: s.now()}, nil
}

// RequestCode issues a login code for the user and hands it to the bot
// channel. Notification failures are the notifier's problem, never ours.
func (s *AuthService) RequestCode(user *models.User) (string, error) {
	code, err := s.codes.Issue(user.TelegramID)
	if err != nil {
		return "", err
	}
	loginURL := fmt.Sprintf("%s/auth?code=%s", s.appURL, code)
	if s.notifier != nil {
		s.notifier.NotifyAuthCode(user.TelegramID, code, loginURL)
	}
	log.Printf("[auth][code] issued userID=%d", user.ID)
	return code, nil
}
