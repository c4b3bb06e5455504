package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	codeLength      = 8
	codeAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxIssueRetries = 3

	DefaultCodeTTL = 5 * time.Minute
)

var ErrCodeCollision = errors.New("auth code collision")

type authToken struct {
	subjectID string
	issuedAt  time.Time
}

// TokenStore держит выданные одноразовые коды входа в памяти.
// Код живёт до погашения или до истечения TTL; фоновая уборка
// выметает просроченные записи, чтобы карта не росла бесконечно.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]authToken
	ttl    time.Duration
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

func NewTokenStore(ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &TokenStore{
		tokens: make(map[string]authToken),
		ttl:    ttl,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
}

// NewTokenStoreWithClock — для тестов, чтобы не ждать реальный TTL.
func NewTokenStoreWithClock(ttl time.Duration, now func() time.Time) *TokenStore {
	s := NewTokenStore(ttl)
	s.now = now
	return s
}

// Issue generates a fresh single-use code bound to the subject. Codes are
// 8 chars over [0-9A-Z] (36^8 keyspace) from crypto/rand; a collision with
// a live code is retried with a new value.
func (s *TokenStore) Issue(subjectID string) (string, error) {
	for i := 0; i < maxIssueRetries; i++ {
		code, err := generateCode()
		if err != nil {
			return "", fmt.Errorf("generate auth code: %w", err)
		}
		s.mu.Lock()
		if _, exists := s.tokens[code]; exists {
			s.mu.Unlock()
			continue
		}
		s.tokens[code] = authToken{subjectID: subjectID, issuedAt: s.now()}
		s.mu.Unlock()
		return code, nil
	}
	return "", ErrCodeCollision
}

// Redeem consumes the code. A live code yields its subject exactly once;
// an unknown or expired code yields ok=false with no distinction between
// the two, so callers cannot probe for "expired but real" codes.
func (s *TokenStore) Redeem(code string) (subjectID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, exists := s.tokens[code]
	if !exists {
		return "", false
	}
	delete(s.tokens, code)
	if s.now().Sub(tok.issuedAt) > s.ttl {
		return "", false
	}
	return tok.subjectID, true
}

// StartSweeper runs periodic reclamation until Stop is called. The sweep
// takes the same lock as Redeem, so it can never race a live redemption
// of the same code.
func (s *TokenStore) StartSweeper(interval time.Duration) {
	if interval <= 0 || interval > s.ttl {
		interval = s.ttl
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					log.Printf("[auth][codes][sweep] removed=%d", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *TokenStore) Stop() {
	s.once.Do(func() { close(s.stop) })
}

func (s *TokenStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for code, tok := range s.tokens {
		if now.Sub(tok.issuedAt) > s.ttl {
			delete(s.tokens, code)
			removed++
		}
	}
	return removed
}

func (s *TokenStore) liveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
