package models

import "time"

const MaxMessageLength = 5000

type Message struct {
	ID        int       `json:"id"`
	FromID    int       `json:"from"`
	ToID      int       `json:"to"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationSummary — одна строка списка диалогов: собеседник,
// последнее сообщение и счётчик непрочитанных. Считается заново на
// каждый запрос, нигде не хранится.
type ConversationSummary struct {
	PartnerID     int       `json:"userId"`
	Username      string    `json:"username"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageTime"`
	UnreadCount   int       `json:"unreadCount"`
}
