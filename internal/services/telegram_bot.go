package services

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot — канал доставки кодов входа и уведомлений. Слушает
// long polling и реализует Notifier. Все отправки best-effort: ошибка
// уходит в лог и никогда наружу.
type TelegramBot struct {
	api    *tgbotapi.BotAPI
	users  UserService
	auth   *AuthService
	appURL string
}

// NewTelegramBot connects to the Bot API. With an empty token (local dev,
// tests) it returns a bot whose sends are no-ops.
func NewTelegramBot(token, appURL string, users UserService) (*TelegramBot, error) {
	b := &TelegramBot{users: users, appURL: appURL}
	if token == "" {
		log.Printf("[tg] no bot token, running without telegram")
		return b, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	b.api = api
	log.Printf("[tg] authorized as @%s", api.Self.UserName)
	return b, nil
}

// SetAuthService breaks the construction cycle: the bot needs AuthService
// for /start, AuthService needs the bot as its Notifier.
func (b *TelegramBot) SetAuthService(auth *AuthService) {
	b.auth = auth
}

// Start consumes updates until the channel closes. Call in a goroutine.
func (b *TelegramBot) Start() {
	if b == nil || b.api == nil {
		return
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	for update := range b.api.GetUpdatesChan(u) {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		switch update.Message.Command() {
		case "start":
			b.handleStart(update.Message)
		case "help":
			b.handleHelp(update.Message)
		}
	}
}

func (b *TelegramBot) handleStart(msg *tgbotapi.Message) {
	telegramID := strconv.FormatInt(msg.From.ID, 10)
	user, err := b.users.GetOrCreateByTelegram(telegramID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
	if err != nil {
		log.Printf("[tg][start][err] get-or-create telegram_id=%s: %v", telegramID, err)
		b.reply(msg.Chat.ID, "Произошла ошибка. Попробуйте еще раз.")
		return
	}
	// сообщение с кодом уедет через NotifyAuthCode
	if _, err := b.auth.RequestCode(user); err != nil {
		log.Printf("[tg][start][err] issue code userID=%d: %v", user.ID, err)
		b.reply(msg.Chat.ID, "Произошла ошибка. Попробуйте еще раз.")
	}
}

func (b *TelegramBot) handleHelp(msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID,
		"Доступные команды:\n"+
			"/start - Получить код для входа на платформу\n"+
			"/help - Показать это сообщение\n\n"+
			"Вы будете получать уведомления о новых сообщениях на платформе.")
}

func (b *TelegramBot) NotifyAuthCode(telegramID, code, loginURL string) {
	chatID, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		log.Printf("[tg][code][err] bad telegram_id=%q: %v", telegramID, err)
		return
	}
	text := fmt.Sprintf(
		"Добро пожаловать в платформу поиска команды для хакатона! 🚀\n\n"+
			"Для входа на платформу используйте этот код: <code>%s</code>\n\n"+
			"Код действителен 5 минут.", code)

	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Войти на платформу", loginURL),
		),
	)
	b.send(m)
}

func (b *TelegramBot) NotifyNewMessage(telegramID, senderName, preview string) {
	chatID, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		log.Printf("[tg][notify][err] bad telegram_id=%q: %v", telegramID, err)
		return
	}
	text := fmt.Sprintf(
		"💬 Новое сообщение от %s:\n\n\"%s\"\n\n"+
			"Перейдите на платформу, чтобы ответить: %s/messages",
		senderName, preview, b.appURL)
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *TelegramBot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *TelegramBot) send(m tgbotapi.MessageConfig) {
	if b == nil || b.api == nil {
		log.Printf("[tg][skip] chatID=%d", m.ChatID)
		return
	}
	if _, err := b.api.Send(m); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", m.ChatID, err)
	}
}
