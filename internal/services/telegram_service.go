package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// TelegramService handles all traffic to the Telegram Bot API: outgoing
// messages, callback answers, the channel-membership gate and webhook
// registration.
type TelegramService struct {
	botToken string
	adminIDs []int64
	client   *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken string, adminIDs []int64) *TelegramService {
	return &TelegramService{
		botToken: botToken,
		adminIDs: adminIDs,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Update is the subset of a Telegram webhook payload the bot reacts to.
type Update struct {
	Message       *Message           `json:"message"`
	CallbackQuery *CallbackQuery     `json:"callback_query"`
	ChatMember    *ChatMemberUpdated `json:"chat_member"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64         `json:"message_id"`
	From      *TelegramUser `json:"from"`
	Chat      Chat          `json:"chat"`
	Text      string        `json:"text"`
}

// TelegramUser identifies the sender of a message or callback.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Chat identifies the chat a message arrived in.
type Chat struct {
	ID int64 `json:"id"`
}

// CallbackQuery is an inline-button press.
type CallbackQuery struct {
	ID   string        `json:"id"`
	From *TelegramUser `json:"from"`
	Data string        `json:"data"`
}

// ChatMemberUpdated reports a membership change in a gated channel.
type ChatMemberUpdated struct {
	From          *TelegramUser `json:"from"`
	NewChatMember ChatMember    `json:"new_chat_member"`
}

// ChatMember is a user's membership state in a channel.
type ChatMember struct {
	Status string        `json:"status"`
	User   *TelegramUser `json:"user"`
}

// InlineKeyboardButton is one button of an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// InlineKeyboardMarkup attaches an inline keyboard to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// ReplyKeyboardMarkup attaches a persistent reply keyboard.
type ReplyKeyboardMarkup struct {
	Keyboard       [][]string `json:"keyboard"`
	ResizeKeyboard bool       `json:"resize_keyboard"`
}

type outgoingMessage struct {
	ChatID      int64  `json:"chat_id"`
	Text        string `json:"text"`
	ParseMode   string `json:"parse_mode"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

func (s *TelegramService) call(method string, payload any) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/%s", s.botToken, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] %s failed: %v", method, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] %s returned status %d", method, resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendMessage sends a text message to the chat, optionally with a
// keyboard markup.
func (s *TelegramService) SendMessage(chatID int64, text string, markup any) error {
	return s.call("sendMessage", outgoingMessage{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
}

// AnswerCallback acknowledges an inline-button press with a toast.
func (s *TelegramService) AnswerCallback(callbackID, text string) error {
	return s.call("answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
	})
}

// SendToAdmins broadcasts a message to every configured admin chat.
// Delivery failures are logged, never propagated.
func (s *TelegramService) SendToAdmins(text string) {
	for _, id := range s.adminIDs {
		if err := s.SendMessage(id, text, nil); err != nil {
			log.Printf("[Telegram] admin notification failed for %d: %v", id, err)
		}
	}
}

// IsAdmin reports whether the user id is on the admin allow-list.
func (s *TelegramService) IsAdmin(userID int64) bool {
	for _, id := range s.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type chatMemberResponse struct {
	OK     bool       `json:"ok"`
	Result ChatMember `json:"result"`
}

// IsMemberOfAll reports whether the user currently belongs to every
// required channel. Transport failures count as not-a-member, so the
// gate stays closed rather than silently open.
func (s *TelegramService) IsMemberOfAll(channels []string, userID int64) bool {
	for _, channel := range channels {
		if !s.isMember(channel, userID) {
			return false
		}
	}
	return true
}

func (s *TelegramService) isMember(channel string, userID int64) bool {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return false
	}

	endpoint := fmt.Sprintf(
		"https://api.telegram.org/bot%s/getChatMember?chat_id=%s&user_id=%d",
		s.botToken, url.QueryEscape(channel), userID,
	)

	resp, err := s.client.Get(endpoint)
	if err != nil {
		log.Printf("[Telegram] getChatMember failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	var parsed chatMemberResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("[Telegram] getChatMember decode failed: %v", err)
		return false
	}
	if !parsed.OK {
		return false
	}

	switch parsed.Result.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

// SetWebhook points the bot at the public webhook URL. Telegram echoes
// the secret back on every delivery so the middleware can check it.
func (s *TelegramService) SetWebhook(webhookURL, secret string) error {
	return s.call("setWebhook", map[string]any{
		"url":             webhookURL,
		"secret_token":    secret,
		"allowed_updates": []string{"message", "callback_query", "chat_member"},
	})
}
