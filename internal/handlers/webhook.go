package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/frostvortexog/ZenithWave-Refer/internal/config"
	"github.com/frostvortexog/ZenithWave-Refer/internal/models"
	"github.com/frostvortexog/ZenithWave-Refer/internal/services"
	"github.com/frostvortexog/ZenithWave-Refer/internal/store"
)

// WebhookHandler reacts to Telegram updates: registration, the
// channel-membership gate, the user menu and the admin panel.
type WebhookHandler struct {
	cfg          *config.Config
	telegram     *services.TelegramService
	registration *services.RegistrationService
	verification *services.VerificationService
	redemption   *services.RedemptionService
	referrals    *services.ReferralService
	accounts     *store.AccountStore
	coupons      *store.CouponInventory
	logs         *store.RedemptionLogStore
	settings     *store.SettingsStore
	sessions     *store.SessionStore
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(db *gorm.DB, cfg *config.Config, telegram *services.TelegramService) *WebhookHandler {
	accounts := store.NewAccountStore(db)
	coupons := store.NewCouponInventory(db)
	logs := store.NewRedemptionLogStore(db)
	settings := store.NewSettingsStore(db)
	referrals := services.NewReferralService(accounts, telegram)

	return &WebhookHandler{
		cfg:          cfg,
		telegram:     telegram,
		registration: services.NewRegistrationService(accounts),
		verification: services.NewVerificationService(accounts, store.NewTokenStore(db), referrals),
		redemption:   services.NewRedemptionService(accounts, coupons, logs, settings, telegram),
		referrals:    referrals,
		accounts:     accounts,
		coupons:      coupons,
		logs:         logs,
		settings:     settings,
		sessions:     store.NewSessionStore(db),
	}
}

// Handle is the webhook entrypoint for Telegram updates. It always
// answers 200: a handling failure is logged, not bounced back to
// Telegram, which would only trigger redelivery of the same update.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	var update services.Update
	if err := c.BodyParser(&update); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid update payload")
	}

	ctx := c.UserContext()

	switch {
	case update.Message != nil && update.Message.From != nil:
		if err := h.handleMessage(ctx, update.Message); err != nil {
			log.Printf("webhook message handling failed: %v", err)
		}
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		if err := h.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("webhook callback handling failed: %v", err)
		}
	case update.ChatMember != nil:
		if err := h.handleChatMember(ctx, update.ChatMember); err != nil {
			log.Printf("webhook chat_member handling failed: %v", err)
		}
	}

	return c.SendString("ok")
}

func (h *WebhookHandler) handleMessage(ctx context.Context, msg *services.Message) error {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/start") {
		return h.handleStart(ctx, userID, text)
	}

	if h.telegram.IsAdmin(userID) {
		handled, err := h.handleAdminMessage(ctx, userID, text)
		if handled || err != nil {
			return err
		}
	}

	switch text {
	case "📊 Stats":
		return h.sendStats(ctx, userID)
	case "🔗 Referral Link":
		link := fmt.Sprintf("https://t.me/%s?start=%d", h.cfg.BotUsername, userID)
		return h.telegram.SendMessage(userID, "Your referral link:\n"+link, nil)
	case "💸 Withdraw":
		return h.handleWithdraw(ctx, userID)
	}

	return nil
}

func (h *WebhookHandler) handleStart(ctx context.Context, userID int64, text string) error {
	var referrerID *int64
	if fields := strings.Fields(text); len(fields) > 1 {
		if ref, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
			referrerID = &ref
		}
	}

	if err := h.registration.Register(ctx, userID, referrerID); err != nil {
		return err
	}

	if !h.telegram.IsMemberOfAll(h.cfg.RequiredChannels, userID) {
		return h.telegram.SendMessage(
			userID,
			"🔒 Join all channels first, then press /start again",
			joinKeyboard(h.cfg.RequiredChannels),
		)
	}

	return h.promptVerification(ctx, userID)
}

func (h *WebhookHandler) promptVerification(ctx context.Context, userID int64) error {
	account, err := h.accounts.Get(ctx, userID)
	if err != nil {
		return err
	}
	if account.Verified {
		return h.sendMainMenu(userID, "✅ You are verified")
	}

	token, err := h.verification.IssueToken(ctx, userID)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/verify?token=%s", strings.TrimRight(h.cfg.PublicBaseURL, "/"), token)
	markup := services.InlineKeyboardMarkup{InlineKeyboard: [][]services.InlineKeyboardButton{
		{{Text: "Verify Now", URL: link}},
		{{Text: "Check Verification", CallbackData: "verify_check"}},
	}}
	return h.telegram.SendMessage(userID, "🌐 Complete the web verification", markup)
}

func (h *WebhookHandler) sendMainMenu(userID int64, text string) error {
	keyboard := [][]string{
		{"📊 Stats", "🔗 Referral Link"},
		{"💸 Withdraw"},
	}
	if h.telegram.IsAdmin(userID) {
		keyboard = append(keyboard, []string{"👑 Admin Panel"})
	}
	return h.telegram.SendMessage(userID, text, services.ReplyKeyboardMarkup{
		Keyboard:       keyboard,
		ResizeKeyboard: true,
	})
}

func (h *WebhookHandler) sendStats(ctx context.Context, userID int64) error {
	account, err := h.accounts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUnknownAccount) {
			return h.telegram.SendMessage(userID, "Press /start first", nil)
		}
		return err
	}

	referrals, err := h.accounts.CountReferrals(ctx, userID)
	if err != nil {
		return err
	}

	return h.telegram.SendMessage(
		userID,
		fmt.Sprintf("💰 Points: %d\n👥 Referrals: %d", account.Points, referrals),
		nil,
	)
}

func (h *WebhookHandler) handleWithdraw(ctx context.Context, userID int64) error {
	code, err := h.redemption.Redeem(ctx, userID)
	switch {
	case err == nil:
		return h.telegram.SendMessage(userID, fmt.Sprintf("🎉 Your coupon: <b>%s</b>", code), nil)
	case errors.Is(err, store.ErrInsufficientPoints):
		threshold, thresholdErr := h.settings.WithdrawThreshold(ctx)
		if thresholdErr != nil {
			return thresholdErr
		}
		return h.telegram.SendMessage(userID, fmt.Sprintf("❌ Not enough points, you need %d", threshold), nil)
	case errors.Is(err, store.ErrOutOfStock):
		return h.telegram.SendMessage(userID, "❌ Coupons are out of stock, try again later", nil)
	case errors.Is(err, store.ErrUnknownAccount):
		return h.telegram.SendMessage(userID, "Press /start first", nil)
	}
	return err
}

func (h *WebhookHandler) handleCallback(ctx context.Context, cb *services.CallbackQuery) error {
	userID := cb.From.ID

	switch cb.Data {
	case "check_join":
		if !h.telegram.IsMemberOfAll(h.cfg.RequiredChannels, userID) {
			return h.telegram.AnswerCallback(cb.ID, "Join all channels first!")
		}
		if err := h.telegram.AnswerCallback(cb.ID, ""); err != nil {
			log.Printf("callback answer failed: %v", err)
		}
		return h.promptVerification(ctx, userID)

	case "verify_check":
		account, err := h.accounts.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrUnknownAccount) {
				return h.telegram.AnswerCallback(cb.ID, "Press /start first")
			}
			return err
		}
		if !account.Verified {
			return h.telegram.AnswerCallback(cb.ID, "Not verified yet")
		}
		if err := h.telegram.AnswerCallback(cb.ID, ""); err != nil {
			log.Printf("callback answer failed: %v", err)
		}
		return h.sendMainMenu(userID, "✅ Verified")
	}

	return nil
}

func (h *WebhookHandler) handleChatMember(ctx context.Context, upd *services.ChatMemberUpdated) error {
	status := upd.NewChatMember.Status
	if status != "left" && status != "kicked" {
		return nil
	}

	user := upd.NewChatMember.User
	if user == nil {
		user = upd.From
	}
	if user == nil {
		return nil
	}

	account, err := h.accounts.Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrUnknownAccount) {
			return nil
		}
		return err
	}

	return h.referrals.DeductForLeave(ctx, account)
}

func (h *WebhookHandler) handleAdminMessage(ctx context.Context, adminID int64, text string) (bool, error) {
	switch text {
	case "/admin", "👑 Admin Panel":
		return true, h.telegram.SendMessage(adminID, "Admin Panel", adminKeyboard())
	case "➕ Add Coupons":
		if err := h.sessions.Set(ctx, adminID, models.AdminStateAddCoupons); err != nil {
			return true, err
		}
		return true, h.telegram.SendMessage(adminID, "Send coupon codes, one per line", nil)
	case "➖ Remove Coupons":
		if err := h.sessions.Set(ctx, adminID, models.AdminStateRemoveCoupons); err != nil {
			return true, err
		}
		return true, h.telegram.SendMessage(adminID, "Send the number of coupons to remove", nil)
	case "⚙ Set Withdraw Points":
		if err := h.sessions.Set(ctx, adminID, models.AdminStateSetThreshold); err != nil {
			return true, err
		}
		return true, h.telegram.SendMessage(adminID, "Send the new withdraw threshold", nil)
	case "📦 Coupon Stock":
		count, err := h.coupons.CountAvailable(ctx)
		if err != nil {
			return true, err
		}
		return true, h.telegram.SendMessage(adminID, fmt.Sprintf("📦 Stock: %d", count), nil)
	case "📜 Redemption Log":
		return true, h.sendRedemptionLog(ctx, adminID)
	}

	state, ok, err := h.sessions.Get(ctx, adminID)
	if err != nil || !ok {
		return false, err
	}
	if err := h.sessions.Clear(ctx, adminID); err != nil {
		return true, err
	}

	switch state {
	case models.AdminStateAddCoupons:
		added, err := h.coupons.AddCodes(ctx, strings.Split(text, "\n"))
		if err != nil {
			return true, err
		}
		return true, h.telegram.SendMessage(adminID, fmt.Sprintf("Added %d coupons", added), nil)

	case models.AdminStateRemoveCoupons:
		count, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || count <= 0 {
			return true, h.telegram.SendMessage(adminID, "Send a positive number", nil)
		}
		removed, err := h.coupons.RemoveAvailable(ctx, count)
		if err != nil {
			return true, err
		}
		return true, h.telegram.SendMessage(adminID, fmt.Sprintf("Removed %d coupons", len(removed)), nil)

	case models.AdminStateSetThreshold:
		threshold, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil || threshold <= 0 {
			return true, h.telegram.SendMessage(adminID, "Send a positive number", nil)
		}
		if err := h.settings.SetWithdrawThreshold(ctx, threshold); err != nil {
			return true, err
		}
		return true, h.telegram.SendMessage(adminID, fmt.Sprintf("Withdraw threshold set to %d", threshold), nil)
	}

	return false, nil
}

func (h *WebhookHandler) sendRedemptionLog(ctx context.Context, adminID int64) error {
	entries, err := h.logs.Recent(ctx, 10)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return h.telegram.SendMessage(adminID, "No redemptions yet", nil)
	}

	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "%d -> %s\n", entry.AccountID, entry.CouponCode)
	}
	return h.telegram.SendMessage(adminID, b.String(), nil)
}

func adminKeyboard() services.ReplyKeyboardMarkup {
	return services.ReplyKeyboardMarkup{
		Keyboard: [][]string{
			{"➕ Add Coupons", "➖ Remove Coupons"},
			{"📦 Coupon Stock", "📜 Redemption Log"},
			{"⚙ Set Withdraw Points"},
		},
		ResizeKeyboard: true,
	}
}

func joinKeyboard(channels []string) services.InlineKeyboardMarkup {
	rows := make([][]services.InlineKeyboardButton, 0, len(channels)+1)
	for i, channel := range channels {
		rows = append(rows, []services.InlineKeyboardButton{{
			Text: fmt.Sprintf("Join Channel %d", i+1),
			URL:  "https://t.me/" + strings.TrimPrefix(channel, "@"),
		}})
	}
	rows = append(rows, []services.InlineKeyboardButton{{Text: "✅ Joined", CallbackData: "check_join"}})
	return services.InlineKeyboardMarkup{InlineKeyboard: rows}
}
