package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/frostvortexog/ZenithWave-Refer/internal/config"
	"github.com/frostvortexog/ZenithWave-Refer/internal/services"
	"github.com/frostvortexog/ZenithWave-Refer/internal/store"
)

// VerifyHandler serves the one-time web verification step.
type VerifyHandler struct {
	verification *services.VerificationService
	botUsername  string
}

// NewVerifyHandler constructs a VerifyHandler.
func NewVerifyHandler(db *gorm.DB, cfg *config.Config, telegram *services.TelegramService) *VerifyHandler {
	accounts := store.NewAccountStore(db)
	referrals := services.NewReferralService(accounts, telegram)
	return &VerifyHandler{
		verification: services.NewVerificationService(accounts, store.NewTokenStore(db), referrals),
		botUsername:  cfg.BotUsername,
	}
}

// Page renders the verification page for a pending token. The page
// computes a device fingerprint in the browser and posts it back.
func (h *VerifyHandler) Page(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing token")
	}

	c.Type("html")
	return c.SendString(fmt.Sprintf(verifyPageHTML, token, h.botUsername))
}

type verifySubmission struct {
	Token             string `json:"token"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

// Submit consumes the token. Every failure mode gets a machine-readable
// reason so the page can show a specific message.
func (h *VerifyHandler) Submit(c *fiber.Ctx) error {
	var req verifySubmission
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.DeviceFingerprint == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	if err := h.verification.Verify(c.UserContext(), req.Token, req.DeviceFingerprint); err != nil {
		reason, ok := verifyFailureReason(err)
		if !ok {
			return err
		}
		return c.JSON(fiber.Map{
			"success": false,
			"reason":  reason,
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

func verifyFailureReason(err error) (string, bool) {
	switch {
	case errors.Is(err, store.ErrInvalidToken):
		return "invalid_token", true
	case errors.Is(err, store.ErrTokenAlreadyUsed):
		return "token_already_used", true
	case errors.Is(err, store.ErrAlreadyVerified):
		return "already_verified", true
	case errors.Is(err, store.ErrDuplicateDevice):
		return "duplicate_device", true
	case errors.Is(err, store.ErrUnknownAccount):
		return "unknown_account", true
	}
	return "", false
}

const verifyPageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Verify</title>
<style>
body { background: #000; color: #fff; text-align: center; font-family: sans-serif; padding-top: 4rem; }
button { padding: 0.8rem 2rem; font-size: 1.1rem; cursor: pointer; }
#result { margin-top: 1.5rem; }
</style>
</head>
<body>
<h1>Verify</h1>
<button onclick="go()">Verify Now</button>
<p id="result"></p>
<script>
const token = %q;
function device() {
  return btoa(navigator.userAgent + screen.width + 'x' + screen.height + navigator.platform);
}
function go() {
  fetch('/api/verify', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({token: token, device_fingerprint: device()})
  })
  .then(r => r.json())
  .then(res => {
    if (res.success) {
      window.location = 'https://t.me/%s';
    } else {
      document.getElementById('result').textContent = 'Verification failed: ' + res.reason;
    }
  });
}
</script>
</body>
</html>`
