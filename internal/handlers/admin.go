package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/frostvortexog/ZenithWave-Refer/internal/config"
	"github.com/frostvortexog/ZenithWave-Refer/internal/store"
	"github.com/frostvortexog/ZenithWave-Refer/internal/utils"
)

// AdminHandler exposes the coupon and settings management API used by
// the operations dashboard.
type AdminHandler struct {
	cfg          *config.Config
	passwordHash string
	coupons      *store.CouponInventory
	logs         *store.RedemptionLogStore
	settings     *store.SettingsStore
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB, cfg *config.Config) *AdminHandler {
	passwordHash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	return &AdminHandler{
		cfg:          cfg,
		passwordHash: passwordHash,
		coupons:      store.NewCouponInventory(db),
		logs:         store.NewRedemptionLogStore(db),
		settings:     store.NewSettingsStore(db),
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the admin password for a short-lived JWT.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.CheckPassword(h.passwordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, "admin", h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

type addCouponsRequest struct {
	Codes string `json:"codes"`
}

// AddCoupons bulk-adds newline-delimited coupon codes. Codes containing
// whitespace are rejected verbatim before anything is written.
func (h *AdminHandler) AddCoupons(c *fiber.Ctx) error {
	var req addCouponsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	lines := strings.Split(req.Codes, "\n")
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.ContainsAny(line, " \t") {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid coupon code: %q", line))
		}
		codes = append(codes, line)
	}
	if len(codes) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no coupon codes provided")
	}

	added, err := h.coupons.AddCodes(c.UserContext(), codes)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"added":   added,
	})
}

// RemoveCoupons deletes up to ?count available coupons, oldest first.
func (h *AdminHandler) RemoveCoupons(c *fiber.Ctx) error {
	count, err := strconv.Atoi(c.Query("count", "0"))
	if err != nil || count <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "count must be a positive integer")
	}

	removed, err := h.coupons.RemoveAvailable(c.UserContext(), count)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"removed": removed,
	})
}

// CouponStock returns the number of available coupons.
func (h *AdminHandler) CouponStock(c *fiber.Ctx) error {
	count, err := h.coupons.CountAvailable(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"available": count,
	})
}

// ListRedemptions returns the redemption log, newest first, paginated.
func (h *AdminHandler) ListRedemptions(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	entries, total, err := h.logs.List(c.UserContext(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type thresholdRequest struct {
	Threshold int64 `json:"threshold"`
}

// SetThreshold updates the withdraw-points threshold.
func (h *AdminHandler) SetThreshold(c *fiber.Ctx) error {
	var req thresholdRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Threshold <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "threshold must be a positive integer")
	}

	if err := h.settings.SetWithdrawThreshold(c.UserContext(), req.Threshold); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"threshold": req.Threshold,
	})
}
