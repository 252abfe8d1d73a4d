package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabeshpress/order-panel/internal/models"
	"github.com/tabeshpress/order-panel/internal/utils"
	"github.com/tabeshpress/order-panel/internal/validation"
)

const authCookieName = "tb_token"

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     string
	JWTExpiresMin int
	Logger        *zap.Logger
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, jwtExpiresMin int, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, JWTSecret: jwtSecret, JWTExpiresMin: jwtExpiresMin, Logger: logger}
}

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// Login authenticates by mobile and password and sets the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	errs := validation.FieldErrors{}
	mobile := utils.NormalizeDigits(strings.TrimSpace(req.Mobile))
	if mobile == "" {
		errs.Add("mobile", "mobile is required")
	}
	if req.Password == "" {
		errs.Add("password", "password is required")
	}
	if errs.Has() {
		return validationFail(c, errs)
	}

	var user models.User
	if err := h.DB.Where("mobile = ?", mobile).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unauthorized(c, "invalid mobile or password")
		}
		h.Logger.Error("login lookup failed", zap.Error(err))
		return internalError(c)
	}

	if !user.IsActive || !utils.CheckPassword(user.Password, req.Password) {
		return unauthorized(c, "invalid mobile or password")
	}

	token, err := utils.SignJWT(h.JWTSecret, user.ID.String(), string(user.Role), h.JWTExpiresMin)
	if err != nil {
		h.Logger.Error("failed to sign token", zap.Error(err))
		return internalError(c)
	}

	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(h.JWTExpiresMin) * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user": fiber.Map{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"mobile":     user.Mobile,
			"role":       user.Role,
		},
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

// Me returns the authenticated user for session restore on page load.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("userId").(string)

	var user models.User
	if err := h.DB.Where("id = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unauthorized(c, "session user not found")
		}
		h.Logger.Error("me lookup failed", zap.Error(err))
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"mobile":     user.Mobile,
			"role":       user.Role,
		},
	})
}
