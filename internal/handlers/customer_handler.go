package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabeshpress/order-panel/internal/models"
	"github.com/tabeshpress/order-panel/internal/services/sms"
	"github.com/tabeshpress/order-panel/internal/utils"
	"github.com/tabeshpress/order-panel/internal/validation"
)

const customerSearchLimit = 20

type CustomerHandler struct {
	DB     *gorm.DB
	SMS    *sms.Service
	Logger *zap.Logger
}

func NewCustomerHandler(db *gorm.DB, smsSvc *sms.Service, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{DB: db, SMS: smsSvc, Logger: logger}
}

// Search finds customers by name, mobile or email for the order form's
// customer picker.
func (h *CustomerHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return c.JSON(fiber.Map{
			"success":   true,
			"customers": []models.User{},
		})
	}

	like := "%" + utils.NormalizeDigits(q) + "%"

	var customers []models.User
	err := h.DB.
		Where("role = ?", models.RoleCustomer).
		Where("first_name LIKE ? OR last_name LIKE ? OR mobile LIKE ? OR email LIKE ?", like, like, like, like).
		Order("created_at DESC").
		Limit(customerSearchLimit).
		Find(&customers).Error
	if err != nil {
		h.Logger.Error("customer search failed", zap.Error(err))
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"customers": customers,
	})
}

type createCustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email"`
	SendSMS   bool   `json:"send_sms"`
}

// Create registers a customer account with a generated numeric password,
// optionally texting them the credentials.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req createCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	errs := validation.FieldErrors{}
	mobile := utils.NormalizeDigits(strings.TrimSpace(req.Mobile))
	if mobile == "" {
		errs.Add("mobile", "mobile is required")
	} else if len(mobile) < 10 {
		errs.Add("mobile", "mobile number is not valid")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		errs.Add("first_name", "first name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs.Add("last_name", "last name is required")
	}
	if errs.Has() {
		return validationFail(c, errs)
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("mobile = ?", mobile).Count(&count).Error; err != nil {
		h.Logger.Error("customer lookup failed", zap.Error(err))
		return internalError(c)
	}
	if count > 0 {
		errs.Add("mobile", "a customer with this mobile already exists")
		return validationFail(c, errs)
	}

	password := utils.GeneratePassword(8)
	hashed, err := utils.HashPassword(password)
	if err != nil {
		h.Logger.Error("failed to hash password", zap.Error(err))
		return internalError(c)
	}

	user := models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Mobile:    mobile,
		Email:     strings.TrimSpace(req.Email),
		Password:  hashed,
		Role:      models.RoleCustomer,
		IsActive:  true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		h.Logger.Error("customer create failed", zap.Error(err))
		return internalError(c)
	}

	if req.SendSMS && h.SMS != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			h.SMS.SendRegistration(ctx, user.Mobile, user.FirstName, password)
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Customer created",
		"customer": user,
	})
}
