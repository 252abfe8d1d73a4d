package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tabeshpress/order-panel/internal/catalog"
	"github.com/tabeshpress/order-panel/internal/models"
	"github.com/tabeshpress/order-panel/internal/pricing"
	"github.com/tabeshpress/order-panel/internal/realtime"
	"github.com/tabeshpress/order-panel/internal/services/sms"
	"github.com/tabeshpress/order-panel/internal/utils"
	"github.com/tabeshpress/order-panel/internal/validation"
)

// Service carries an order submission from validated form payload to a
// persisted order, creating the customer account along the way when the
// operator picked "new customer".
type Service struct {
	DB      *gorm.DB
	Catalog *catalog.Store
	SMS     *sms.Service
	Hub     *realtime.Hub
	Logger  *zap.Logger
}

func NewService(db *gorm.DB, store *catalog.Store, smsSvc *sms.Service, hub *realtime.Hub, logger *zap.Logger) *Service {
	return &Service{DB: db, Catalog: store, SMS: smsSvc, Hub: hub, Logger: logger}
}

type SubmitResult struct {
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// Submit validates the request, prices it server-side and writes customer and
// order inside one transaction. Field-level problems come back as FieldErrors;
// pricing mismatches and storage failures as error.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, validation.FieldErrors, error) {
	settings, err := s.Catalog.Settings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	cfg := catalog.BuildFormConfig(settings)

	if errs := ValidateSubmit(req, cfg); errs.Has() {
		return nil, errs, nil
	}

	quote, err := pricing.CalculateQuote(settings.PageCosts, settings.Rates, req.QuoteInput())
	if err != nil {
		return nil, nil, err
	}

	breakdown, err := marshalJSON(quote.Breakdown)
	if err != nil {
		return nil, nil, err
	}

	var (
		customer          *models.User
		createdOrder      *models.Order
		generatedPassword string
	)

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, password, ferr, rerr := s.resolveCustomer(tx, req)
		if rerr != nil {
			return rerr
		}
		if ferr.Has() {
			return &fieldErrorsSentinel{errs: ferr}
		}
		customer = resolved
		generatedPassword = password

		order := &models.Order{
			UserID:            customer.ID,
			BookTitle:         strings.TrimSpace(req.BookTitle),
			BookSize:          req.BookSize,
			PaperType:         req.PaperType,
			PaperWeight:       req.PaperWeight,
			PrintType:         req.PrintType,
			BindingType:       req.BindingType,
			LicenseType:       req.LicenseType,
			Quantity:          req.Quantity,
			PageCountTotal:    req.PageCountTotal,
			PageCountColor:    req.PageCountColor,
			PageCountBW:       req.PageCountBW,
			CoverPaperWeight:  req.CoverPaperWeight,
			LaminationType:    req.LaminationType,
			UnitPrice:         quote.UnitPrice,
			OverrideUnitPrice: req.OverrideUnitPrice,
			TotalPrice:        quote.TotalPrice,
			Breakdown:         breakdown,
			Notes:             strings.TrimSpace(req.Notes),
			Status:            models.OrderStatusPending,
		}
		if len(req.Extras) > 0 {
			extras, merr := marshalJSON(req.Extras)
			if merr != nil {
				return merr
			}
			order.Extras = extras
		}

		if err := allocateOrderNumber(func(number string) error {
			return insertWithSavepoint(tx, order, number)
		}); err != nil {
			return err
		}
		createdOrder = order
		return nil
	})

	if txErr != nil {
		var sentinel *fieldErrorsSentinel
		if errors.As(txErr, &sentinel) {
			return nil, sentinel.errs, nil
		}
		return nil, nil, txErr
	}

	s.afterSubmit(customer, createdOrder, generatedPassword, req)

	return &SubmitResult{OrderID: createdOrder.ID, OrderNumber: createdOrder.OrderNumber}, nil, nil
}

// resolveCustomer loads the selected customer or registers a new one with a
// generated numeric password. Duplicate mobiles surface as a field error so
// the operator can switch to the existing account.
func (s *Service) resolveCustomer(tx *gorm.DB, req *SubmitRequest) (*models.User, string, validation.FieldErrors, error) {
	errs := validation.FieldErrors{}

	if req.CustomerType == CustomerExisting {
		uid, err := uuid.Parse(req.UserID)
		if err != nil {
			errs.Add("user_id", "customer id is not valid")
			return nil, "", errs, nil
		}
		var user models.User
		if err := tx.Where("id = ? AND role = ? AND is_active = ?", uid, models.RoleCustomer, true).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs.Add("user_id", "customer not found")
				return nil, "", errs, nil
			}
			return nil, "", nil, err
		}
		return &user, "", errs, nil
	}

	mobile := utils.NormalizeDigits(strings.TrimSpace(req.NewMobile))

	var existing models.User
	err := tx.Where("mobile = ?", mobile).First(&existing).Error
	if err == nil {
		errs.Add("new_mobile", "a customer with this mobile already exists")
		return nil, "", errs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", nil, err
	}

	password := utils.GeneratePassword(8)
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", nil, err
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.NewFirstName),
		LastName:  strings.TrimSpace(req.NewLastName),
		Mobile:    mobile,
		Password:  hashed,
		Role:      models.RoleCustomer,
		IsActive:  true,
	}
	if err := tx.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			errs.Add("new_mobile", "a customer with this mobile already exists")
			return nil, "", errs, nil
		}
		return nil, "", nil, err
	}
	return user, password, errs, nil
}

const orderNumberAttempts = 5

// allocateOrderNumber retries insert with fresh random numbers until one
// sticks. insert must leave the surrounding transaction usable after a
// unique violation; anything else aborts the allocation.
func allocateOrderNumber(insert func(number string) error) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		err = insert(models.GenerateOrderNumber())
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("could not allocate a unique order number: %w", err)
}

// insertWithSavepoint creates the order under a savepoint. Postgres aborts
// the whole transaction on a constraint violation, so the savepoint must be
// rolled back before the caller can try another number.
func insertWithSavepoint(tx *gorm.DB, order *models.Order, number string) error {
	order.OrderNumber = number
	if err := tx.SavePoint("order_insert").Error; err != nil {
		return err
	}
	if err := tx.Create(order).Error; err != nil {
		if isUniqueViolation(err) {
			if rbErr := tx.RollbackTo("order_insert").Error; rbErr != nil {
				return rbErr
			}
			order.ID = 0
		}
		return err
	}
	return nil
}

// afterSubmit fires the post-commit side effects. SMS and hub notifications
// never fail the submission; they run detached from the request context.
func (s *Service) afterSubmit(customer *models.User, order *models.Order, generatedPassword string, req *SubmitRequest) {
	if s.Hub != nil {
		s.Hub.BroadcastEvent("order_created", map[string]interface{}{
			"order_id":      order.ID,
			"order_number":  order.OrderNumber,
			"customer_name": customer.DisplayName(),
			"total_price":   order.TotalPrice,
		})
	}

	if s.SMS == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if generatedPassword != "" && req.SendRegistrationSMS {
			s.SMS.SendRegistration(ctx, customer.Mobile, customer.FirstName, generatedPassword)
		}
		if req.SendOrderSMS {
			s.SMS.SendOrderConfirmation(ctx, customer.Mobile, order.OrderNumber, order.TotalPrice)
		}
	}()
}

type fieldErrorsSentinel struct {
	errs validation.FieldErrors
}

func (f *fieldErrorsSentinel) Error() string { return "validation failed" }

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
