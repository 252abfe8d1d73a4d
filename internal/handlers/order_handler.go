package handlers

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabeshpress/order-panel/internal/catalog"
	"github.com/tabeshpress/order-panel/internal/models"
	"github.com/tabeshpress/order-panel/internal/pricing"
	"github.com/tabeshpress/order-panel/internal/realtime"
	"github.com/tabeshpress/order-panel/internal/services/orders"
	"github.com/tabeshpress/order-panel/internal/validation"
)

const orderPageSize = 20

type OrderHandler struct {
	DB      *gorm.DB
	Catalog *catalog.Store
	Orders  *orders.Service
	Hub     *realtime.Hub
	Logger  *zap.Logger
}

func NewOrderHandler(db *gorm.DB, store *catalog.Store, svc *orders.Service, hub *realtime.Hub, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{DB: db, Catalog: store, Orders: svc, Hub: hub, Logger: logger}
}

// FormConfig serves the order form its option lists, with paper weights
// already filtered down to priced combinations.
func (h *OrderHandler) FormConfig(c *fiber.Ctx) error {
	cfg, err := h.Catalog.FormConfig(c.Context())
	if err != nil {
		h.Logger.Error("form config load failed", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"config":  cfg,
	})
}

// GetSettings returns the raw catalog document for the settings screen.
func (h *OrderHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.Catalog.Settings(c.Context())
	if err != nil {
		h.Logger.Error("settings load failed", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"settings": settings,
	})
}

// UpdateSettings replaces the catalog document and drops the cached form
// config so clients pick the change up on their next fetch.
func (h *OrderHandler) UpdateSettings(c *fiber.Ctx) error {
	var settings catalog.Settings
	if err := c.BodyParser(&settings); err != nil {
		return badRequest(c, "invalid request body")
	}

	errs := validation.FieldErrors{}
	if len(settings.PageCosts) == 0 {
		errs.Add("page_costs", "page cost matrix must not be empty")
	}
	if len(settings.PageCosts.FilterWeights()) == 0 {
		errs.Add("page_costs", "at least one paper/weight combination must have a price")
	}
	if settings.MinQuantity <= 0 || settings.MaxQuantity < settings.MinQuantity {
		errs.Add("min_quantity", "quantity bounds are not valid")
	}
	if errs.Has() {
		return validationFail(c, errs)
	}

	if err := h.Catalog.SaveSettings(c.Context(), &settings); err != nil {
		h.Logger.Error("settings save failed", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Settings updated",
	})
}

// CalculatePrice quotes a configuration without persisting anything. The
// footer calls it on every form change.
func (h *OrderHandler) CalculatePrice(c *fiber.Ctx) error {
	var in pricing.QuoteInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	errs := validation.FieldErrors{}
	if in.PaperType == "" {
		errs.Add("paper_type", "paper type is required")
	}
	if in.PaperWeight == "" {
		errs.Add("paper_weight", "paper weight is required")
	}
	if in.PrintType == "" {
		errs.Add("print_type", "print type is required")
	}
	if errs.Has() {
		return validationFail(c, errs)
	}

	settings, err := h.Catalog.Settings(c.Context())
	if err != nil {
		h.Logger.Error("settings load failed", zap.Error(err))
		return internalError(c)
	}

	quote, err := pricing.CalculateQuote(settings.PageCosts, settings.Rates, in)
	if err != nil {
		if pricing.IsConfigMismatch(err) {
			return configMismatch(c)
		}
		h.Logger.Error("quote failed", zap.Error(err))
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"quote":   quote,
	})
}

// Submit registers an order on behalf of a customer.
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	var req orders.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, fieldErrs, err := h.Orders.Submit(c.Context(), &req)
	if err != nil {
		if pricing.IsConfigMismatch(err) {
			return configMismatch(c)
		}
		h.Logger.Error("order submit failed", zap.Error(err))
		return internalError(c)
	}
	if fieldErrs.Has() {
		return validationFail(c, fieldErrs)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"message":      "Order submitted",
		"order_id":     result.OrderID,
		"order_number": result.OrderNumber,
	})
}

// List returns a page of orders, newest first, filterable by status and a
// free-text search over order number, book title and customer fields.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("paged", 1)
	if page < 1 {
		page = 1
	}

	query, ok := h.filteredOrders(c)
	if !ok {
		return nil
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.Logger.Error("order count failed", zap.Error(err))
		return internalError(c)
	}

	var list []models.Order
	err := query.
		Preload("User").
		Order("orders.created_at DESC").
		Offset((page - 1) * orderPageSize).
		Limit(orderPageSize).
		Find(&list).Error
	if err != nil {
		h.Logger.Error("order list failed", zap.Error(err))
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"orders":  list,
		"meta": fiber.Map{
			"page":        page,
			"limit":       orderPageSize,
			"total":       total,
			"total_pages": int(math.Ceil(float64(total) / float64(orderPageSize))),
		},
	})
}

// filteredOrders builds the orders query with the status and search filters
// from the request, joined with customers so both the listing and the export
// filter identically. On a bad filter it writes the response and reports
// ok=false.
func (h *OrderHandler) filteredOrders(c *fiber.Ctx) (*gorm.DB, bool) {
	query := h.DB.Model(&models.Order{}).
		Joins("JOIN users ON users.id = orders.user_id")

	if status := c.Query("status"); status != "" {
		if !models.ValidOrderStatus(status) {
			_ = badRequest(c, "unknown status filter")
			return nil, false
		}
		query = query.Where("orders.status = ?", status)
	}

	if s := strings.TrimSpace(c.Query("s")); s != "" {
		like := searchLike(s)
		query = query.Where(
			"LOWER(orders.order_number) LIKE ? OR LOWER(orders.book_title) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR users.mobile LIKE ?",
			like, like, like, like, like,
		)
	}

	return query, true
}

// searchLike folds a free-text query into a case-insensitive LIKE pattern.
func searchLike(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// Get returns one order with its customer and files.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "invalid order id")
	}

	var order models.Order
	err = h.DB.
		Preload("User").
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_files.created_at DESC")
		}).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "order not found")
		}
		h.Logger.Error("order load failed", zap.Error(err))
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order through its lifecycle and notifies the panel.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "invalid order id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !models.ValidOrderStatus(req.Status) {
		errs := validation.FieldErrors{}
		errs.Add("status", "unknown status")
		return validationFail(c, errs)
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "order not found")
		}
		h.Logger.Error("order load failed", zap.Error(err))
		return internalError(c)
	}

	order.Status = models.OrderStatus(req.Status)
	if err := h.DB.Model(&order).Update("status", order.Status).Error; err != nil {
		h.Logger.Error("order status update failed", zap.Error(err))
		return internalError(c)
	}

	if h.Hub != nil {
		h.Hub.BroadcastEvent("order_status_update", fiber.Map{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
		})
		h.Hub.SendToUser(order.UserID, "order_status_update", fiber.Map{
			"order_number": order.OrderNumber,
			"status":       order.Status,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order status updated",
		"order":   order,
	})
}

// Export streams the current filter's orders as an xlsx workbook.
func (h *OrderHandler) Export(c *fiber.Ctx) error {
	query, ok := h.filteredOrders(c)
	if !ok {
		return nil
	}

	var list []models.Order
	if err := query.Preload("User").Order("orders.created_at DESC").Find(&list).Error; err != nil {
		h.Logger.Error("order export query failed", zap.Error(err))
		return internalError(c)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Order Number", "Customer", "Mobile", "Book Title", "Book Size",
		"Paper", "Weight", "Print", "Binding", "Quantity", "Pages",
		"Unit Price", "Total Price", "Status", "Created At",
	}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}

	for row, order := range list {
		customerName, customerMobile := "", ""
		if order.User != nil {
			customerName = order.User.DisplayName()
			customerMobile = order.User.Mobile
		}
		values := []interface{}{
			order.OrderNumber, customerName, customerMobile,
			order.BookTitle, order.BookSize,
			order.PaperType, order.PaperWeight, order.PrintType, order.BindingType,
			order.Quantity, order.PageCountTotal,
			order.UnitPrice, order.TotalPrice,
			string(order.Status), order.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.Logger.Error("order export write failed", zap.Error(err))
		return internalError(c)
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendStream(buf)
}
