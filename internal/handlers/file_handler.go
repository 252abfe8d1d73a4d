package handlers

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tabeshpress/order-panel/internal/models"
	"github.com/tabeshpress/order-panel/internal/realtime"
	"github.com/tabeshpress/order-panel/internal/validation"
)

const filePageSize = 20

// allowedExtensions per file type. Review happens on exactly these formats;
// anything else is rejected at upload time.
var allowedExtensions = map[models.FileType][]string{
	models.FileTypeText:      {".pdf", ".doc", ".docx"},
	models.FileTypeCover:     {".pdf", ".jpg", ".jpeg", ".png", ".psd"},
	models.FileTypeDocuments: {".pdf", ".jpg", ".jpeg", ".png"},
}

type FileHandler struct {
	DB        *gorm.DB
	Hub       *realtime.Hub
	UploadDir string
	Logger    *zap.Logger
}

func NewFileHandler(db *gorm.DB, hub *realtime.Hub, uploadDir string, logger *zap.Logger) *FileHandler {
	return &FileHandler{DB: db, Hub: hub, UploadDir: uploadDir, Logger: logger}
}

// Upload attaches a file to an order. Re-uploading the same file type bumps
// the version so reviewers see the history instead of an overwrite.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil || orderID < 1 {
		return badRequest(c, "invalid order id")
	}

	var order models.Order
	if err := h.DB.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "order not found")
		}
		h.Logger.Error("order load failed", zap.Error(err))
		return internalError(c)
	}

	uid, _ := c.Locals("userId").(string)
	role, _ := c.Locals("role").(string)
	if role != string(models.RoleAdmin) && order.UserID.String() != uid {
		return fiber.ErrForbidden
	}

	errs := validation.FieldErrors{}

	fileType := models.FileType(c.FormValue("file_type"))
	if !models.ValidFileType(string(fileType)) {
		errs.Add("file_type", "file type must be text, cover or documents")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		errs.Add("file", "file is required")
	}
	if errs.Has() {
		return validationFail(c, errs)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !extAllowed(fileType, ext) {
		errs.Add("file", "file format is not accepted for this file type")
		return validationFail(c, errs)
	}

	var latest models.OrderFile
	err = h.DB.
		Where("order_id = ? AND file_type = ?", order.ID, fileType).
		Order("version DESC").
		First(&latest).Error
	var version int
	switch {
	case err == nil:
		version = nextVersion(&latest)
	case errors.Is(err, gorm.ErrRecordNotFound):
		version = nextVersion(nil)
	default:
		h.Logger.Error("file version lookup failed", zap.Error(err))
		return internalError(c)
	}

	dir := filepath.Join(h.UploadDir, "orders", fmt.Sprint(order.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.Logger.Error("upload dir create failed", zap.Error(err))
		return internalError(c)
	}

	storedName := fmt.Sprintf("%s-v%d-%s%s", fileType, version, uuid.NewString(), ext)
	if err := c.SaveFile(fileHeader, filepath.Join(dir, storedName)); err != nil {
		h.Logger.Error("file save failed", zap.Error(err))
		return internalError(c)
	}

	record := models.OrderFile{
		OrderID:          order.ID,
		UserID:           order.UserID,
		OriginalFilename: filepath.Base(fileHeader.Filename),
		StoredFilename:   storedName,
		FileType:         fileType,
		FileSize:         fileHeader.Size,
		Version:          version,
		Status:           models.FileStatusPending,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		h.Logger.Error("file record create failed", zap.Error(err))
		return internalError(c)
	}

	if h.Hub != nil {
		h.Hub.BroadcastEvent("file_uploaded", fiber.Map{
			"file_id":      record.ID,
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"file_type":    record.FileType,
			"version":      record.Version,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "File uploaded",
		"file":    record,
	})
}

// List is the review queue: a page of files joined with their orders,
// filterable by status, type and a search over filenames, order number and
// book title. Soft-deleted files never appear.
func (h *FileHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("paged", 1)
	if page < 1 {
		page = 1
	}

	query := h.DB.Model(&models.OrderFile{}).
		Joins("JOIN orders ON orders.id = order_files.order_id")

	if status := c.Query("status"); status != "" {
		if !models.ValidFileStatus(status) {
			return badRequest(c, "unknown status filter")
		}
		query = query.Where("order_files.status = ?", status)
	}
	if fileType := c.Query("type"); fileType != "" {
		if !models.ValidFileType(fileType) {
			return badRequest(c, "unknown type filter")
		}
		query = query.Where("order_files.file_type = ?", fileType)
	}
	if s := strings.TrimSpace(c.Query("s")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where(
			"LOWER(order_files.original_filename) LIKE ? OR LOWER(order_files.stored_filename) LIKE ? OR LOWER(orders.order_number) LIKE ? OR LOWER(orders.book_title) LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.Logger.Error("file count failed", zap.Error(err))
		return internalError(c)
	}

	var files []models.OrderFile
	err := query.
		Preload("Order").
		Preload("Order.User").
		Order("order_files.created_at DESC").
		Offset((page - 1) * filePageSize).
		Limit(filePageSize).
		Find(&files).Error
	if err != nil {
		h.Logger.Error("file list failed", zap.Error(err))
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"files":   files,
		"meta": fiber.Map{
			"page":        page,
			"limit":       filePageSize,
			"total":       total,
			"total_pages": int(math.Ceil(float64(total) / float64(filePageSize))),
		},
	})
}

// Approve marks a file approved. Re-reviewing is allowed; the latest decision
// stands.
func (h *FileHandler) Approve(c *fiber.Ctx) error {
	file, reviewer, ok := h.loadForReview(c)
	if !ok {
		return nil
	}

	file.MarkApproved(reviewer, time.Now())
	if err := h.saveReview(file); err != nil {
		h.Logger.Error("file approve failed", zap.Error(err))
		return internalError(c)
	}

	h.notifyReview(file, "file_approved")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File approved",
		"file":    file,
	})
}

type rejectFileRequest struct {
	Reason string `json:"reason"`
}

// Reject marks a file rejected. The reason is mandatory; the customer sees it.
func (h *FileHandler) Reject(c *fiber.Ctx) error {
	var req rejectFileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Reason) == "" {
		errs := validation.FieldErrors{}
		errs.Add("reason", "rejection reason is required")
		return validationFail(c, errs)
	}

	file, reviewer, ok := h.loadForReview(c)
	if !ok {
		return nil
	}

	if err := file.MarkRejected(req.Reason, reviewer, time.Now()); err != nil {
		errs := validation.FieldErrors{}
		errs.Add("reason", "rejection reason is required")
		return validationFail(c, errs)
	}
	if err := h.saveReview(file); err != nil {
		h.Logger.Error("file reject failed", zap.Error(err))
		return internalError(c)
	}

	h.notifyReview(file, "file_rejected")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File rejected",
		"file":    file,
	})
}

// Download streams the stored file. Admins see everything; customers only
// their own files.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "invalid file id")
	}

	var file models.OrderFile
	if err := h.DB.First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "file not found")
		}
		h.Logger.Error("file load failed", zap.Error(err))
		return internalError(c)
	}

	uid, _ := c.Locals("userId").(string)
	role, _ := c.Locals("role").(string)
	if role != string(models.RoleAdmin) && file.UserID.String() != uid {
		return fiber.ErrForbidden
	}

	path := filepath.Join(h.UploadDir, "orders", fmt.Sprint(file.OrderID), file.StoredFilename)
	if _, err := os.Stat(path); err != nil {
		h.Logger.Error("stored file missing", zap.String("path", path), zap.Error(err))
		return notFound(c, "file not found on disk")
	}

	return c.Download(path, file.OriginalFilename)
}

// Delete soft deletes a file record; the bytes stay on disk for recovery.
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "invalid file id")
	}

	var file models.OrderFile
	if err := h.DB.First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "file not found")
		}
		h.Logger.Error("file load failed", zap.Error(err))
		return internalError(c)
	}

	if err := h.DB.Delete(&file).Error; err != nil {
		h.Logger.Error("file delete failed", zap.Error(err))
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File deleted",
	})
}

// loadForReview resolves the target file and the reviewing admin. On failure
// it writes the response itself and reports ok=false.
func (h *FileHandler) loadForReview(c *fiber.Ctx) (*models.OrderFile, uuid.UUID, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		_ = badRequest(c, "invalid file id")
		return nil, uuid.Nil, false
	}

	uid, _ := c.Locals("userId").(string)
	reviewer, err := uuid.Parse(uid)
	if err != nil {
		_ = unauthorized(c, "invalid session")
		return nil, uuid.Nil, false
	}

	var file models.OrderFile
	if err := h.DB.Preload("Order").First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = notFound(c, "file not found")
		} else {
			h.Logger.Error("file load failed", zap.Error(err))
			_ = internalError(c)
		}
		return nil, uuid.Nil, false
	}

	return &file, reviewer, true
}

func (h *FileHandler) saveReview(file *models.OrderFile) error {
	return h.DB.Model(file).Updates(map[string]interface{}{
		"status":           file.Status,
		"rejection_reason": file.RejectionReason,
		"reviewed_by":      file.ReviewedBy,
		"reviewed_at":      file.ReviewedAt,
	}).Error
}

func (h *FileHandler) notifyReview(file *models.OrderFile, eventType string) {
	if h.Hub == nil {
		return
	}
	data := fiber.Map{
		"file_id":   file.ID,
		"order_id":  file.OrderID,
		"file_type": file.FileType,
		"status":    file.Status,
	}
	if file.RejectionReason != "" {
		data["reason"] = file.RejectionReason
	}
	h.Hub.BroadcastEvent(eventType, data)
	h.Hub.SendToUser(file.UserID, eventType, data)
}

// nextVersion numbers a re-upload relative to the newest surviving file of
// the same order and type. The first upload is version 1.
func nextVersion(latest *models.OrderFile) int {
	if latest == nil {
		return 1
	}
	return latest.Version + 1
}

func extAllowed(t models.FileType, ext string) bool {
	for _, allowed := range allowedExtensions[t] {
		if allowed == ext {
			return true
		}
	}
	return false
}
