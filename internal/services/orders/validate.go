package orders

import (
	"strings"

	"github.com/tabeshpress/order-panel/internal/catalog"
	"github.com/tabeshpress/order-panel/internal/pricing"
	"github.com/tabeshpress/order-panel/internal/utils"
	"github.com/tabeshpress/order-panel/internal/validation"
)

const (
	CustomerExisting = "existing"
	CustomerNew      = "new"
)

// SubmitRequest mirrors the order form payload.
type SubmitRequest struct {
	CustomerType string `json:"customer_type"`
	UserID       string `json:"user_id"`

	NewMobile    string `json:"new_mobile"`
	NewFirstName string `json:"new_first_name"`
	NewLastName  string `json:"new_last_name"`

	BookTitle   string `json:"book_title"`
	BookSize    string `json:"book_size"`
	PaperType   string `json:"paper_type"`
	PaperWeight string `json:"paper_weight"`
	PrintType   string `json:"print_type"`
	BindingType string `json:"binding_type"`
	LicenseType string `json:"license_type"`

	Quantity       int `json:"quantity"`
	PageCountTotal int `json:"page_count_total"`
	PageCountColor int `json:"page_count_color"`
	PageCountBW    int `json:"page_count_bw"`

	CoverPaperWeight string   `json:"cover_paper_weight"`
	LaminationType   string   `json:"lamination_type"`
	Extras           []string `json:"extras"`
	Notes            string   `json:"notes"`

	OverrideUnitPrice *int `json:"override_unit_price"`

	SendRegistrationSMS bool `json:"send_registration_sms"`
	SendOrderSMS        bool `json:"send_order_sms"`
}

func (r *SubmitRequest) QuoteInput() pricing.QuoteInput {
	return pricing.QuoteInput{
		PaperType:         r.PaperType,
		PaperWeight:       r.PaperWeight,
		PrintType:         r.PrintType,
		BindingType:       r.BindingType,
		Quantity:          r.Quantity,
		PageCountTotal:    r.PageCountTotal,
		PageCountColor:    r.PageCountColor,
		PageCountBW:       r.PageCountBW,
		CoverPaperWeight:  r.CoverPaperWeight,
		LaminationType:    r.LaminationType,
		Extras:            r.Extras,
		OverrideUnitPrice: r.OverrideUnitPrice,
	}
}

// ValidateSubmit checks a submission against the published form config.
// Every enumerated value must trace back to the config; unknown keys are
// reported per field instead of passing through to the price lookup.
func ValidateSubmit(req *SubmitRequest, cfg *catalog.FormConfig) validation.FieldErrors {
	errs := validation.FieldErrors{}

	switch req.CustomerType {
	case CustomerExisting:
		if strings.TrimSpace(req.UserID) == "" {
			errs.Add("user_id", "customer is required")
		}
	case CustomerNew:
		mobile := utils.NormalizeDigits(strings.TrimSpace(req.NewMobile))
		if mobile == "" {
			errs.Add("new_mobile", "mobile is required")
		} else if len(mobile) < 10 {
			errs.Add("new_mobile", "mobile number is not valid")
		}
		if strings.TrimSpace(req.NewFirstName) == "" {
			errs.Add("new_first_name", "first name is required")
		}
		if strings.TrimSpace(req.NewLastName) == "" {
			errs.Add("new_last_name", "last name is required")
		}
	default:
		errs.Add("customer_type", "must be existing or new")
	}

	requireMember(errs, "book_size", req.BookSize, cfg.BookSizes)
	requireMember(errs, "binding_type", req.BindingType, cfg.BindingTypes)
	requireMember(errs, "license_type", req.LicenseType, cfg.LicenseTypes)

	if req.PaperType == "" {
		errs.Add("paper_type", "paper type is required")
	} else if _, ok := cfg.PaperTypes[req.PaperType]; !ok {
		errs.Add("paper_type", "unknown paper type")
	} else {
		validatePaperSelection(errs, req, cfg.PaperTypes[req.PaperType])
	}

	validateQuantity(errs, req.Quantity, cfg)
	validatePageCounts(errs, req)

	if req.CoverPaperWeight != "" && !member(req.CoverPaperWeight, cfg.CoverPaperWeights) {
		errs.Add("cover_paper_weight", "unknown cover paper weight")
	}
	if req.LaminationType != "" && !member(req.LaminationType, cfg.LaminationTypes) {
		errs.Add("lamination_type", "unknown lamination type")
	}
	for _, extra := range req.Extras {
		if !member(extra, cfg.Extras) {
			errs.Add("extras", "unknown extra: "+extra)
		}
	}

	if req.OverrideUnitPrice != nil && *req.OverrideUnitPrice <= 0 {
		errs.Add("override_unit_price", "override price must be positive")
	}

	return errs
}

func validatePaperSelection(errs validation.FieldErrors, req *SubmitRequest, weights []pricing.AvailableWeight) {
	if req.PaperWeight == "" {
		errs.Add("paper_weight", "paper weight is required")
		return
	}
	var selected *pricing.AvailableWeight
	for i := range weights {
		if weights[i].Weight == req.PaperWeight {
			selected = &weights[i]
			break
		}
	}
	if selected == nil {
		errs.Add("paper_weight", "paper weight is not available")
		return
	}
	if req.PrintType == "" {
		errs.Add("print_type", "print type is required")
		return
	}
	if !member(req.PrintType, selected.AvailablePrints) {
		errs.Add("print_type", "print type is not available for this paper weight")
	}
}

func validateQuantity(errs validation.FieldErrors, quantity int, cfg *catalog.FormConfig) {
	if quantity <= 0 {
		errs.Add("quantity", "quantity is required")
		return
	}
	if quantity < cfg.MinQuantity || quantity > cfg.MaxQuantity {
		errs.Add("quantity", "quantity out of range")
	}
	if cfg.QuantityStep > 0 && quantity%cfg.QuantityStep != 0 {
		errs.Add("quantity", "quantity must be a multiple of the allowed step")
	}
}

func validatePageCounts(errs validation.FieldErrors, req *SubmitRequest) {
	if req.PageCountTotal < 0 || req.PageCountColor < 0 || req.PageCountBW < 0 {
		errs.Add("page_count_total", "page counts must not be negative")
		return
	}
	if req.PageCountTotal > 0 && req.PageCountColor+req.PageCountBW > req.PageCountTotal {
		errs.Add("page_count_total", "color and bw pages exceed the total page count")
	}
}

func member(v string, list []string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func requireMember(errs validation.FieldErrors, field, v string, list []string) {
	if v == "" {
		errs.Add(field, field+" is required")
		return
	}
	if !member(v, list) {
		errs.Add(field, "unknown "+field)
	}
}
