package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tabeshpress/order-panel/internal/models"
	"github.com/tabeshpress/order-panel/internal/pricing"
)

const (
	settingKey    = "order_form"
	formConfigKey = "order_panel:form_config"
)

// Settings is the full order-form catalog as stored in the settings row.
// The enumerations are explicit ordered lists; the rate tables key off them.
type Settings struct {
	BookSizes         []string       `json:"book_sizes"`
	PageCosts         pricing.Matrix `json:"page_costs"`
	PrintTypes        []string       `json:"print_types"`
	BindingTypes      []string       `json:"binding_types"`
	LicenseTypes      []string       `json:"license_types"`
	CoverPaperWeights []string       `json:"cover_paper_weights"`
	LaminationTypes   []string       `json:"lamination_types"`
	Extras            []string       `json:"extras"`
	Rates             pricing.Rates  `json:"rates"`
	MinQuantity       int            `json:"min_quantity"`
	MaxQuantity       int            `json:"max_quantity"`
	QuantityStep      int            `json:"quantity_step"`
}

// FormConfig is the payload the order form renders from. Every selectable
// value must trace back to it; the client hard-codes nothing.
type FormConfig struct {
	BookSizes         []string                             `json:"book_sizes"`
	PaperTypes        map[string][]pricing.AvailableWeight `json:"paper_types"`
	PrintTypes        []string                             `json:"print_types"`
	BindingTypes      []string                             `json:"binding_types"`
	LicenseTypes      []string                             `json:"license_types"`
	CoverPaperWeights []string                             `json:"cover_paper_weights"`
	LaminationTypes   []string                             `json:"lamination_types"`
	Extras            []string                             `json:"extras"`
	MinQuantity       int                                  `json:"min_quantity"`
	MaxQuantity       int                                  `json:"max_quantity"`
	QuantityStep      int                                  `json:"quantity_step"`
}

// BuildFormConfig runs the availability filter over the matrix and assembles
// the client payload. Pure; the store handles persistence and caching.
func BuildFormConfig(s *Settings) *FormConfig {
	return &FormConfig{
		BookSizes:         s.BookSizes,
		PaperTypes:        s.PageCosts.FilterWeights(),
		PrintTypes:        s.PrintTypes,
		BindingTypes:      s.BindingTypes,
		LicenseTypes:      s.LicenseTypes,
		CoverPaperWeights: s.CoverPaperWeights,
		LaminationTypes:   s.LaminationTypes,
		Extras:            s.Extras,
		MinQuantity:       s.MinQuantity,
		MaxQuantity:       s.MaxQuantity,
		QuantityStep:      s.QuantityStep,
	}
}

type Store struct {
	DB     *gorm.DB
	Redis  *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func NewStore(db *gorm.DB, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{DB: db, Redis: rdb, TTL: ttl, Logger: logger}
}

// Settings loads the catalog document, seeding the default catalog on first
// run so a fresh install has a working order form.
func (s *Store) Settings(ctx context.Context) (*Settings, error) {
	var row models.Setting
	err := s.DB.WithContext(ctx).Where("key = ?", settingKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.seedDefaults(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(row.Value, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings replaces the catalog document and invalidates the cached
// form config so the next fetch reflects the change.
func (s *Store) SaveSettings(ctx context.Context, settings *Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	var row models.Setting
	err = s.DB.WithContext(ctx).Where("key = ?", settingKey).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.Setting{Key: settingKey, Value: datatypes.JSON(raw)}
		if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
	case err != nil:
		return fmt.Errorf("load settings: %w", err)
	default:
		row.Value = datatypes.JSON(raw)
		if err := s.DB.WithContext(ctx).Save(&row).Error; err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}

	s.invalidate(ctx)
	return nil
}

// FormConfig returns the rendered payload, read-through cached in Redis.
func (s *Store) FormConfig(ctx context.Context) (*FormConfig, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, formConfigKey).Bytes()
		if err == nil {
			var cfg FormConfig
			if err := json.Unmarshal(cached, &cfg); err == nil {
				return &cfg, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.Logger.Warn("form config cache read failed", zap.Error(err))
		}
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	cfg := BuildFormConfig(settings)

	if s.Redis != nil {
		if raw, err := json.Marshal(cfg); err == nil {
			if err := s.Redis.Set(ctx, formConfigKey, raw, s.TTL).Err(); err != nil {
				s.Logger.Warn("form config cache write failed", zap.Error(err))
			}
		}
	}
	return cfg, nil
}

func (s *Store) invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, formConfigKey).Err(); err != nil {
		s.Logger.Warn("form config cache invalidation failed", zap.Error(err))
	}
}

func (s *Store) seedDefaults(ctx context.Context) (*Settings, error) {
	defaults := DefaultSettings()
	raw, err := json.Marshal(defaults)
	if err != nil {
		return nil, fmt.Errorf("encode default settings: %w", err)
	}
	row := models.Setting{Key: settingKey, Value: datatypes.JSON(raw)}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("seed settings: %w", err)
	}
	s.Logger.Info("seeded default order-form settings")
	return defaults, nil
}

// DefaultSettings is the catalog a fresh install starts from. Prices are in
// toman; page costs are per page, addon rates per copy, extras per order.
func DefaultSettings() *Settings {
	return &Settings{
		BookSizes: []string{"وزیری", "رقعی", "رحلی", "خشتی", "پالتویی"},
		PageCosts: pricing.Matrix{
			"تحریر": {
				"60": {BW: 350, Color: 950},
				"70": {BW: 380, Color: 1000},
				"80": {BW: 420, Color: 0},
			},
			"بالک": {
				"80": {BW: 400, Color: 0},
			},
			"گلاسه": {
				"135": {BW: 0, Color: 1600},
			},
		},
		PrintTypes:        []string{pricing.PrintBW, pricing.PrintColor},
		BindingTypes:      []string{"چسب گرم", "فنر", "دوخت"},
		LicenseTypes:      []string{"دارد", "ندارد"},
		CoverPaperWeights: []string{"250", "300"},
		LaminationTypes:   []string{"مات", "براق"},
		Extras:            []string{"طرح جلد", "صفحه‌آرایی", "شابک"},
		Rates: pricing.Rates{
			BindingPrices:    map[string]int{"چسب گرم": 8000, "فنر": 12000, "دوخت": 20000},
			CoverPrices:      map[string]int{"250": 9000, "300": 11000},
			LaminationPrices: map[string]int{"مات": 3000, "براق": 2500},
			ExtrasPrices:     map[string]int{"طرح جلد": 150000, "صفحه‌آرایی": 200000, "شابک": 50000},
		},
		MinQuantity:  10,
		MaxQuantity:  5000,
		QuantityStep: 10,
	}
}
