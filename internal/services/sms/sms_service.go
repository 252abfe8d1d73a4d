package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Service talks to the SMS gateway. Delivery is best effort: every caller
// treats a failure as something to log, never as a reason to fail the
// operation that triggered the message.
type Service struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	Sender  string
	Logger  *zap.Logger
}

func New(baseURL, apiKey, sender string, logger *zap.Logger) *Service {
	return &Service{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseURL: baseURL,
		APIKey:  apiKey,
		Sender:  sender,
		Logger:  logger,
	}
}

// Enabled reports whether a gateway is configured. Deployments without SMS
// credentials run fine; sends become logged no-ops.
func (s *Service) Enabled() bool {
	return s.BaseURL != "" && s.APIKey != ""
}

type sendRequest struct {
	Receptor string `json:"receptor"`
	Sender   string `json:"sender"`
	Message  string `json:"message"`
}

type sendResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Send posts one message, retrying transient failures a few times before
// giving up.
func (s *Service) Send(ctx context.Context, receptor, message string) error {
	if !s.Enabled() {
		s.Logger.Warn("SMS gateway not configured, message dropped",
			zap.String("receptor", receptor))
		return nil
	}

	body, err := json.Marshal(sendRequest{
		Receptor: receptor,
		Sender:   s.Sender,
		Message:  message,
	})
	if err != nil {
		return err
	}

	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/send", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.Client.Do(req)
		if err != nil {
			return fmt.Errorf("sms request: %w", err)
		}
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 500 {
			return fmt.Errorf("sms gateway %d: %s", resp.StatusCode, raw)
		}
		if resp.StatusCode >= 400 {
			// client error, retrying will not help
			return backoff.Permanent(fmt.Errorf("sms gateway %d: %s", resp.StatusCode, raw))
		}

		var apiResp sendResponse
		if err := json.Unmarshal(raw, &apiResp); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse response: %w", err))
		}
		if apiResp.Status != 0 && apiResp.Status != 200 {
			return backoff.Permanent(fmt.Errorf("sms error: %s", apiResp.Message))
		}
		return nil
	}, retryPolicy)
}

// SendRegistration welcomes a customer created from the order form with
// their login credentials. Errors are logged and swallowed.
func (s *Service) SendRegistration(ctx context.Context, mobile, firstName, password string) {
	msg := fmt.Sprintf("%s عزیز، حساب شما در چاپ تابش ایجاد شد.\nنام کاربری: %s\nرمز عبور: %s", firstName, mobile, password)
	if err := s.Send(ctx, mobile, msg); err != nil {
		s.Logger.Error("failed to send registration SMS",
			zap.String("mobile", mobile),
			zap.Error(err))
	}
}

// SendOrderConfirmation notifies a customer their order was registered.
// Errors are logged and swallowed.
func (s *Service) SendOrderConfirmation(ctx context.Context, mobile, orderNumber string, totalPrice int) {
	msg := fmt.Sprintf("سفارش شما با شماره %s ثبت شد.\nمبلغ کل: %d تومان\nچاپ تابش", orderNumber, totalPrice)
	if err := s.Send(ctx, mobile, msg); err != nil {
		s.Logger.Error("failed to send order SMS",
			zap.String("mobile", mobile),
			zap.String("order_number", orderNumber),
			zap.Error(err))
	}
}
