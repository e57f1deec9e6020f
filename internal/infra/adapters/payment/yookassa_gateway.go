package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*YooKassaGateway)(nil)

// YooKassaGateway implements adapter.PaymentGateway over the provider's REST v3 API.
// Authentication is HTTP Basic with shop id and secret key; create calls carry
// a fresh Idempotence-Key so client-side retries cannot double-charge.
type YooKassaGateway struct {
	shopID    string
	secretKey string
	returnURL string
	sandbox   bool
	baseURL   string
	client    *http.Client
}

func NewYooKassaGateway(shopID, secretKey, returnURL string, sandbox bool) (*YooKassaGateway, error) {
	if shopID == "" || secretKey == "" {
		return nil, errors.New("yookassa credentials empty")
	}
	if _, err := url.Parse(returnURL); err != nil {
		return nil, fmt.Errorf("invalid return url: %w", err)
	}
	return &YooKassaGateway{
		shopID:    shopID,
		secretKey: secretKey,
		returnURL: returnURL,
		sandbox:   sandbox,
		baseURL:   "https://api.yookassa.ru/v3",
		client:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (g *YooKassaGateway) Name() string { return "yookassa" }

// kopecksToValue renders minor units as the provider's decimal string, e.g. 150000 -> "1500.00".
func kopecksToValue(kopecks int64) string {
	return fmt.Sprintf("%d.%02d", kopecks/100, kopecks%100)
}

func mapStatus(status string) adapter.GatewayStatus {
	switch status {
	case "pending":
		return adapter.GatewayStatusPending
	case "waiting_for_capture":
		return adapter.GatewayStatusWaitingForCapture
	case "succeeded":
		return adapter.GatewayStatusSucceeded
	case "canceled":
		return adapter.GatewayStatusCanceled
	default:
		return adapter.GatewayStatusUnknown
	}
}

type paymentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Paid         bool   `json:"paid"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

func (g *YooKassaGateway) CreatePayment(ctx context.Context, amountKopecks int64, currency, returnURL, description string, meta map[string]interface{}) (*adapter.GatewayPayment, error) {
	if returnURL == "" {
		returnURL = g.returnURL
	}
	payload := map[string]any{
		"amount": map[string]string{
			"value":    kopecksToValue(amountKopecks),
			"currency": currency,
		},
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": returnURL,
		},
		"capture":     true,
		"description": description,
	}
	if meta != nil {
		payload["metadata"] = meta
	}
	if g.sandbox {
		payload["test"] = true
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())
	req.SetBasicAuth(g.shopID, g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: create payment http %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var out paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode create response: %v", domain.ErrGatewayUnavailable, err)
	}
	if out.ID == "" || out.Confirmation.ConfirmationURL == "" {
		return nil, fmt.Errorf("%w: create response missing id or confirmation url", domain.ErrGatewayUnavailable)
	}
	return &adapter.GatewayPayment{
		ID:              out.ID,
		Status:          mapStatus(out.Status),
		Paid:            out.Paid,
		ConfirmationURL: out.Confirmation.ConfirmationURL,
	}, nil
}

func (g *YooKassaGateway) FindPayment(ctx context.Context, providerPaymentID string) (*adapter.GatewayPayment, error) {
	if providerPaymentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/payments/"+url.PathEscape(providerPaymentID), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.shopID, g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: find payment http %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var out paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode find response: %v", domain.ErrGatewayUnavailable, err)
	}
	return &adapter.GatewayPayment{
		ID:     out.ID,
		Status: mapStatus(out.Status),
		Paid:   out.Paid,
	}, nil
}
