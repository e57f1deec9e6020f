package adapter

import (
	"context"
)

// GatewayStatus is the provider's authoritative payment state, mapped to a
// closed enum so reconciliation can switch exhaustively instead of comparing
// loose strings.
type GatewayStatus string

const (
	GatewayStatusPending           GatewayStatus = "pending"
	GatewayStatusWaitingForCapture GatewayStatus = "waiting_for_capture"
	GatewayStatusSucceeded         GatewayStatus = "succeeded"
	GatewayStatusCanceled          GatewayStatus = "canceled"
	GatewayStatusUnknown           GatewayStatus = "unknown"
)

// GatewayPayment is the minimal response shape reconciliation depends on.
type GatewayPayment struct {
	ID              string
	Status          GatewayStatus
	Paid            bool
	ConfirmationURL string // set on create; empty on find
}

// PaymentGateway is the hex port for the external payment provider.
//
// CreatePayment initiates a transaction and returns the opaque provider id
// plus the URL the user must be redirected to. FindPayment returns the
// authoritative state for a previously created transaction. Transport
// failures and malformed provider responses must be returned as errors, never
// mapped to a canceled/failed GatewayStatus.
type PaymentGateway interface {
	Name() string
	CreatePayment(ctx context.Context, amountKopecks int64, currency, returnURL, description string, meta map[string]interface{}) (*GatewayPayment, error)
	FindPayment(ctx context.Context, providerPaymentID string) (*GatewayPayment, error)
}
