package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Payment lifecycle errors
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrNoOrganization     = errors.New("user has no organization")
	ErrOrganizationPaid   = errors.New("organization subscription already active")
	ErrTariffNotFound     = errors.New("tariff plan not found")
	ErrNoPendingPayment   = errors.New("no pending payment for session")

	// Assist endpoint errors
	ErrSubscriptionInactive = errors.New("organization subscription not active")
	ErrRateLimited          = errors.New("rate limit exceeded")
)
