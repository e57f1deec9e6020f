package adapter

import "context"

// Mailer sends plain-text notification mail. Delivery infrastructure is an
// external collaborator; failures are reported, not retried here.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
