package ports

import "context"

// Mailer is the out-of-band delivery channel for recovery codes.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
