// Package notifier delivers login links to users by email.
// Delivery is best-effort: the auth flow never fails because an email
// could not be sent.
package notifier

import "context"

// Notifier sends a single HTML email to the given address.
type Notifier interface {
	Send(ctx context.Context, to string, subject string, htmlBody string) error
}
