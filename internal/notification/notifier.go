package notification

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/models"
)

// Notifier delivers a persisted notification to an out-of-band channel.
// Delivery is best-effort; errors are logged by the service, never surfaced.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification) error
}

func logNotifyError(logger zerolog.Logger, err error, channel string, notif models.Notification) {
	if err == nil {
		return
	}
	logger.Warn().
		Err(err).
		Str("notification_id", notif.ID).
		Str("type", string(notif.Type)).
		Str("channel", channel).
		Msg("failed to deliver notification")
}

// EmailNotifier forwards submission notifications to the admin mailbox.
type EmailNotifier struct {
	mailer Mailer
}

func NewEmailNotifier(mailer Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer}
}

func (n *EmailNotifier) Notify(ctx context.Context, notif models.Notification) error {
	if notif.Type != models.NotificationTypeNewTool {
		return nil
	}
	return n.mailer.SendSubmissionAlert(notif.Message)
}

func (n *EmailNotifier) String() string { return "email" }
