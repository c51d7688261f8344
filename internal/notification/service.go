package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/models"
	"github.com/toolindex/toolindex-api/internal/repository"
)

// Feed is the admin notification feed: an append-only event log with
// read/unread tracking.
type Feed struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

type Service interface {
	Emit(ctx context.Context, typ models.NotificationType, message string, toolID *string) (models.Notification, error)
	NotifyNewTool(ctx context.Context, tool models.Tool)
	List(ctx context.Context, limit int) (Feed, error)
	MarkRead(ctx context.Context, notificationID string) (models.Notification, error)
	MarkAllRead(ctx context.Context) (int64, error)
}

type service struct {
	repo      repository.NotificationRepository
	logger    zerolog.Logger
	notifiers []Notifier
}

func NewService(repo repository.NotificationRepository, logger zerolog.Logger, notifiers ...Notifier) Service {
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	return &service{
		repo:      repo,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		notifiers: active,
	}
}

func (s *service) Emit(ctx context.Context, typ models.NotificationType, message string, toolID *string) (models.Notification, error) {
	if typ == "" {
		return models.Notification{}, fmt.Errorf("notification type is required")
	}

	notif, err := s.repo.Create(ctx, repository.CreateNotificationParams{
		Type:    typ,
		Message: strings.TrimSpace(message),
		ToolID:  toolID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("type", string(typ)).Msg("failed to persist notification")
		return models.Notification{}, err
	}

	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, notif); err != nil {
			logNotifyError(s.logger, err, notifierChannelName(notifier), notif)
		}
	}
	return notif, nil
}

// NotifyNewTool records the submission event. Failures are logged and
// swallowed so a notification problem never fails the submission itself.
func (s *service) NotifyNewTool(ctx context.Context, tool models.Tool) {
	message := fmt.Sprintf("New tool submitted: %s by %s", tool.Name, tool.SubmitterName)
	toolID := tool.ID
	if _, err := s.Emit(ctx, models.NotificationTypeNewTool, message, &toolID); err != nil {
		s.logger.Warn().Err(err).Str("tool_id", tool.ID).Msg("new tool notification not recorded")
	}
}

func (s *service) List(ctx context.Context, limit int) (Feed, error) {
	notifications, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return Feed{}, err
	}
	unread, err := s.repo.UnreadCount(ctx)
	if err != nil {
		return Feed{}, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return Feed{Notifications: notifications, UnreadCount: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID string) (models.Notification, error) {
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}

func notifierChannelName(n Notifier) string {
	type named interface {
		String() string
	}
	if v, ok := n.(named); ok {
		return v.String()
	}
	return fmt.Sprintf("%T", n)
}
