package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/database"
	"github.com/prepline/prepline-engine/pkg/models"
)

// NotificationRepository provides data access for notifications. Delivery is
// best effort; notifications are not part of the audit chain.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientEmail string, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *database.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

var _ NotificationRepository = (*notificationRepository)(nil)

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (
			id, recipient_email, title, message, type, priority, is_read, related_entity, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID,
		n.RecipientEmail,
		n.Title,
		n.Message,
		n.Type,
		n.Priority,
		n.IsRead,
		n.RelatedEntity,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientEmail string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient_email, title, message, type, priority, is_read, related_entity, created_at
		FROM notifications
		WHERE recipient_email = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += `
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, recipientEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.ID,
		&n.RecipientEmail,
		&n.Title,
		&n.Message,
		&n.Type,
		&n.Priority,
		&n.IsRead,
		&n.RelatedEntity,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return &n, nil
}
