package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/lightbox/internal/models"
)

// Message repository errors.
var (
	ErrMessageNotFound = errors.New("message not found")
)

// MessageRepository handles message and attachment persistence.
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores a message together with its attachments in one transaction
// and bumps the parent conversation.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		return r.createWithTx(ctx, tx, msg)
	})
}

func (r *MessageRepository) createWithTx(ctx context.Context, tx *sql.Tx, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	} else {
		msg.CreatedAt = msg.CreatedAt.UTC()
	}

	var replyTo *string
	if msg.ReplyTo != "" {
		replyTo = &msg.ReplyTo
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, author, body, reply_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		msg.ID,
		msg.ConversationID,
		msg.Author,
		msg.Body,
		replyTo,
		msg.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	for i := range msg.Attachments {
		att := &msg.Attachments[i]
		att.MessageID = msg.ID
		if att.Position == 0 {
			att.Position = i
		}
		if err := r.insertAttachment(ctx, tx, att); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, msg.CreatedAt.Format(time.RFC3339), msg.ConversationID); err != nil {
		return fmt.Errorf("failed to bump conversation: %w", err)
	}
	return nil
}

func (r *MessageRepository) insertAttachment(ctx context.Context, execer execer, att *models.Attachment) error {
	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	} else {
		att.CreatedAt = att.CreatedAt.UTC()
	}
	if att.Kind == "" {
		att.Kind = models.KindFromMime(att.MimeType)
	}

	var mime *string
	if att.MimeType != "" {
		mime = &att.MimeType
	}

	_, err := execer.ExecContext(ctx, `
		INSERT INTO attachments (
			id, message_id, kind, source, name, mime_type,
			size_bytes, width, height, duration_seconds, position, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		att.ID,
		att.MessageID,
		string(att.Kind),
		att.Source,
		att.Name,
		mime,
		att.SizeBytes,
		att.Width,
		att.Height,
		att.DurationSeconds,
		att.Position,
		att.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	return nil
}

// Get retrieves a message by ID, attachments included.
func (r *MessageRepository) Get(ctx context.Context, id string) (*models.Message, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, author, body, reply_to, created_at
		FROM messages WHERE id = ?
	`, id)

	msg, err := scanMessage(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}

	atts, err := r.attachmentsFor(ctx, []string{msg.ID})
	if err != nil {
		return nil, err
	}
	msg.Attachments = atts[msg.ID]
	return msg, nil
}

// ListByConversation retrieves a conversation's messages oldest first, each
// carrying its attachments in position order.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, author, body, reply_to, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	var ids []string
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, *msg)
		ids = append(ids, msg.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	atts, err := r.attachmentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].Attachments = atts[msgs[i].ID]
	}
	return msgs, nil
}

// Delete removes a message and its attachments.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// CountByConversation returns how many messages a conversation holds.
func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) attachmentsFor(ctx context.Context, messageIDs []string) (map[string][]models.Attachment, error) {
	out := make(map[string][]models.Attachment, len(messageIDs))
	if len(messageIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(messageIDs))
	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, message_id, kind, source, name, mime_type,
			size_bytes, width, height, duration_seconds, position, created_at
		FROM attachments
		WHERE message_id IN (%s)
		ORDER BY message_id, position, id
	`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var att models.Attachment
		var kind string
		var mime sql.NullString
		var createdAt string
		if err := rows.Scan(&att.ID, &att.MessageID, &kind, &att.Source, &att.Name,
			&mime, &att.SizeBytes, &att.Width, &att.Height,
			&att.DurationSeconds, &att.Position, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		att.Kind = models.AttachmentKind(kind)
		if mime.Valid {
			att.MimeType = mime.String
		}
		att.CreatedAt = parseTime(createdAt)
		out[att.MessageID] = append(out[att.MessageID], att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}
	return out, nil
}

func scanMessage(scan func(...any) error) (*models.Message, error) {
	var msg models.Message
	var replyTo sql.NullString
	var createdAt string
	if err := scan(&msg.ID, &msg.ConversationID, &msg.Author, &msg.Body, &replyTo, &createdAt); err != nil {
		return nil, err
	}
	if replyTo.Valid {
		msg.ReplyTo = replyTo.String
	}
	msg.CreatedAt = parseTime(createdAt)
	return &msg, nil
}
