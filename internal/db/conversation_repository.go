package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/lightbox/internal/models"
)

// Conversation repository errors.
var (
	ErrConversationNotFound = errors.New("conversation not found")
)

// ConversationRepository handles conversation persistence.
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

type execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// Create stores a new conversation, filling ID and timestamps when empty.
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	return r.createWithExecutor(ctx, r.db, conv)
}

// CreateWithTx stores a new conversation inside an existing transaction.
func (r *ConversationRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, conv *models.Conversation) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	return r.createWithExecutor(ctx, tx, conv)
}

func (r *ConversationRepository) createWithExecutor(ctx context.Context, execer execer, conv *models.Conversation) error {
	if err := conv.Validate(); err != nil {
		return err
	}
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	} else {
		conv.CreatedAt = conv.CreatedAt.UTC()
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	} else {
		conv.UpdatedAt = conv.UpdatedAt.UTC()
	}

	_, err := execer.ExecContext(ctx, `
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`,
		conv.ID,
		conv.Title,
		conv.CreatedAt.Format(time.RFC3339),
		conv.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// Get retrieves a conversation by ID.
func (r *ConversationRepository) Get(ctx context.Context, id string) (*models.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?
	`, id)

	var conv models.Conversation
	var createdAt, updatedAt string
	if err := row.Scan(&conv.ID, &conv.Title, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	conv.CreatedAt = parseTime(createdAt)
	conv.UpdatedAt = parseTime(updatedAt)
	return &conv, nil
}

// List retrieves all conversations, most recently updated first, with
// message and attachment counts filled.
func (r *ConversationRepository) List(ctx context.Context) ([]*models.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id),
			(SELECT COUNT(*) FROM attachments a
				JOIN messages m ON m.id = a.message_id
				WHERE m.conversation_id = c.id)
		FROM conversations c
		ORDER BY c.updated_at DESC, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var convs []*models.Conversation
	for rows.Next() {
		var conv models.Conversation
		var createdAt, updatedAt string
		if err := rows.Scan(&conv.ID, &conv.Title, &createdAt, &updatedAt,
			&conv.MessageCount, &conv.AttachmentCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.CreatedAt = parseTime(createdAt)
		conv.UpdatedAt = parseTime(updatedAt)
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return convs, nil
}

// Rename updates the conversation title and bumps updated_at.
func (r *ConversationRepository) Rename(ctx context.Context, id, title string, now time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?
	`, title, now.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to rename conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rename result: %w", err)
	}
	if affected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Touch bumps the conversation's updated_at to now.
func (r *ConversationRepository) Touch(ctx context.Context, id string, now time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, now.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read touch result: %w", err)
	}
	if affected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Delete removes a conversation and, through cascades, its messages and
// attachments.
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
