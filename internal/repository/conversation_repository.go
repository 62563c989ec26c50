package repository

import (
	"context"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var conversationColumns = []string{
	"id", "conversation_id", "user_id", "assistant_id", "title", "created_at", "updated_at",
}

type ConversationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConversationRepository(db *pgxpool.Pool, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	query := squirrel.Insert("conversations").
		Columns(conversationColumns...).
		Values(conv.ID, conv.ConversationID, conv.UserID, conv.AssistantID, conv.Title,
			conv.CreatedAt, conv.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetByPublicID resolves a conversation by its ULID handle, scoped to the
// owning user.
func (r *ConversationRepository) GetByPublicID(ctx context.Context, userID uuid.UUID, conversationID string) (*models.Conversation, error) {
	query := squirrel.Select(conversationColumns...).
		From("conversations").
		Where(squirrel.Eq{"conversation_id": conversationID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var conv models.Conversation
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&conv.ID, &conv.ConversationID, &conv.UserID, &conv.AssistantID, &conv.Title,
		&conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conv, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Conversation, error) {
	query := squirrel.Select(conversationColumns...).
		From("conversations").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("updated_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.ConversationID, &conv.UserID, &conv.AssistantID, &conv.Title,
			&conv.CreatedAt, &conv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &conv)
	}

	return out, rows.Err()
}

func (r *ConversationRepository) Touch(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Update("conversations").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Delete removes a conversation; messages go with it via FK cascade.
func (r *ConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("conversations").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ConversationRepository) InsertMessage(ctx context.Context, msg *models.Message) error {
	query := squirrel.Insert("messages").
		Columns("conversation_id", "role", "content", "token_count", "created_at").
		Values(msg.ConversationID, msg.Role, msg.Content, msg.TokenCount, msg.CreatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&msg.ID)
}

// ListRecentMessages returns the newest messages first.
func (r *ConversationRepository) ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int, beforeID int64) ([]*models.Message, error) {
	query := squirrel.Select("id", "conversation_id", "role", "content", "token_count", "created_at").
		From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if beforeID > 0 {
		query = query.Where(squirrel.Lt{"id": beforeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.TokenCount, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &msg)
	}

	return out, rows.Err()
}
