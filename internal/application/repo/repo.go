package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"community/internal/appers"
	"community/internal/application/entity"
	"community/pkg/db"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type Repo interface {
	GetProfile(ctx context.Context, userID string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch *entity.ProfilePatch) error
	DeleteProfile(ctx context.Context, userID string) error
	ListMembers(ctx context.Context, search, sort string) ([]*entity.MemberSummary, error)

	GetPreferences(ctx context.Context, token uuid.UUID) (*entity.EmailPreferences, error)
	UpdatePreferences(ctx context.Context, token uuid.UUID, s entity.Subscriptions) error
	UnsubscribeAllByEmail(ctx context.Context, email string) (int64, error)
	DeletePreferencesByEmail(ctx context.Context, email string) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)

	CreateEvent(ctx context.Context, evt *entity.Event) (bool, error)
	UpdateEvent(ctx context.Context, evt *entity.Event) error
	DeleteEvent(ctx context.Context, id string) error
	GetEvents(ctx context.Context, start, end time.Time) ([]*entity.EventResponse, error)

	InsertOutbox(ctx context.Context, e *entity.OutboxEvent) error
	ReserveOutboxBatch(ctx context.Context, lease time.Duration, limit, maxAttempts int) ([]entity.OutboxEvent, error)
	MarkFailedWithBackoff(ctx context.Context, outboxID int, nextAttemptAt time.Time) error
	MarkGaveUp(ctx context.Context, outboxID int) error

	HealthCheck(ctx context.Context) error
}

type RepoImpl struct {
	db     db.DB
	logger *zap.SugaredLogger
}

func NewRepo(db db.DB, logger *zap.SugaredLogger) *RepoImpl {
	return &RepoImpl{db: db, logger: logger}
}

func (r *RepoImpl) HealthCheck(ctx context.Context) error {
	// Проверяем доступность БД через простой запрос
	var result int
	err := r.db.QueryRow(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// ===== PROFILES =====

func (r *RepoImpl) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	r.logger.Debugf("[user: %s] start getting profile from DB", userID)

	var p entity.Profile
	err := r.db.QueryRow(ctx, getProfile, userID).Scan(
		&p.UserID, &p.Email, &p.DisplayName, &p.Bio, &p.Location,
		&p.Website, &p.ProfilePicture, &p.CreatedAt, &p.UpdatedAt)

	switch {
	case err == nil:
		return &p, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, appers.ErrProfileNotFound
	default:
		r.logger.Errorf("[user: %s] error getting profile from DB: %v", userID, err)
		return nil, fmt.Errorf("error getting profile from DB: %w", err)
	}
}

func (r *RepoImpl) UpdateProfile(ctx context.Context, userID string, patch *entity.ProfilePatch) error {
	r.logger.Debugf("[user: %s] start updating profile in DB", userID)

	query, args := createProfilePatchQuery(userID, patch)
	if query == "" {
		r.logger.Warnf("[user: %s] no profile fields to update", userID)
		return nil
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Errorf("[user: %s] error updating profile in DB: %v", userID, err)
		return fmt.Errorf("error updating profile in DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		r.logger.Warnf("[user: %s] no profile rows updated", userID)
		return appers.ErrProfileNotFound
	}
	r.logger.Debugf("[user: %s] profile updated in DB successfully", userID)
	return nil
}

func (r *RepoImpl) DeleteProfile(ctx context.Context, userID string) error {
	r.logger.Debugf("[user: %s] start deleting profile from DB", userID)

	result, err := r.db.Exec(ctx, deleteProfile, userID)
	if err != nil {
		r.logger.Errorf("[user: %s] error deleting profile from DB: %v", userID, err)
		return fmt.Errorf("error deleting profile from DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		return appers.ErrProfileNotFound
	}
	return nil
}

func (r *RepoImpl) ListMembers(ctx context.Context, search, sort string) ([]*entity.MemberSummary, error) {
	r.logger.Debugf("[search: %q, sort: %q] start listing members from DB", search, sort)

	// Белый список сортировок: всё неизвестное сводим к name
	query := listMembersByName
	if sort == "joined" {
		query = listMembersByJoined
	}

	rows, err := r.db.Query(ctx, query, search)
	if err != nil {
		r.logger.Errorf("[search: %q] error listing members from DB: %v", search, err)
		return nil, fmt.Errorf("error listing members from DB: %w", err)
	}
	defer rows.Close()

	members := make([]*entity.MemberSummary, 0)
	for rows.Next() {
		var m entity.MemberSummary
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.Location, &m.ProfilePicture, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("error listing members from DB: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// ===== EMAIL PREFERENCES =====

func (r *RepoImpl) GetPreferences(ctx context.Context, token uuid.UUID) (*entity.EmailPreferences, error) {
	r.logger.Debugf("[token: %s] start getting preferences from DB", token)

	var p entity.EmailPreferences
	err := r.db.QueryRow(ctx, getPreferencesByToken, token).Scan(
		&p.Token, &p.Email,
		&p.Subscriptions.Newsletters, &p.Subscriptions.Events, &p.Subscriptions.Announcements,
		&p.UpdatedAt, &p.ExpiresAt)

	switch {
	case err == nil:
		return &p, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, appers.ErrTokenNotFound
	default:
		r.logger.Errorf("[token: %s] error getting preferences from DB: %v", token, err)
		return nil, fmt.Errorf("error getting preferences from DB: %w", err)
	}
}

func (r *RepoImpl) UpdatePreferences(ctx context.Context, token uuid.UUID, s entity.Subscriptions) error {
	r.logger.Debugf("[token: %s] start updating preferences in DB", token)

	result, err := r.db.Exec(ctx, updatePreferences, token, s.Newsletters, s.Events, s.Announcements)
	if err != nil {
		r.logger.Errorf("[token: %s] error updating preferences in DB: %v", token, err)
		return fmt.Errorf("error updating preferences in DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		return appers.ErrTokenNotFound
	}
	return nil
}

func (r *RepoImpl) UnsubscribeAllByEmail(ctx context.Context, email string) (int64, error) {
	result, err := r.db.Exec(ctx, unsubscribeAllByEmail, email)
	if err != nil {
		r.logger.Errorf("[email: %s] error unsubscribing in DB: %v", email, err)
		return 0, fmt.Errorf("error unsubscribing in DB: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *RepoImpl) DeletePreferencesByEmail(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, deletePreferencesByEmail, email)
	if err != nil {
		return fmt.Errorf("error deleting preferences from DB: %w", err)
	}
	return nil
}

func (r *RepoImpl) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, deleteExpiredTokens)
	if err != nil {
		r.logger.Errorf("error deleting expired tokens from DB: %v", err)
		return 0, fmt.Errorf("error deleting expired tokens from DB: %w", err)
	}
	return result.RowsAffected(), nil
}

// ===== EVENTS =====

func (r *RepoImpl) CreateEvent(ctx context.Context, evt *entity.Event) (bool, error) {
	r.logger.Debugf("[event: %s] start inserting into DB", evt.ID)

	var insertedID uuid.UUID
	err := r.db.QueryRow(ctx, createEvent,
		evt.ID, evt.Title, evt.Description, evt.Location,
		evt.StartsAt, evt.EndsAt, evt.GroupID, evt.CreatedBy).Scan(&insertedID)

	switch {
	case err == nil:
		r.logger.Debugf("[event: %s] inserted into DB successfully", evt.ID)
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		// ON CONFLICT DO NOTHING вернул 0 строк - событие уже существует
		r.logger.Warnf("[event: %s] inserting event: already exists (conflict)", evt.ID)
		return false, appers.ErrEventAlreadyExists
	case isDuplicateKeyError(err):
		r.logger.Warnf("[event: %s] inserting event: already exists (duplicate key)", evt.ID)
		return false, appers.ErrEventAlreadyExists
	default:
		r.logger.Errorf("[event: %s] error inserting into DB: %v", evt.ID, err)
		return false, fmt.Errorf("error inserting into DB: %w", err)
	}
}

func (r *RepoImpl) UpdateEvent(ctx context.Context, evt *entity.Event) error {
	r.logger.Debugf("[event: %s] start updating in DB", evt.ID)
	query, args := createEventPatchQuery(evt)
	if query == "" {
		r.logger.Warnf("[event: %s] no fields to update", evt.ID)
		return nil
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Errorf("[event: %s] error updating in DB: %v", evt.ID, err)
		return fmt.Errorf("error updating in DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		r.logger.Warnf("[event: %s] no rows updated", evt.ID)
		return appers.ErrEventNotFound
	}
	return nil
}

func (r *RepoImpl) DeleteEvent(ctx context.Context, id string) error {
	r.logger.Debugf("[event: %s] start deleting from DB", id)

	result, err := r.db.Exec(ctx, deleteEvent, id)
	if err != nil {
		r.logger.Errorf("[event: %s] error deleting from DB: %v", id, err)
		return fmt.Errorf("error deleting from DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		return appers.ErrEventNotFound
	}
	return nil
}

func (r *RepoImpl) GetEvents(ctx context.Context, start, end time.Time) ([]*entity.EventResponse, error) {
	r.logger.Debugf("[start: %s, end: %s] start getting events from DB", start, end)

	rows, err := r.db.Query(ctx, getEventsByPeriod, start, end)
	if err != nil {
		r.logger.Errorf("[start: %s, end: %s] error getting events from DB: %v", start, end, err)
		return nil, fmt.Errorf("error getting events from DB: %w", err)
	}
	defer rows.Close()

	events := make([]*entity.EventResponse, 0)
	for rows.Next() {
		var evt entity.EventResponse
		err := rows.Scan(&evt.ID, &evt.Title, &evt.Description, &evt.Location,
			&evt.StartsAt, &evt.EndsAt, &evt.GroupID, &evt.CreatedBy, &evt.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error getting events from DB: %w", err)
		}
		events = append(events, &evt)
	}
	return events, rows.Err()
}

// ===== PATCH QUERIES =====

func createProfilePatchQuery(userID string, patch *entity.ProfilePatch) (string, []any) {
	set := make([]string, 0, 6)
	args := make([]any, 0, 6)
	i := 1

	add := func(field string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", field, i))
		args = append(args, value)
		i++
	}

	if patch.DisplayName != "" {
		add("display_name", patch.DisplayName)
	}
	if patch.Bio != "" {
		add("bio", patch.Bio)
	}
	if patch.Location != "" {
		add("location", patch.Location)
	}
	if patch.Website != "" {
		add("website", patch.Website)
	}
	if patch.ProfilePicture != "" {
		add("profile_picture", patch.ProfilePicture)
	}

	if len(set) == 0 {
		return "", nil
	}

	set = append(set, "updated_at = now()")

	sb := strings.Builder{}
	sb.WriteString("UPDATE profiles SET ")
	sb.WriteString(strings.Join(set, ", "))
	sb.WriteString(" WHERE user_id = $")
	sb.WriteString(fmt.Sprint(i))
	args = append(args, userID)

	return sb.String(), args
}

func createEventPatchQuery(patch *entity.Event) (string, []any) {
	set := make([]string, 0, 7)
	args := make([]any, 0, 7)
	i := 1

	add := func(field string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", field, i))
		args = append(args, value)
		i++
	}

	if patch.Title != "" {
		add("title", patch.Title)
	}
	if patch.Description != "" {
		add("description", patch.Description)
	}
	if patch.Location != "" {
		add("location", patch.Location)
	}
	if patch.StartsAt != "" {
		add("starts_at", patch.StartsAt)
	}
	if patch.EndsAt != "" {
		add("ends_at", patch.EndsAt)
	}
	if patch.GroupID != "" {
		add("group_id", patch.GroupID)
	}

	if len(set) == 0 {
		return "", nil
	}

	set = append(set, "updated_at = now()")

	sb := strings.Builder{}
	sb.WriteString("UPDATE events SET ")
	sb.WriteString(strings.Join(set, ", "))
	sb.WriteString(" WHERE id = $")
	sb.WriteString(fmt.Sprint(i))
	args = append(args, patch.ID)

	return sb.String(), args
}

// isDuplicateKeyError проверяет, является ли ошибка ошибкой дубликата ключа (SQLSTATE 23505)
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
