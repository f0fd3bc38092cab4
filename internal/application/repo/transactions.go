package repo

import (
	"context"
	"fmt"

	"community/internal/appers"
	"community/internal/application/entity"
	"community/pkg/config"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type Transactions interface {
	CreateEvent(ctx context.Context, in *entity.Event, payload []byte) error
	UpdatePreferences(ctx context.Context, token uuid.UUID, subs entity.Subscriptions, eventType entity.OutboxEventType, payload []byte) error
	DeleteAccount(ctx context.Context, userID, email string, outboxID uuid.UUID, payload []byte) error
	GetOperationsFromOutbox(ctx context.Context, c config.RelayConfig) ([]entity.OutboxEvent, error)
	MarkSent(ctx context.Context, outboxID int) error
}

type TransactionsImpl struct {
	repo   *RepoImpl
	logger *zap.SugaredLogger
}

func NewTransactions(repo *RepoImpl, logger *zap.SugaredLogger) *TransactionsImpl {
	return &TransactionsImpl{repo: repo, logger: logger}
}

// CreateEvent вставляет событие и outbox-запись event_created в одной транзакции
func (t *TransactionsImpl) CreateEvent(ctx context.Context, in *entity.Event, payload []byte) error {
	if len(payload) == 0 {
		t.logger.Warnf("[ID %s] empty payload for outbox", in.ID)
	}

	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		inserted, err := t.repo.CreateEvent(ctx, in)
		if err != nil {
			t.logger.Errorf("[ID %s] insert event failed: %v", in.ID, err)
			return err
		}

		if !inserted {
			// запись уже существует
			t.logger.Infof("[ID %s] idempotent hit: event already exists", in.ID)
			return appers.ErrEventAlreadyExists
		}

		evt := entity.OutboxEvent{
			AggregateID:   in.ID,
			AggregateType: entity.AggregateEvent,
			EventType:     entity.EventCreated,
			Payload:       payload,
			Status:        entity.OutboxNew,
		}
		if err = t.repo.InsertOutbox(ctx, &evt); err != nil {
			t.logger.Errorf("[ID %s] insert outbox failed: %v", in.ID, err)
			return err
		}
		return nil
	})
}

// UpdatePreferences обновляет подписки и пишет outbox-запись для почтового
// сервиса в одной транзакции
func (t *TransactionsImpl) UpdatePreferences(ctx context.Context, token uuid.UUID, subs entity.Subscriptions, eventType entity.OutboxEventType, payload []byte) error {
	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := t.repo.UpdatePreferences(ctx, token, subs); err != nil {
			t.logger.Errorf("[token %s] update preferences failed: %v", token, err)
			return err
		}

		evt := entity.OutboxEvent{
			AggregateID:   token,
			AggregateType: entity.AggregatePreferences,
			EventType:     eventType,
			Payload:       payload,
			Status:        entity.OutboxNew,
		}
		if err := t.repo.InsertOutbox(ctx, &evt); err != nil {
			t.logger.Errorf("[token %s] insert outbox failed: %v", token, err)
			return err
		}
		return nil
	})
}

// DeleteAccount удаляет профиль и подписки, фиксируя account_deleted в outbox
func (t *TransactionsImpl) DeleteAccount(ctx context.Context, userID, email string, outboxID uuid.UUID, payload []byte) error {
	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := t.repo.DeleteProfile(ctx, userID); err != nil {
			t.logger.Errorf("[user %s] delete profile failed: %v", userID, err)
			return err
		}
		if err := t.repo.DeletePreferencesByEmail(ctx, email); err != nil {
			t.logger.Errorf("[user %s] delete preferences failed: %v", userID, err)
			return err
		}

		evt := entity.OutboxEvent{
			AggregateID:   outboxID,
			AggregateType: entity.AggregateProfile,
			EventType:     entity.AccountDeleted,
			Payload:       payload,
			Status:        entity.OutboxNew,
		}
		if err := t.repo.InsertOutbox(ctx, &evt); err != nil {
			t.logger.Errorf("[user %s] insert outbox failed: %v", userID, err)
			return err
		}
		return nil
	})
}

func (t *TransactionsImpl) GetOperationsFromOutbox(ctx context.Context, c config.RelayConfig) ([]entity.OutboxEvent, error) {
	var events []entity.OutboxEvent
	err := t.repo.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		events, err = t.repo.ReserveOutboxBatch(txCtx, c.Lease, c.BatchSize, c.MaxAttempts)
		return err
	})
	if err != nil {
		t.logger.Errorw("reserve outbox batch failed", "err", err)
		return nil, err
	}
	return events, nil
}

func (t *TransactionsImpl) MarkSent(ctx context.Context, outboxID int) error {
	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		t.logger.Infof("[ID %d] start transaction to mark outbox record as sent", outboxID)
		result, err := t.repo.db.Exec(ctx, markSentSQL, outboxID, entity.OutboxSent)
		if err != nil {
			return fmt.Errorf("outbox mark sent: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("[ID %d] outbox not found", outboxID)
		}
		return nil
	})
}
