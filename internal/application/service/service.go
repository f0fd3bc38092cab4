package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"community/internal/appers"
	"community/internal/application/entity"
	"community/internal/application/repo"
	"community/internal/transport/producer"
	"community/pkg/config"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetProfile(ctx context.Context, userID string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch *entity.ProfilePatch) error
	DeleteAccount(ctx context.Context, userID, confirmation string) error
	ListMembers(ctx context.Context, search, sort string) ([]*entity.MemberSummary, error)

	GetPreferences(ctx context.Context, token string) (*entity.EmailPreferences, error)
	ManagePreferences(ctx context.Context, token string, req entity.ManagePreferencesRequest) (*entity.EmailPreferences, error)
	HandleBouncedEmail(ctx context.Context, payload []byte) error
	DeleteExpiredTokens(ctx context.Context)

	CreateEvent(ctx context.Context, event *entity.Event) error
	GetEventsByPeriod(ctx context.Context, start, end time.Time) ([]*entity.EventResponse, error)
	UpdateEvent(ctx context.Context, event *entity.Event) error
	DeleteEvent(ctx context.Context, id string) error

	RelayEventRun(ctx context.Context)
}

type ServiceImpl struct {
	repo          repo.Repo
	transactions  repo.Transactions
	kafkaProducer producer.Producer
	logger        *zap.SugaredLogger
	cfg           *config.RelayConfig
}

func NewService(repo repo.Repo, transactions repo.Transactions, kafkaProducer producer.Producer, logger *zap.SugaredLogger, cfg *config.RelayConfig) *ServiceImpl {
	return &ServiceImpl{
		repo:          repo,
		transactions:  transactions,
		kafkaProducer: kafkaProducer,
		logger:        logger,
		cfg:           cfg,
	}
}

// ===== PROFILES =====

func (s *ServiceImpl) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	s.logger.Debugf("[user: %s] GetProfile started", userID)

	return s.repo.GetProfile(ctx, userID)
}

func (s *ServiceImpl) UpdateProfile(ctx context.Context, userID string, patch *entity.ProfilePatch) error {
	s.logger.Debugf("[user: %s] UpdateProfile started", userID)

	return s.repo.UpdateProfile(ctx, userID, patch)
}

// DeleteAccount удаляет аккаунт только при точном совпадении фразы подтверждения.
// Сравнение строгое и регистрозависимое: валидация, а не свободный ввод.
func (s *ServiceImpl) DeleteAccount(ctx context.Context, userID, confirmation string) error {
	s.logger.Debugf("[user: %s] DeleteAccount started", userID)

	if confirmation != entity.DeleteConfirmationPhrase {
		s.logger.Warnf("[user: %s] delete confirmation mismatch", userID)
		return appers.ErrConfirmationMismatch
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	outboxID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("generate outbox id: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"userId": userID,
		"email":  profile.Email,
	})
	if err != nil {
		return fmt.Errorf("marshal account_deleted payload: %w", err)
	}

	return s.transactions.DeleteAccount(ctx, userID, profile.Email, outboxID, payload)
}

func (s *ServiceImpl) ListMembers(ctx context.Context, search, sort string) ([]*entity.MemberSummary, error) {
	s.logger.Debugf("[search: %q, sort: %q] ListMembers started", search, sort)

	return s.repo.ListMembers(ctx, search, sort)
}

// ===== EMAIL PREFERENCES =====

func (s *ServiceImpl) GetPreferences(ctx context.Context, token string) (*entity.EmailPreferences, error) {
	s.logger.Debugf("[token: %s] GetPreferences started", token)

	id, err := uuid.FromString(token)
	if err != nil {
		// синтаксически невалидный токен неотличим от несуществующего
		return nil, appers.ErrTokenNotFound
	}

	prefs, err := s.repo.GetPreferences(ctx, id)
	if err != nil {
		return nil, err
	}
	if !prefs.ExpiresAt.IsZero() && prefs.ExpiresAt.Before(time.Now().UTC()) {
		return nil, appers.ErrTokenExpired
	}
	return prefs, nil
}

func (s *ServiceImpl) ManagePreferences(ctx context.Context, token string, req entity.ManagePreferencesRequest) (*entity.EmailPreferences, error) {
	s.logger.Debugf("[token: %s] ManagePreferences started", token)

	prefs, err := s.GetPreferences(ctx, token)
	if err != nil {
		return nil, err
	}

	next := req.Apply(prefs.Subscriptions)

	eventType := entity.PreferencesUpdated
	if req.UnsubscribeAll {
		eventType = entity.Unsubscribed
	}

	payload, err := json.Marshal(map[string]any{
		"email":         prefs.Email,
		"subscriptions": next,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal preferences payload: %w", err)
	}

	if err := s.transactions.UpdatePreferences(ctx, prefs.Token, next, eventType, payload); err != nil {
		return nil, err
	}

	prefs.Subscriptions = next
	prefs.UpdatedAt = time.Now().UTC()
	return prefs, nil
}

// HandleBouncedEmail обрабатывает сообщение почтового сервиса о невалидном
// адресе: все подписки получателя принудительно отключаются
func (s *ServiceImpl) HandleBouncedEmail(ctx context.Context, payload []byte) error {
	var bounce entity.BouncedEmail
	if err := json.Unmarshal(payload, &bounce); err != nil {
		return fmt.Errorf("unmarshal bounce message: %w", err)
	}
	if bounce.Email == "" {
		return fmt.Errorf("bounce message without email")
	}

	n, err := s.repo.UnsubscribeAllByEmail(ctx, bounce.Email)
	if err != nil {
		return err
	}
	s.logger.Infof("[email: %s] bounce processed, %d preference records disabled", bounce.Email, n)
	return nil
}

func (s *ServiceImpl) DeleteExpiredTokens(ctx context.Context) {
	s.logger.Debug("DeleteExpiredTokens started")

	n, err := s.repo.DeleteExpiredTokens(ctx)
	if err != nil {
		s.logger.Errorf("delete expired tokens failed: %v", err)
		return
	}
	if n > 0 {
		s.logger.Infof("deleted %d expired manage tokens", n)
	}
}

// ===== EVENTS =====

func (s *ServiceImpl) CreateEvent(ctx context.Context, event *entity.Event) error {
	s.logger.Debugf("[event: %s] CreateEvent started", event.ID)

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf("[event: %s] failed to marshal event to JSON: %v", event.ID, err)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return s.transactions.CreateEvent(ctx, event, payload)
}

func (s *ServiceImpl) GetEventsByPeriod(ctx context.Context, start, end time.Time) ([]*entity.EventResponse, error) {
	s.logger.Debugf("[start: %s, end: %s] GetEventsByPeriod started", start, end)

	return s.repo.GetEvents(ctx, start, end)
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, event *entity.Event) error {
	s.logger.Debugf("[event: %s] UpdateEvent started", event.ID)

	return s.repo.UpdateEvent(ctx, event)
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	s.logger.Debugf("[event: %s] DeleteEvent started", id)

	return s.repo.DeleteEvent(ctx, id)
}
