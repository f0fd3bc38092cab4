package use_cases

import (
	"context"
	"time"

	"community/internal/application/entity"
	"community/internal/application/service"
	"community/pkg/config"

	"go.uber.org/zap"
)

type UseCaser interface {
	GetProfile(ctx context.Context, userID string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch *entity.ProfilePatch) error
	DeleteAccount(ctx context.Context, userID, confirmation string) error
	ListMembers(ctx context.Context, search, sort string) ([]*entity.MemberSummary, error)

	GetPreferences(ctx context.Context, token string) (*entity.EmailPreferences, error)
	ManagePreferences(ctx context.Context, token string, req entity.ManagePreferencesRequest) (*entity.EmailPreferences, error)
	DeleteExpiredTokens(ctx context.Context)

	CreateEvent(ctx context.Context, event entity.Event) error
	GetEvents(ctx context.Context, start, end time.Time) ([]*entity.EventResponse, error)
	UpdateEvent(ctx context.Context, event entity.Event) error
	DeleteEvent(ctx context.Context, id string) error

	RunRelay(ctx context.Context)
	RunHealthPolling(ctx context.Context)
	ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time)

	HealthSnapshot() (*entity.HealthCheckResponse, string)
	RefreshHealth(ctx context.Context) *entity.HealthCheckResponse
}

type UseCase struct {
	service service.Service
	health  *service.HealthAggregator
	logger  *zap.SugaredLogger
	conf    *config.Config
}

func NewUseCase(service service.Service, health *service.HealthAggregator, logger *zap.SugaredLogger, conf *config.Config) *UseCase {
	return &UseCase{
		service: service,
		health:  health,
		logger:  logger,
		conf:    conf,
	}
}

// ===== HEALTH =====

func (u *UseCase) RunHealthPolling(ctx context.Context) {
	u.health.RunPolling(ctx)
}

func (u *UseCase) HealthSnapshot() (*entity.HealthCheckResponse, string) {
	return u.health.Snapshot()
}

func (u *UseCase) RefreshHealth(ctx context.Context) *entity.HealthCheckResponse {
	return u.health.Refresh(ctx)
}

// ===== PROFILES =====

func (u *UseCase) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	u.logger.Debugf("[user: %s] GetProfile started", userID)
	return u.service.GetProfile(ctx, userID)
}

func (u *UseCase) UpdateProfile(ctx context.Context, userID string, patch *entity.ProfilePatch) error {
	u.logger.Debugf("[user: %s] UpdateProfile started", userID)
	return u.service.UpdateProfile(ctx, userID, patch)
}

func (u *UseCase) DeleteAccount(ctx context.Context, userID, confirmation string) error {
	u.logger.Debugf("[user: %s] DeleteAccount started", userID)
	return u.service.DeleteAccount(ctx, userID, confirmation)
}

func (u *UseCase) ListMembers(ctx context.Context, search, sort string) ([]*entity.MemberSummary, error) {
	u.logger.Debugf("[search: %q] ListMembers started", search)
	return u.service.ListMembers(ctx, search, sort)
}

// ===== EMAIL PREFERENCES =====

func (u *UseCase) GetPreferences(ctx context.Context, token string) (*entity.EmailPreferences, error) {
	u.logger.Debugf("[token: %s] GetPreferences started", token)
	return u.service.GetPreferences(ctx, token)
}

func (u *UseCase) ManagePreferences(ctx context.Context, token string, req entity.ManagePreferencesRequest) (*entity.EmailPreferences, error) {
	u.logger.Debugf("[token: %s] ManagePreferences started", token)
	return u.service.ManagePreferences(ctx, token, req)
}

func (u *UseCase) DeleteExpiredTokens(ctx context.Context) {
	u.logger.Info("DeleteExpiredTokens called")
	u.service.DeleteExpiredTokens(ctx)
}

// ===== EVENTS =====

func (u *UseCase) CreateEvent(ctx context.Context, event entity.Event) error {
	u.logger.Debugf("[event: %s] CreateEvent started", event.ID)
	return u.service.CreateEvent(ctx, &event)
}

func (u *UseCase) GetEvents(ctx context.Context, start, end time.Time) ([]*entity.EventResponse, error) {
	u.logger.Debugf("[start: %s, end: %s] GetEvents started", start, end)
	return u.service.GetEventsByPeriod(ctx, start, end)
}

func (u *UseCase) UpdateEvent(ctx context.Context, event entity.Event) error {
	u.logger.Debugf("[event: %s] UpdateEvent started", event.ID)
	return u.service.UpdateEvent(ctx, &event)
}

func (u *UseCase) DeleteEvent(ctx context.Context, id string) error {
	u.logger.Debugf("[event: %s] DeleteEvent started", id)
	return u.service.DeleteEvent(ctx, id)
}

// ===== BACKGROUND =====

func (u *UseCase) RunRelay(ctx context.Context) {
	u.logger.Debug("relay started")
	u.service.RelayEventRun(ctx)
}

// ConsumerMessage обрабатывает сообщение из bounce-топика почтового сервиса
func (u *UseCase) ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time) {
	u.logger.Debugf("consumer message: %s, time: %v", msg, msgTime)

	if err := u.service.HandleBouncedEmail(ctx, msg); err != nil {
		u.logger.Errorf("bounce processing failed: %v", err)
	}
}
