package cron

import (
	"context"

	use_cases "community/internal/application/use-cases"

	"go.uber.org/zap"
)

// ExpiredTokensJob - задача очистки просроченных manage-токенов
type ExpiredTokensJob struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewExpiredTokensJob(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *ExpiredTokensJob {
	return &ExpiredTokensJob{
		usecase: usecase,
		logger:  logger,
	}
}

// Run выполняет очистку просроченных токенов
func (j *ExpiredTokensJob) Run(ctx context.Context) {
	j.logger.Info("Запуск задачи очистки просроченных токенов")

	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorf("Паника при выполнении задачи очистки токенов: %v", r)
		}
	}()

	j.usecase.DeleteExpiredTokens(ctx)
	j.logger.Info("Задача очистки просроченных токенов завершена")
}
