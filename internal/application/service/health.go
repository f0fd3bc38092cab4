package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"community/internal/application/entity"
	"community/internal/application/repo"
	"community/pkg/config"
	"community/pkg/httpclient"
	"community/pkg/metrics"

	"go.uber.org/zap"
)

// BrokerHealth - минимальный контракт проверки Kafka
type BrokerHealth interface {
	HealthCheck(ctx context.Context) error
}

// HealthAggregator опрашивает зависимости сервиса и держит в памяти
// последний агрегированный снапшот. Обновляется фоновым опросом с
// фиксированным интервалом и ручным refresh-ом.
//
// Одновременные опросы возможны (ручной refresh поверх тика), поэтому каждому
// циклу присваивается монотонный sequence number: результат, пришедший позже
// более нового, отбрасывается вместо перезаписи снапшота.
type HealthAggregator struct {
	repo   repo.Repo
	kafka  BrokerHealth
	client httpclient.HTTPClient
	conf   *config.Config
	logger *zap.SugaredLogger
	m      *metrics.Metrics

	seq atomic.Uint64

	mu         sync.RWMutex
	snapshot   *entity.HealthCheckResponse
	lastErr    string
	appliedSeq uint64
}

func NewHealthAggregator(
	repo repo.Repo,
	kafka BrokerHealth,
	client httpclient.HTTPClient,
	conf *config.Config,
	logger *zap.SugaredLogger,
	m *metrics.Metrics,
) *HealthAggregator {
	return &HealthAggregator{
		repo:   repo,
		kafka:  kafka,
		client: client,
		conf:   conf,
		logger: logger,
		m:      m,
	}
}

// RunPolling - фоновый цикл опроса. Останавливается отменой контекста,
// осиротевших тикеров не оставляет.
func (a *HealthAggregator) RunPolling(ctx context.Context) {
	interval := a.conf.Health.PollInterval
	a.logger.Infow("health poller started", "interval", interval.String())

	// первый снапшот не ждёт первого тика
	a.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Infow("health poller stopping")
			return
		case <-ticker.C:
			// без ретраев: неудачный цикл просто ждёт следующего тика
			a.Refresh(ctx)
		}
	}
}

// Refresh выполняет один цикл проверок и публикует снапшот, если он всё ещё
// самый свежий. Возвращает собранный снапшот (даже если тот был отброшен).
func (a *HealthAggregator) Refresh(ctx context.Context) *entity.HealthCheckResponse {
	seq := a.seq.Add(1)

	probeCtx, cancel := context.WithTimeout(ctx, a.conf.Health.ProbeTimeout)
	defer cancel()

	started := time.Now()
	checks := a.collect(probeCtx)
	elapsed := time.Since(started)

	if a.m != nil {
		a.m.Health.PollDurationSeconds.Observe(elapsed.Seconds())
	}

	resp := entity.BuildHealthResponse(checks, elapsed)

	a.mu.Lock()
	defer a.mu.Unlock()

	if ctx.Err() != nil {
		// опрос пережил владельца: молча выбрасываем результат,
		// последний удачный снапшот остаётся на месте
		a.lastErr = fmt.Sprintf("health poll aborted: %v", ctx.Err())
		return &resp
	}
	if seq < a.appliedSeq {
		a.logger.Debugf("discarding stale health snapshot: seq=%d applied=%d", seq, a.appliedSeq)
		if a.m != nil {
			a.m.Health.StaleSnapshotsTotal.Inc()
		}
		return &resp
	}

	a.appliedSeq = seq
	a.snapshot = &resp
	a.lastErr = ""

	if a.m != nil {
		a.m.Health.ChecksByStatus.WithLabelValues(string(entity.StatusHealthy)).Set(float64(resp.Summary.Healthy))
		a.m.Health.ChecksByStatus.WithLabelValues(string(entity.StatusWarning)).Set(float64(resp.Summary.Warning))
		a.m.Health.ChecksByStatus.WithLabelValues(string(entity.StatusUnhealthy)).Set(float64(resp.Summary.Unhealthy))
	}

	return &resp
}

// Snapshot возвращает последний применённый снапшот и текст последней ошибки
// опроса. Снапшот может быть nil, если ни один цикл ещё не завершился.
func (a *HealthAggregator) Snapshot() (*entity.HealthCheckResponse, string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot, a.lastErr
}

func (a *HealthAggregator) collect(ctx context.Context) []entity.HealthCheck {
	now := time.Now().UTC()
	checks := make([]entity.HealthCheck, 0, 4)

	checks = append(checks, a.checkDatabase(ctx, now))
	checks = append(checks, a.checkConfiguration(now))
	checks = append(checks, a.checkKafka(ctx, now))

	if a.conf.Health.APIProbeURL != "" {
		checks = append(checks, a.checkDownstreamAPI(ctx, now))
	}

	return checks
}

func (a *HealthAggregator) checkDatabase(ctx context.Context, now time.Time) entity.HealthCheck {
	c := entity.HealthCheck{
		Name:        "postgres",
		Service:     entity.ServiceDatabase,
		Status:      entity.StatusHealthy,
		Message:     "connection ok",
		Critical:    true,
		LastChecked: now,
	}
	if err := a.repo.HealthCheck(ctx); err != nil {
		c.Status = entity.StatusUnhealthy
		c.Message = err.Error()
	}
	return c
}

func (a *HealthAggregator) checkKafka(ctx context.Context, now time.Time) entity.HealthCheck {
	c := entity.HealthCheck{
		Name:        "kafka",
		Service:     entity.ServiceExternal,
		Status:      entity.StatusHealthy,
		Message:     "brokers reachable",
		Critical:    true,
		LastChecked: now,
	}
	if err := a.kafka.HealthCheck(ctx); err != nil {
		c.Status = entity.StatusUnhealthy
		c.Message = err.Error()
	}
	return c
}

// checkConfiguration проверяет, что обязательные параметры конфига заданы
func (a *HealthAggregator) checkConfiguration(now time.Time) entity.HealthCheck {
	c := entity.HealthCheck{
		Name:        "configuration",
		Service:     entity.ServiceConfiguration,
		Status:      entity.StatusHealthy,
		Message:     "all required settings present",
		Critical:    true,
		LastChecked: now,
	}

	missing := make([]string, 0, 3)
	if a.conf.Postgres.ConnString == "" {
		missing = append(missing, "postgres.conn_string")
	}
	if a.conf.Broker.Kafka.Brokers == "" {
		missing = append(missing, "broker.kafka.brokers")
	}
	if a.conf.Server.Port == "" {
		missing = append(missing, "server.port")
	}

	if len(missing) > 0 {
		c.Status = entity.StatusUnhealthy
		c.Message = fmt.Sprintf("missing required settings: %v", missing)
		c.Details = map[string]any{"missing": missing}
	}
	return c
}

// checkDownstreamAPI пробует downstream endpoint через retry-клиент.
// Не критичен: 4xx трактуем как warning, 5xx и транспортные ошибки - unhealthy.
func (a *HealthAggregator) checkDownstreamAPI(ctx context.Context, now time.Time) entity.HealthCheck {
	c := entity.HealthCheck{
		Name:        "downstream-api",
		Service:     entity.ServiceAPI,
		Status:      entity.StatusHealthy,
		Message:     "responding",
		Path:        a.conf.Health.APIProbeURL,
		Method:      http.MethodGet,
		Critical:    false,
		LastChecked: now,
	}

	req, err := http.NewRequest(http.MethodGet, a.conf.Health.APIProbeURL, nil)
	if err != nil {
		c.Status = entity.StatusUnhealthy
		c.Message = err.Error()
		return c
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		c.Status = entity.StatusUnhealthy
		c.Message = err.Error()
		return c
	}
	defer resp.Body.Close()

	c.Details = map[string]any{"statusCode": resp.StatusCode}
	switch {
	case resp.StatusCode >= 500:
		c.Status = entity.StatusUnhealthy
		c.Message = fmt.Sprintf("downstream returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		c.Status = entity.StatusWarning
		c.Message = fmt.Sprintf("downstream returned %d", resp.StatusCode)
	}
	return c
}
