package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"community/internal/application/entity"
	"community/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBroker struct {
	err error
}

func (f *fakeBroker) HealthCheck(_ context.Context) error { return f.err }

type fakeHTTPClient struct {
	status int
	err    error
}

func (f *fakeHTTPClient) Do(_ context.Context, _ *http.Request) (*http.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func healthTestConfig(probeURL string) *config.Config {
	conf := &config.Config{}
	conf.Postgres.ConnString = "postgres://localhost:5432/community"
	conf.Broker.Kafka.Brokers = "localhost:9092"
	conf.Server.Port = "8080"
	conf.Health.PollInterval = 30 * time.Second
	conf.Health.ProbeTimeout = 3 * time.Second
	conf.Health.APIProbeURL = probeURL
	return conf
}

func newTestAggregator(repo *fakeRepo, broker *fakeBroker, client *fakeHTTPClient, conf *config.Config) *HealthAggregator {
	return NewHealthAggregator(repo, broker, client, conf, zap.NewNop().Sugar(), nil)
}

func TestHealthAggregator_AllHealthy(t *testing.T) {
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{status: 200}, healthTestConfig("http://downstream.test/health"))

	resp := a.Refresh(context.Background())

	require.NotNil(t, resp)
	assert.Equal(t, entity.StatusHealthy, resp.Status)
	assert.Equal(t, 4, resp.Summary.Total)
	assert.Equal(t, 4, resp.Summary.Healthy)

	snap, lastErr := a.Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, lastErr)
	assert.Equal(t, resp.Summary, snap.Summary)
}

func TestHealthAggregator_NoProbeURLSkipsAPICheck(t *testing.T) {
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{status: 200}, healthTestConfig(""))

	resp := a.Refresh(context.Background())

	assert.Equal(t, 3, resp.Summary.Total)
	for _, c := range resp.Checks {
		assert.NotEqual(t, entity.ServiceAPI, c.Service)
	}
}

func TestHealthAggregator_CriticalDatabaseFailure(t *testing.T) {
	repo := &fakeRepo{healthErr: errors.New("connection refused")}
	a := newTestAggregator(repo, &fakeBroker{}, &fakeHTTPClient{status: 200}, healthTestConfig(""))

	resp := a.Refresh(context.Background())

	assert.Equal(t, entity.StatusUnhealthy, resp.Status)
	assert.Equal(t, 1, resp.Summary.Unhealthy)
}

func TestHealthAggregator_DownstreamFailureIsNotCritical(t *testing.T) {
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{err: errors.New("timeout")}, healthTestConfig("http://downstream.test/health"))

	resp := a.Refresh(context.Background())

	// downstream API не критичен: общий статус остаётся healthy
	assert.Equal(t, entity.StatusHealthy, resp.Status)
	assert.Equal(t, 1, resp.Summary.Unhealthy)
}

func TestHealthAggregator_Downstream4xxIsWarning(t *testing.T) {
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{status: 404}, healthTestConfig("http://downstream.test/health"))

	resp := a.Refresh(context.Background())

	assert.Equal(t, 1, resp.Summary.Warning)
	assert.Equal(t, entity.StatusHealthy, resp.Status)
}

func TestHealthAggregator_Downstream5xxIsUnhealthy(t *testing.T) {
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{status: 503}, healthTestConfig("http://downstream.test/health"))

	resp := a.Refresh(context.Background())

	assert.Equal(t, 1, resp.Summary.Unhealthy)
}

func TestHealthAggregator_StaleSnapshotDiscarded(t *testing.T) {
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{status: 200}, healthTestConfig(""))

	// Имитируем гонку: более поздний цикл уже применён
	a.seq.Add(5)
	a.mu.Lock()
	applied := entity.BuildHealthResponse([]entity.HealthCheck{
		{Name: "postgres", Service: entity.ServiceDatabase, Status: entity.StatusUnhealthy, Critical: true},
	}, time.Millisecond)
	a.snapshot = &applied
	a.appliedSeq = 10
	a.mu.Unlock()

	a.Refresh(context.Background())

	snap, _ := a.Snapshot()
	require.NotNil(t, snap)
	// отставший результат не перезаписал более новый снапшот
	assert.Equal(t, entity.StatusUnhealthy, snap.Status)
}

func TestHealthAggregator_CancelledContextKeepsLastGood(t *testing.T) {
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{status: 200}, healthTestConfig(""))

	first := a.Refresh(context.Background())
	require.Equal(t, entity.StatusHealthy, first.Status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.Refresh(ctx)

	snap, lastErr := a.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, entity.StatusHealthy, snap.Status)
	assert.Contains(t, lastErr, "health poll aborted")
}

func TestHealthAggregator_RunPollingStopsOnCancel(t *testing.T) {
	conf := healthTestConfig("")
	conf.Health.PollInterval = 5 * time.Millisecond
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{status: 200}, conf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.RunPolling(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunPolling did not stop after cancel")
	}
}

func TestHealthAggregator_MissingConfiguration(t *testing.T) {
	conf := healthTestConfig("")
	conf.Broker.Kafka.Brokers = ""
	a := newTestAggregator(&fakeRepo{}, &fakeBroker{}, &fakeHTTPClient{status: 200}, conf)

	resp := a.Refresh(context.Background())

	assert.Equal(t, entity.StatusUnhealthy, resp.Status)
	var confCheck *entity.HealthCheck
	for i := range resp.Checks {
		if resp.Checks[i].Service == entity.ServiceConfiguration {
			confCheck = &resp.Checks[i]
		}
	}
	require.NotNil(t, confCheck)
	assert.Equal(t, entity.StatusUnhealthy, confCheck.Status)
	assert.Contains(t, confCheck.Message, "broker.kafka.brokers")
}
