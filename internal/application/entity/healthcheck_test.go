package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHealthResponse_SummaryInvariant(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Service: ServiceDatabase, Status: StatusHealthy, Critical: true},
		{Name: "kafka", Service: ServiceExternal, Status: StatusWarning, Critical: true},
		{Name: "downstream-api", Service: ServiceAPI, Status: StatusUnhealthy, Critical: false},
		{Name: "configuration", Service: ServiceConfiguration, Status: StatusHealthy, Critical: true},
	}

	resp := BuildHealthResponse(checks, 12*time.Millisecond)

	assert.Equal(t, len(checks), resp.Summary.Total)
	assert.Equal(t, resp.Summary.Total, resp.Summary.Healthy+resp.Summary.Warning+resp.Summary.Unhealthy)
	assert.Equal(t, 2, resp.Summary.Healthy)
	assert.Equal(t, 1, resp.Summary.Warning)
	assert.Equal(t, 1, resp.Summary.Unhealthy)
	assert.Equal(t, "12ms", resp.ResponseTime)
}

func TestBuildHealthResponse_NonCriticalFailureStaysHealthy(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Service: ServiceDatabase, Status: StatusHealthy, Critical: true},
		{Name: "downstream-api", Service: ServiceAPI, Status: StatusUnhealthy, Critical: false},
	}

	resp := BuildHealthResponse(checks, time.Millisecond)

	assert.Equal(t, StatusHealthy, resp.Status)
}

func TestBuildHealthResponse_CriticalFailureIsUnhealthy(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Service: ServiceDatabase, Status: StatusUnhealthy, Critical: true},
		{Name: "downstream-api", Service: ServiceAPI, Status: StatusHealthy, Critical: false},
	}

	resp := BuildHealthResponse(checks, time.Millisecond)

	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestBuildHealthResponse_WarningDoesNotFlipOverall(t *testing.T) {
	checks := []HealthCheck{
		{Name: "kafka", Service: ServiceExternal, Status: StatusWarning, Critical: true},
	}

	resp := BuildHealthResponse(checks, time.Millisecond)

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, 1, resp.Summary.Warning)
}

func TestBuildHealthResponse_Empty(t *testing.T) {
	resp := BuildHealthResponse(nil, 0)

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Zero(t, resp.Summary.Total)
}

func TestGroupByService(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Service: ServiceDatabase},
		{Name: "pool", Service: ServiceDatabase},
		{Name: "kafka", Service: ServiceExternal},
		{Name: "mystery", Service: HealthService("redis")},
	}

	groups := GroupByService(checks)

	require.Len(t, groups, 2)
	assert.Len(t, groups[ServiceDatabase], 2)
	assert.Len(t, groups[ServiceExternal], 1)
	// Неизвестный service отбрасывается, а не попадает в отдельную группу
	_, ok := groups[HealthService("redis")]
	assert.False(t, ok)
}

func TestDisplayFor(t *testing.T) {
	assert.Equal(t, StatusDisplay{Label: "Healthy", Color: "green"}, DisplayFor(StatusHealthy))
	assert.Equal(t, StatusDisplay{Label: "Unhealthy", Color: "red"}, DisplayFor(StatusUnhealthy))
	assert.Equal(t, StatusDisplay{Label: "frozen", Color: "gray"}, DisplayFor(HealthStatus("frozen")))
}
