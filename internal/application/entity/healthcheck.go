package entity

import "time"

// HealthStatus - статус одной проверки
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusWarning   HealthStatus = "warning"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthService - подсистема, к которой относится проверка
type HealthService string

const (
	ServiceDatabase      HealthService = "database"
	ServiceAPI           HealthService = "api"
	ServiceConfiguration HealthService = "configuration"
	ServiceExternal      HealthService = "external"
)

// KnownServices - порядок групп при отображении. Проверки с неизвестным
// service в группировку не попадают.
var KnownServices = []HealthService{ServiceDatabase, ServiceConfiguration, ServiceAPI, ServiceExternal}

// HealthCheck - результат одной проверки. Эфемерный, пересобирается каждым опросом.
type HealthCheck struct {
	Name        string         `json:"name" example:"postgres"`
	Service     HealthService  `json:"service" example:"database"`
	Status      HealthStatus   `json:"status" example:"healthy"`
	Message     string         `json:"message" example:"connection ok"`
	Path        string         `json:"path,omitempty" example:"/health/ready"`
	Method      string         `json:"method,omitempty" example:"GET"`
	Critical    bool           `json:"critical" example:"true"`
	LastChecked time.Time      `json:"lastChecked"`
	Details     map[string]any `json:"details,omitempty"`
}

// HealthSummary - счётчики проверок по статусам
type HealthSummary struct {
	Total     int `json:"total" example:"4"`
	Healthy   int `json:"healthy" example:"3"`
	Warning   int `json:"warning" example:"1"`
	Unhealthy int `json:"unhealthy" example:"0"`
}

// HealthCheckResponse - агрегированный снапшот состояния сервиса
type HealthCheckResponse struct {
	Status       HealthStatus  `json:"status" example:"healthy"`
	ResponseTime string        `json:"responseTime" example:"12ms"`
	Summary      HealthSummary `json:"summary"`
	Checks       []HealthCheck `json:"checks"`
}

// BuildHealthResponse собирает снапшот из списка проверок.
// Инвариант: summary.total == len(checks) == healthy+warning+unhealthy.
// Общий статус unhealthy тогда и только тогда, когда хотя бы одна
// критическая проверка unhealthy.
func BuildHealthResponse(checks []HealthCheck, elapsed time.Duration) HealthCheckResponse {
	resp := HealthCheckResponse{
		Status:       StatusHealthy,
		ResponseTime: elapsed.Round(time.Millisecond).String(),
		Checks:       checks,
	}

	for _, c := range checks {
		resp.Summary.Total++
		switch c.Status {
		case StatusHealthy:
			resp.Summary.Healthy++
		case StatusWarning:
			resp.Summary.Warning++
		case StatusUnhealthy:
			resp.Summary.Unhealthy++
			if c.Critical {
				resp.Status = StatusUnhealthy
			}
		}
	}

	return resp
}

// GroupByService разбивает проверки по известным подсистемам.
// Неизвестные значения service отбрасываются молча.
func GroupByService(checks []HealthCheck) map[HealthService][]HealthCheck {
	known := make(map[HealthService]struct{}, len(KnownServices))
	for _, s := range KnownServices {
		known[s] = struct{}{}
	}

	groups := make(map[HealthService][]HealthCheck)
	for _, c := range checks {
		if _, ok := known[c.Service]; !ok {
			continue
		}
		groups[c.Service] = append(groups[c.Service], c)
	}
	return groups
}

// StatusDisplay - отображаемые атрибуты статуса (чистая таблица enum -> вид)
type StatusDisplay struct {
	Label string
	Color string
}

var statusDisplayTable = map[HealthStatus]StatusDisplay{
	StatusHealthy:   {Label: "Healthy", Color: "green"},
	StatusWarning:   {Label: "Warning", Color: "yellow"},
	StatusUnhealthy: {Label: "Unhealthy", Color: "red"},
}

func DisplayFor(s HealthStatus) StatusDisplay {
	if d, ok := statusDisplayTable[s]; ok {
		return d
	}
	return StatusDisplay{Label: string(s), Color: "gray"}
}
