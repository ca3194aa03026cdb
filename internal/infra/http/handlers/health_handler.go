package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"
)

const (
	depHealthy       = "healthy"
	depNotConfigured = "not configured"
)

// Pinger é implementado pelo cliente Redis do cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerConn é implementado pela conexão RabbitMQ.
type BrokerConn interface {
	IsClosed() bool
}

type HealthHandler struct {
	DB        *sql.DB
	RabbitMQ  BrokerConn
	Redis     Pinger
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db *sql.DB, rabbitMQ BrokerConn, redis Pinger) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Redis:     redis,
		Version:   "1.0.0",
		StartTime: time.Now(),
	}
}

// checks lista as dependências; func nil quer dizer não configurada.
func (h *HealthHandler) checks() map[string]func(context.Context) error {
	deps := map[string]func(context.Context) error{
		"database": nil,
		"rabbitmq": nil,
		"redis":    nil,
	}
	if h.DB != nil {
		deps["database"] = h.DB.PingContext
	}
	if h.RabbitMQ != nil {
		deps["rabbitmq"] = func(context.Context) error {
			if h.RabbitMQ.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	if h.Redis != nil {
		deps["redis"] = h.Redis.Ping
	}
	return deps
}

// Handle responde 503 quando alguma dependência configurada falha.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := depHealthy
	deps := make(map[string]string)
	for name, check := range h.checks() {
		if check == nil {
			deps[name] = depNotConfigured
			continue
		}
		if err := check(ctx); err != nil {
			deps[name] = "unhealthy: " + err.Error()
			status = "degraded"
			continue
		}
		deps[name] = depHealthy
	}

	code := http.StatusOK
	if status != depHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
