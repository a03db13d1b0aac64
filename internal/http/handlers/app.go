// Package handlers holds the HTTP surface: holiday and subscriber management,
// synchronous post generation, and the distribution job endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"postify/internal/calendar"
	"postify/internal/compositor"
	"postify/internal/content"
	"postify/internal/distribution"
	"postify/internal/domain"
	"postify/internal/infra"
	"postify/internal/providers/genai"
)

// contentService is the slice of content.Generator the handlers need.
type contentService interface {
	Generate(ctx context.Context, holiday, description string) (*domain.GeneratedContent, error)
	GeneratePrompt(ctx context.Context, holiday, description string) (*genai.PostContent, error)
}

var _ contentService = (*content.Generator)(nil)

// App bundles the collaborators behind the HTTP handlers.
type App struct {
	Holidays     domain.HolidayRepository
	Subscribers  domain.SubscriberRepository
	Calendar     *calendar.Source
	Generator    contentService
	Compositor   *compositor.Compositor
	Delivery     distribution.Sender
	Registry     *distribution.Registry
	Orchestrator *distribution.Orchestrator
	Config       *infra.Config
	Logger       zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// domainError maps the domain sentinels onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrGeneration):
		a.error(w, http.StatusInternalServerError, "generation_failed", err.Error())
	case errors.Is(err, domain.ErrDelivery):
		a.error(w, http.StatusBadGateway, "delivery_failed", err.Error())
	default:
		a.Logger.Error().Err(err).Msg(fallback)
		a.error(w, http.StatusInternalServerError, "internal", fallback)
	}
}
