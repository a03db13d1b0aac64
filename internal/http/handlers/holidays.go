package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"postify/internal/calendar"
	"postify/internal/content"
	"postify/internal/domain"
)

type holidayRequest struct {
	Date        string `json:"date"`
	Prompt      string `json:"prompt"`
	Description string `json:"description"`
}

type holidayUpdateRequest struct {
	Date        *string `json:"date"`
	Prompt      *string `json:"prompt"`
	Description *string `json:"description"`
}

func (a *App) HolidaysCreate(w http.ResponseWriter, r *http.Request) {
	var req holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Date == "" || req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "date and prompt are required")
		return
	}
	if _, err := time.Parse(calendar.DateLayout, req.Date); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "date must be DD-MM-YYYY")
		return
	}

	id, err := a.Holidays.Create(r.Context(), &domain.Holiday{
		Date:        req.Date,
		Prompt:      req.Prompt,
		Description: req.Description,
	})
	if err != nil {
		a.domainError(w, err, "failed to create holiday")
		return
	}
	a.json(w, http.StatusCreated, map[string]string{
		"status":  "success",
		"message": "holiday created",
		"id":      id,
	})
}

func (a *App) HolidaysList(w http.ResponseWriter, r *http.Request) {
	holidays, err := a.Holidays.GetAll(r.Context())
	if err != nil {
		a.domainError(w, err, "failed to load holidays")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"count":    len(holidays),
		"holidays": holidays,
	})
}

func (a *App) HolidaysGet(w http.ResponseWriter, r *http.Request) {
	holiday, err := a.Holidays.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err, "failed to load holiday")
		return
	}
	a.json(w, http.StatusOK, holiday)
}

func (a *App) HolidaysGetByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	holiday, err := a.Holidays.GetByDate(r.Context(), date)
	if err != nil {
		a.domainError(w, err, "failed to load holiday")
		return
	}
	if holiday == nil {
		a.error(w, http.StatusNotFound, "not_found", "no holiday stored for "+date)
		return
	}
	a.json(w, http.StatusOK, holiday)
}

func (a *App) HolidaysUpdate(w http.ResponseWriter, r *http.Request) {
	var req holidayUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	upd := domain.HolidayUpdate{Date: req.Date, Prompt: req.Prompt, Description: req.Description}
	if upd.IsEmpty() {
		a.error(w, http.StatusBadRequest, "bad_request", "no fields to update")
		return
	}
	if upd.Date != nil {
		if _, err := time.Parse(calendar.DateLayout, *upd.Date); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "date must be DD-MM-YYYY")
			return
		}
	}

	if err := a.Holidays.Update(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		a.domainError(w, err, "failed to update holiday")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "success", "message": "holiday updated"})
}

func (a *App) HolidaysDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Holidays.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err, "failed to delete holiday")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "success", "message": "holiday deleted"})
}

func (a *App) HolidaysDeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := a.Holidays.DeleteAll(r.Context())
	if err != nil {
		a.domainError(w, err, "failed to delete holidays")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":  "success",
		"deleted": deleted,
	})
}

// HolidaysPreviewPrompt runs the text model only, showing what a full
// distribution for this holiday would post.
func (a *App) HolidaysPreviewPrompt(w http.ResponseWriter, r *http.Request) {
	holiday, err := a.Holidays.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err, "failed to load holiday")
		return
	}

	post, err := a.Generator.GeneratePrompt(r.Context(), holiday.Prompt, holiday.Description)
	if err != nil {
		a.domainError(w, err, "failed to generate prompt")
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"festival_name":          holiday.Prompt,
		"festival_description":   holiday.Description,
		"ai_input_context":       content.ContextString(holiday.Prompt, holiday.Description),
		"generated_image_prompt": post.Prompt,
		"generated_caption":      post.Caption,
	})
}
