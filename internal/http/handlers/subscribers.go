package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"postify/internal/calendar"
	"postify/internal/compositor"
	"postify/internal/distribution"
	"postify/internal/domain"
)

// Uploaded overlay and logo files are capped well above any realistic
// branding asset.
const maxUploadBytes = 10 << 20

func (a *App) SubscribersCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}
	phone := strings.TrimSpace(r.FormValue("phone"))
	if phone == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "phone is required")
		return
	}

	overlay, err := a.formImage(r, "overlay", compositor.NormalizePNG)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	logo, err := a.formImage(r, "logo", compositor.NormalizeLogo)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	id, err := a.Subscribers.Create(r.Context(), &domain.Subscriber{
		Phone:   phone,
		Name:    strings.TrimSpace(r.FormValue("name")),
		Mail:    strings.TrimSpace(r.FormValue("mail")),
		Website: strings.TrimSpace(r.FormValue("website")),
		Overlay: overlay,
		Logo:    logo,
	})
	if err != nil {
		a.domainError(w, err, "failed to create subscriber")
		return
	}
	a.json(w, http.StatusCreated, map[string]string{
		"status":  "success",
		"message": "subscriber created",
		"id":      id,
	})
}

func (a *App) SubscribersList(w http.ResponseWriter, r *http.Request) {
	subscribers, err := a.Subscribers.GetAll(r.Context())
	if err != nil {
		a.domainError(w, err, "failed to load subscribers")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"count":       len(subscribers),
		"subscribers": subscribers,
	})
}

func (a *App) SubscribersGet(w http.ResponseWriter, r *http.Request) {
	subscriber, err := a.Subscribers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err, "failed to load subscriber")
		return
	}
	a.json(w, http.StatusOK, subscriber)
}

func (a *App) SubscribersUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	var upd domain.SubscriberUpdate
	for field, dst := range map[string]**string{
		"phone":   &upd.Phone,
		"name":    &upd.Name,
		"mail":    &upd.Mail,
		"website": &upd.Website,
	} {
		if _, ok := r.MultipartForm.Value[field]; ok {
			v := strings.TrimSpace(r.FormValue(field))
			*dst = &v
		}
	}

	var err error
	if upd.Overlay, err = a.formImage(r, "overlay", compositor.NormalizePNG); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if upd.Logo, err = a.formImage(r, "logo", compositor.NormalizeLogo); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if upd.IsEmpty() {
		a.error(w, http.StatusBadRequest, "bad_request", "no fields to update")
		return
	}

	if err := a.Subscribers.Update(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		a.domainError(w, err, "failed to update subscriber")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "success", "message": "subscriber updated"})
}

func (a *App) SubscribersDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Subscribers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err, "failed to delete subscriber")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "success", "message": "subscriber deleted"})
}

// SubscribersDistribute fans today's holiday out to every subscriber with
// overlay personalization.
func (a *App) SubscribersDistribute(w http.ResponseWriter, r *http.Request) {
	job, err := a.StartSubscriberDistribution(r.Context(), "")
	if err != nil {
		a.distributionError(w, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

// SubscribersDistributeOne runs the same machinery for a single subscriber.
func (a *App) SubscribersDistributeOne(w http.ResponseWriter, r *http.Request) {
	job, err := a.StartSubscriberDistribution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.distributionError(w, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

// startedJob is the immediate response for a distribution kick-off.
type startedJob struct {
	Status          string `json:"status"`
	JobID           string `json:"job_id"`
	Holiday         string `json:"holiday"`
	TotalRecipients int    `json:"total_recipients"`
}

// StartSubscriberDistribution resolves today's holiday from the store, loads
// the recipients (all subscribers, or just subscriberID when set), registers
// a job, and launches the orchestrator. It is shared with the cron trigger.
func (a *App) StartSubscriberDistribution(ctx context.Context, subscriberID string) (*startedJob, error) {
	today := calendar.TodayDate()
	holiday, err := a.Holidays.GetByDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if holiday == nil {
		return nil, fmt.Errorf("%w: no holiday stored for %s", domain.ErrNotFound, today)
	}

	var subscribers []domain.Subscriber
	if subscriberID != "" {
		sub, err := a.Subscribers.GetByIDRaw(ctx, subscriberID)
		if err != nil {
			return nil, err
		}
		subscribers = []domain.Subscriber{*sub}
	} else {
		subscribers, err = a.Subscribers.GetAllRaw(ctx)
		if err != nil {
			return nil, err
		}
		if len(subscribers) == 0 {
			return nil, fmt.Errorf("%w: no subscribers to distribute to", domain.ErrValidation)
		}
	}

	recipients := make([]distribution.Recipient, 0, len(subscribers))
	for _, sub := range subscribers {
		recipients = append(recipients, a.recipientFrom(sub, true))
	}

	jobID := a.Registry.Create(holiday.Prompt, len(recipients))
	window := distribution.DelayWindow{
		Min: a.Config.SubscriberDelayMin,
		Max: a.Config.SubscriberDelayMax,
	}
	go a.Orchestrator.Run(context.Background(), jobID, recipients, holiday.Prompt, holiday.Description, window)

	return &startedJob{
		Status:          "started",
		JobID:           jobID,
		Holiday:         holiday.Prompt,
		TotalRecipients: len(recipients),
	}, nil
}

// SubscribersSendFestival generates and sends one post synchronously for an
// explicit subscriber/holiday pair.
func (a *App) SubscribersSendFestival(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubscriberID string `json:"subscriber_id"`
		FestivalID   string `json:"festival_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.SubscriberID == "" || req.FestivalID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "subscriber_id and festival_id are required")
		return
	}

	subscriber, err := a.Subscribers.GetByIDRaw(r.Context(), req.SubscriberID)
	if err != nil {
		a.domainError(w, err, "failed to load subscriber")
		return
	}
	holiday, err := a.Holidays.GetByID(r.Context(), req.FestivalID)
	if err != nil {
		a.domainError(w, err, "failed to load holiday")
		return
	}

	content, err := a.Generator.Generate(r.Context(), holiday.Prompt, holiday.Description)
	if err != nil {
		a.domainError(w, err, "failed to generate post")
		return
	}
	encoded, err := a.personalize(content.BaseImage, a.recipientFrom(*subscriber, true))
	if err != nil {
		a.domainError(w, err, "failed to composite post")
		return
	}

	resp, err := a.Delivery.Send(r.Context(), subscriber.Phone, encoded, content.Caption)
	if err != nil {
		a.domainError(w, err, "failed to send post")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":       "success",
		"holiday":      holiday.Prompt,
		"phone":        subscriber.Phone,
		"caption":      content.Caption,
		"api_response": resp,
	})
}

// DistributionStatus serves both status routes from the shared registry.
func (a *App) DistributionStatus(w http.ResponseWriter, r *http.Request) {
	job, err := a.Registry.Get(chi.URLParam(r, "job_id"))
	if err != nil {
		a.domainError(w, err, "failed to load job")
		return
	}
	a.json(w, http.StatusOK, job)
}

// recipientFrom maps a subscriber onto a delivery target, filling the footer
// contact fields from the brand defaults. withOverlay selects the overlay
// personalization class; the legacy fan-out uses logo plus footer instead.
func (a *App) recipientFrom(sub domain.Subscriber, withOverlay bool) distribution.Recipient {
	rec := distribution.Recipient{
		ID:      sub.ID,
		Phone:   sub.Phone,
		Name:    sub.Name,
		Mail:    sub.Mail,
		Website: sub.Website,
		Logo:    sub.Logo,
	}
	if withOverlay {
		rec.Overlay = sub.Overlay
	}
	if rec.Mail == "" {
		rec.Mail = a.Config.DefaultMail
	}
	if rec.Website == "" {
		rec.Website = a.Config.DefaultWebsite
	}
	return rec
}

// personalize mirrors the per-recipient composite step for synchronous sends.
func (a *App) personalize(base image.Image, rec distribution.Recipient) (string, error) {
	var p compositor.Personalization
	if len(rec.Overlay) > 0 {
		overlay, err := compositor.DecodeImage(rec.Overlay)
		if err != nil {
			return "", fmt.Errorf("%w: overlay: %v", domain.ErrValidation, err)
		}
		p.Overlay = overlay
	} else {
		if len(rec.Logo) > 0 {
			logo, err := compositor.DecodeImage(rec.Logo)
			if err != nil {
				return "", fmt.Errorf("%w: logo: %v", domain.ErrValidation, err)
			}
			p.Logo = logo
		}
		p.Footer = compositor.FooterLine(rec.Phone, rec.Mail, rec.Website)
	}
	img, err := a.Compositor.Composite(base, p)
	if err != nil {
		return "", err
	}
	return compositor.EncodeBase64(img)
}

// distributionError keeps kick-off failures in the original response shape.
func (a *App) distributionError(w http.ResponseWriter, err error) {
	a.domainError(w, err, "failed to start distribution")
}

// formImage reads an optional uploaded file and normalizes it through fn.
// A missing file yields nil bytes without error.
func (a *App) formImage(r *http.Request, field string, fn func([]byte) ([]byte, error)) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	normalized, err := fn(data)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid image: %w", field, err)
	}
	return normalized, nil
}
