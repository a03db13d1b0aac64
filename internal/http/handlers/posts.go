package handlers

import (
	"context"
	"net/http"
	"strings"

	"postify/internal/calendar"
	"postify/internal/distribution"
)

// TodayHoliday reports what the holiday calendar holds for today.
func (a *App) TodayHoliday(w http.ResponseWriter, r *http.Request) {
	entry, err := a.Calendar.Today()
	if err != nil {
		a.domainError(w, err, "failed to read holiday calendar")
		return
	}
	if entry == nil {
		a.json(w, http.StatusOK, map[string]any{
			"date":    calendar.TodayDate(),
			"holiday": nil,
			"message": "no holiday today",
		})
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"date":    entry.Date,
		"holiday": entry.Name,
	})
}

type generatePostResponse struct {
	Success bool   `json:"success"`
	Holiday string `json:"holiday"`
	Caption string `json:"caption,omitempty"`
	Message string `json:"message"`
}

// GeneratePost builds and sends a single post synchronously. The holiday
// comes from the query, falling back to today's calendar entry; without
// either nothing is generated.
func (a *App) GeneratePost(w http.ResponseWriter, r *http.Request) {
	holiday := strings.TrimSpace(r.URL.Query().Get("holiday"))
	if holiday == "" {
		entry, err := a.Calendar.Today()
		if err != nil {
			a.domainError(w, err, "failed to read holiday calendar")
			return
		}
		if entry == nil {
			a.error(w, http.StatusNotFound, "not_found", "no holiday today and none supplied")
			return
		}
		holiday = entry.Name
	}

	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		phone = a.Config.DefaultPhone
	}
	mail := strings.TrimSpace(r.URL.Query().Get("mail"))
	if mail == "" {
		mail = a.Config.DefaultMail
	}
	website := strings.TrimSpace(r.URL.Query().Get("website"))
	if website == "" {
		website = a.Config.DefaultWebsite
	}

	content, err := a.Generator.Generate(r.Context(), holiday, "")
	if err != nil {
		a.domainError(w, err, "failed to generate post")
		return
	}

	rec := distribution.Recipient{Phone: phone, Mail: mail, Website: website}
	rec.Phone = "+91 " + rec.Phone
	encoded, err := a.personalize(content.BaseImage, rec)
	if err != nil {
		a.domainError(w, err, "failed to composite post")
		return
	}

	if _, err := a.Delivery.Send(r.Context(), phone, encoded, content.Caption); err != nil {
		a.Logger.Error().Err(err).Str("phone", phone).Msg("post generated but not delivered")
		a.json(w, http.StatusOK, generatePostResponse{
			Success: false,
			Holiday: holiday,
			Caption: content.Caption,
			Message: "post generated but sending failed: " + err.Error(),
		})
		return
	}
	a.json(w, http.StatusOK, generatePostResponse{
		Success: true,
		Holiday: holiday,
		Caption: content.Caption,
		Message: "post generated and sent",
	})
}

// DistributeHolidayPost fans today's calendar holiday out to every
// subscriber using logo and footer personalization.
func (a *App) DistributeHolidayPost(w http.ResponseWriter, r *http.Request) {
	entry, err := a.Calendar.Today()
	if err != nil {
		a.domainError(w, err, "failed to read holiday calendar")
		return
	}
	if entry == nil {
		a.error(w, http.StatusNotFound, "not_found", "no holiday today")
		return
	}

	subscribers, err := a.Subscribers.GetAllRaw(r.Context())
	if err != nil {
		a.domainError(w, err, "failed to load subscribers")
		return
	}
	if len(subscribers) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no subscribers to distribute to")
		return
	}

	recipients := make([]distribution.Recipient, 0, len(subscribers))
	for _, sub := range subscribers {
		recipients = append(recipients, a.recipientFrom(sub, false))
	}

	jobID := a.Registry.Create(entry.Name, len(recipients))
	window := distribution.DelayWindow{
		Min: a.Config.LegacyDelayMin,
		Max: a.Config.LegacyDelayMax,
	}
	go a.Orchestrator.Run(context.Background(), jobID, recipients, entry.Name, "", window)

	a.json(w, http.StatusOK, startedJob{
		Status:          "started",
		JobID:           jobID,
		Holiday:         entry.Name,
		TotalRecipients: len(recipients),
	})
}
