package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"postify/internal/domain"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHolidaysCreate(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, ""), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	payload := `{"date":"15-08-2026","prompt":"Independence Day","description":"national holiday"}`
	rec := httptest.NewRecorder()
	app.HolidaysCreate(rec, httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(payload)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["id"] == "" || body["status"] != "success" {
		t.Fatalf("body = %v", body)
	}
}

func TestHolidaysCreateRejectsBadDate(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, ""), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	payload := `{"date":"2026-08-15","prompt":"Independence Day"}`
	rec := httptest.NewRecorder()
	app.HolidaysCreate(rec, httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(payload)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHolidaysCreateRequiresFields(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, ""), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	app.HolidaysCreate(rec, httptest.NewRequest(http.MethodPost, "/holidays", bytes.NewReader([]byte(`{"date":"15-08-2026"}`))))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHolidaysGetNotFound(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, ""), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/holidays/x", nil), "id", "x")
	app.HolidaysGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHolidaysUpdateRejectsEmpty(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, ""), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/holidays/x", strings.NewReader(`{}`)), "id", "x")
	app.HolidaysUpdate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHolidaysPreviewPrompt(t *testing.T) {
	holidays := &fakeHolidayRepo{byID: map[string]*domain.Holiday{
		"h1": {ID: "h1", Date: "15-08-2026", Prompt: "Independence Day", Description: "national holiday"},
	}}
	app := newTestApp(t, writeCalendar(t, ""), holidays, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/holidays/h1/preview-prompt", nil), "id", "h1")
	app.HolidaysPreviewPrompt(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["festival_name"] != "Independence Day" {
		t.Fatalf("festival_name = %q", body["festival_name"])
	}
	if body["ai_input_context"] != "Independence Day. Context: national holiday" {
		t.Fatalf("ai_input_context = %q", body["ai_input_context"])
	}
	if body["generated_caption"] == "" || body["generated_image_prompt"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestSubscribersSendFestival(t *testing.T) {
	holidays := &fakeHolidayRepo{byID: map[string]*domain.Holiday{
		"h1": {ID: "h1", Prompt: "Holi", Description: "festival of colors"},
	}}
	subs := &fakeSubscriberRepo{subscribers: []domain.Subscriber{{ID: "s1", Phone: "111"}}}
	sender := &fakeAppSender{}
	app := newTestApp(t, writeCalendar(t, ""), holidays, subs, &fakeContentService{}, sender)

	payload := `{"subscriber_id":"s1","festival_id":"h1"}`
	rec := httptest.NewRecorder()
	app.SubscribersSendFestival(rec, httptest.NewRequest(http.MethodPost, "/subscribers/send-festival", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "success" || body["holiday"] != "Holi" {
		t.Fatalf("body = %v", body)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "111" {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestSubscribersSendFestivalValidates(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, ""), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	app.SubscribersSendFestival(rec, httptest.NewRequest(http.MethodPost, "/subscribers/send-festival", strings.NewReader(`{"subscriber_id":"s1"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
