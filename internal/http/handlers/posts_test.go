package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"postify/internal/calendar"
	"postify/internal/compositor"
	"postify/internal/distribution"
	"postify/internal/domain"
	"postify/internal/infra"
	"postify/internal/providers/genai"
)

type fakeHolidayRepo struct {
	byID   map[string]*domain.Holiday
	byDate map[string]*domain.Holiday
}

func (f *fakeHolidayRepo) Create(ctx context.Context, h *domain.Holiday) (string, error) {
	return "new-id", nil
}

func (f *fakeHolidayRepo) GetAll(ctx context.Context) ([]domain.Holiday, error) {
	return nil, nil
}

func (f *fakeHolidayRepo) GetByID(ctx context.Context, id string) (*domain.Holiday, error) {
	if h, ok := f.byID[id]; ok {
		return h, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeHolidayRepo) GetByDate(ctx context.Context, date string) (*domain.Holiday, error) {
	return f.byDate[date], nil
}

func (f *fakeHolidayRepo) Update(ctx context.Context, id string, upd domain.HolidayUpdate) error {
	return nil
}

func (f *fakeHolidayRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeHolidayRepo) DeleteAll(ctx context.Context) (int64, error) { return 0, nil }

type fakeSubscriberRepo struct {
	subscribers []domain.Subscriber
}

func (f *fakeSubscriberRepo) Create(ctx context.Context, s *domain.Subscriber) (string, error) {
	return "new-id", nil
}

func (f *fakeSubscriberRepo) GetAll(ctx context.Context) ([]domain.Subscriber, error) {
	return f.subscribers, nil
}

func (f *fakeSubscriberRepo) GetAllRaw(ctx context.Context) ([]domain.Subscriber, error) {
	return f.subscribers, nil
}

func (f *fakeSubscriberRepo) GetByID(ctx context.Context, id string) (*domain.Subscriber, error) {
	return f.GetByIDRaw(ctx, id)
}

func (f *fakeSubscriberRepo) GetByIDRaw(ctx context.Context, id string) (*domain.Subscriber, error) {
	for i := range f.subscribers {
		if f.subscribers[i].ID == id {
			return &f.subscribers[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSubscriberRepo) Update(ctx context.Context, id string, upd domain.SubscriberUpdate) error {
	return nil
}

func (f *fakeSubscriberRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeContentService struct {
	generateCalls int
	err           error
}

func (f *fakeContentService) Generate(ctx context.Context, holiday, description string) (*domain.GeneratedContent, error) {
	f.generateCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GeneratedContent{
		ImagePrompt: "prompt",
		Caption:     "Happy " + holiday + "!",
		BaseImage:   image.NewRGBA(image.Rect(0, 0, 16, 16)),
	}, nil
}

func (f *fakeContentService) GeneratePrompt(ctx context.Context, holiday, description string) (*genai.PostContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &genai.PostContent{Prompt: "prompt", Caption: "Happy " + holiday + "!"}, nil
}

type fakeAppSender struct {
	sent []string
	err  error
}

func (f *fakeAppSender) Send(ctx context.Context, phone, imageBase64, caption string) (json.RawMessage, error) {
	f.sent = append(f.sent, phone)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"status":"sent"}`), nil
}

func writeCalendar(t *testing.T, rows string) *calendar.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holidays.csv")
	if err := os.WriteFile(path, []byte("Date,Prompt\n"+rows), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return calendar.NewSource(path)
}

func newTestApp(t *testing.T, cal *calendar.Source, holidays *fakeHolidayRepo, subs *fakeSubscriberRepo, gen *fakeContentService, sender *fakeAppSender) *App {
	t.Helper()
	comp, err := compositor.New(compositor.Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("compositor.New returned error: %v", err)
	}
	registry := distribution.NewRegistry()
	orch := distribution.NewOrchestrator(gen, comp, sender, registry, zerolog.Nop())
	return &App{
		Holidays:     holidays,
		Subscribers:  subs,
		Calendar:     cal,
		Generator:    gen,
		Compositor:   comp,
		Delivery:     sender,
		Registry:     registry,
		Orchestrator: orch,
		Config: &infra.Config{
			DefaultPhone:       "8299396255",
			DefaultMail:        "brand@example.com",
			DefaultWebsite:     "example.com",
			LegacyDelayMin:     0,
			LegacyDelayMax:     0,
			SubscriberDelayMin: 0,
			SubscriberDelayMax: 0,
		},
		Logger: zerolog.Nop(),
	}
}

func todayRow(name string) string {
	return fmt.Sprintf("%s,%s\n", time.Now().Format(calendar.DateLayout), name)
}

func TestTodayHolidayFound(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, todayRow("Diwali")), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	app.TodayHoliday(rec, httptest.NewRequest(http.MethodGet, "/today-holiday", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if body["holiday"] != "Diwali" {
		t.Fatalf("holiday = %v", body["holiday"])
	}
}

func TestTodayHolidayAbsent(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, "01-01-1999,Nothing\n"), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	app.TodayHoliday(rec, httptest.NewRequest(http.MethodGet, "/today-holiday", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["holiday"] != nil {
		t.Fatalf("holiday = %v, want null", body["holiday"])
	}
}

func TestGeneratePostSendsAndReports(t *testing.T) {
	gen := &fakeContentService{}
	sender := &fakeAppSender{}
	app := newTestApp(t, writeCalendar(t, todayRow("Diwali")), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, gen, sender)

	rec := httptest.NewRecorder()
	app.GeneratePost(rec, httptest.NewRequest(http.MethodPost, "/generate-post?phone=9876543210", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body generatePostResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !body.Success || body.Holiday != "Diwali" || body.Caption == "" {
		t.Fatalf("body = %+v", body)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "9876543210" {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestGeneratePostHolidayOverride(t *testing.T) {
	gen := &fakeContentService{}
	sender := &fakeAppSender{}
	app := newTestApp(t, writeCalendar(t, "01-01-1999,Nothing\n"), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, gen, sender)

	rec := httptest.NewRecorder()
	app.GeneratePost(rec, httptest.NewRequest(http.MethodPost, "/generate-post?holiday=Holi", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body generatePostResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Holiday != "Holi" {
		t.Fatalf("holiday = %q", body.Holiday)
	}
}

func TestGeneratePostNoHolidayNoGeneration(t *testing.T) {
	gen := &fakeContentService{}
	app := newTestApp(t, writeCalendar(t, "01-01-1999,Nothing\n"), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, gen, &fakeAppSender{})

	rec := httptest.NewRecorder()
	app.GeneratePost(rec, httptest.NewRequest(http.MethodPost, "/generate-post", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if gen.generateCalls != 0 {
		t.Fatal("generator contacted without a holiday")
	}
}

func TestGeneratePostDeliveryFailureStillSucceedsGenerating(t *testing.T) {
	sender := &fakeAppSender{err: errors.New("endpoint down")}
	app := newTestApp(t, writeCalendar(t, todayRow("Diwali")), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, sender)

	rec := httptest.NewRecorder()
	app.GeneratePost(rec, httptest.NewRequest(http.MethodPost, "/generate-post", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body generatePostResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Success {
		t.Fatal("success must be false when the send fails")
	}
	if body.Caption == "" {
		t.Fatal("caption missing despite successful generation")
	}
}

func TestDistributeHolidayPostStartsJob(t *testing.T) {
	subs := &fakeSubscriberRepo{subscribers: []domain.Subscriber{
		{ID: "s1", Phone: "111"},
		{ID: "s2", Phone: "222"},
	}}
	app := newTestApp(t, writeCalendar(t, todayRow("Diwali")), &fakeHolidayRepo{}, subs, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	app.DistributeHolidayPost(rec, httptest.NewRequest(http.MethodPost, "/distribute-holiday-post", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body startedJob
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if body.Status != "started" || body.Holiday != "Diwali" || body.TotalRecipients != 2 {
		t.Fatalf("body = %+v", body)
	}

	if _, err := app.Registry.Get(body.JobID); err != nil {
		t.Fatalf("job not registered: %v", err)
	}
}

func TestDistributeHolidayPostNoSubscribers(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, todayRow("Diwali")), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	app.DistributeHolidayPost(rec, httptest.NewRequest(http.MethodPost, "/distribute-holiday-post", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDistributeHolidayPostNoHoliday(t *testing.T) {
	gen := &fakeContentService{}
	app := newTestApp(t, writeCalendar(t, "01-01-1999,Nothing\n"), &fakeHolidayRepo{}, &fakeSubscriberRepo{subscribers: []domain.Subscriber{{ID: "s1", Phone: "111"}}}, gen, &fakeAppSender{})

	rec := httptest.NewRecorder()
	app.DistributeHolidayPost(rec, httptest.NewRequest(http.MethodPost, "/distribute-holiday-post", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if gen.generateCalls != 0 {
		t.Fatal("generator contacted without a holiday")
	}
}

func TestDistributionStatusNotFound(t *testing.T) {
	app := newTestApp(t, writeCalendar(t, ""), &fakeHolidayRepo{}, &fakeSubscriberRepo{}, &fakeContentService{}, &fakeAppSender{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/distribution-status/unknown", nil)
	req = withURLParam(req, "job_id", "unknown")
	app.DistributionStatus(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
