package distribution

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"postify/internal/compositor"
	"postify/internal/domain"
)

// Recipient is one delivery target. Overlay and Logo hold raw PNG bytes and
// may be empty; a non-empty Overlay takes precedence over everything else.
type Recipient struct {
	ID      string
	Phone   string
	Name    string
	Mail    string
	Website string
	Overlay []byte
	Logo    []byte
}

// DelayWindow bounds the random pause inserted between consecutive sends.
type DelayWindow struct {
	Min time.Duration
	Max time.Duration
}

// Draw picks a whole-second pause from the inclusive [Min, Max] range.
func (w DelayWindow) Draw() time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	secs := int64(w.Min/time.Second) + rand.Int63n(int64((w.Max-w.Min)/time.Second)+1)
	return time.Duration(secs) * time.Second
}

// ContentGenerator produces the shared post content for a holiday.
type ContentGenerator interface {
	Generate(ctx context.Context, holiday, description string) (*domain.GeneratedContent, error)
}

// Sender delivers one finished image to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, imageBase64, caption string) (json.RawMessage, error)
}

// Orchestrator runs distribution jobs: generate the content once, then
// composite and send a personalized copy to every recipient.
type Orchestrator struct {
	generator  ContentGenerator
	compositor *compositor.Compositor
	sender     Sender
	registry   *Registry
	logger     zerolog.Logger
	sleep      func(time.Duration)
}

func NewOrchestrator(generator ContentGenerator, comp *compositor.Compositor, sender Sender, registry *Registry, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		generator:  generator,
		compositor: comp,
		sender:     sender,
		registry:   registry,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Run executes the job registered under jobID. It is meant to be called in
// its own goroutine; all progress is reported through the registry. A
// content generation failure fails the whole job, while per-recipient
// failures are recorded and the loop keeps going.
func (o *Orchestrator) Run(ctx context.Context, jobID string, recipients []Recipient, holiday, description string, window DelayWindow) {
	log := o.logger.With().Str("job_id", jobID).Str("holiday", holiday).Logger()
	log.Info().Int("recipients", len(recipients)).Msg("distribution started")

	content, err := o.generator.Generate(ctx, holiday, description)
	if err != nil {
		log.Error().Err(err).Msg("content generation failed, aborting job")
		o.update(jobID, func(job *domain.DistributionJob) {
			job.Status = domain.JobStatusFailed
			job.Error = err.Error()
		})
		return
	}

	for i, rec := range recipients {
		personalized, err := o.personalize(content, rec)
		if err != nil {
			log.Error().Err(err).Str("phone", rec.Phone).Msg("composite failed")
			o.record(jobID, rec, nil, err)
			continue
		}

		if i > 0 {
			pause := window.Draw()
			log.Info().Dur("pause", pause).Str("phone", rec.Phone).Msg("waiting before next send")
			o.sleep(pause)
		}

		resp, err := o.sender.Send(ctx, rec.Phone, personalized, content.Caption)
		if err != nil {
			log.Error().Err(err).Str("phone", rec.Phone).Msg("send failed")
		} else {
			log.Info().Str("phone", rec.Phone).Msg("sent")
		}
		o.record(jobID, rec, resp, err)
	}

	now := time.Now().UTC()
	o.update(jobID, func(job *domain.DistributionJob) {
		job.Status = domain.JobStatusCompleted
		job.CompletedAt = &now
	})
	log.Info().Msg("distribution completed")
}

func (o *Orchestrator) personalize(content *domain.GeneratedContent, rec Recipient) (string, error) {
	var p compositor.Personalization

	if len(rec.Overlay) > 0 {
		overlay, err := compositor.DecodeImage(rec.Overlay)
		if err != nil {
			return "", err
		}
		p.Overlay = overlay
	} else {
		if len(rec.Logo) > 0 {
			logo, err := compositor.DecodeImage(rec.Logo)
			if err != nil {
				return "", err
			}
			p.Logo = logo
		}
		p.Footer = compositor.FooterLine(rec.Phone, rec.Mail, rec.Website)
	}

	img, err := o.compositor.Composite(content.BaseImage, p)
	if err != nil {
		return "", err
	}
	return compositor.EncodeBase64(img)
}

func (o *Orchestrator) record(jobID string, rec Recipient, resp json.RawMessage, sendErr error) {
	result := domain.RecipientResult{
		RecipientID: rec.ID,
		Name:        rec.Name,
		Phone:       rec.Phone,
		Success:     sendErr == nil,
		APIResponse: resp,
	}
	if sendErr != nil {
		result.Error = sendErr.Error()
	}
	o.update(jobID, func(job *domain.DistributionJob) {
		job.Results = append(job.Results, result)
		job.Processed++
		if sendErr == nil {
			job.Successful++
		} else {
			job.Failed++
		}
	})
}

func (o *Orchestrator) update(jobID string, fn func(*domain.DistributionJob)) {
	if err := o.registry.Update(jobID, fn); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("job update failed")
	}
}
