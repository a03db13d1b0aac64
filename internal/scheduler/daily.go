// Package scheduler triggers the daily subscriber distribution on a cron
// expression.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Daily runs a single trigger function on a cron schedule.
type Daily struct {
	cron *cron.Cron
}

// NewDaily validates spec and registers trigger. The trigger's error is
// logged, never fatal: a day without a matching holiday is normal.
func NewDaily(spec string, trigger func(ctx context.Context) error, logger zerolog.Logger) (*Daily, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		logger.Info().Str("schedule", spec).Msg("daily distribution triggered")
		if err := trigger(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("daily distribution did not start")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}
	return &Daily{cron: c}, nil
}

func (d *Daily) Start() {
	d.cron.Start()
}

// Stop halts scheduling and waits for a running trigger to return.
func (d *Daily) Stop() {
	<-d.cron.Stop().Done()
}
