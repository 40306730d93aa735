package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/shoppit/backend/pkg/logger"
)

// Standard 5-field cron expressions, e.g. "*/15 * * * *".
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

const refreshTimeout = 30 * time.Second

// ScheduleFAQRefresh reloads the FAQ index on schedule. The returned cron is
// already started; callers stop it on shutdown. A failed reload keeps the
// previous index.
func (a *App) ScheduleFAQRefresh(schedule string) (*cron.Cron, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid FAQ refresh schedule %q: %w", schedule, err)
	}

	c := cron.New(cron.WithParser(scheduleParser))
	c.Schedule(sched, cron.FuncJob(a.refreshFAQs))
	c.Start()

	logger.Info("FAQ refresh scheduled",
		zap.String("schedule", schedule),
		zap.Time("next_run", sched.Next(time.Now())),
	)
	return c, nil
}

func (a *App) refreshFAQs() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := a.FAQs.Reload(ctx); err != nil {
		logger.Warn("Scheduled FAQ refresh failed", zap.Error(err))
		return
	}
	logger.Debug("FAQ index refreshed", zap.Int("faqs", a.FAQs.Size()))
}
