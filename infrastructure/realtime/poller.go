package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Poller fires tick on a fixed interval as a fallback for a silently dropped push channel.
type Poller struct {
	cron     *cron.Cron
	interval time.Duration
}

func NewPoller(interval time.Duration, tick func()) (*Poller, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), tick); err != nil {
		return nil, fmt.Errorf("schedule poller: %w", err)
	}
	return &Poller{cron: c, interval: interval}, nil
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run starts the schedule and blocks until ctx is done and the running tick has returned.
func (p *Poller) Run(ctx context.Context) error {
	p.cron.Start()
	<-ctx.Done()
	<-p.cron.Stop().Done()
	return nil
}
