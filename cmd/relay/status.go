package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/history"
	"github.com/fwojciec/relay/stats"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// startStatus logs a stats line every interval until the returned function
// is called. The stop function waits for a running job to finish.
func startStatus(interval time.Duration, session *stats.Session, store *history.Store, seen *relay.Seen, logger *zap.Logger) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		snap := session.Snapshot()
		hist := store.Stats()
		logger.Info("status",
			zap.Int("received", snap.MessagesReceived),
			zap.Int("sent", snap.MessagesSent),
			zap.Int("errors", snap.Errors),
			zap.Int("turns", hist.Total),
			zap.Int("seen", seen.Len()),
			zap.Duration("elapsed", snap.Duration))
	})
	if err != nil {
		return nil, fmt.Errorf("status schedule: %w: %w", relay.ErrConfiguration, err)
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
