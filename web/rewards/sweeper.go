package rewards

import (
	"context"
	"time"

	"punchme/web/logs"

	"github.com/sirupsen/logrus"
)

// PurgeExpiredCodes deletes one-time codes whose expiry has passed.
func (s *Service) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredCodes(ctx, s.now())
}

// StartCodeSweeper purges expired codes every interval until ctx is done. The
// returned channel is closed once the sweeper has stopped.
func (s *Service) StartCodeSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		logs.Log.WithField("interval", interval.String()).Info("starting code sweeper")
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.PurgeExpiredCodes(ctx)
				if err != nil {
					logs.Log.WithError(err).Error("purge expired codes")
					continue
				}
				if n > 0 {
					logs.Log.WithFields(logrus.Fields{"deleted": n}).Debug("purged expired codes")
				}
			}
		}
	}()
	return done
}
