package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/linyuchen/oddlot/internal/modules/marketdata"
)

// RefreshJob refreshes all stored prices after market close.
type RefreshJob struct {
	refresher *marketdata.Refresher
	log       zerolog.Logger
}

// NewRefreshJob creates the scheduled price refresh job.
func NewRefreshJob(refresher *marketdata.Refresher, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		log:       log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name implements Job.
func (j *RefreshJob) Name() string {
	return "price_refresh"
}

// Run refreshes every unsold position. Individual lookup failures are
// already absorbed by the refresher; only ledger errors surface here.
func (j *RefreshJob) Run() error {
	updated, err := j.refresher.RefreshAll()
	if err != nil {
		return err
	}

	j.log.Info().Int("updated", updated).Msg("Scheduled price refresh finished")
	return nil
}
