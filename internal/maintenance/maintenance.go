// Package maintenance runs scheduled database upkeep, replacing the ad-hoc
// maintenance script the service used to shell out to.
package maintenance

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SumireDoi/LocaConne/pkg/logger"
)

// Runner owns the cron scheduler for periodic upkeep jobs.
type Runner struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewRunner(db *gorm.DB) *Runner {
	return &Runner{db: db, cron: cron.New()}
}

// Start registers the upkeep jobs on the given cron schedule and starts the
// scheduler. Returns a stop func.
func (r *Runner) Start(schedule string) (func(), error) {
	if _, err := r.cron.AddFunc(schedule, r.sweepOrphans); err != nil {
		return nil, err
	}
	r.cron.Start()
	return func() { r.cron.Stop() }, nil
}

// sweepOrphans removes location details whose post was deleted by an
// administrator directly in the store.
func (r *Runner) sweepOrphans() {
	res := r.db.Exec(`
		DELETE FROM location_details
		WHERE post_id NOT IN (SELECT id FROM posts)
	`)
	if res.Error != nil {
		logger.Error("orphan sweep failed", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		logger.Info("orphan sweep removed rows", zap.Int64("rows", res.RowsAffected))
	}
}
