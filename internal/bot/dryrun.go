package bot

import (
	"context"

	"github.com/rvik/scraptf-autoenter/internal/logger"
	"github.com/rvik/scraptf-autoenter/internal/scraptf"
)

// DryRunSubmitter reports what would be entered without touching the site.
type DryRunSubmitter struct {
	log *logger.Logger
}

// NewDryRunSubmitter creates a new dry-run submitter
func NewDryRunSubmitter(log *logger.Logger) *DryRunSubmitter {
	if log == nil {
		log = logger.Default()
	}
	return &DryRunSubmitter{log: log}
}

// EnterRaffle logs the raffle that would be entered and reports success.
func (s *DryRunSubmitter) EnterRaffle(ctx context.Context, id string) (scraptf.EnterResult, error) {
	s.log.Info("dry run: would enter raffle", logger.Fields{"raffle": id})
	return scraptf.EnterResult{Success: true, Message: "dry run"}, nil
}
