package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rvik/scraptf-autoenter/internal/browser"
	"github.com/rvik/scraptf-autoenter/internal/logger"
	"github.com/rvik/scraptf-autoenter/internal/raffle"
	"github.com/rvik/scraptf-autoenter/internal/scraptf"
	"github.com/rvik/scraptf-autoenter/internal/session"
	"github.com/rvik/scraptf-autoenter/internal/storage"
)

// Submitter abstracts the entry submission so a dry run can swap the real
// site call out for a no-op.
type Submitter interface {
	// EnterRaffle submits an entry for the given raffle ID
	EnterRaffle(ctx context.Context, id string) (scraptf.EnterResult, error)
}

// Options wires a Bot together. Client and Submitter are required; Session,
// Browser, Store and Log are optional.
type Options struct {
	Client    *scraptf.Client
	Submitter Submitter

	// Session and Browser together enable cookie save-back after each pass.
	Session *session.Session
	Browser *browser.Browser

	// Store persists a run report after each pass when set.
	Store *storage.Storage

	Log *logger.Logger

	// EntryDelay is the pause between consecutive entry submissions.
	EntryDelay time.Duration

	// LoopInterval is the pause between passes in Run.
	LoopInterval time.Duration
}

// Bot runs the raffle entry loop.
type Bot struct {
	client    *scraptf.Client
	submitter Submitter
	sess      *session.Session
	br        *browser.Browser
	store     *storage.Storage
	log       *logger.Logger

	entryDelay   time.Duration
	loopInterval time.Duration
}

// New creates a Bot from options.
func New(opts Options) *Bot {
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}
	return &Bot{
		client:       opts.Client,
		submitter:    opts.Submitter,
		sess:         opts.Session,
		br:           opts.Browser,
		store:        opts.Store,
		log:          log,
		entryDelay:   opts.EntryDelay,
		loopInterval: opts.LoopInterval,
	}
}

// Pass makes one pass over the listing: collect all raffles, enter the
// unentered ones oldest first with the entry delay between submissions, then
// read the account stats. The pass stops at the first failed submission;
// the failed raffle is recorded in the report alongside everything entered
// before it.
func (b *Bot) Pass(ctx context.Context) (*storage.RunReport, error) {
	report := &storage.RunReport{StartedAt: time.Now().UTC()}

	csrf, _, err := b.client.MainPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching raffle listing: %w", err)
	}

	raffles, err := b.client.AllRaffles(ctx, csrf)
	if err != nil {
		return nil, fmt.Errorf("collecting raffles: %w", err)
	}

	ids := raffle.Unentered(raffles)
	alreadyEntered := len(raffles) - len(ids)
	b.log.Info("collected raffles", logger.Fields{
		"total":     len(raffles),
		"entered":   alreadyEntered,
		"unentered": len(ids),
	})

	for i, id := range ids {
		b.log.Info("attempting to enter raffle", logger.Fields{"raffle": id})

		result, err := b.submitter.EnterRaffle(ctx, id)
		if err != nil {
			b.log.Error("entry request failed", logger.Fields{"raffle": id}, err)
			report.FailedID = id
			break
		}
		if !result.Success {
			b.log.Warn("entry rejected", logger.Fields{"raffle": id, "message": result.Message})
			report.FailedID = id
			break
		}

		b.log.Info("entered raffle", logger.Fields{
			"raffle":   id,
			"message":  result.Message,
			"progress": fmt.Sprintf("%d/%d", alreadyEntered+len(report.EnteredIDs)+1, len(raffles)),
		})
		report.EnteredIDs = append(report.EnteredIDs, id)

		if i < len(ids)-1 {
			if err := sleepCtx(ctx, b.entryDelay); err != nil {
				report.FinishedAt = time.Now().UTC()
				return report, err
			}
		}
	}

	report.TotalEntered = alreadyEntered + len(report.EnteredIDs)
	report.TotalRaffles = len(raffles)

	if stats, err := b.client.Stats(ctx); err != nil {
		b.log.Warn("could not load raffle stats", nil)
	} else {
		report.TotalEntered = stats.Entered
		report.TotalRaffles = stats.Total
		b.log.Info("raffle stats", logger.Fields{
			"entered": stats.Entered,
			"total":   stats.Total,
		})
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

// RunOnce makes a single pass, persists its report and refreshed cookies,
// and returns an error if the pass failed or ended on a rejected entry.
func (b *Bot) RunOnce(ctx context.Context) error {
	report, err := b.Pass(ctx)
	b.finishPass(report)
	if err != nil {
		return err
	}
	if report.FailedID != "" {
		return fmt.Errorf("failed to enter raffle %s", report.FailedID)
	}
	return nil
}

// Run loops forever: one pass, then the loop interval, until the context is
// canceled. A failed pass is logged and the loop carries on at the next
// interval.
func (b *Bot) Run(ctx context.Context) error {
	for {
		report, err := b.Pass(ctx)
		b.finishPass(report)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Error("pass failed", nil, err)
		}

		b.log.Info("waiting for next pass", logger.Fields{"interval": b.loopInterval.String()})
		if err := sleepCtx(ctx, b.loopInterval); err != nil {
			return nil
		}
	}
}

// finishPass persists the run report and writes refreshed cookies back to
// disk. Both are best-effort; failures are logged, not fatal.
func (b *Bot) finishPass(report *storage.RunReport) {
	if report != nil {
		b.log.Info("pass finished", logger.Fields{
			"newly_entered": report.NewlyEntered(),
			"total_entered": report.TotalEntered,
			"total_raffles": report.TotalRaffles,
		})
		if b.store != nil {
			if err := b.store.SaveReport(report); err != nil {
				b.log.Error("could not save run report", nil, err)
			}
		}
	}

	if b.sess != nil && b.br != nil {
		b.sess.Update(b.br.Cookies())
		if err := b.sess.Save(); err != nil {
			b.log.Error("could not save cookies", nil, err)
		}
	}
}

// sleepCtx sleeps for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
