// File: internal/jobs/orphan_audit.go
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_backend/internal/common"
	"estate_backend/internal/config"
	"estate_backend/internal/listing"
	"estate_backend/internal/user"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ListingOwners is the part of the listing store the audit reads and sweeps.
type ListingOwners interface {
	OwnerIDs(ctx context.Context) ([]uuid.UUID, error)
	FindByOwner(ctx context.Context, owner uuid.UUID) ([]listing.Listing, error)
	DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error)
}

// UserLookup resolves a user id.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// OrphanReport is the outcome of one audit run.
type OrphanReport struct {
	OwnersChecked int
	MissingOwners []uuid.UUID
	Swept         int64
}

// OrphanAuditJob finds listings whose userRef names a deleted user. With
// ORPHAN_SWEEP_ENABLED it also deletes them and drops them from the search index.
type OrphanAuditJob struct {
	listings      ListingOwners
	users         UserLookup
	indexer       listing.Indexer
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewOrphanAuditJob creates a new OrphanAuditJob.
func NewOrphanAuditJob(listings ListingOwners, users UserLookup, indexer listing.Indexer, logger *zap.Logger, cfg *config.Config) *OrphanAuditJob {
	scheduler := cron.New(
		cron.WithLogger(NewCronLogger(logger.Named("cron"))),
		cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))),
	)
	return &OrphanAuditJob{
		listings:      listings,
		users:         users,
		indexer:       indexer,
		logger:        logger.Named("OrphanAuditJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *OrphanAuditJob) SetupAndStart() error {
	jobSpec := j.cfg.OrphanAuditSchedule
	if jobSpec == "" {
		j.logger.Warn("Orphan audit schedule not defined (ORPHAN_AUDIT_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule orphan audit job", zap.String("schedule", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Orphan audit job scheduled", zap.String("schedule", jobSpec), zap.Int("jobID", int(jobID)), zap.Bool("sweep", j.cfg.OrphanSweepEnable))
	j.cronScheduler.Start()
	return nil
}

func (j *OrphanAuditJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Orphan audit run failed", zap.Error(err))
		return
	}
	j.logger.Info("Orphan audit run completed",
		zap.Int("owners_checked", report.OwnersChecked),
		zap.Int("missing_owners", len(report.MissingOwners)),
		zap.Int64("listings_swept", report.Swept),
	)
}

// RunOnce performs a single audit pass.
func (j *OrphanAuditJob) RunOnce(ctx context.Context) (OrphanReport, error) {
	var report OrphanReport

	owners, err := j.listings.OwnerIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("list owners: %w", err)
	}
	report.OwnersChecked = len(owners)

	for _, owner := range owners {
		_, err := j.users.FindByID(ctx, owner)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return report, fmt.Errorf("look up owner %s: %w", owner, err)
		}

		report.MissingOwners = append(report.MissingOwners, owner)
		j.logger.Warn("Listings reference a missing user", zap.String("user_id", owner.String()))

		if j.cfg.OrphanSweepEnable {
			n, err := j.sweep(ctx, owner)
			if err != nil {
				return report, err
			}
			report.Swept += n
		}
	}
	return report, nil
}

func (j *OrphanAuditJob) sweep(ctx context.Context, owner uuid.UUID) (int64, error) {
	owned, err := j.listings.FindByOwner(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list listings of %s: %w", owner, err)
	}
	n, err := j.listings.DeleteByOwner(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("sweep listings of %s: %w", owner, err)
	}
	if j.indexer == nil {
		return n, nil
	}
	for i := range owned {
		if err := j.indexer.Remove(ctx, owned[i].ID); err != nil {
			j.logger.Warn("Failed to remove swept listing from search index", zap.String("listing_id", owned[i].ID.String()), zap.Error(err))
		}
	}
	return n, nil
}

// Stop gracefully stops the cron scheduler.
func (j *OrphanAuditJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Orphan audit scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Orphan audit scheduler stop timed out.")
	}
}
