package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/internal/policies"
	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	"github.com/millennialbroker/broker-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredPolicyReader interface {
	FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Policy, error)
}

type expiryPolicyRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Policy, error)
	UpdateVersioned(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error)
}

type expiryRepoFactory func(tx *gorm.DB) expiryPolicyRepo

func defaultExpiryRepo(tx *gorm.DB) expiryPolicyRepo {
	return policies.NewRepository(tx)
}

// PolicyExpiryJobParams configure the daily policy expiry scheduler.
type PolicyExpiryJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Reader      expiredPolicyReader
	RepoFactory expiryRepoFactory
}

// NewPolicyExpiryJob builds the cron job that marks lapsed active policies
// as vencida.
func NewPolicyExpiryJob(params PolicyExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("expired policy reader required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultExpiryRepo
	}
	return &policyExpiryJob{
		logg:        params.Logger,
		db:          params.DB,
		reader:      params.Reader,
		repoFactory: repoFactory,
		now:         time.Now,
	}, nil
}

type policyExpiryJob struct {
	logg        *logger.Logger
	db          txRunner
	reader      expiredPolicyReader
	repoFactory expiryRepoFactory
	now         func() time.Time
}

func (j *policyExpiryJob) Name() string { return "policy-expiry" }

// Run expires each lapsed policy in its own transaction so one conflict
// does not abort the rest of the batch.
func (j *policyExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	candidates, err := j.reader.FindActiveExpiredBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query expired policies: %w", err)
	}

	var errs []error
	expired := 0
	for _, policy := range candidates {
		if err := j.expirePolicy(ctx, policy, cutoff); err != nil {
			errs = append(errs, fmt.Errorf("expire policy %s: %w", policy.PolicyNumber, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(candidates),
		"expired":    expired,
		"failed":     len(errs),
	})
	j.logg.Info(logCtx, "policy expiry loop complete")
	return multierr.Combine(errs...)
}

func (j *policyExpiryJob) expirePolicy(ctx context.Context, policy models.Policy, cutoff time.Time) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		current, err := repo.FindByID(ctx, policy.ID)
		if err != nil {
			return err
		}
		// Re-check inside the transaction; a movement may have run since
		// the candidate query.
		if current.Status != enums.PolicyStatusActiva || !current.EndDate.Before(cutoff) {
			return nil
		}
		rows, err := repo.UpdateVersioned(ctx, current.ID, current.Version, map[string]any{
			"status":  enums.PolicyStatusVencida,
			"version": current.Version + 1,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("policy %s changed concurrently", current.PolicyNumber)
		}
		return nil
	})
}
