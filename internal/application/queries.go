package application

import (
	"time"

	"github.com/bnema/worker-fleet/internal/domain"
)

type RewardReportEntry struct {
	Assignment domain.Assignment
	Status     domain.RewardStatus
	FetchedAt  time.Time
	Err        error
}
