package domain

const defaultNextClaim = "Not Claimed"

// ClaimDetails is the daily claim state reported by the rewards API.
type ClaimDetails struct {
	Tier       string
	DailyPoint float64
	Claimed    bool
	NextClaim  string
}

// NextClaimLabel falls back to "Not Claimed" when the gateway omits it.
func (d ClaimDetails) NextClaimLabel() string {
	if d.NextClaim == "" {
		return defaultNextClaim
	}
	return d.NextClaim
}

// RewardRealtime is the first entry of the reward_realtime array.
type RewardRealtime struct {
	TotalHeartbeats int64
}

// ClaimReceipt is the opaque confirmation returned by claim_reward.
type ClaimReceipt struct {
	Raw []byte
}

// RewardStatus combines both reward endpoints for one polling tick.
type RewardStatus struct {
	Tier                 string
	DailyPoint           float64
	Claimed              bool
	NextClaim            string
	TotalHeartbeatsToday int64
}

func NewRewardStatus(details ClaimDetails, realtime RewardRealtime) RewardStatus {
	return RewardStatus{
		Tier:                 details.Tier,
		DailyPoint:           details.DailyPoint,
		Claimed:              details.Claimed,
		NextClaim:            details.NextClaimLabel(),
		TotalHeartbeatsToday: realtime.TotalHeartbeats,
	}
}
