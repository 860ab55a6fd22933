// services/scheduler.go
package services

import (
	"log"
	"time"

	"foodbridge/events"
	"foodbridge/models"

	"github.com/go-co-op/gocron/v2"
)

// StartExpirySweeper runs an hourly housekeeping job that force-cancels
// still-open claims whose parent donation has expired. Lifecycle transitions
// themselves stay request-driven; this only tidies claims nobody can deliver
// anymore.
func (s *ClaimService) StartExpirySweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			var stale []models.Claim
			now := time.Now().UTC()
			err := s.DB.
				Joins("INNER JOIN donations d ON d.id = claims.donation_id").
				Where("claims.status IN ? AND d.expires_at < ?",
					[]models.ClaimStatus{models.ClaimStatusPending, models.ClaimStatusAccepted}, now).
				Find(&stale).Error
			if err != nil {
				log.Printf("[Sweeper] DB error: %v", err)
				return
			}

			for i := range stale {
				c := &stale[i]
				if err := cancelClaimTx(s.DB, c); err != nil {
					log.Printf("[Sweeper] Failed to cancel claim %s: %v", c.ID, err)
					continue
				}
				s.Sink.Emit(events.ClaimCancelled, map[string]any{
					"claim_id":    c.ID,
					"donation_id": c.DonationID,
					"receiver_id": c.ReceiverID,
				})
				log.Printf("[Sweeper] Cancelled stale claim %s (donation expired)", c.ID)
			}
		}),
	)
}
