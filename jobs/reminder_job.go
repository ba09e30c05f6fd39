package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// UnpaidReminder is the core operation the reminder job drives.
type UnpaidReminder interface {
	RemindUnpaid(ctx context.Context, after time.Duration) (int, error)
}

// SendUnpaidReminders returns the cron body that nudges students whose work has
// waited unpaid for longer than after.
func SendUnpaidReminders(r UnpaidReminder, after time.Duration) func() {
	return func() {
		log.Println("Running job: SendUnpaidReminders...")

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		sent, err := r.RemindUnpaid(ctx, after)
		if err != nil {
			log.WithError(err).Error("Error checking for unpaid assignments")
			return
		}
		if sent == 0 {
			return
		}
		log.WithField("count", sent).Info("Sent unpaid assignment reminder(s)")
	}
}

// Schedule registers the reminder on c under the given cron spec.
func Schedule(c *cron.Cron, spec string, r UnpaidReminder, after time.Duration) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, SendUnpaidReminders(r, after))
	if err != nil {
		return 0, errors.Wrapf(err, "schedule unpaid reminders %q", spec)
	}
	return id, nil
}
