package booking

import "context"

// Notifiers fans a lifecycle event out to every configured bridge.
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, bookingID int64, guestLabel, roomLabel string, status Status) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.Notify(ctx, bookingID, guestLabel, roomLabel, status)
		}
	}
}
