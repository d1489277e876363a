package discord

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	bk "github.com/hanksha/tbz-booking-console/booking"
)

var titles = map[bk.Status]string{
	bk.StatusPending:    "Nouvelle Réservation :calendar:",
	bk.StatusApproved:   "Réservation Acceptée :white_check_mark:",
	bk.StatusRejected:   "Réservation Refusée :no_entry:",
	bk.StatusCancelled:  "Réservation Annulée :x:",
	bk.StatusCheckedIn:  "Arrivée Enregistrée :key:",
	bk.StatusCheckedOut: "Départ Enregistré :wave:",
}

var colors = map[bk.Status]int{
	bk.StatusPending:  0xF1C40F,
	bk.StatusApproved: 0x2ECC71,
	bk.StatusRejected: 0xE74C3C,
}

// Notifier posts booking lifecycle events to a channel as embeds.
type Notifier struct {
	client    DiscordClient
	channelID string
	now       func() time.Time
	logger    *slog.Logger
}

func NewNotifier(client DiscordClient, channelID string) *Notifier {
	return &Notifier{
		client:    client,
		channelID: channelID,
		now:       time.Now,
		logger:    slog.Default().With("component", "discord"),
	}
}

func (n *Notifier) Notify(ctx context.Context, bookingID int64, guestLabel, roomLabel string, status bk.Status) {
	title, ok := titles[status]

	if !ok {
		title = "Réservation Mise à Jour"
	}

	embed := Embed{
		Type:  "rich",
		Title: title,
		Color: colors[status],
		Fields: []EmbedField{
			{
				Name:   "Réservation",
				Value:  "#" + strconv.FormatInt(bookingID, 10),
				Inline: true,
			},
			{
				Name:   "Client",
				Value:  guestLabel,
				Inline: true,
			},
			{
				Name:   "Chambre",
				Value:  roomLabel,
				Inline: true,
			},
			{
				Name:   "Statut",
				Value:  string(status),
				Inline: true,
			},
		},
		Timestamp: n.now().UTC().Format(time.RFC3339),
	}

	err := n.client.SendMessage(ctx, n.channelID, Message{
		Embeds: []Embed{embed},
	})

	if err != nil {
		n.logger.Warn("failed to send booking notification", "bookingId", bookingID, "status", status, "err", err)
	}
}
