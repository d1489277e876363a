package discord_test

import (
	"context"
	"errors"
	"testing"

	bk "github.com/hanksha/tbz-booking-console/booking"
	"github.com/hanksha/tbz-booking-console/discord"
	discord_mocks "github.com/hanksha/tbz-booking-console/discord/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNotify(t *testing.T) {

	t.Run("approved embed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := discord_mocks.NewMockDiscordClient(ctrl)
		notifier := discord.NewNotifier(client, "chan-1")

		var sent discord.Message
		client.EXPECT().SendMessage(gomock.Any(), "chan-1", gomock.Any()).DoAndReturn(func(ctx context.Context, channelID string, message discord.Message) error {
			sent = message
			return nil
		})

		notifier.Notify(context.Background(), 10, "Alice", "R-101", bk.StatusApproved)

		require.Len(t, sent.Embeds, 1)
		embed := sent.Embeds[0]
		assert.Equal(t, "Réservation Acceptée :white_check_mark:", embed.Title)
		assert.Equal(t, "rich", embed.Type)
		assert.Equal(t, []discord.EmbedField{
			{Name: "Réservation", Value: "#10", Inline: true},
			{Name: "Client", Value: "Alice", Inline: true},
			{Name: "Chambre", Value: "R-101", Inline: true},
			{Name: "Statut", Value: "APPROVED", Inline: true},
		}, embed.Fields)
	})

	t.Run("rejected title", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := discord_mocks.NewMockDiscordClient(ctrl)

		client.EXPECT().SendMessage(gomock.Any(), "chan-1", gomock.Cond(func(x any) bool {
			message, ok := x.(discord.Message)
			return ok && len(message.Embeds) == 1 && message.Embeds[0].Title == "Réservation Refusée :no_entry:"
		})).Return(nil)

		discord.NewNotifier(client, "chan-1").Notify(context.Background(), 10, "Alice", "R-101", bk.StatusRejected)
	})

	t.Run("new pending booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := discord_mocks.NewMockDiscordClient(ctrl)

		client.EXPECT().SendMessage(gomock.Any(), "chan-1", gomock.Cond(func(x any) bool {
			message, ok := x.(discord.Message)
			return ok && len(message.Embeds) == 1 &&
				message.Embeds[0].Title == "Nouvelle Réservation :calendar:" &&
				message.Embeds[0].Color == 0xF1C40F
		})).Return(nil)

		discord.NewNotifier(client, "chan-1").Notify(context.Background(), 11, "Bob", "R-202", bk.StatusPending)
	})

	t.Run("send failure is swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := discord_mocks.NewMockDiscordClient(ctrl)
		client.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("rate limited"))

		assert.NotPanics(t, func() {
			discord.NewNotifier(client, "chan-1").Notify(context.Background(), 10, "Alice", "R-101", bk.StatusPending)
		})
	})
}
