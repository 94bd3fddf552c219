package cmd

import (
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/client/api"
	"github.com/mockmate/interviewroom/internal/client/finish"
	"github.com/mockmate/interviewroom/internal/client/room"
)

var (
	joinServerURL   string
	joinParticipant string
)

var joinCmd = &cobra.Command{
	Use:   "join <interview-id>",
	Short: "Join an interview room as a headless participant",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

		interviewID := args[0]

		client := api.NewClient(joinServerURL, joinParticipant)

		details, err := client.JoinRoom(ctx, interviewID)
		if err != nil {
			slog.Error("join room", slog.Any(constant.Error, err))
			os.Exit(1)
		}

		ended := make(chan finish.Role, 1)

		r, err := room.Join(ctx, room.Config{
			InterviewID:   interviewID,
			URL:           details.URL,
			Token:         details.Token,
			RoomName:      details.RoomName,
			Identity:      details.ParticipantIdentity,
			IsInterviewer: details.IsInterviewer,
			ICEServers:    details.ICEServers,
			Completer:     client,
			OnCodeChanged: func(text string) {
				slog.Info("code updated", slog.Int("bytes", len(text)))
			},
			OnLanguageChanged: func(id string) {
				slog.Info("language changed", slog.String("language", id))
			},
			OnWhiteboardChanged: func(elements []json.RawMessage) {
				slog.Info("whiteboard updated", slog.Int("elements", len(elements)))
			},
			OnEnded: func(role finish.Role) {
				ended <- role
			},
			OnDisconnected: func() {
				cancel()
			},
		})
		if err != nil {
			slog.Error("connect to room", slog.Any(constant.Error, err))
			os.Exit(1)
		}
		defer r.Leave()

		slog.Info(
			"joined interview room",
			slog.String(constant.RoomName, details.RoomName),
			slog.Bool("interviewer", details.IsInterviewer),
		)

		select {
		case role := <-ended:
			slog.Info("interview ended", slog.String("role", string(role)))
		case <-ctx.Done():
		}
	},
}

func init() {
	joinCmd.Flags().StringVar(&joinServerURL, "server", "http://localhost:3000", "interview service base URL")
	joinCmd.Flags().StringVar(&joinParticipant, "participant", "", "participant id (uuid)")

	rootCmd.AddCommand(joinCmd)
}
