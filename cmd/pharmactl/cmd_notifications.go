package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"toppharma/internal/repository/postgres"
	"toppharma/internal/service"
)

var unreadOnly bool

var notificationsCmd = &cobra.Command{
	Use:   "notifications <user-id>",
	Short: "Show a user's notifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		rc := repoConfig(pool)
		svc := service.NewNotificationService(
			postgres.NewNotificationRepository(rc),
			postgres.NewFollowRepository(rc),
			logger,
		)

		list, err := svc.List(ctx, userID, unreadOnly)
		if err != nil {
			return err
		}
		unread, err := svc.UnreadCount(ctx, userID)
		if err != nil {
			return err
		}

		log.Printf("🔔 %d notifications, %d unread", len(list), unread)
		now := time.Now()
		for _, n := range list {
			fmt.Fprintln(cmd.OutOrStdout(), formatNotification(n, now))
		}
		return nil
	},
}

func init() {
	notificationsCmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
}
