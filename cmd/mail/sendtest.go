package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nativeschema/site-api/internal/model"
	"github.com/spf13/cobra"
)

func newSendTestCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send one test email through the configured providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return errors.New("--to is required")
			}
			cfg, d, err := loadDispatcher(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			now := time.Now().UTC().Format(time.RFC3339)
			err = d.Send(ctx, model.Email{
				From:    cfg.Contact.From,
				To:      []string{to},
				Subject: "site-api test email",
				Text:    "Test email sent at " + now,
				HTML:    "<p>Test email sent at " + now + "</p>",
			})
			if err != nil {
				return fmt.Errorf("send: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent test email to %s\n", to)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	return cmd
}
