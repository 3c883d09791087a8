package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/model"
)

func (r *runner) remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder loop in the foreground until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return r.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				out := cmd.OutOrStdout()
				svc.OnReminder(func(rem model.Reminder) {
					fmt.Fprintf(out, "%s | %s\n", rem.Title(), rem.Body())
				})
				armed := svc.Start(ctx)
				fmt.Fprintf(cmd.ErrOrStderr(), "watching %d reminder(s); press Ctrl+C to stop\n", armed)
				<-ctx.Done()
				fmt.Fprintf(cmd.ErrOrStderr(), "stopping with %d reminder(s) still pending\n", svc.Reminders.Pending())
				return nil
			})
		},
	}
}
