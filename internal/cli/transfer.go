package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/codec"
)

const stdio = "-"

func (r *runner) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Append tasks from a JSON array export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				var (
					n   int
					err error
				)
				if args[0] == stdio {
					n, err = svc.Import(ctx, cmd.InOrStdin())
				} else {
					n, err = svc.ImportFile(ctx, args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "imported %d task(s)\n", n)
				return nil
			})
		},
	}
}

func (r *runner) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <file|->",
		Short: "Write every task as JSON or CSV",
		Long: `Write every task as JSON (the import format) or CSV. The format comes
from --format, else from the file extension; "-" writes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f := codec.FormatFromPath(path)
			if cmd.Flags().Changed("format") {
				parsed, err := codec.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			}
			return r.withService(cmd, func(_ context.Context, svc *app.Service) error {
				if path == stdio {
					return svc.Export(cmd.OutOrStdout(), f)
				}
				if err := svc.ExportFile(path, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d task(s) to %s\n", svc.Tasks.Len(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or csv")
	return cmd
}
