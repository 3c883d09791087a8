package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/commands"
	"github.com/sandeepkv93/protodo/internal/model"
)

func (r *runner) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the theme and dark mode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withService(cmd, func(_ context.Context, svc *app.Service) error {
				st := svc.Settings.Get()
				fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\ndark: %t\n", st.Theme, st.Dark)
				return nil
			})
		},
	}

	theme := &cobra.Command{
		Use:       "theme <default|green|orange>",
		Short:     "Set the accent theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.ThemeDefault), string(model.ThemeGreen), string(model.ThemeOrange)},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseTheme(args[0])
			if err != nil {
				return err
			}
			return r.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				res, err := svc.Dispatch(ctx, commands.Command{Type: commands.TypeTheme, Theme: &commands.ThemeArgs{Theme: t}})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}

	dark := &cobra.Command{
		Use:   "dark [on|off]",
		Short: "Toggle dark mode, or set it explicitly",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				if len(args) == 0 {
					res, err := svc.Dispatch(ctx, commands.Command{Type: commands.TypeDark})
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), res.Message)
					return nil
				}
				var on bool
				switch strings.ToLower(args[0]) {
				case "on", "true", "1":
					on = true
				case "off", "false", "0":
				default:
					return fmt.Errorf("%w: dark takes on or off", model.ErrValidation)
				}
				if svc.Settings.SetDark(ctx, on).Dark {
					fmt.Fprintln(cmd.OutOrStdout(), "dark mode on")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "dark mode off")
				}
				return nil
			})
		},
	}

	cmd.AddCommand(theme, dark)
	return cmd
}
