package cmd

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"tasnim.dev/cloudspend/internal/tui"
)

func NewDashboardCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the interactive cloud spend dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.load(os.Getenv)
			if err != nil {
				return err
			}
			defer sess.closeLog()

			ctx := context.Background()
			multi, err := sess.openSources(ctx)
			if err != nil {
				return err
			}

			opts := tui.Options{
				Fetcher:         multi,
				Sources:         multi.Names(),
				PageSize:        sess.pageSize,
				Sort:            sess.sort,
				AutoRefresh:     sess.cfg.AutoRefresh,
				RefreshInterval: sess.cfg.RefreshInterval(),
				Logger:          sess.log,
			}
			if sess.usesAWS() {
				opts.Profile = sess.profile
				opts.AccountID = sess.accountID(ctx)
			}

			sess.log.Info("starting dashboard", "sources", len(opts.Sources))
			p := tea.NewProgram(tui.NewModel(opts))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running dashboard: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
