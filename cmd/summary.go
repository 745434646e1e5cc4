package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tasnim.dev/cloudspend/internal/report"
	"tasnim.dev/cloudspend/internal/spend"
)

type summaryFlags struct {
	commonFlags
	cloud    string
	team     string
	env      string
	date     string
	filters  []string
	sort     string
	page     int
	jsonOut  bool
	getenv   func(string) string
	thisYear func() int
}

func NewSummaryCmd() *cobra.Command {
	return newSummaryCmd(os.Getenv, func() int { return time.Now().Year() })
}

func newSummaryCmd(getenv func(string) string, thisYear func() int) *cobra.Command {
	flags := summaryFlags{getenv: getenv, thisYear: thisYear}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print spend aggregates and one page of records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.run(cmd)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.cloud, "cloud", "", "filter by cloud provider (AWS, GCP)")
	cmd.Flags().StringVar(&flags.team, "team", "", "filter by team")
	cmd.Flags().StringVar(&flags.env, "env", "", "filter by environment (prod, staging, dev)")
	cmd.Flags().StringVar(&flags.date, "date", "", "filter by date: YYYY, YYYY-MM or YYYY-MM-DD")
	cmd.Flags().StringArrayVar(&flags.filters, "filter", nil,
		"filter as key=value (repeatable); keys: cloud, provider, team, env, date, month")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "sort as field|dir, e.g. cost|desc")
	cmd.Flags().IntVar(&flags.page, "page", 1, "page number")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "print JSON instead of a table")
	return cmd
}

func (f *summaryFlags) run(cmd *cobra.Command) error {
	sess, err := f.load(f.getenv)
	if err != nil {
		return err
	}
	defer sess.closeLog()

	sort := sess.sort
	if f.sort != "" {
		if sort, err = spend.ParseSortSpec(f.sort); err != nil {
			return fmt.Errorf("--sort: %w", err)
		}
	}
	criteria, err := f.criteria()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	multi, err := sess.openSources(ctx)
	if err != nil {
		return err
	}
	records, err := multi.Fetch(ctx)
	if err != nil {
		return err
	}

	state := spend.NewState(sess.pageSize, sort)
	state.SetRecords(records)
	state.SetCriteria(criteria)
	state.SetPage(f.page)

	summary := report.New(state)
	if f.jsonOut {
		return report.WriteJSON(cmd.OutOrStdout(), summary)
	}
	return report.WriteText(cmd.OutOrStdout(), summary)
}

// criteria combines the named filter flags with --filter pairs; a --filter
// pair overrides the named flag for the same key.
func (f *summaryFlags) criteria() (spend.Criteria, error) {
	date, err := spend.ParseDateInput(f.date, f.thisYear())
	if err != nil {
		return spend.Criteria{}, fmt.Errorf("--date: %w", err)
	}
	c := spend.Criteria{}.
		With(spend.FilterCloud, f.cloud).
		With(spend.FilterTeam, f.team).
		With(spend.FilterEnv, f.env).
		With(spend.FilterDate, date)

	for _, pair := range f.filters {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return spend.Criteria{}, fmt.Errorf("--filter %q: want key=value", pair)
		}
		key, err := spend.ParseFilterKey(name)
		if err != nil {
			return spend.Criteria{}, fmt.Errorf("--filter: %w", err)
		}
		if key == spend.FilterDate {
			if value, err = spend.ParseDateInput(value, f.thisYear()); err != nil {
				return spend.Criteria{}, fmt.Errorf("--filter %s: %w", name, err)
			}
		}
		c = c.With(key, value)
	}
	return c, nil
}
