package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tasnim.dev/cloudspend/cmd"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "cloudspend",
		Short:         "Multi-cloud spend dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cmd.NewDashboardCmd())
	rootCmd.AddCommand(cmd.NewSummaryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
