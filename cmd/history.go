package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonder-codes/echo-repo/internal/repositories"
)

var (
	historyLimit int
	historyShow  string
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", repositories.DefaultHistoryLimit, "number of records to list")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "print the README with this id instead of the listing")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently generated READMEs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := repositories.OpenStore(cmd.Context(), cfg.StoreURL, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		readmes, err := store.Readmes.ListRecent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyShow != "" {
			for _, r := range readmes {
				if r.ID == historyShow {
					return printMarkdown(out, r.Content, false)
				}
			}
			return fmt.Errorf("no readme %s among the latest %d", historyShow, historyLimit)
		}

		if len(readmes) == 0 {
			fmt.Fprintln(out, "No READMEs yet; run 'echorepo generate' first")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tTITLE\tREPOSITORY")
		for _, r := range readmes {
			ref := r.RepositoryReference
			if ref == "" {
				ref = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Title, ref)
		}
		return tw.Flush()
	},
}
