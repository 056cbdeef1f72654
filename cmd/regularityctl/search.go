package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var name, timeline string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search dots, dashes and pendings",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			owner, err := ownerID()
			if err != nil {
				return err
			}
			data, err := doGet(fmt.Sprintf("%s/api/owners/%s/search%s",
				base, owner, listQuery(name, timeline, 0)))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	searchCmd.Flags().StringVar(&name, "name", "", "Filter by name substring")
	searchCmd.Flags().StringVarP(&timeline, "timeline", "t", "", "Filter by timeline")
	rootCmd.AddCommand(searchCmd)

	var logName, logTimeline string
	var limit int
	var reverse bool
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Chronological listing of all record kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			owner, err := ownerID()
			if err != nil {
				return err
			}
			url := fmt.Sprintf("%s/api/owners/%s/events%s",
				base, owner, listQuery(logName, logTimeline, limit))
			if reverse {
				sep := "?"
				if limit > 0 || logName != "" || logTimeline != "" {
					sep = "&"
				}
				url += sep + "reverse=true"
			}
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	logCmd.Flags().StringVar(&logName, "name", "", "Filter by name substring")
	logCmd.Flags().StringVarP(&logTimeline, "timeline", "t", "", "Filter by timeline")
	logCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Keep the most recent N records per kind")
	logCmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Newest first")
	rootCmd.AddCommand(logCmd)
}
