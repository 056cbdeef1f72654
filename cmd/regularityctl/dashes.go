package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var timeline, start, end, note string
	dashCmd := &cobra.Command{
		Use:   "dash NAME",
		Short: "Log a ranged activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			owner, err := ownerID()
			if err != nil {
				return err
			}
			payload := map[string]interface{}{"timeline": timeline, "name": args[0]}
			if start != "" {
				payload["start"] = start
			}
			if end != "" {
				payload["end"] = end
			}
			if note != "" {
				payload["note"] = note
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/owners/%s/dashes", base, owner), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	dashCmd.Flags().StringVarP(&timeline, "timeline", "t", "default", "Timeline name")
	dashCmd.Flags().StringVar(&start, "start", "", "Activity start (defaults to now)")
	dashCmd.Flags().StringVar(&end, "end", "", "Activity end (defaults to start)")
	dashCmd.Flags().StringVarP(&note, "note", "n", "", "Note text")
	rootCmd.AddCommand(dashCmd)

	var listName, listTimeline string
	var limit int
	dashesCmd := &cobra.Command{
		Use:   "dashes",
		Short: "List dashes",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			owner, err := ownerID()
			if err != nil {
				return err
			}
			data, err := doGet(fmt.Sprintf("%s/api/owners/%s/dashes%s",
				base, owner, listQuery(listName, listTimeline, limit)))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	dashesCmd.Flags().StringVar(&listName, "name", "", "Filter by name substring")
	dashesCmd.Flags().StringVarP(&listTimeline, "timeline", "t", "", "Filter by timeline")
	dashesCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Keep the most recent N records")
	rootCmd.AddCommand(dashesCmd)
}
