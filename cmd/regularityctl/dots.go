package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// listQuery renders the shared name/timeline/limit filter as a query string.
func listQuery(name, timeline string, limit int) string {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	if timeline != "" {
		q.Set("timeline", timeline)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func init() {
	var timeline, at, note string
	dotCmd := &cobra.Command{
		Use:   "dot NAME",
		Short: "Log an instantaneous event",
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
			if at != "" {
				payload["time"] = at
			}
			if note != "" {
				payload["note"] = note
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/owners/%s/dots", base, owner), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	dotCmd.Flags().StringVarP(&timeline, "timeline", "t", "default", "Timeline name")
	dotCmd.Flags().StringVar(&at, "time", "", "Event time (defaults to now)")
	dotCmd.Flags().StringVarP(&note, "note", "n", "", "Note text")
	rootCmd.AddCommand(dotCmd)

	var listName, listTimeline string
	var limit int
	dotsCmd := &cobra.Command{
		Use:   "dots",
		Short: "List dots",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			owner, err := ownerID()
			if err != nil {
				return err
			}
			data, err := doGet(fmt.Sprintf("%s/api/owners/%s/dots%s",
				base, owner, listQuery(listName, listTimeline, limit)))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	dotsCmd.Flags().StringVar(&listName, "name", "", "Filter by name substring")
	dotsCmd.Flags().StringVarP(&listTimeline, "timeline", "t", "", "Filter by timeline")
	dotsCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Keep the most recent N records")
	rootCmd.AddCommand(dotsCmd)
}
