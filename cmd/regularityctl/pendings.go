package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	pendingCmd := &cobra.Command{Use: "pending", Short: "Open-activity operations"}

	var timeline, start, note string
	startCmd := &cobra.Command{
		Use:   "start NAME",
		Short: "Open a pending activity",
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
			if note != "" {
				payload["note"] = note
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/owners/%s/pendings", base, owner), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	startCmd.Flags().StringVarP(&timeline, "timeline", "t", "default", "Timeline name")
	startCmd.Flags().StringVar(&start, "start", "", "Activity start (defaults to now)")
	startCmd.Flags().StringVarP(&note, "note", "n", "", "Note text")
	pendingCmd.AddCommand(startCmd)

	var finishTimeline, end string
	finishCmd := &cobra.Command{
		Use:   "finish NAME",
		Short: "Finish the open pending, converting it into a dash",
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
			payload := map[string]interface{}{"timeline": finishTimeline, "name": args[0]}
			if end != "" {
				payload["end"] = end
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/owners/%s/pendings/finish", base, owner), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	finishCmd.Flags().StringVarP(&finishTimeline, "timeline", "t", "default", "Timeline name")
	finishCmd.Flags().StringVar(&end, "end", "", "Activity end (defaults to now)")
	pendingCmd.AddCommand(finishCmd)

	var cancelTimeline string
	cancelCmd := &cobra.Command{
		Use:   "cancel NAME",
		Short: "Discard the open pending without recording a dash",
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
			q := url.Values{}
			q.Set("timeline", cancelTimeline)
			q.Set("name", args[0])
			_, err = doDelete(fmt.Sprintf("%s/api/owners/%s/pendings?%s", base, owner, q.Encode()))
			return err
		},
	}
	cancelCmd.Flags().StringVarP(&cancelTimeline, "timeline", "t", "default", "Timeline name")
	pendingCmd.AddCommand(cancelCmd)

	var listName, listTimeline string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List open pendings",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			owner, err := ownerID()
			if err != nil {
				return err
			}
			data, err := doGet(fmt.Sprintf("%s/api/owners/%s/pendings%s",
				base, owner, listQuery(listName, listTimeline, limit)))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVar(&listName, "name", "", "Filter by name substring")
	listCmd.Flags().StringVarP(&listTimeline, "timeline", "t", "", "Filter by timeline")
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Keep the most recent N records")
	pendingCmd.AddCommand(listCmd)

	rootCmd.AddCommand(pendingCmd)
}
