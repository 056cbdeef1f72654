package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	timelinesCmd := &cobra.Command{Use: "timelines", Short: "Timeline operations"}

	var exclusive bool
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a timeline with an explicit overlap policy",
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
			payload := map[string]interface{}{"name": args[0], "allowOverlap": !exclusive}
			data, err := doPostJSON(fmt.Sprintf("%s/api/owners/%s/timelines", base, owner), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().BoolVarP(&exclusive, "exclusive", "x", false, "Forbid overlapping activities of different names")
	timelinesCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List timelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			owner, err := ownerID()
			if err != nil {
				return err
			}
			data, err := doGet(fmt.Sprintf("%s/api/owners/%s/timelines", base, owner))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	timelinesCmd.AddCommand(listCmd)

	rootCmd.AddCommand(timelinesCmd)
}
