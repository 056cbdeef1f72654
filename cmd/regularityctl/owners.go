package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	ownersCmd := &cobra.Command{Use: "owners", Short: "Owner operations"}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			data, err := doPostJSON(base+"/api/owners", nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	ownersCmd.AddCommand(createCmd)

	getCmd := &cobra.Command{
		Use:   "get OWNER_ID",
		Short: "Get owner by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL()
			if err != nil {
				return err
			}
			data, err := doGet(base + "/api/owners/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	ownersCmd.AddCommand(getCmd)

	rootCmd.AddCommand(ownersCmd)

	// init registers an owner and writes ~/.regularity.json so later
	// commands need no flags.
	var host string
	var port int
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Register an owner and write the client config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			base := fmt.Sprintf("http://%s:%d", host, port)
			data, err := doPostJSON(base+"/api/owners", nil)
			if err != nil {
				return err
			}
			var owner struct {
				OwnerID string `json:"ownerId"`
			}
			if err := json.Unmarshal(data, &owner); err != nil {
				return err
			}
			cfg := &ClientConfig{Client: owner.OwnerID, Host: host, Port: port}
			if err := writeClientConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "registered owner %s\n", owner.OwnerID)
			return nil
		},
	}
	initCmd.Flags().StringVar(&host, "host", "localhost", "Service host")
	initCmd.Flags().IntVar(&port, "port", 8080, "Service port")
	rootCmd.AddCommand(initCmd)
}
