package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	ownerFlag string
	rootCmd   = &cobra.Command{
		Use:   "regularityctl",
		Short: "CLI client for the regularity REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "", "Regularity service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&ownerFlag, "owner", "o", "", "Owner ID (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// baseURL resolves the service URL from the --api flag or the config file.
func baseURL() (string, error) {
	if apiFlag != "" {
		return apiFlag, nil
	}
	cfg, err := loadClientConfig()
	if err != nil {
		return "http://localhost:8080", nil
	}
	return fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port), nil
}

// ownerID resolves the acting owner from the --owner flag or the config file.
func ownerID() (string, error) {
	if ownerFlag != "" {
		return ownerFlag, nil
	}
	cfg, err := loadClientConfig()
	if err != nil || cfg.Client == "" {
		return "", fmt.Errorf("--owner required (or run 'regularityctl init' first)")
	}
	return cfg.Client, nil
}
