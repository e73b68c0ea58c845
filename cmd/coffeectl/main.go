// server/cmd/coffeectl/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"coffee-os-api-server/pkg/client"

	"github.com/spf13/cobra"
)

var (
	apiURL      string
	sessionPath string
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "coffeectl",
	Short: "Command line client for the CoffeeOS API",
	Long: `Browse coffee shops, beans and zones from the terminal.
Examples:
  coffeectl login --email ana@coffee.test --password secret1
  coffeectl shops list --vibe Focus --near -58.42,-34.59 --max-distance 1500
  coffeectl beans list --roast-level Light
  coffeectl zones list`,
	SilenceUsage: true,
}

func init() {
	defaultURL := os.Getenv("COFFEEOS_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:3000"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "CoffeeOS API base URL (env COFFEEOS_API_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "session file (default: user config dir)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 20*time.Second, "request timeout")
}

func newClient() (*client.Client, error) {
	path := sessionPath
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
	}
	return client.New(apiURL, &client.SessionStore{Path: path})
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
