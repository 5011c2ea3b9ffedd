package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"immofox-http-service/internal/loadtest"
)

var (
	baseURL     string
	email       string
	password    string
	concurrency int
	requests    int
	asJSON      bool
)

// Execute runs the loadtest CLI
func Execute() error {
	root := &cobra.Command{
		Use:   "loadtest",
		Short: "Load test a running Immofox API",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080/api", "API base URL")
	root.PersistentFlags().StringVar(&email, "email", "", "login email; requests run anonymously without it")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "login password")
	root.PersistentFlags().IntVarP(&concurrency, "concurrency", "c", 10, "requests in flight")
	root.PersistentFlags().IntVarP(&requests, "requests", "n", 100, "requests per endpoint")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")

	root.AddCommand(getCmd(), pollCmd())
	return root.Execute()
}

// getCmd: loadtest get <path>...
func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>...",
		Short: "Send GET requests to the given API paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}
}

// pollCmd: loadtest poll; replays what an open browser tab does every few seconds
func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Hit the counters clients poll (notifications and messages)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required for poll")
			}
			return run(cmd, []string{"/notifications/unread-count", "/messages/unread-count"})
		},
	}
}

func run(cmd *cobra.Command, paths []string) error {
	ctx := cmd.Context()
	runner := loadtest.NewRunner(baseURL, concurrency, requests)
	if email != "" {
		if err := runner.Login(ctx, email, password); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var results []*loadtest.Result
	for _, path := range paths {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		result := runner.Run(ctx, "GET", path, nil)
		results = append(results, result)
		if !asJSON {
			result.Print(out)
		}
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if failed(results) {
		fmt.Fprintln(os.Stderr, "es gab fehlgeschlagene Anfragen")
	}
	return nil
}

func failed(results []*loadtest.Result) bool {
	for _, r := range results {
		if r.FailureCount > 0 {
			return true
		}
	}
	return false
}
