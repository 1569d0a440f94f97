package ctl

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"viewportd/pkg/types"
)

// Config carries the persistent CLI settings.
type Config struct {
	Addr string
}

func defaultAddr() string {
	if v := os.Getenv("VIEWPORTCTL_ADDR"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// Execute runs the viewportctl command tree.
func Execute() {
	cfg := &Config{Addr: defaultAddr()}
	root := buildRootCmdWith(cfg)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// buildRootCmdWith constructs the Cobra command tree against the daemon API.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "viewportctl",
		Short:         "Control a running viewportd daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("addr", cfg.Addr, "Base URL of the daemon (defaults VIEWPORTCTL_ADDR or http://127.0.0.1:8080)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("addr"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.Addr = v
			}
		}
	}
	client := func() *Client { return NewClient(strings.TrimRight(cfg.Addr, "/"), nil) }

	// sessions group
	sessionsCmd := &cobra.Command{Use: "sessions", Short: "Manage progressive loading sessions", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("sessions requires a subcommand: create|progress|queue|cancel")
	}}
	var createSeries, createStrategy, createID string
	var createChunkSize, createPriority int
	sessionsCreate := &cobra.Command{Use: "create", Short: "Create a session from a series or explicit item ids", Example: "  viewportctl sessions create --series series-1 --strategy sequential\n  viewportctl sessions create img-1 img-2 img-3", RunE: func(cmd *cobra.Command, args []string) error {
		req := types.CreateSessionRequest{
			SessionID: createID,
			SeriesID:  createSeries,
			ItemIDs:   args,
			Strategy:  createStrategy,
			ChunkSize: createChunkSize,
			Priority:  createPriority,
		}
		resp, err := client().CreateSession(req)
		if err != nil {
			return err
		}
		return printJSON(resp)
	}}
	sessionsCreate.Flags().StringVar(&createID, "id", "", "Session id (generated when empty)")
	sessionsCreate.Flags().StringVar(&createSeries, "series", "", "Series id to load; item args are ignored when set")
	sessionsCreate.Flags().StringVar(&createStrategy, "strategy", "", "Strategy: sequential|adaptive|priority-based|predictive")
	sessionsCreate.Flags().IntVar(&createChunkSize, "chunk-size", 0, "Explicit chunk size (0 = adaptive)")
	sessionsCreate.Flags().IntVar(&createPriority, "priority", 0, "Queue immediately with this priority (1..5, 0 = create only)")

	sessionsProgress := &cobra.Command{Use: "progress <id>", Short: "Show loading progress", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().SessionProgress(args[0])
		if err != nil {
			return err
		}
		return printJSON(resp)
	}}
	var queuePriority int
	sessionsQueue := &cobra.Command{Use: "queue <id>", Short: "Queue a session's chunks for dispatch", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return client().QueueSession(args[0], queuePriority)
	}}
	sessionsQueue.Flags().IntVar(&queuePriority, "priority", 0, "Bulk priority for every chunk (1..5, 0 keeps strategy priorities)")
	sessionsCancel := &cobra.Command{Use: "cancel <id>", Short: "Cancel a session", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return client().CancelSession(args[0])
	}}
	sessionsCmd.AddCommand(sessionsCreate, sessionsProgress, sessionsQueue, sessionsCancel)
	root.AddCommand(sessionsCmd)

	// viewports group
	viewportsCmd := &cobra.Command{Use: "viewports", Short: "Inspect and drive logical viewports", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("viewports requires a subcommand: list|activate|deactivate")
	}}
	viewportsList := &cobra.Command{Use: "list", Short: "List registered viewports", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Viewports()
		if err != nil {
			return err
		}
		return printJSON(resp)
	}}
	var activateImmediate bool
	viewportsActivate := &cobra.Command{Use: "activate <id>", Short: "Activate a viewport", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return client().ActivateViewport(args[0], activateImmediate)
	}}
	viewportsActivate.Flags().BoolVar(&activateImmediate, "immediate", false, "Bypass admission limits")
	viewportsDeactivate := &cobra.Command{Use: "deactivate <id>", Short: "Deactivate a viewport", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return client().DeactivateViewport(args[0])
	}}
	viewportsCmd.AddCommand(viewportsList, viewportsActivate, viewportsDeactivate)
	root.AddCommand(viewportsCmd)

	// pool group
	poolCmd := &cobra.Command{Use: "pool", Short: "Inspect the viewport pool", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("pool requires a subcommand: stats|gc")
	}}
	poolStats := &cobra.Command{Use: "stats", Short: "Show pool occupancy and efficiency", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().PoolStats()
		if err != nil {
			return err
		}
		return printJSON(resp)
	}}
	poolGC := &cobra.Command{Use: "gc", Short: "Trigger a garbage collection pass", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().RunPoolGC()
		if err != nil {
			return err
		}
		return printJSON(resp)
	}}
	poolCmd.AddCommand(poolStats, poolGC)
	root.AddCommand(poolCmd)

	// status
	statusCmd := &cobra.Command{Use: "status", Short: "Show aggregate daemon status", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Status()
		if err != nil {
			return err
		}
		return printJSON(resp)
	}}
	root.AddCommand(statusCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
