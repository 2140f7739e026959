/*
Package main is the agent pipeline orchestrator.

It reads an agents file and runs each agent in order, optionally reporting
completions to the API's /agent-events endpoint.

Usage:

	orchestrator run --agents agents.json [--delay 2s] [--events-url URL] [--version 1.0.0]
	orchestrator list --agents agents.json
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fanoo2/backend/internal/application/orchestrator"
	"github.com/fanoo2/backend/internal/logger"
)

func main() {
	var agentsPath, logLevel string

	rootCmd := &cobra.Command{
		Use:   "orchestrator",
		Short: "Run the Fanno agent pipeline",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logger.Options{Level: logLevel, Format: "console", Service: "orchestrator"})
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&agentsPath, "agents", "a", "agents.json", "Path to the agents file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")

	rootCmd.AddCommand(newRunCmd(&agentsPath), newListCmd(&agentsPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd(agentsPath *string) *cobra.Command {
	var (
		delay     time.Duration
		eventsURL string
		version   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every agent in order",
		Example: `  orchestrator run --agents agents.json
  orchestrator run --delay 500ms --events-url http://localhost:5000/agent-events --version 1.2.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			agents, err := orchestrator.LoadAgents(*agentsPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := &orchestrator.Runner{Delay: delay, Log: logger.Named("orchestrator")}
			if eventsURL != "" {
				runner.Notifier = orchestrator.NewHTTPNotifier(eventsURL, version)
			}
			return runner.Run(ctx, agents)
		},
	}

	cmd.Flags().DurationVarP(&delay, "delay", "d", 2*time.Second, "Simulated work per agent")
	cmd.Flags().StringVar(&eventsURL, "events-url", "", "POST completion events to this URL")
	cmd.Flags().StringVar(&version, "version", "", "Version reported with completion events")

	return cmd
}

func newListCmd(agentsPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the agents in the agents file",
		RunE: func(cmd *cobra.Command, args []string) error {
			agents, err := orchestrator.LoadAgents(*agentsPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Agents (%d):\n\n", len(agents))
			for i, a := range agents {
				fmt.Fprintf(out, "  %d. %s (%s)\n     tool: %s\n     output: %s\n", i+1, a.Name, a.ID, a.Tool, a.Output)
			}
			return nil
		},
	}
}
