// Package orchestrator runs the configured agents one after another and
// reports each completion to the API.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fanoo2/backend/internal/logger"
)

type AgentConfig struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tool   string `json:"tool"`
	Output string `json:"output"`
}

// Known agent ids and the emoji they run under.
var knownAgents = map[string]string{
	"uiux-designer":      "🎨",
	"webrtc-engineer":    "📡",
	"backend-developer":  "⚙️",
	"frontend-developer": "💻",
	"payment-specialist": "💳",
	"moderation-agent":   "🛡️",
	"devops-engineer":    "🚀",
}

// LoadAgents reads {"agents": [...]} from path.
func LoadAgents(path string) ([]AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Agents []AgentConfig `json:"agents"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Agents) == 0 {
		return nil, fmt.Errorf("%s: no agents defined", path)
	}
	for i, a := range doc.Agents {
		if a.ID == "" {
			return nil, fmt.Errorf("%s: agent %d has no id", path, i)
		}
	}
	return doc.Agents, nil
}

// Notifier receives agent state changes
type Notifier interface {
	Notify(ctx context.Context, agentID, status string) error
}

type Runner struct {
	// Delay simulates the work each known agent does.
	Delay    time.Duration
	Notifier Notifier
	Log      *logger.Logger
}

// Run executes agents in order. It stops early only when ctx is done.
func (r *Runner) Run(ctx context.Context, agents []AgentConfig) error {
	log := r.logger()
	log.Info().Int("agents", len(agents)).Msg("starting agent pipeline")

	for _, a := range agents {
		log.Info().Str("agent", a.Name).Str("tool", a.Tool).Msg("invoking agent")

		if emoji, ok := knownAgents[a.ID]; ok {
			log.Info().Msgf("%s running %s with %s", emoji, a.Name, a.Tool)
			if err := r.wait(ctx); err != nil {
				return err
			}
		} else {
			log.Warn().Str("id", a.ID).Msg("unknown agent id")
		}

		log.Info().Str("agent", a.Name).Str("output", a.Output).Msg("agent completed")
		if r.Notifier != nil {
			if err := r.Notifier.Notify(ctx, a.ID, "completed"); err != nil {
				log.Error().Err(err).Str("agent", a.ID).Msg("failed to report completion")
			}
		}
	}

	log.Info().Msg("all agents have completed the pipeline")
	return nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(r.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Runner) logger() *logger.Logger {
	if r.Log == nil {
		return logger.Named("orchestrator")
	}
	return r.Log
}
