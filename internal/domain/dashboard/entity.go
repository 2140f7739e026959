package dashboard

import "time"

// Status values used across dashboard entities.
const (
	StatusActive      = "active"
	StatusConfiguring = "configuring"
	StatusPending     = "pending"
	StatusError       = "error"
	StatusInProgress  = "in-progress"
	StatusComplete    = "complete"
	StatusHealthy     = "healthy"
	StatusWarning     = "warning"
)

// Activity types
const (
	ActivityInfo    = "info"
	ActivitySuccess = "success"
	ActivityWarning = "warning"
	ActivityError   = "error"
)

// Agent is one simulated AI agent shown on the dashboard.
type Agent struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"` // ui-ux | webrtc | backend | frontend | payment | moderation | devops
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Config      map[string]any `json:"config"`
	Emoji       string         `json:"emoji"`
	Provider    string         `json:"provider"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// AgentPatch carries the fields a client may change. Nil means unchanged.
type AgentPatch struct {
	Name        *string        `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string        `json:"description" validate:"omitempty,max=500"`
	Status      *string        `json:"status" validate:"omitempty,oneof=pending configuring active error"`
	Config      map[string]any `json:"config"`
	Emoji       *string        `json:"emoji" validate:"omitempty,max=16"`
	Provider    *string        `json:"provider" validate:"omitempty,max=120"`
}

// Apply returns a copy of a with the patch applied.
func (p AgentPatch) Apply(a Agent, now time.Time) Agent {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Config != nil {
		a.Config = p.Config
	}
	if p.Emoji != nil {
		a.Emoji = *p.Emoji
	}
	if p.Provider != nil {
		a.Provider = *p.Provider
	}
	a.LastUpdated = now
	return a
}

type Phase struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"` // 0-100
	Order       int    `json:"order"`
}

type CodeRepository struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	IsPrivate bool   `json:"isPrivate"`
}

type ServiceHealth struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	LastCheck time.Time `json:"lastCheck"`
}

type Activity struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

type Workflow struct {
	ID          int64  `json:"id"`
	FromAgent   string `json:"fromAgent"`
	ToAgent     string `json:"toAgent"`
	Description string `json:"description"`
	Artifact    string `json:"artifact"`
	Status      string `json:"status"`
}

// Stats summarizes the dashboard header.
type Stats struct {
	ActiveAgents   int `json:"activeAgents"`
	CompletedTasks int `json:"completedTasks"`
	Progress       int `json:"progress"`
}
