package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fanoo2/backend/internal/config"
	domain "github.com/fanoo2/backend/internal/domain/dashboard"
)

// Integrations records which credentials are present. Secrets never reach
// the store; only their presence does.
type Integrations struct {
	OpenAI            bool
	Database          bool
	StripeSecret      bool
	StripePublishable bool
	StripeWebhook     bool
	LiveKitURL        string
	LiveKitKeys       bool
	GitHubToken       bool
	FrontendURL       string
	Environment       string
	APIPort           int
}

func IntegrationsFrom(cfg *config.Config) Integrations {
	return Integrations{
		OpenAI:            cfg.OpenAI.APIKey != "",
		Database:          cfg.Storage.Driver != "memory",
		StripeSecret:      cfg.Stripe.SecretKey != "",
		StripePublishable: cfg.Stripe.PublishableKey != "",
		StripeWebhook:     cfg.Stripe.WebhookSecret != "",
		LiveKitURL:        cfg.LiveKit.URL,
		LiveKitKeys:       cfg.LiveKit.APIKey != "" && cfg.LiveKit.APISecret != "",
		GitHubToken:       cfg.GitHub.ActionsToken != "",
		FrontendURL:       cfg.Server.FrontendURL,
		Environment:       cfg.Environment,
		APIPort:           cfg.Server.Port,
	}
}

// DashboardStore keeps every dashboard entity in maps behind one lock.
type DashboardStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	nextID     int64
	agents     map[int64]*domain.Agent
	agentOrder []int64
	phases     []*domain.Phase
	repos      []*domain.CodeRepository
	services   []*domain.ServiceHealth
	activities []*domain.Activity
	workflows  []*domain.Workflow
}

func NewDashboardStore(in Integrations, now func() time.Time) *DashboardStore {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	s := &DashboardStore{now: now, agents: map[int64]*domain.Agent{}}
	s.seed(in)
	return s
}

func (s *DashboardStore) id() int64 {
	s.nextID++
	return s.nextID
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return ""
}

func pick(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func (s *DashboardStore) seed(in Integrations) {
	now := s.now()
	frontend := in.FrontendURL
	if frontend == "" {
		frontend = "http://localhost:3000"
	}
	liveKitURL := in.LiveKitURL
	if liveKitURL == "" {
		liveKitURL = "wss://localhost:7880"
	}
	env := in.Environment
	if env == "" {
		env = "development"
	}
	port := in.APIPort
	if port == 0 {
		port = 5000
	}

	agents := []domain.Agent{
		{
			Type: "ui-ux", Name: "UI/UX Designer", Emoji: "🎨",
			Description: "FigmaAI + Uizard for design system automation",
			Provider:    "FigmaAI + Uizard", Status: domain.StatusActive,
			Config: map[string]any{"tool": "FigmaAI+Uizard", "output": "npm:@org/design-system", "npmRegistry": "https://npm.pkg.github.com"},
		},
		{
			Type: "webrtc", Name: "WebRTC Engineer", Emoji: "📡",
			Description: "LiveKitCLI + AgoraAI for real-time communication",
			Provider:    "LiveKitCLI + AgoraAI",
			Status:      pick(in.LiveKitKeys, domain.StatusActive, domain.StatusConfiguring),
			Config: map[string]any{
				"tool": "LiveKitCLI+AgoraAI", "output": "docker:webrtc-service",
				"liveKitUrl": liveKitURL, "liveKitApiKey": configured(in.LiveKitKeys), "liveKitApiSecret": configured(in.LiveKitKeys),
			},
		},
		{
			Type: "backend", Name: "Backend Developer", Emoji: "⚙️",
			Description: "Copilot + OpenAI Functions for backend development",
			Provider:    "Copilot + OpenAI Functions", Status: domain.StatusActive,
			Config: map[string]any{
				"tool": "Copilot+OpenAIFunctions", "output": "docker:backend-api",
				"openaiKey": configured(in.OpenAI), "databaseUrl": configured(in.Database),
				"apiPort": port, "apiHost": "0.0.0.0",
			},
		},
		{
			Type: "frontend", Name: "Frontend Developer", Emoji: "💻",
			Description: "Locofy + MutableAI for frontend development",
			Provider:    "Locofy + MutableAI", Status: domain.StatusActive,
			Config: map[string]any{
				"tool": "Locofy+MutableAI", "output": "src/pages/**/*.tsx", "frontendUrl": frontend,
				"features": map[string]any{"chat": true, "gifts": true, "livePreview": true, "realTimeNotifications": true},
			},
		},
		{
			Type: "payment", Name: "Payment Specialist", Emoji: "💳",
			Description: "StripeIQ + PlaidAI for payment processing",
			Provider:    "StripeIQ + PlaidAI",
			Status:      pick(in.StripeSecret && in.StripePublishable, domain.StatusActive, domain.StatusConfiguring),
			Config: map[string]any{
				"tool": "StripeIQ+PlaidAI", "output": "npm:@fanno/payments-workspace",
				"stripePublishableKey": configured(in.StripePublishable), "stripeSecretKey": configured(in.StripeSecret),
				"webhookSecret": configured(in.StripeWebhook), "currency": "USD",
				"successUrl": frontend + "/success", "cancelUrl": frontend + "/cancel",
			},
		},
		{
			Type: "moderation", Name: "Moderation Agent", Emoji: "🛡️",
			Description: "OpenAI + PerspectiveAPI for content moderation",
			Provider:    "OpenAI + PerspectiveAPI",
			Status:      pick(in.OpenAI, domain.StatusActive, domain.StatusConfiguring),
			Config: map[string]any{
				"tool": "OpenAI+PerspectiveAPI", "output": "npm:@fanno/moderation-service",
				"openaiKey": configured(in.OpenAI), "toxicityThreshold": 0.8, "adultContentThreshold": 0.7,
				"enableAutoModeration": true,
			},
		},
		{
			Type: "devops", Name: "DevOps Engineer", Emoji: "🚀",
			Description: "HarnessAI + Humanitec for DevOps automation",
			Provider:    "HarnessAI + Humanitec",
			Status:      pick(in.GitHubToken, domain.StatusActive, domain.StatusPending),
			Config: map[string]any{
				"tool": "HarnessAI+Humanitec", "output": "k8s:deployment-manifests",
				"githubToken": configured(in.GitHubToken), "deploymentEnvironment": env,
			},
		},
	}
	for i := range agents {
		a := agents[i]
		a.ID = s.id()
		a.LastUpdated = now
		s.agents[a.ID] = &a
		s.agentOrder = append(s.agentOrder, a.ID)
	}

	for _, p := range []domain.Phase{
		{Name: "Phase 0: Organizational Setup", Description: "GitHub organization, registries, and namespace configuration", Status: domain.StatusComplete, Progress: 100, Order: 0},
		{Name: "Phase 1: Define & Configure AI Agents", Description: "Configure 7 specialized AI agents for platform automation", Status: domain.StatusInProgress, Progress: 85, Order: 1},
		{Name: "Phase 2: Agent Hand-Off Blueprints", Description: "Establish communication patterns between agents", Status: domain.StatusInProgress, Progress: 35, Order: 2},
		{Name: "Phase 3: Integration & Verification", Description: "Testing, monitoring, and security automation", Status: domain.StatusPending, Progress: 15, Order: 3},
	} {
		p.ID = s.id()
		s.phases = append(s.phases, &p)
	}

	for _, r := range []domain.CodeRepository{
		{Name: "design-system", Status: domain.StatusActive, IsPrivate: true},
		{Name: "webrtc-client", Status: domain.StatusActive, IsPrivate: true},
		{Name: "backend", Status: domain.StatusActive, IsPrivate: true},
		{Name: "frontend", Status: domain.StatusActive, IsPrivate: true},
		{Name: "payments", Status: pick(in.StripeSecret, domain.StatusActive, domain.StatusWarning), IsPrivate: true},
		{Name: "moderation", Status: domain.StatusActive, IsPrivate: true},
	} {
		r.ID = s.id()
		s.repos = append(s.repos, &r)
	}

	for _, sv := range []domain.ServiceHealth{
		{Name: "API Gateway", Status: domain.StatusHealthy},
		{Name: "Database", Status: pick(in.Database, domain.StatusHealthy, domain.StatusWarning)},
		{Name: "WebRTC SFU", Status: pick(in.LiveKitURL != "", domain.StatusHealthy, domain.StatusWarning)},
		{Name: "Payment Service", Status: pick(in.StripeSecret, domain.StatusHealthy, domain.StatusWarning)},
		{Name: "Moderation AI", Status: pick(in.OpenAI, domain.StatusHealthy, domain.StatusWarning)},
	} {
		sv.ID = s.id()
		sv.LastCheck = now
		s.services = append(s.services, &sv)
	}

	for _, a := range []domain.Activity{
		{Title: "Real agent data loaded successfully", Type: domain.ActivitySuccess},
		{Title: "Backend API endpoints updated with production data", Type: domain.ActivitySuccess},
		{Title: "Payment agent " + pick(in.StripeSecret, "configured", "pending configuration"), Type: pick(in.StripeSecret, domain.ActivitySuccess, domain.ActivityWarning)},
		{Title: "Database " + pick(in.Database, "connected", "using in-memory fallback"), Type: pick(in.Database, domain.ActivitySuccess, domain.ActivityInfo)},
		{Title: "WebRTC " + pick(in.LiveKitURL != "", "service ready", "configuration needed"), Type: pick(in.LiveKitURL != "", domain.ActivitySuccess, domain.ActivityWarning)},
		{Title: "Frontend integration verified", Type: domain.ActivitySuccess},
	} {
		a.ID = s.id()
		a.Timestamp = now
		s.activities = append(s.activities, &a)
	}

	for _, w := range []domain.Workflow{
		{FromAgent: "UI/UX Designer", ToAgent: "Frontend Developer", Description: "Design tokens and component library", Artifact: "@org/design-system", Status: domain.StatusActive},
		{FromAgent: "Backend Developer", ToAgent: "Frontend Developer", Description: "API specification and SDKs", Artifact: "openapi.yaml", Status: domain.StatusActive},
		{FromAgent: "Payment Specialist", ToAgent: "Backend Developer", Description: "Payment processing integration", Artifact: "stripe-webhook-handlers", Status: pick(in.StripeSecret, domain.StatusActive, domain.StatusPending)},
		{FromAgent: "WebRTC Engineer", ToAgent: "Frontend Developer", Description: "Real-time communication client", Artifact: "@fanno/webrtc-client", Status: pick(in.LiveKitURL != "", domain.StatusActive, domain.StatusPending)},
		{FromAgent: "DevOps Engineer", ToAgent: "All Agents", Description: "Deployment and monitoring automation", Artifact: "k8s:deployment-manifests", Status: pick(in.GitHubToken, domain.StatusActive, domain.StatusPending)},
	} {
		w.ID = s.id()
		s.workflows = append(s.workflows, &w)
	}
}

func cloneAgent(a *domain.Agent) *domain.Agent {
	cp := *a
	if a.Config != nil {
		cp.Config = make(map[string]any, len(a.Config))
		for k, v := range a.Config {
			cp.Config[k] = v
		}
	}
	return &cp
}

func (s *DashboardStore) ListAgents(ctx context.Context) ([]*domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Agent, 0, len(s.agentOrder))
	for _, id := range s.agentOrder {
		out = append(out, cloneAgent(s.agents[id]))
	}
	return out, nil
}

func (s *DashboardStore) GetAgent(ctx context.Context, id int64) (*domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAgent(a), nil
}

func (s *DashboardStore) UpdateAgent(ctx context.Context, id int64, patch domain.AgentPatch) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	updated := patch.Apply(*a, s.now())
	s.agents[id] = &updated
	return cloneAgent(&updated), nil
}

// ListPhases returns phases ordered by their Order field.
func (s *DashboardStore) ListPhases(ctx context.Context) ([]*domain.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Phase, 0, len(s.phases))
	for _, p := range s.phases {
		cp := *p
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *DashboardStore) ListRepositories(ctx context.Context) ([]*domain.CodeRepository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.CodeRepository, 0, len(s.repos))
	for _, r := range s.repos {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *DashboardStore) ListServices(ctx context.Context) ([]*domain.ServiceHealth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ServiceHealth, 0, len(s.services))
	for _, sv := range s.services {
		cp := *sv
		out = append(out, &cp)
	}
	return out, nil
}

func (s *DashboardStore) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Workflow, 0, len(s.workflows))
	for _, w := range s.workflows {
		cp := *w
		out = append(out, &cp)
	}
	return out, nil
}

// RecentActivities returns newest first; ties on timestamp go to the higher id.
func (s *DashboardStore) RecentActivities(ctx context.Context, limit int) ([]*domain.Activity, error) {
	s.mu.RLock()
	out := make([]*domain.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		cp := *a
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *DashboardStore) CreateActivity(ctx context.Context, title, kind string) (*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &domain.Activity{ID: s.id(), Title: title, Type: kind, Timestamp: s.now()}
	s.activities = append(s.activities, a)
	cp := *a
	return &cp, nil
}
