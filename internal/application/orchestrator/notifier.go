package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPNotifier posts agent events to the API's /agent-events endpoint.
type HTTPNotifier struct {
	URL     string
	Version string
	Client  *http.Client
}

func NewHTTPNotifier(url, version string) *HTTPNotifier {
	return &HTTPNotifier{URL: url, Version: version, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (n *HTTPNotifier) Notify(ctx context.Context, agentID, status string) error {
	body, err := json.Marshal(map[string]string{"agent": agentID, "status": status, "version": n.Version})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("agent event rejected: %s", resp.Status)
	}
	return nil
}
