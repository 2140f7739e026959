// Package github triggers GitHub Actions workflow_dispatch runs.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fanoo2/backend/internal/domain/integrations"
)

const defaultAPIURL = "https://api.github.com"

type Options struct {
	Token    string
	Owner    string
	Repo     string
	Workflow string
	Ref      string
	APIURL   string
	Timeout  time.Duration
}

type Dispatcher struct {
	opt  Options
	http *http.Client
}

func NewDispatcher(opt Options) *Dispatcher {
	if opt.APIURL == "" {
		opt.APIURL = defaultAPIURL
	}
	if opt.Ref == "" {
		opt.Ref = "main"
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{opt: opt, http: &http.Client{Timeout: timeout}}
}

// Dispatch posts a workflow_dispatch event. GitHub answers 204 on success.
func (d *Dispatcher) Dispatch(ctx context.Context, inputs map[string]string) error {
	if d.opt.Token == "" || d.opt.Owner == "" || d.opt.Repo == "" || d.opt.Workflow == "" {
		return integrations.ErrDisabled
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches",
		d.opt.APIURL, url.PathEscape(d.opt.Owner), url.PathEscape(d.opt.Repo), url.PathEscape(d.opt.Workflow))

	body, err := json.Marshal(map[string]any{"ref": d.opt.Ref, "inputs": inputs})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.opt.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch workflow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("dispatch workflow: github returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
