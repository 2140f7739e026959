package httpserver

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Fanno AI Platform API</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 40px; background: #f5f5f5; }
    .container { max-width: 800px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; }
    .endpoint { margin: 12px 0; padding: 10px; background: #f8f9fa; border-left: 4px solid #007bff; }
    .method { font-weight: bold; color: #007bff; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Fanno AI Platform API</h1>
    <h2>Available Endpoints</h2>
    <div class="endpoint"><span class="method">GET</span> <code>/health</code> - Health check</div>
    <div class="endpoint"><span class="method">GET</span> <code>/health/ready</code> - Dependency checks</div>
    <div class="endpoint"><span class="method">POST</span> <code>/api/annotate</code> - Annotate text with AI analysis<br><small>Body: {"text": "your text here"}</small></div>
    <div class="endpoint"><span class="method">GET</span> <code>/api/annotations</code> - Get recent annotations</div>
    <div class="endpoint"><span class="method">GET</span> <code>/api/stats</code> - Get platform statistics</div>
    <div class="endpoint"><span class="method">GET</span> <code>/api/agents</code> - Get all agents</div>
    <div class="endpoint"><span class="method">GET</span> <code>/api/phases</code> - Get project phases</div>
    <div class="endpoint"><span class="method">GET</span> <code>/api/workflows</code> - Get all workflows</div>
    <div class="endpoint"><span class="method">GET</span> <code>/api/activities</code> - Get recent activities</div>
    <div class="endpoint"><span class="method">POST</span> <code>/api/rtc/token</code> - Issue a LiveKit room token</div>
    <div class="endpoint"><span class="method">POST</span> <code>/payments/create-session</code> - Create a Stripe checkout session</div>
    <p><strong>Status:</strong> Service is running and ready to accept requests.</p>
  </div>
</body>
</html>
`

// GET /
func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}
