package controlplane

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// LogEvent is one build-log line from the revision log stream
type LogEvent struct {
	SeqNo     int    `json:"seq_no"`
	Content   string `json:"content"`
	LogOutput string `json:"log_output"` // stdout or stderr
	Timestamp string `json:"timestamp"`
}

// StreamRevisionLogs streams a revision's build logs to output via
// Server-Sent Events. It returns nil when the stream ends (either "event:
// end" or a clean EOF) and an error on transport or status failures.
//
// The streaming connection bypasses the retrying client: an SSE stream has no
// per-call timeout and must not be replayed mid-stream.
func (c *Client) StreamRevisionLogs(ctx context.Context, deploymentID, revisionID string, output io.Writer) error {
	if deploymentID == "" || revisionID == "" {
		return fmt.Errorf("deployment ID and revision ID cannot be empty")
	}

	// Force HTTP/1.1: HTTP/2 stream resets through intermediary proxies
	// break long-lived SSE connections
	transport := &http.Transport{
		ForceAttemptHTTP2: false,
		TLSClientConfig: &tls.Config{
			NextProtos: []string{"http/1.1"},
		},
	}
	streamClient := &http.Client{
		Timeout:   0, // No timeout for SSE streaming
		Transport: transport,
	}

	url := fmt.Sprintf("%s/v2/deployments/%s/revisions/%s/logs/stream",
		c.baseURL, deploymentID, revisionID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "text/event-stream")
	if c.workspaceID != "" {
		req.Header.Set("x-workspace-id", c.workspaceID)
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	reader := bufio.NewReader(resp.Body)
	var currentEvent string

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		line = strings.TrimSpace(line)

		// Empty line marks end of event
		if line == "" {
			currentEvent = ""
			continue
		}

		if strings.HasPrefix(line, "event:") {
			currentEvent = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			if currentEvent == "end" {
				return nil
			}
			continue
		}

		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" || currentEvent == "end" {
				continue
			}

			var event LogEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				// Non-JSON payloads are passed through verbatim
				fmt.Fprintln(output, data)
				continue
			}
			fmt.Fprintln(output, event.Content)
		}
	}
}
