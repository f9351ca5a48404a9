// Package notify delivers report summaries to Slack: a short webhook message
// per run, plus an optional file upload of the rendered artifact.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"unifi-report/internal/models"
)

// totalsOrder is the allowlist of resources included in the message, in this
// fixed order. Anything else in the report's totals stays out of chat.
var totalsOrder = []string{"events", "alarms", "clients", "devices", "users", "wlan"}

// messageTopN bounds the SSID and client entries included in the message.
const messageTopN = 3

// Options configures a SlackClient.
type Options struct {
	WebhookURL string
	Token      string
	Channels   []string
	UploadURL  string
	Timeout    time.Duration
}

// SlackClient posts summaries and uploads artifacts. All delivery is
// best-effort: callers decide whether a returned error is fatal (it never is
// for the notify stage).
type SlackClient struct {
	http *resty.Client
	opts Options

	logger *zap.Logger
}

// NewSlackClient creates a client. Outbound calls use a fixed short timeout
// and no retries; a failed delivery is reported once, not hammered.
func NewSlackClient(opts Options, logger *zap.Logger) *SlackClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(opts.Timeout)

	return &SlackClient{
		http:   client,
		opts:   opts,
		logger: logger,
	}
}

// BuildMessage renders the plaintext summary message: header, allowlisted
// totals, then up to three SSIDs and clients as "name (count)".
func BuildMessage(report *models.Report) string {
	lines := []string{"UniFi export summary"}

	if report != nil {
		var totals []string
		for _, resource := range totalsOrder {
			if count, ok := report.Totals[resource]; ok {
				totals = append(totals, fmt.Sprintf("%s: %d", resource, count))
			}
		}
		if len(totals) > 0 {
			lines = append(lines, "Totals: "+strings.Join(totals, ", "))
		}
		if top := formatPairs(report.TopSSIDs); top != "" {
			lines = append(lines, "Top SSIDs: "+top)
		}
		if top := formatPairs(report.TopClients); top != "" {
			lines = append(lines, "Top Clients: "+top)
		}
	}

	return strings.Join(lines, "\n")
}

func formatPairs(pairs []models.CountPair) string {
	var parts []string
	for i, p := range pairs {
		if i >= messageTopN {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", p.Name, p.Count))
	}
	return strings.Join(parts, ", ")
}

// PostSummary builds and posts the summary message to the webhook. A missing
// webhook URL is a successful no-op. Transport errors and non-2xx responses
// are returned to the caller, which treats them as soft failures.
func (c *SlackClient) PostSummary(ctx context.Context, report *models.Report) error {
	return c.PostText(ctx, BuildMessage(report))
}

// PostText posts an arbitrary message to the webhook.
func (c *SlackClient) PostText(ctx context.Context, text string) error {
	if c.opts.WebhookURL == "" {
		c.logger.Info("No webhook configured, skipping notification")
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		Post(c.opts.WebhookURL)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook post returned status %d", resp.StatusCode())
	}

	c.logger.Info("Posted summary notification", zap.Int("status", resp.StatusCode()))
	return nil
}

// uploadResponse is the envelope of the Slack upload API.
type uploadResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// UploadArtifact sends the file at path as an attachment to the configured
// channels. Without a token and at least one channel the upload is skipped
// and reported as success — credentials are optional for this pipeline.
func (c *SlackClient) UploadArtifact(ctx context.Context, path string) error {
	if c.opts.Token == "" || len(c.opts.Channels) == 0 {
		c.logger.Info("Upload credentials not configured, skipping upload",
			zap.String("file", path))
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.opts.Token).
		SetFile("file", path).
		SetFormData(map[string]string{
			"channels":        strings.Join(c.opts.Channels, ","),
			"initial_comment": "UniFi export report",
		}).
		Post(c.opts.UploadURL)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("upload returned status %d", resp.StatusCode())
	}

	var body uploadResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("failed to parse upload response: %w", err)
	}
	if !body.OK {
		return fmt.Errorf("upload rejected: %s", body.Error)
	}

	c.logger.Info("Uploaded report artifact",
		zap.String("file", path),
		zap.Strings("channels", c.opts.Channels))
	return nil
}
