package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shelver/internal/config"
)

const userAgent = "shelver/0.1.0"

// Service defines the notification surface exposed to the plan service.
type Service interface {
	NotifyPlanFailed(ctx context.Context, batchDir string, err error) error
	NotifyExecutionCompleted(ctx context.Context, batchDir string, moved, failed int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyPlanFailed(ctx context.Context, batchDir string, err error) error {
	var builder strings.Builder
	builder.WriteString("Could not plan ")
	if batchDir = strings.TrimSpace(batchDir); batchDir != "" {
		builder.WriteString(batchDir)
	} else {
		builder.WriteString("batch")
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}
	builder.WriteString("\nManual review required")

	return n.send(ctx, payload{
		title:    "Shelver - Plan Failed",
		message:  builder.String(),
		tags:     []string{"shelver", "plan", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyExecutionCompleted(ctx context.Context, batchDir string, moved, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	batchDir = strings.TrimSpace(batchDir)
	if batchDir == "" {
		batchDir = "batch"
	}

	data := payload{
		title:   "Shelver - Library Updated",
		message: fmt.Sprintf("Shelved %s: %d moved in %s", batchDir, moved, duration),
		tags:    []string{"shelver", "execute", "completed"},
	}
	if failed > 0 {
		data.title = "Shelver - Library Updated (with errors)"
		data.message = fmt.Sprintf("Shelved %s: %d moved, %d failed in %s", batchDir, moved, failed, duration)
		data.tags = []string{"shelver", "execute", "partial"}
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Shelver - Test",
		message:  "Notification system test",
		tags:     []string{"shelver", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyPlanFailed(context.Context, string, error) error { return nil }
func (noopService) NotifyExecutionCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}
func (noopService) TestNotification(context.Context) error { return nil }
