package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/obsidianstack/statuspanels/agent/internal/status"
)

// deliver sends a to all configured targets. Errors are logged but do not
// affect the caller.
func (e *Engine) deliver(a Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = e.sendSlack(url, a)
		case "teams":
			err = e.sendTeams(url, a)
		case "http":
			err = e.sendHTTP(url, a)
		default:
			slog.Warn("alerts: unknown webhook type, skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type,
				"panel", a.PanelID,
				"series", a.Series,
				"err", err,
			)
		} else {
			slog.Debug("alerts: webhook delivered",
				"type", wh.Type,
				"panel", a.PanelID,
				"state", a.State,
			)
		}
	}
}

func (e *Engine) sendSlack(url string, a Alert) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s* %s", label(a), a.Message),
	})
	return e.post(url, body)
}

func (e *Engine) sendTeams(url string, a Alert) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": color(a),
		"summary":    a.PanelID,
		"title":      fmt.Sprintf("Status panel %s: %s", a.PanelID, a.State),
		"text":       a.Message,
	}
	body, _ := json.Marshal(payload)
	return e.post(url, body)
}

func (e *Engine) sendHTTP(url string, a Alert) error {
	body, _ := json.Marshal(map[string]interface{}{"alert": a})
	return e.post(url, body)
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func label(a Alert) string {
	if a.State == StateResolved {
		return "[RESOLVED]"
	}
	if a.Level == string(status.LevelError) {
		return "[ERROR]"
	}
	return "[WARNING]"
}

// color uses the stock level colors, without the leading '#'.
func color(a Alert) string {
	switch {
	case a.State == StateResolved:
		return status.ColorHealthy[1:]
	case a.Level == string(status.LevelError):
		return status.ColorError[1:]
	default:
		return status.ColorWarning[1:]
	}
}
