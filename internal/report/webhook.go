package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Serdar715/xssctx/internal/config"
)

// Number of findings listed in a webhook message.
const webhookFindings = 5

// SendWebhook posts a short summary to a chat webhook (Discord/Slack style
// {"content": ...} body). Nothing is sent for a clean scan.
func SendWebhook(ctx context.Context, client *http.Client, webhookURL string, result *config.ScanResult) error {
	if webhookURL == "" || len(result.Vulnerabilities) == 0 {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}

	content := fmt.Sprintf("**xssctx scan completed**\nTarget: %s\nFindings: **%d**\nDuration: %s\n\n**Top findings:**",
		result.TargetURL, len(result.Vulnerabilities), result.ScanDuration)
	for i, v := range result.Vulnerabilities {
		if i >= webhookFindings {
			break
		}
		content += fmt.Sprintf("\n- [%s] %s in %s (%s)", v.Severity, v.Context, v.Parameter, v.Type)
	}

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook failed with status: %d", resp.StatusCode)
	}
	return nil
}
