package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Notifier delivers a text message to a recipient identifier (a LINE user
// id here). Implementations must be safe for concurrent use.
type Notifier interface {
	Push(to, text string) error
}

// notifier is rebound in main after the environment is loaded.
var notifier Notifier = noopNotifier{}

// newNotifierFromEnv returns the LINE push client when LINE_PUSH_URL is
// configured, otherwise a logging no-op so the notify action still records
// its action log in development.
func newNotifierFromEnv() Notifier {
	url := os.Getenv("LINE_PUSH_URL")
	if url == "" {
		return noopNotifier{}
	}
	return &lineNotifier{
		url:    url,
		token:  os.Getenv("LINE_CHANNEL_TOKEN"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type noopNotifier struct{}

func (noopNotifier) Push(to, text string) error {
	logg.WithField("to", to).Info("notifier not configured; message not sent")
	return nil
}

// lineNotifier posts a push message to the LINE Messaging API (or any
// compatible endpoint set in LINE_PUSH_URL).
type lineNotifier struct {
	url    string
	token  string
	client *http.Client
}

func (n *lineNotifier) Push(to, text string) error {
	payload := map[string]interface{}{
		"to": to,
		"messages": []map[string]string{
			{"type": "text", "text": text},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("line push failed: status %d", resp.StatusCode)
	}
	return nil
}
