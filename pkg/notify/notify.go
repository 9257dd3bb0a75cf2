// Package notify delivers notification messages for fired triggers through
// an external notification service. One outbound call at a time, no
// automatic retries: a failed delivery leaves its tracking active so the
// next pipeline run retries it naturally.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/featwatch/featwatch/pkg/trigger"
)

// Notification is one outbound message.
type Notification struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	FeatureURL string `json:"featureUrl,omitempty"`
}

// Dispatcher sends notifications. The pipeline only depends on this
// interface; the HTTP implementation below is the default.
type Dispatcher interface {
	Send(ctx context.Context, n Notification) error
}

// HTTPDispatcher posts notifications to the configured service endpoint.
type HTTPDispatcher struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPDispatcher builds a dispatcher. Missing credentials are a fatal
// configuration error, not a retryable condition.
func NewHTTPDispatcher(endpoint, token string) (*HTTPDispatcher, error) {
	if endpoint == "" {
		return nil, errors.New("notification endpoint is not configured")
	}
	if token == "" {
		return nil, errors.New("notification token is not configured")
	}
	return &HTTPDispatcher{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (d *HTTPDispatcher) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.token)

	res, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("notification service returned %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Build assembles the single batched message for everything that fired on
// one tracking.
func Build(t trigger.Tracking, fired []trigger.Trigger, appURL string) Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Your tracked feature %q has crossed %d of your conditions:\n\n", t.FeatureTitle, len(fired))
	for _, tr := range fired {
		fmt.Fprintf(&b, "  • %s\n", tr.String())
	}
	featureURL := strings.TrimRight(appURL, "/") + "/features/" + t.FeatureID
	fmt.Fprintf(&b, "\nSee the full support picture: %s\n", featureURL)

	return Notification{
		To:         t.Contact,
		Subject:    fmt.Sprintf("featwatch: %s update", t.FeatureTitle),
		Body:       b.String(),
		FeatureURL: featureURL,
	}
}
