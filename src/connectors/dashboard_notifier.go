package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 4 * time.Second
)

// DashboardEvent is the payload posted to the dashboard webhook.
type DashboardEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// DashboardNotifier posts engine events to an external dashboard. A notifier
// built without a URL drops every event.
type DashboardNotifier struct {
	url  string
	http *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

func NewDashboardNotifier(cfg Config) *DashboardNotifier {
	timeout := cfg.DashboardTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &DashboardNotifier{url: cfg.DashboardWebhookURL, http: httpClient}
}

func (d *DashboardNotifier) Enabled() bool { return d != nil && d.url != "" }

func (d *DashboardNotifier) Notify(ctx context.Context, eventType string, data interface{}) error {
	if !d.Enabled() {
		return nil
	}
	resp, err := d.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(DashboardEvent{Type: eventType, Timestamp: time.Now().UTC(), Data: data}).
		Post(d.url)
	if err != nil {
		logger.WithError(err).WithField("event", eventType).Warn("dashboard notify failed")
		return err
	}
	if resp.IsError() {
		err = fmt.Errorf("dashboard responded %d: %s", resp.StatusCode(), resp.String())
		logger.WithError(err).WithField("event", eventType).Warn("dashboard notify rejected")
		return err
	}
	return nil
}
