package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/apicall"
	"github.com/abdul-hamid-achik/hitcall/packages/core/interpolate"
	"github.com/abdul-hamid-achik/hitcall/packages/core/logging"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/abdul-hamid-achik/hitcall/packages/suite"
)

// waitForService polls a URL through the transport until it returns the
// expected status code or times out. The URL may hold placeholders.
func (r *Runner) waitForService(ctx context.Context, cfg *suite.WaitFor, data *value.Object) error {
	resolved, err := interpolate.Interpolate(cfg.URL, data)
	if err != nil {
		return err
	}
	if resolved == nil {
		return fmt.Errorf("wait_for: unresolved placeholder in %s", cfg.URL)
	}
	url := value.Format(resolved)

	r.logger.Info("waiting for service", logging.URLKey, url, logging.StatusKey, cfg.Status, "timeout", cfg.Timeout)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	var lastErr error
	var lastStatus int

	for {
		rec, err := r.transport.Execute(ctx, &apicall.Request{Method: "GET", URL: url})
		if err != nil {
			lastErr = err
		} else {
			lastStatus = rec.Status
			if rec.Status == cfg.Status {
				r.logger.Info("service is ready", logging.URLKey, url, logging.StatusKey, rec.Status)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if lastStatus == 0 && lastErr != nil {
				return fmt.Errorf("service %s not ready after %v: %w", url, cfg.Timeout, lastErr)
			}
			return fmt.Errorf("service %s not ready after %v: got status %d, expected %d",
				url, cfg.Timeout, lastStatus, cfg.Status)
		case <-ticker.C:
		}
	}
}
