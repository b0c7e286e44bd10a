package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"resumechat/internal/convert"
	"resumechat/internal/core"
)

// AssistantResponder runs the thread → run → poll → latest message protocol
type AssistantResponder struct {
	client       *Client
	assistantID  string
	pollInterval time.Duration
	maxPollWait  time.Duration
	clock        Clock
	metrics      core.MetricsCollector
	logger       core.Logger
}

// AssistantConfig configuration for AssistantResponder
type AssistantConfig struct {
	Client       *Client
	AssistantID  string
	PollInterval time.Duration
	MaxPollWait  time.Duration
	Clock        Clock
	Metrics      core.MetricsCollector
	Logger       core.Logger
}

// NewAssistantResponder creates a thread/run responder
func NewAssistantResponder(cfg AssistantConfig) *AssistantResponder {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = core.DefaultPollInterval
	}
	if cfg.MaxPollWait <= 0 {
		cfg.MaxPollWait = core.DefaultMaxPollWait
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &core.NopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = &core.NopLogger{}
	}
	return &AssistantResponder{
		client:       cfg.Client,
		assistantID:  cfg.AssistantID,
		pollInterval: cfg.PollInterval,
		maxPollWait:  cfg.MaxPollWait,
		clock:        cfg.Clock,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}
}

// Protocol implements core.Responder
func (r *AssistantResponder) Protocol() string {
	return core.ProtocolAssistant
}

// Reply implements core.Responder
func (r *AssistantResponder) Reply(ctx context.Context, message string) (string, error) {
	var thread core.Thread
	if err := r.client.Do(ctx, core.OpCreateThread, http.MethodPost, core.PathThreads, convert.ThreadRequest(message), &thread); err != nil {
		return "", err
	}
	if thread.ID == "" {
		return "", core.ErrBadGateway(errors.New("create thread: response has no id"))
	}

	var run core.Run
	runsPath := fmt.Sprintf(core.PathRunsFormat, thread.ID)
	if err := r.client.Do(ctx, core.OpCreateRun, http.MethodPost, runsPath, convert.RunRequest(r.assistantID), &run); err != nil {
		return "", err
	}
	if run.ID == "" {
		return "", core.ErrBadGateway(errors.New("create run: response has no id"))
	}

	status, err := r.waitForRun(ctx, thread.ID, run)
	if err != nil {
		return "", err
	}
	if status != core.RunStatusCompleted {
		r.logger.Warn("Run %s on thread %s finished with status %q", run.ID, thread.ID, status)
		return "", core.ErrUpstreamRunFailed(status)
	}

	var list core.MessageList
	if err := r.client.Do(ctx, core.OpListMessages, http.MethodGet, fmt.Sprintf(core.PathMessagesFormat, thread.ID), nil, &list); err != nil {
		return "", err
	}
	return convert.ThreadReply(&list), nil
}

// waitForRun polls until the run leaves queued/in_progress, bounded by maxPollWait.
// It returns the terminal status.
func (r *AssistantResponder) waitForRun(ctx context.Context, threadID string, run core.Run) (string, error) {
	deadline := r.clock.Now().Add(r.maxPollWait)
	runPath := fmt.Sprintf(core.PathRunFormat, threadID, run.ID)

	polls := 0
	defer func() { r.metrics.RecordRunPolls(polls) }()

	for run.IsPending() {
		if !r.clock.Now().Before(deadline) {
			r.cancelRun(ctx, threadID, run.ID)
			return "", core.ErrUpstreamTimeout(fmt.Errorf("run %s still %s after %s (%d polls)", run.ID, run.Status, r.maxPollWait, polls))
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", core.ErrUpstreamTimeout(ctx.Err())
			}
			return "", core.ErrBadGateway(fmt.Errorf("polling run %s: %w", run.ID, ctx.Err()))
		case <-r.clock.After(r.pollInterval):
		}

		polls++
		var next core.Run
		if err := r.client.Do(ctx, core.OpGetRun, http.MethodGet, runPath, nil, &next); err != nil {
			return "", err
		}
		run.Status = next.Status
		r.logger.Debug("Run %s poll %d: %s", run.ID, polls, run.Status)
	}

	return run.Status, nil
}

// cancelRun asks the upstream to stop a run we gave up on; failures are only logged
func (r *AssistantResponder) cancelRun(ctx context.Context, threadID, runID string) {
	cancelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), core.RunCancelTimeout)
	defer cancel()

	path := fmt.Sprintf(core.PathRunCancelFormat, threadID, runID)
	if err := r.client.Do(cancelCtx, core.OpCancelRun, http.MethodPost, path, nil, nil); err != nil {
		r.logger.Warn("Failed to cancel run %s: %v", runID, err)
	}
}
