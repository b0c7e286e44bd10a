package upstream

import (
	"fmt"
	"net/http"

	"resumechat/internal/config"
	"resumechat/internal/core"
)

// NewResponder builds the strategy selected by settings.Protocol
func NewResponder(settings config.ChatSettings, httpClient *http.Client, metrics core.MetricsCollector, logger core.Logger) (core.Responder, error) {
	clientCfg := ClientConfig{
		BaseURL:    settings.BaseURL,
		APIKey:     settings.APIKey,
		HTTPClient: httpClient,
		Metrics:    metrics,
		Logger:     logger,
	}

	switch settings.Protocol {
	case core.ProtocolAssistant:
		clientCfg.BetaHeader = core.OpenAIBetaAssistants
		return NewAssistantResponder(AssistantConfig{
			Client:       NewClient(clientCfg),
			AssistantID:  settings.AssistantID,
			PollInterval: settings.PollInterval,
			MaxPollWait:  settings.MaxPollWait,
			Metrics:      metrics,
			Logger:       logger,
		}), nil
	case core.ProtocolCompletion:
		return NewCompletionResponder(NewClient(clientCfg), settings.Model, settings.SystemPrompt), nil
	default:
		return nil, fmt.Errorf("unknown chat protocol %q", settings.Protocol)
	}
}
