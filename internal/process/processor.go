package process

import (
	"context"

	"resumechat/internal/core"
	"resumechat/internal/util"
	"resumechat/internal/validate"
)

// ProtocolDisabled labels requests handled while no API key is configured
const ProtocolDisabled = "disabled"

// ChatProcessor validates a chat body, forwards it to the responder and applies the fallback reply
type ChatProcessor struct {
	responder     core.Responder
	fallbackReply string
	logger        core.Logger
}

// NewChatProcessor creates a processor. A nil responder means the proxy is disabled.
func NewChatProcessor(responder core.Responder, fallbackReply string, logger core.Logger) *ChatProcessor {
	if fallbackReply == "" {
		fallbackReply = core.DefaultFallbackReply
	}
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &ChatProcessor{
		responder:     responder,
		fallbackReply: fallbackReply,
		logger:        logger,
	}
}

// Enabled reports whether an upstream responder is configured
func (p *ChatProcessor) Enabled() bool {
	return p.responder != nil
}

// Protocol returns the active strategy name, or "disabled"
func (p *ChatProcessor) Protocol() string {
	if p.responder == nil {
		return ProtocolDisabled
	}
	return p.responder.Protocol()
}

// Process handles one raw request body. Every returned error is a *core.ChatError.
func (p *ChatProcessor) Process(ctx context.Context, body []byte) (core.ChatResponse, error) {
	req, err := validate.ParseChatRequest(body)
	if err != nil {
		return core.ChatResponse{}, err
	}

	if p.responder == nil {
		return core.ChatResponse{}, core.ErrServiceUnavailable()
	}

	p.logger.Debug("Chat message via %s: %q", p.responder.Protocol(), util.PreviewText(req.Message, core.MaxLoggedMessageRune))

	reply, err := p.responder.Reply(ctx, req.Message)
	if err != nil {
		return core.ChatResponse{}, core.AsChatError(err)
	}

	if reply == "" {
		p.logger.Info("Upstream returned an empty reply, using fallback")
		reply = p.fallbackReply
	}
	return core.ChatResponse{Message: reply}, nil
}
