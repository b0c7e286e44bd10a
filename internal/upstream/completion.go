package upstream

import (
	"context"
	"net/http"

	"resumechat/internal/convert"
	"resumechat/internal/core"
)

// CompletionResponder answers with one chat completion call
type CompletionResponder struct {
	client       *Client
	model        string
	systemPrompt string
}

// NewCompletionResponder creates a single-call responder
func NewCompletionResponder(client *Client, model, systemPrompt string) *CompletionResponder {
	return &CompletionResponder{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// Protocol implements core.Responder
func (r *CompletionResponder) Protocol() string {
	return core.ProtocolCompletion
}

// Reply implements core.Responder
func (r *CompletionResponder) Reply(ctx context.Context, message string) (string, error) {
	payload := convert.CompletionRequest(r.model, r.systemPrompt, message)

	var resp core.ChatCompletionResponse
	if err := r.client.Do(ctx, core.OpCompletion, http.MethodPost, core.PathChatCompletions, payload, &resp); err != nil {
		return "", err
	}
	return convert.CompletionReply(&resp), nil
}
