package convert

import (
	"strings"

	"resumechat/internal/core"
)

// CompletionRequest builds the single-call completion payload: system instruction, then the user message
func CompletionRequest(model, systemPrompt, message string) core.ChatCompletionRequest {
	messages := make([]core.UpstreamMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, core.UpstreamMessage{Role: core.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, core.UpstreamMessage{Role: core.RoleUser, Content: message})

	return core.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
}

// ThreadRequest builds the thread creation payload seeded with the user message
func ThreadRequest(message string) core.CreateThreadRequest {
	return core.CreateThreadRequest{
		Messages: []core.UpstreamMessage{{Role: core.RoleUser, Content: message}},
	}
}

// RunRequest builds the run creation payload
func RunRequest(assistantID string) core.CreateRunRequest {
	return core.CreateRunRequest{AssistantID: assistantID}
}

// CompletionReply extracts choices[0].message.content
func CompletionReply(resp *core.ChatCompletionResponse) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

// ThreadReply extracts data[0].content[0].text.value from the newest message
func ThreadReply(list *core.MessageList) string {
	if list == nil || len(list.Data) == 0 {
		return ""
	}
	content := list.Data[0].Content
	if len(content) == 0 || content[0].Text == nil {
		return ""
	}
	return strings.TrimSpace(content[0].Text.Value)
}

// UpstreamErrorMessage extracts error.message from an upstream error body, empty if absent
func UpstreamErrorMessage(body *core.UpstreamErrorBody) string {
	if body == nil || body.Error == nil {
		return ""
	}
	return body.Error.Message
}
