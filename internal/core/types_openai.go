package core

// UpstreamMessage is a role/content pair sent to the upstream API.
type UpstreamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the single-call completion payload.
type ChatCompletionRequest struct {
	Model    string            `json:"model"`
	Messages []UpstreamMessage `json:"messages"`
}

// ChatCompletionResponse is the subset of the completion response the proxy reads.
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// CreateThreadRequest seeds a new thread with the user's message.
type CreateThreadRequest struct {
	Messages []UpstreamMessage `json:"messages"`
}

// Thread is an upstream conversation context.
type Thread struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
}

// CreateRunRequest starts a run against an assistant.
type CreateRunRequest struct {
	AssistantID string `json:"assistant_id"`
}

// Run is an upstream asynchronous unit of work.
type Run struct {
	ID          string `json:"id"`
	Object      string `json:"object"`
	ThreadID    string `json:"thread_id"`
	AssistantID string `json:"assistant_id"`
	Status      string `json:"status"`
}

// IsPending reports whether the run has not reached a terminal status yet.
func (r *Run) IsPending() bool {
	return r.Status == RunStatusQueued || r.Status == RunStatusInProgress
}

// MessageList is the paged message listing of a thread, newest first.
type MessageList struct {
	Object  string          `json:"object"`
	Data    []ThreadMessage `json:"data"`
	FirstID string          `json:"first_id"`
	LastID  string          `json:"last_id"`
	HasMore bool            `json:"has_more"`
}

// ThreadMessage is one message within a thread.
type ThreadMessage struct {
	ID       string           `json:"id"`
	Role     string           `json:"role"`
	ThreadID string           `json:"thread_id"`
	RunID    *string          `json:"run_id"`
	Content  []MessageContent `json:"content"`
}

// MessageContent is one content block of a thread message.
type MessageContent struct {
	Type string `json:"type"`
	Text *struct {
		Value string `json:"value"`
	} `json:"text,omitempty"`
}

// UpstreamErrorBody is the upstream error payload shape {"error":{"message":...}}.
type UpstreamErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}
