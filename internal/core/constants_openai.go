package core

// Upstream endpoint paths, relative to the configured base URL
const (
	PathChatCompletions = "/chat/completions"
	PathThreads         = "/threads"
	PathRunsFormat      = "/threads/%s/runs"
	PathRunFormat       = "/threads/%s/runs/%s"
	PathRunCancelFormat = "/threads/%s/runs/%s/cancel"
	PathMessagesFormat  = "/threads/%s/messages?limit=1"
)

// Run status values reported by the assistants API
const (
	RunStatusQueued     = "queued"
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
)

// Upstream operation labels used for logging and metrics
const (
	OpCreateThread = "create_thread"
	OpCreateRun    = "create_run"
	OpGetRun       = "get_run"
	OpCancelRun    = "cancel_run"
	OpListMessages = "list_messages"
	OpCompletion   = "chat_completion"
)

// Content block type constants
const (
	ContentBlockTypeText = "text"
)

// Client-facing error messages
const (
	MsgInvalidJSON        = "Invalid JSON body."
	MsgMessageRequired    = "Message is required."
	MsgServiceUnavailable = "AI assistant is unavailable. Please configure RESUME_AI_KEY on the server."
	MsgUpstreamFailed     = "AI request failed."
	MsgRunFailed          = "AI run did not complete successfully."
	MsgRunTimeout         = "The AI took too long to respond. Please try again shortly."
	MsgBadGateway         = "The AI is unavailable right now. Please try again shortly."
	MsgBodyTooLarge       = "Request body too large."
	MsgInternalError      = "internal server error"
	MsgNotFound           = "Not Found"
	MsgForbidden          = "Forbidden"
	MsgBadRequest         = "Bad Request"
)
