package core

// Default config constants
const (
	DefaultPort         = "3000"
	DefaultGinMode      = "release"
	DefaultStaticRoot   = "."
	DefaultAssistantID  = "asst_l7877S10rt2TO0Yvr1Nm6rxW"
	DefaultModel        = "gpt-4o-mini"
	DefaultUpstreamURL  = "https://api.openai.com/v1"
	DefaultCORSOrigin   = "*"
	CORSMaxAge          = "86400"
	DefaultSystemPrompt = "You are a helpful assistant on Jake's resume website. " +
		"Answer questions about Jake's experience, skills and projects concisely. " +
		"If you do not know the answer, say so and suggest emailing Jake directly."
	DefaultFallbackReply = "I wasn't able to find that answer—try another question or email Jake directly."
)

// Chat protocol identifiers
const (
	ProtocolAssistant  = "assistant"
	ProtocolCompletion = "completion"
)

// Content type and header constants
const (
	ContentTypeJSON        = "application/json"
	ContentTypeJSONUTF8    = "application/json; charset=utf-8"
	ContentTypeTextUTF8    = "text/plain; charset=utf-8"
	ContentTypeOctetStream = "application/octet-stream"
	HeaderContentType      = "Content-Type"
	HeaderAuthorization    = "Authorization"
	HeaderConnection       = "Connection"
	HeaderRequestID        = "X-Request-ID"
	HeaderOpenAIBeta       = "OpenAI-Beta"
	AuthBearerPrefix       = "Bearer "
	OpenAIBetaAssistants   = "assistants=v2"
	ConnectionClose        = "close"
)

// Role constants
const (
	RoleUser   = "user"
	RoleSystem = "system"
)

// Static asset constants
const (
	DefaultDocument     = "index"
	DefaultDocumentHTML = "index.html"
	HTMLExtension       = ".html"
)

// Route constants
const (
	RouteChat    = "/api/chat"
	RouteStats   = "/api/stats"
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
