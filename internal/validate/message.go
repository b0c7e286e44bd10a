package validate

import (
	"bytes"
	"strings"

	"resumechat/internal/core"

	"github.com/bytedance/sonic"
)

// ParseChatRequest validates a raw POST /api/chat body.
// An empty body counts as {}. The message is trimmed and must be a non-empty string.
func ParseChatRequest(body []byte) (core.ChatRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return core.ChatRequest{}, core.ErrInvalidRequest(core.MsgMessageRequired, nil)
	}

	var parsed any
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return core.ChatRequest{}, core.ErrInvalidRequest(core.MsgInvalidJSON, err)
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return core.ChatRequest{}, core.ErrInvalidRequest(core.MsgMessageRequired, nil)
	}

	message, ok := obj["message"].(string)
	if !ok {
		return core.ChatRequest{}, core.ErrInvalidRequest(core.MsgMessageRequired, nil)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return core.ChatRequest{}, core.ErrInvalidRequest(core.MsgMessageRequired, nil)
	}

	return core.ChatRequest{Message: message}, nil
}
