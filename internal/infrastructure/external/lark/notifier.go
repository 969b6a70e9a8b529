package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
)

// Notifier implements port.ChatNotifier over Lark instant messaging
type Notifier struct {
	client *Client
	logger *zap.Logger
}

// NewNotifier creates a new Lark chat notifier
func NewNotifier(client *Client, logger *zap.Logger) port.ChatNotifier {
	return &Notifier{client: client, logger: logger}
}

// Push sends a text message to a user's chat account
func (n *Notifier) Push(ctx context.Context, chatID string, message string) error {
	if chatID == "" {
		return fmt.Errorf("chatID cannot be empty")
	}
	if message == "" {
		return fmt.Errorf("message cannot be empty")
	}

	content, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType("open_id").
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send chat message",
			zap.String("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	if !resp.Success() {
		n.logger.Error("Chat API returned failure",
			zap.String("chat_id", chatID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("chat API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Chat message sent", zap.String("chat_id", chatID))
	return nil
}

// Verify interface compliance
var _ port.ChatNotifier = (*Notifier)(nil)
