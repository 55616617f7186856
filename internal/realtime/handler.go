package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/appforge-dev/chirper/backend/internal/fanout"
	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// inboundFrame is a client-emitted event.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinPayload struct {
	UserID uint `json:"userId"`
}

type sendMessagePayload struct {
	SenderID   uint   `json:"senderId"`
	ReceiverID uint   `json:"receiverId"`
	Text       string `json:"text"`
}

// ChannelHandler serves the websocket endpoint of the realtime channel.
type ChannelHandler struct {
	hub      *Hub
	messages repositories.MessageRepository
	events   fanout.Emitter
	logger   *zap.Logger
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(hub *Hub, messageRepo repositories.MessageRepository, events fanout.Emitter, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{hub: hub, messages: messageRepo, events: events, logger: logger}
}

// RegisterRoutes registers the websocket endpoint
func (h *ChannelHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.ServeWS)
}

// ServeWS upgrades the connection and relays events until disconnect.
// Protocol: the client emits join first, then any number of sendMessage
// frames; the server emits receiveMessage to both parties' rooms.
func (h *ChannelHandler) ServeWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	var client *Client
	defer func() {
		if client != nil {
			h.hub.Leave(client)
			close(client.Send)
		}
		conn.Close()
	}()

	done := make(chan struct{})
	defer close(done)

	ctx := c.Request().Context()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return nil
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}

		switch frame.Event {
		case "join":
			var payload joinPayload
			if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.UserID == 0 {
				continue
			}
			if client != nil {
				h.hub.Leave(client)
				close(client.Send)
			}
			client = NewClient(payload.UserID)
			h.hub.Join(client)
			go h.writePump(conn, client, done)

		case "sendMessage":
			if client == nil {
				continue
			}
			var payload sendMessagePayload
			if err := json.Unmarshal(frame.Data, &payload); err != nil {
				continue
			}
			if err := h.handleSendMessage(ctx, payload); err != nil {
				h.logger.Warn("realtime message delivery failed",
					zap.Uint("sender", payload.SenderID),
					zap.Uint("receiver", payload.ReceiverID),
					zap.Error(err))
			}
		}
	}
}

// handleSendMessage persists the message, then publishes it to the
// receiver's room and echoes it to the sender's room so other tabs and
// devices of the sender see it too. No delivery acknowledgement.
func (h *ChannelHandler) handleSendMessage(ctx context.Context, payload sendMessagePayload) error {
	if payload.SenderID == 0 || payload.ReceiverID == 0 || payload.Text == "" {
		return fmt.Errorf("invalid message payload")
	}

	conversation, err := h.messages.GetOrCreateConversation(ctx, payload.SenderID, payload.ReceiverID)
	if err != nil {
		return err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       payload.SenderID,
		ReceiverID:     payload.ReceiverID,
		Text:           payload.Text,
	}
	if err := h.messages.CreateMessage(ctx, message); err != nil {
		return err
	}

	event := OutboundEvent{Event: "receiveMessage", Data: message}
	h.hub.Publish(payload.ReceiverID, event)
	h.hub.Publish(payload.SenderID, event)

	h.events.Emit(fanout.Event{
		Type:        models.NotificationDM,
		ActorID:     payload.SenderID,
		RecipientID: payload.ReceiverID,
	})
	return nil
}

func (h *ChannelHandler) writePump(conn *websocket.Conn, client *Client, done <-chan struct{}) {
	for {
		select {
		case event, ok := <-client.Send:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
