package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/appforge-dev/chirper/backend/internal/fanout"
	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/realtime"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
)

// MessageHandler handles the REST side of direct messages. The websocket
// channel covers live delivery; these endpoints cover history and sending
// from clients without an open socket.
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	blockRepository   repositories.BlockRepository
	hub               *realtime.Hub
	events            fanout.Emitter
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	blockRepo repositories.BlockRepository,
	hub *realtime.Hub,
	events fanout.Emitter,
) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		blockRepository:   blockRepo,
		hub:               hub,
		events:            events,
	}
}

// RegisterMessageRoutes registers direct message routes. Sending carries
// its own rate limit class.
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group, messageLimit echo.MiddlewareFunc) {
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/:id/messages", h.ListMessages)
	g.PUT("/conversations/:id/read", h.MarkConversationRead)
	g.POST("/messages", h.SendMessage, messageLimit)
	g.DELETE("/messages/:id", h.DeleteMessage)
}

// ListConversations returns the viewer's conversations, most recently
// active first.
func (h *MessageHandler) ListConversations(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, limit := pageParams(c, 20, 50)
	skip := int64((page - 1) * limit)

	conversations, total, err := h.messageRepository.ListConversations(c.Request().Context(), currentUserID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       echo.Map{"conversations": conversations},
		"pagination": paginationMeta(page, limit, total),
	})
}

// resolveConversation loads the conversation and checks the viewer is a
// participant. Non-participants get a 404, not a 403; the conversation's
// existence is not disclosed.
func (h *MessageHandler) resolveConversation(c echo.Context, viewerID uint) (*models.Conversation, error) {
	conversation, err := h.messageRepository.GetConversationByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
	}

	for _, participant := range conversation.Participants {
		if participant == viewerID {
			return conversation, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
}

// ListMessages returns a page of the conversation's messages, newest
// first, skipping messages the viewer deleted for themselves.
func (h *MessageHandler) ListMessages(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversation, err := h.resolveConversation(c, currentUserID)
	if err != nil {
		return err
	}

	page, limit := pageParams(c, 50, 100)
	skip := int64((page - 1) * limit)

	messages, total, err := h.messageRepository.ListMessages(c.Request().Context(), conversation.ID.Hex(), currentUserID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       echo.Map{"messages": messages},
		"pagination": paginationMeta(page, limit, total),
	})
}

// MarkConversationRead marks all messages addressed to the viewer in the
// conversation as read.
func (h *MessageHandler) MarkConversationRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversation, err := h.resolveConversation(c, currentUserID)
	if err != nil {
		return err
	}

	if err := h.messageRepository.MarkConversationRead(c.Request().Context(), conversation.ID.Hex(), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SendMessage persists a DM and pushes it to both parties' live sessions.
// Blocked pairs cannot message each other.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.ReceiverID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot message yourself")
	}

	receiver, err := h.userRepository.GetUserByID(req.ReceiverID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !receiver.IsActive {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	blocked, err := h.blockRepository.IsBlockedEither(currentUserID, req.ReceiverID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if blocked {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot message this user")
	}

	ctx := c.Request().Context()
	conversation, err := h.messageRepository.GetOrCreateConversation(ctx, currentUserID, req.ReceiverID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       currentUserID,
		ReceiverID:     req.ReceiverID,
		Text:           req.Text,
		MediaURL:       req.MediaURL,
	}
	if err := h.messageRepository.CreateMessage(ctx, message); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	event := realtime.OutboundEvent{Event: "receiveMessage", Data: message}
	h.hub.Publish(req.ReceiverID, event)
	h.hub.Publish(currentUserID, event)

	h.events.Emit(fanout.Event{
		Type:        models.NotificationDM,
		ActorID:     currentUserID,
		RecipientID: req.ReceiverID,
	})

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"message": message}})
}

// DeleteMessage hides the message from the viewer only; the other
// participant keeps seeing it.
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.messageRepository.DeleteMessageForViewer(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Message not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
