package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/fakeverse/backend/internal/models"
	"github.com/fakeverse/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ChatHandler handles HTTP requests related to conversations and messages
type ChatHandler struct {
	chatRepository    repositories.ChatRepository
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, userRepo repositories.UserRepository) *ChatHandler {
	return &ChatHandler{
		chatRepository:    chatRepo,
		messageRepository: messageRepo,
		userRepository:    userRepo,
	}
}

// RegisterChatRoutes registers chat-related routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.POST("/chat", h.CreateConversation)
	g.GET("/userChats", h.GetUserChats)
	g.GET("/chat/:chatId", h.GetMessages)
	g.POST("/chat/:chatId/newMessage", h.SendMessage)
}

// CreateConversation opens (or finds) the conversation with the target
// user. The target may be addressed by username or numeric id; username
// wins when both are present. Repeated calls from either participant
// resolve to the same row. An optional first message is appended.
func (h *ChatHandler) CreateConversation(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var target *models.User
	var err error
	switch {
	case req.Username != "":
		target, err = h.userRepository.GetUserByUsername(req.Username)
	case req.UserToID != 0:
		target, err = h.userRepository.GetUserByID(req.UserToID)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Target username or userToId is required")
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User doesn't exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if target.ID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot start a conversation with yourself")
	}

	conv, err := h.chatRepository.GetOrCreateConversation(currentUserID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Message != "" {
		message := &models.Message{
			ConversationID: conv.ID,
			SenderID:       currentUserID,
			Content:        req.Message,
			SentAt:         time.Now(),
		}
		if err := h.messageRepository.CreateMessage(message); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, conv)
}

// GetUserChats builds the authenticated user's inbox: every conversation
// with the partner profile and latest message, sorted by last activity
// descending. Computed per request; there is no materialized last-message
// cache.
func (h *ChatHandler) GetUserChats(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	convs, err := h.chatRepository.GetConversationsByUserID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		partner, err := h.userRepository.GetUserByID(conv.OtherUserID(currentUserID))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		lastMessage, err := h.messageRepository.GetLatestMessage(conv.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		// Conversations with no messages sort by creation time
		lastActivity := conv.CreatedAt
		if lastMessage != nil {
			lastActivity = lastMessage.SentAt
		}

		summaries = append(summaries, models.ConversationSummary{
			ID: conv.ID,
			Partner: models.Profile{
				ID:        partner.ID,
				Username:  partner.Username,
				Bio:       partner.Bio,
				AvatarURL: avatarURL(partner.Username),
			},
			LastMessage:  lastMessage,
			LastActivity: lastActivity,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})

	return c.JSON(http.StatusOK, summaries)
}

// GetMessages retrieves the full message history of a conversation the
// authenticated user takes part in, ordered by send time ascending.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conv, err := h.getParticipantConversation(c, currentUserID)
	if err != nil {
		return err
	}

	messages, err := h.messageRepository.GetMessagesByConversationID(conv.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, messages)
}

// SendMessage appends a message to a conversation the authenticated user
// takes part in, stamped with the current time.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conv, err := h.getParticipantConversation(c, currentUserID)
	if err != nil {
		return err
	}

	var req models.CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	message := &models.Message{
		ConversationID: conv.ID,
		SenderID:       currentUserID,
		Content:        req.Content,
		SentAt:         time.Now(),
	}

	if err := h.messageRepository.CreateMessage(message); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, message)
}

// getParticipantConversation parses the chat id path param, loads the
// conversation and verifies the requester is one of its two participants.
func (h *ChatHandler) getParticipantConversation(c echo.Context, currentUserID uint) (*models.Conversation, error) {
	chatID, err := strconv.ParseUint(c.Param("chatId"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid chat ID")
	}

	conv, err := h.chatRepository.GetConversationByID(uint(chatID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Chat not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !conv.HasParticipant(currentUserID) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not a participant of this chat")
	}

	return conv, nil
}
