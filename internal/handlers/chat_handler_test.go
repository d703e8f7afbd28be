package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fakeverse/backend/internal/models"
	"github.com/fakeverse/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newChatHandler(db *gorm.DB) *ChatHandler {
	return NewChatHandler(
		repositories.NewPostgresChatRepository(db),
		repositories.NewPostgresMessageRepository(db),
		repositories.NewPostgresUserRepository(db),
	)
}

func TestCreateConversationCanonicalization(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newChatHandler(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	// alice opens a conversation with bob
	c, rec := newAuthedContext(e, http.MethodPost, "/chats/chat", `{"username":"bob"}`, alice)
	require.NoError(t, h.CreateConversation(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var first models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Less(t, first.UserID1, first.UserID2)
	assert.Equal(t, alice.ID, first.UserID1)
	assert.Equal(t, bob.ID, first.UserID2)

	// bob opens a conversation with alice: must resolve to the same row
	c, rec = newAuthedContext(e, http.MethodPost, "/chats/chat", `{"username":"alice"}`, bob)
	require.NoError(t, h.CreateConversation(c))

	var second models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)

	// a retry from alice creates no duplicate either
	c, _ = newAuthedContext(e, http.MethodPost, "/chats/chat", `{"username":"bob"}`, alice)
	require.NoError(t, h.CreateConversation(c))

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateConversationByUserID(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newChatHandler(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	body := fmt.Sprintf(`{"userToId":%d}`, bob.ID)
	c, rec := newAuthedContext(e, http.MethodPost, "/chats/chat", body, alice)
	require.NoError(t, h.CreateConversation(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var conv models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.True(t, conv.HasParticipant(alice.ID))
	assert.True(t, conv.HasParticipant(bob.ID))
}

func TestCreateConversationRejectsSelf(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newChatHandler(db)

	alice := createTestUser(t, db, "alice")

	c, _ := newAuthedContext(e, http.MethodPost, "/chats/chat", `{"username":"alice"}`, alice)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.CreateConversation(c)))
}

func TestCreateConversationUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newChatHandler(db)

	alice := createTestUser(t, db, "alice")

	c, _ := newAuthedContext(e, http.MethodPost, "/chats/chat", `{"username":"nobody"}`, alice)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, h.CreateConversation(c)))
}

func TestChatScenarioHiHello(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newChatHandler(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	// alice messages bob "hi" while opening the conversation
	c, rec := newAuthedContext(e, http.MethodPost, "/chats/chat", `{"username":"bob","message":"hi"}`, alice)
	require.NoError(t, h.CreateConversation(c))

	var conv models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))

	// bob replies "hello"
	c, rec = newAuthedContext(e, http.MethodPost, "/chats/chat/1/newMessage", `{"content":"hello"}`, bob)
	c.SetPath("/chats/chat/:chatId/newMessage")
	c.SetParamNames("chatId")
	c.SetParamValues(fmt.Sprint(conv.ID))
	require.NoError(t, h.SendMessage(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// the history reads back in send order with the right senders
	c, rec = newAuthedContext(e, http.MethodGet, "/chats/chat/1", "", alice)
	c.SetPath("/chats/chat/:chatId")
	c.SetParamNames("chatId")
	c.SetParamValues(fmt.Sprint(conv.ID))
	require.NoError(t, h.GetMessages(c))

	var messages []models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, alice.ID, messages[0].SenderID)
	assert.Equal(t, "hello", messages[1].Content)
	assert.Equal(t, bob.ID, messages[1].SenderID)
}

func TestSendMessageLengthBounds(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newChatHandler(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	chatRepo := repositories.NewPostgresChatRepository(db)
	conv, err := chatRepo.GetOrCreateConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	send := func(content string) (int, error) {
		body, _ := json.Marshal(models.CreateMessageRequest{Content: content})
		c, rec := newAuthedContext(e, http.MethodPost, "/chats/chat/1/newMessage", string(body), alice)
		c.SetPath("/chats/chat/:chatId/newMessage")
		c.SetParamNames("chatId")
		c.SetParamValues(fmt.Sprint(conv.ID))
		if err := h.SendMessage(c); err != nil {
			return 0, err
		}
		return rec.Code, nil
	}

	// empty and over-long content rejected
	_, err = send("")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	_, err = send(strings.Repeat("x", 501))
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

	// boundary lengths accepted
	code, err := send("x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, code)
	code, err = send(strings.Repeat("x", 500))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, code)

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGetMessagesRequiresParticipant(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newChatHandler(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	eve := createTestUser(t, db, "eve")

	chatRepo := repositories.NewPostgresChatRepository(db)
	conv, err := chatRepo.GetOrCreateConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	c, _ := newAuthedContext(e, http.MethodGet, "/chats/chat/1", "", eve)
	c.SetPath("/chats/chat/:chatId")
	c.SetParamNames("chatId")
	c.SetParamValues(fmt.Sprint(conv.ID))
	assert.Equal(t, http.StatusForbidden, httpStatus(t, h.GetMessages(c)))
}

func TestGetUserChatsSortedByLastActivity(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newChatHandler(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	chatRepo := repositories.NewPostgresChatRepository(db)
	messageRepo := repositories.NewPostgresMessageRepository(db)

	withBob, err := chatRepo.GetOrCreateConversation(alice.ID, bob.ID)
	require.NoError(t, err)
	withCarol, err := chatRepo.GetOrCreateConversation(alice.ID, carol.ID)
	require.NoError(t, err)

	// bob's chat got a message first, carol's most recently
	now := time.Now()
	mustSend := func(conv *models.Conversation, sender uint, content string, at time.Time) {
		require.NoError(t, messageRepo.CreateMessage(&models.Message{
			ConversationID: conv.ID, SenderID: sender, Content: content, SentAt: at,
		}))
	}
	mustSend(withBob, bob.ID, "old message", now.Add(-2*time.Hour))
	mustSend(withCarol, carol.ID, "new message", now.Add(-time.Hour))
	mustSend(withCarol, alice.ID, "newest", now)

	c, rec := newAuthedContext(e, http.MethodGet, "/chats/userChats", "", alice)
	require.NoError(t, h.GetUserChats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []models.ConversationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)

	// latest activity first; each entry carries the partner and last message
	assert.Equal(t, "carol", summaries[0].Partner.Username)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "newest", summaries[0].LastMessage.Content)
	assert.Equal(t, "bob", summaries[1].Partner.Username)
	require.NotNil(t, summaries[1].LastMessage)
	assert.Equal(t, "old message", summaries[1].LastMessage.Content)
	assert.False(t, summaries[0].LastActivity.Before(summaries[1].LastActivity))
}
