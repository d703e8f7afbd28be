package repositories

import (
	"testing"
	"time"

	"github.com/fakeverse/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupChatDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Conversation{}, &models.Message{}))
	return db
}

func TestGetOrCreateConversationIsDirectionIndependent(t *testing.T) {
	db := setupChatDB(t)
	repo := NewPostgresChatRepository(db)

	first, err := repo.GetOrCreateConversation(2, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.UserID1)
	assert.Equal(t, uint(2), first.UserID2)

	second, err := repo.GetOrCreateConversation(1, 2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	third, err := repo.GetOrCreateConversation(2, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetConversationsByUserIDFindsBothSides(t *testing.T) {
	db := setupChatDB(t)
	repo := NewPostgresChatRepository(db)

	_, err := repo.GetOrCreateConversation(1, 2)
	require.NoError(t, err)
	_, err = repo.GetOrCreateConversation(3, 1)
	require.NoError(t, err)
	_, err = repo.GetOrCreateConversation(2, 3)
	require.NoError(t, err)

	convs, err := repo.GetConversationsByUserID(1)
	require.NoError(t, err)
	assert.Len(t, convs, 2)
	for _, conv := range convs {
		assert.True(t, conv.HasParticipant(1))
	}
}

func TestMessageOrderingAndLatest(t *testing.T) {
	db := setupChatDB(t)
	chatRepo := NewPostgresChatRepository(db)
	messageRepo := NewPostgresMessageRepository(db)

	conv, err := chatRepo.GetOrCreateConversation(1, 2)
	require.NoError(t, err)

	// latest of an empty conversation is nil, not an error
	latest, err := messageRepo.GetLatestMessage(conv.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	now := time.Now()
	for i, content := range []string{"one", "two", "three"} {
		require.NoError(t, messageRepo.CreateMessage(&models.Message{
			ConversationID: conv.ID,
			SenderID:       uint(i%2 + 1),
			Content:        content,
			SentAt:         now.Add(time.Duration(i) * time.Minute),
		}))
	}

	messages, err := messageRepo.GetMessagesByConversationID(conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "two", messages[1].Content)
	assert.Equal(t, "three", messages[2].Content)

	latest, err = messageRepo.GetLatestMessage(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "three", latest.Content)
}
