package repositories

import (
	"github.com/fakeverse/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	CreateMessage(message *models.Message) error
	GetMessagesByConversationID(conversationID uint) ([]models.Message, error)
	GetLatestMessage(conversationID uint) (*models.Message, error)
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// CreateMessage appends a message to a conversation
func (r *PostgresMessageRepository) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// GetMessagesByConversationID retrieves the full message history for a
// conversation, ordered by send time ascending (id breaks ties).
func (r *PostgresMessageRepository) GetMessagesByConversationID(conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.Where("conversation_id = ?", conversationID).Order("sent_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLatestMessage retrieves the most recent message of a conversation,
// or nil if the conversation has no messages yet.
func (r *PostgresMessageRepository) GetLatestMessage(conversationID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Where("conversation_id = ?", conversationID).Order("sent_at DESC, id DESC").First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}
