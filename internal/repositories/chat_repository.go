package repositories

import (
	"github.com/fakeverse/backend/internal/models"
	"gorm.io/gorm"
)

// ChatRepository defines the interface for conversation data operations.
// Callers pass participant ids in any order; the repository canonicalizes
// them so each unordered pair maps to a single row.
type ChatRepository interface {
	GetOrCreateConversation(userA, userB uint) (*models.Conversation, error)
	GetConversationByID(id uint) (*models.Conversation, error)
	GetConversationsByUserID(userID uint) ([]models.Conversation, error)
}

// PostgresChatRepository implements ChatRepository for PostgreSQL
type PostgresChatRepository struct {
	db *gorm.DB
}

// NewPostgresChatRepository creates a new PostgresChatRepository
func NewPostgresChatRepository(db *gorm.DB) *PostgresChatRepository {
	return &PostgresChatRepository{db: db}
}

// canonicalPair orders two user ids ascending so lookups are
// direction-independent.
func canonicalPair(userA, userB uint) (uint, uint) {
	if userA > userB {
		return userB, userA
	}
	return userA, userB
}

// GetOrCreateConversation returns the conversation for the unordered pair,
// creating it if no row exists yet. Idempotent under repeated calls from
// either participant; the unique index on the pair backstops races.
func (r *PostgresChatRepository) GetOrCreateConversation(userA, userB uint) (*models.Conversation, error) {
	lo, hi := canonicalPair(userA, userB)
	var conv models.Conversation
	err := r.db.Where(models.Conversation{UserID1: lo, UserID2: hi}).FirstOrCreate(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversationByID retrieves a conversation by ID from PostgreSQL
func (r *PostgresChatRepository) GetConversationByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversationsByUserID retrieves every conversation the user takes part in
func (r *PostgresChatRepository) GetConversationsByUserID(userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := r.db.Where("user_id1 = ? OR user_id2 = ?", userID, userID).Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}
