package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/fakeverse/backend/internal/models"
	"github.com/fakeverse/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLikeHandler(db *gorm.DB) *LikeHandler {
	return NewLikeHandler(
		repositories.NewPostgresLikeRepository(db),
		repositories.NewPostgresPostRepository(db),
	)
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, content string) *models.Post {
	t.Helper()

	post := &models.Post{UserID: author.ID, Content: content}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestLikeIdempotence(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newLikeHandler(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, bob, "hello world")

	like := func(user *models.User) (int, int64, error) {
		c, rec := newAuthedContext(e, http.MethodPost, "/posts/post/1/like", "", user)
		c.SetPath("/posts/post/:postId/like")
		c.SetParamNames("postId")
		c.SetParamValues(fmt.Sprint(post.ID))
		if err := h.LikePost(c); err != nil {
			return 0, 0, err
		}
		var resp struct {
			LikesCount int64 `json:"likes_count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			return 0, 0, err
		}
		return rec.Code, resp.LikesCount, nil
	}

	code, count, err := like(alice)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, int64(1), count)

	// double-like is rejected and the count is unchanged
	_, _, err = like(alice)
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))

	var stored int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&stored).Error)
	assert.Equal(t, int64(1), stored)
}

func TestUnlikeNonLikedPost(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newLikeHandler(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, bob, "hello world")

	unlike := func(user *models.User) (int, int64, error) {
		c, rec := newAuthedContext(e, http.MethodDelete, "/posts/post/1/like", "", user)
		c.SetPath("/posts/post/:postId/like")
		c.SetParamNames("postId")
		c.SetParamValues(fmt.Sprint(post.ID))
		if err := h.UnlikePost(c); err != nil {
			return 0, 0, err
		}
		var resp struct {
			LikesCount int64 `json:"likes_count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			return 0, 0, err
		}
		return rec.Code, resp.LikesCount, nil
	}

	// unliking a post that was never liked is rejected
	_, _, err := unlike(alice)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	// like then unlike round-trips the count back to zero
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: alice.ID}).Error)
	code, count, err := unlike(alice)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(0), count)

	// a second unlike fails and alters nothing
	_, _, err = unlike(alice)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestLikeUnknownPost(t *testing.T) {
	db := setupTestDB(t)
	e := echo.New()
	h := newLikeHandler(db)

	alice := createTestUser(t, db, "alice")

	c, _ := newAuthedContext(e, http.MethodPost, "/posts/post/999/like", "", alice)
	c.SetPath("/posts/post/:postId/like")
	c.SetParamNames("postId")
	c.SetParamValues("999")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, h.LikePost(c)))
}
