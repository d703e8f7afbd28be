package handlers

import (
	"net/http"
	"strconv"

	"github.com/fakeverse/backend/internal/models"
	"github.com/fakeverse/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	followRepository  repositories.FollowRepository
	likeRepository    repositories.LikeRepository
	commentRepository repositories.CommentRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository, likeRepo repositories.LikeRepository, commentRepo repositories.CommentRepository) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		followRepository:  followRepo,
		likeRepository:    likeRepo,
		commentRepository: commentRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/post", h.CreatePost)
	g.GET("/feed", h.GetFeed)
	g.GET("/user/:username", h.GetPostsByUsername)
	g.DELETE("/post/:postId", h.DeletePost)
}

// CreatePost creates a new post authored by the authenticated user
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		UserID:  currentUserID,
		Content: req.Content,
	}

	if err := h.postRepository.CreatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, post)
}

// GetFeed retrieves the authenticated user's feed: their own posts plus
// posts of the users they follow, newest first.
func (h *PostHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	authorIDs := append(followingIDs, currentUserID)

	posts, err := h.postRepository.GetFeedPosts(authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	responses, err := h.buildPostResponses(posts, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, responses)
}

// GetPostsByUsername retrieves a user's posts, newest first
func (h *PostHandler) GetPostsByUsername(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User doesn't exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByUserID(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	responses, err := h.buildPostResponses(posts, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, responses)
}

// DeletePost deletes a post owned by the authenticated user
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := strconv.ParseUint(c.Param("postId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(uint(postID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Ensure the user deleting the post is the owner
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// buildPostResponses joins posts with author usernames and authoritative
// like/comment counts read back from the store.
func (h *PostHandler) buildPostResponses(posts []models.Post, currentUserID uint) ([]models.PostResponse, error) {
	usernames := make(map[uint]string)
	responses := make([]models.PostResponse, 0, len(posts))

	for _, post := range posts {
		username, ok := usernames[post.UserID]
		if !ok {
			author, err := h.userRepository.GetUserByID(post.UserID)
			if err != nil {
				return nil, err
			}
			username = author.Username
			usernames[post.UserID] = username
		}

		likesCount, err := h.likeRepository.GetLikesCountByPostID(post.ID)
		if err != nil {
			return nil, err
		}
		commentsCount, err := h.commentRepository.GetCommentsCountByPostID(post.ID)
		if err != nil {
			return nil, err
		}
		liked := false
		if currentUserID != 0 {
			liked, err = h.likeRepository.HasUserLikedPost(post.ID, currentUserID)
			if err != nil {
				return nil, err
			}
		}

		responses = append(responses, models.PostResponse{
			ID:            post.ID,
			Content:       post.Content,
			UserID:        post.UserID,
			Username:      username,
			LikesCount:    likesCount,
			CommentsCount: commentsCount,
			Liked:         liked,
			CreatedAt:     post.CreatedAt,
		})
	}

	return responses, nil
}
