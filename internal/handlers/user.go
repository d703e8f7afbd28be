package handlers

import (
	"net/http"

	"github.com/fakeverse/backend/internal/models"
	"github.com/fakeverse/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	postRepository   repositories.PostRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, postRepo repositories.PostRepository) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		followRepository: followRepo,
		postRepository:   postRepo,
	}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/user/:username", h.GetUserByUsername)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/search", h.SearchUsers)
	g.GET("/user/:username/followers", h.GetFollowers)
	g.GET("/user/:username/following", h.GetFollowing)
}

// GetUserByUsername retrieves a user's public profile with graph counts
func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User doesn't exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profile, err := h.buildProfile(user, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's bio and/or password
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	// Password change requires the current password to match
	if req.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "Current password is incorrect")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
		}
		user.Password = string(hashedPassword)
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// SearchUsers searches for users by a username query string
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := make([]models.Profile, 0, len(users))
	for _, u := range users {
		results = append(results, models.Profile{
			ID:        u.ID,
			Username:  u.Username,
			Bio:       u.Bio,
			AvatarURL: avatarURL(u.Username),
		})
	}

	return c.JSON(http.StatusOK, results)
}

// GetFollowers lists the users following the given user
func (h *UserHandler) GetFollowers(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User doesn't exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followers, err := h.followRepository.GetFollowers(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, followers)
}

// GetFollowing lists the users the given user follows
func (h *UserHandler) GetFollowing(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User doesn't exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	following, err := h.followRepository.GetFollowing(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, following)
}

// buildProfile assembles the public profile view for a user, with counts
// and the follow state relative to the requesting user.
func (h *UserHandler) buildProfile(user *models.User, currentUserID uint) (*models.Profile, error) {
	followersCount, err := h.followRepository.GetFollowersCount(user.ID)
	if err != nil {
		return nil, err
	}
	followingCount, err := h.followRepository.GetFollowingCount(user.ID)
	if err != nil {
		return nil, err
	}
	postsCount, err := h.postRepository.GetPostsCountByUserID(user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if currentUserID != 0 && currentUserID != user.ID {
		isFollowing, err = h.followRepository.IsFollowing(currentUserID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &models.Profile{
		ID:             user.ID,
		Username:       user.Username,
		Bio:            user.Bio,
		AvatarURL:      avatarURL(user.Username),
		FollowersCount: followersCount,
		FollowingCount: followingCount,
		PostsCount:     postsCount,
		IsFollowing:    isFollowing,
	}, nil
}
