package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askeland/bildereise/config"
	"github.com/askeland/bildereise/middleware"
	"github.com/askeland/bildereise/models"
	"github.com/askeland/bildereise/storage"
	"github.com/askeland/bildereise/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles registration, login and profile management.
type AuthController struct {
	store      storage.Store
	uploadsDir string
}

// NewAuthController creates an AuthController. Profile images are stored
// directly under uploadsDir.
func NewAuthController(store storage.Store, uploadsDir string) (*AuthController, error) {
	if err := ensureDir(uploadsDir); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", uploadsDir, err)
	}
	return &AuthController{store: store, uploadsDir: uploadsDir}, nil
}

// Register handles local account creation with bcrypt hashing and logs the
// new user in by returning a token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		utils.Error(ctx, http.StatusBadRequest, "username is required")
		return
	}
	if len(req.Password) < 6 {
		utils.Error(ctx, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	if _, err := a.store.GetUserByUsername(req.Username); err == nil {
		utils.Error(ctx, http.StatusBadRequest, "Username already exists")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		utils.Sugar.Errorf("register lookup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Sugar.Errorf("register hash failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		DarkMode:     "auto",
	}
	if err := a.store.CreateUser(&user); err != nil {
		utils.Sugar.Errorf("register create failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Sugar.Errorf("register token failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.JSON(ctx, http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := a.store.GetUserByUsername(strings.TrimSpace(req.Username))
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Sugar.Errorf("login token failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.JSON(ctx, http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, "Ikke autentisert")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "Ikke autentisert")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.JSON(ctx, http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}
	utils.JSON(ctx, http.StatusOK, user)
}

// UpdateProfile updates full name, email and bio of the current user.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}

	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Bio      string `json:"bio"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	user.FullName = strings.TrimSpace(req.FullName)
	user.Email = strings.TrimSpace(req.Email)
	user.Bio = utils.Sanitize(strings.TrimSpace(req.Bio))

	if err := a.store.UpdateUser(user); err != nil {
		utils.Sugar.Errorf("profile update failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to update profile")
		return
	}
	utils.JSON(ctx, http.StatusOK, user)
}

// UploadProfileImage stores a new profile image (1 MiB cap, same type
// filter as gallery uploads, no normalization) and updates the user.
func (a *AuthController) UploadProfileImage(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}

	file, header, err := ctx.Request.FormFile("profileImage")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	cfg := config.Get()
	maxBytes := int64(cfg.ProfileImageMaxSizeMB) << 20

	name, err := saveUploadedImage(file, header, a.uploadsDir, maxBytes, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidFileType):
			utils.Error(ctx, http.StatusBadRequest, "Only image files are allowed!")
		case errors.Is(err, errFileTooLarge):
			utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("Image too large (max %d MB)", cfg.ProfileImageMaxSizeMB))
		default:
			utils.Sugar.Errorf("profile image save failed: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, "failed to save file")
		}
		return
	}

	user.ProfileImage = "/uploads/" + name
	if err := a.store.UpdateUser(user); err != nil {
		utils.Sugar.Errorf("profile image update failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to update profile")
		return
	}
	utils.JSON(ctx, http.StatusOK, user)
}

// UpdatePassword verifies the current password and stores a new hash.
func (a *AuthController) UpdatePassword(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		utils.Error(ctx, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if len(req.NewPassword) < 6 {
		utils.Error(ctx, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Sugar.Errorf("password hash failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to update password")
		return
	}
	user.PasswordHash = hash

	if err := a.store.UpdateUser(user); err != nil {
		utils.Sugar.Errorf("password update failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to update password")
		return
	}
	utils.JSON(ctx, http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// UpdateTheme stores the preferred theme mode.
func (a *AuthController) UpdateTheme(ctx *gin.Context) {
	user, ok := a.currentUser(ctx)
	if !ok {
		return
	}

	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	switch req.Mode {
	case "light", "dark", "auto":
	default:
		utils.Error(ctx, http.StatusBadRequest, "Invalid theme mode")
		return
	}

	user.DarkMode = req.Mode
	if err := a.store.UpdateUser(user); err != nil {
		utils.Sugar.Errorf("theme update failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to update theme")
		return
	}
	utils.JSON(ctx, http.StatusOK, user)
}

// currentUser loads the authenticated user or writes the error response.
func (a *AuthController) currentUser(ctx *gin.Context) (*models.User, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	user, err := a.store.GetUser(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, "User not found")
			return nil, false
		}
		utils.Sugar.Errorf("load current user failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "failed to load user")
		return nil, false
	}
	return user, true
}
