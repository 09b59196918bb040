package api

import (
	"net/http"
	"time"

	"bistro/internal/auth"
	"bistro/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type userView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func viewUser(u *models.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Register creates a customer account. Staff roles are granted afterwards
// through the group management endpoints.
func (a *API) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{"this field is required"}})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"this field is required"}})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	user := models.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := a.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{"a user with that username already exists"}})
		return
	}

	c.JSON(http.StatusCreated, viewUser(&user))
}

// Login exchanges credentials for a bearer token.
func (a *API) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	var user models.User
	err := a.db.Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
		return
	}

	ttl := time.Duration(a.cfg.Auth.TokenTTLHours) * time.Hour
	token, err := auth.GenerateToken(a.cfg.Auth.Secret, user.ID, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me returns the authenticated caller with their role set.
func (a *API) Me(c *gin.Context) {
	user := a.currentUser(c)

	groups := make([]string, 0, len(user.Groups))
	for _, g := range user.Groups {
		groups = append(groups, g.Name)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"is_staff": user.IsStaff,
		"groups":   groups,
	})
}
