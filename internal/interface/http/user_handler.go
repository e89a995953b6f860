package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tiktok-clone-auth/internal/application"
	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
	"github.com/oksasatya/tiktok-clone-auth/pkg/response"
	"github.com/oksasatya/tiktok-clone-auth/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func profileBody(u *entity.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"email":           u.Email,
		"username":        u.Username,
		"name":            u.Name,
		"avatar_url":      u.AvatarURL,
		"bio":             u.Bio,
		"is_verified":     u.IsVerified,
		"email_confirmed": u.EmailConfirmed,
		"birth_date":      u.BirthDate.Format(birthDateLayout),
		"created_at":      u.CreatedAt,
		"updated_at":      u.UpdatedAt,
	}
}

// publicBody omits the fields only the owner should see.
func publicBody(u *entity.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"username":    u.Username,
		"name":        u.Name,
		"avatar_url":  u.AvatarURL,
		"bio":         u.Bio,
		"is_verified": u.IsVerified,
	}
}

// Me GET /api/user/me
// Identity snapshot straight from the token claims; no database read.
func (h *UserHandler) Me(c *gin.Context) {
	v, ok := c.Get("claims")
	claims, castOK := v.(*helpers.Claims)
	if !ok || !castOK {
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "missing access token")
		return
	}
	response.Success(c, http.StatusOK, "me", gin.H{
		"id":          claims.UserID,
		"email":       claims.Email,
		"username":    claims.Username,
		"name":        claims.Name,
		"is_verified": claims.Verified,
	})
}

// GetProfile GET /api/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "profile", profileBody(u))
}

// GetByUsername GET /api/user/by-username/:username
func (h *UserHandler) GetByUsername(c *gin.Context) {
	u, err := h.Svc.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "profile", publicBody(u))
}

type changeNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ChangeName PATCH /api/user/name
func (h *UserHandler) ChangeName(c *gin.Context) {
	var req changeNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	u, err := h.Svc.ChangeName(c.Request.Context(), c.GetString("userID"), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "name updated", profileBody(u))
}

type changeBioRequest struct {
	Bio string `json:"bio" binding:"required"`
}

// ChangeBio PATCH /api/user/bio
func (h *UserHandler) ChangeBio(c *gin.Context) {
	var req changeBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	u, err := h.Svc.ChangeBio(c.Request.Context(), c.GetString("userID"), req.Bio)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "bio updated", profileBody(u))
}

type changeAvatarRequest struct {
	AvatarURL string `json:"avatar_url" binding:"required,url"`
}

// ChangeAvatar PATCH /api/user/avatar
func (h *UserHandler) ChangeAvatar(c *gin.Context) {
	var req changeAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	u, err := h.Svc.ChangeAvatar(c.Request.Context(), c.GetString("userID"), req.AvatarURL)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "avatar updated", profileBody(u))
}

// UploadAvatar POST /api/user/avatar/upload (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "avatar file is required")
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString("userID"),
		file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "avatar uploaded", gin.H{"avatar_url": url})
}

type changeUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// ChangeUsername PATCH /api/user/username
func (h *UserHandler) ChangeUsername(c *gin.Context) {
	var req changeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	u, err := h.Svc.ChangeUsername(c.Request.Context(), c.GetString("userID"), req.Username)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "username updated", profileBody(u))
}

type changeUsernameByEmailRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
}

// ChangeUsernameByEmail POST /api/auth/onboarding/username
// Onboarding step before the client holds an access token.
func (h *UserHandler) ChangeUsernameByEmail(c *gin.Context) {
	var req changeUsernameByEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	u, err := h.Svc.ChangeUsernameByEmail(c.Request.Context(), req.Email, req.Username)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "username updated", publicBody(u))
}

// CheckUsername GET /api/user/username/check?username=
func (h *UserHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	free, err := h.Svc.CheckUsername(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "username checked", gin.H{"available": free})
}

type checkBirthDateRequest struct {
	BirthDate string `json:"birth_date" binding:"required"`
}

// CheckBirthDate POST /api/auth/birthdate/check
func (h *UserHandler) CheckBirthDate(c *gin.Context) {
	var req checkBirthDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Summary(err))
		return
	}
	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "birth_date must be YYYY-MM-DD")
		return
	}
	if err := h.Svc.CheckBirthDate(birthDate); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "birth date accepted", gin.H{"valid": true})
}

// Verify POST /api/user/:id/verify (internal)
func (h *UserHandler) Verify(c *gin.Context) {
	u, err := h.Svc.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "user verified", publicBody(u))
}

// UnVerify POST /api/user/:id/unverify (internal)
func (h *UserHandler) UnVerify(c *gin.Context) {
	u, err := h.Svc.UnVerify(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "user unverified", publicBody(u))
}

// Search GET /api/user/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "q is required")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, "search results", gin.H{"results": hits, "count": len(hits)})
}
