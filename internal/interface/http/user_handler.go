package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Name     string                `form:"name" binding:"required"`
	Email    string                `form:"email" binding:"required,email"`
	Password string                `form:"password" binding:"required,pwd"`
	Image    *multipart.FileHeader `form:"image" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if len(users) == 0 {
		response.Fail(c, http.StatusNotFound, "Could not find any users.", nil)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	response.OK(c, http.StatusOK, gin.H{"users": out}, "")
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}
	upload, f, err := openUpload(req.Image)
	if err != nil {
		writeBindError(c, err)
		return
	}
	defer f.Close()

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    upload,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	u := res.User
	response.OK(c, http.StatusCreated, gin.H{
		"userId":    u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"imageUrl":  u.ImageURL,
		"places":    toUser(u).Places,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	}, "Signed up!")
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, "Could not identify user, credentials seem to be wrong.", nil)
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{
		"userId":    res.User.ID,
		"email":     res.User.Email,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	}, "Logged in!")
}
