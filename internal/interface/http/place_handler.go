package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/interface/middleware"
	"github.com/oksasatya/go-places-api/pkg/response"
)

type PlaceHandler struct {
	Svc    *application.PlaceService
	Logger *logrus.Logger
}

func NewPlaceHandler(svc *application.PlaceService, logger *logrus.Logger) *PlaceHandler {
	return &PlaceHandler{Svc: svc, Logger: logger}
}

type createPlaceRequest struct {
	Title       string                `form:"title" binding:"required"`
	Description string                `form:"description" binding:"required,placedesc"`
	Address     string                `form:"address" binding:"required"`
	Image       *multipart.FileHeader `form:"image" binding:"required"`
}

type updatePlaceRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required,placedesc"`
}

func (h *PlaceHandler) GetByID(c *gin.Context) {
	p, err := h.Svc.GetByID(c.Request.Context(), c.Param("pid"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"place": toPlace(p)}, "")
}

// ListByUser answers 404 both for an unknown user and for a user without
// places, with different messages.
func (h *PlaceHandler) ListByUser(c *gin.Context) {
	places, err := h.Svc.ListByOwner(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if len(places) == 0 {
		response.Fail(c, http.StatusNotFound, "Could not find places for the provided user id.", nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"places": toPlaces(places)}, "")
}

func (h *PlaceHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	places, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"places": toPlaces(places)}, "")
}

func (h *PlaceHandler) Create(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c.Request.Context())
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication failed!", nil)
		return
	}
	var req createPlaceRequest
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

	p, err := h.Svc.Create(c.Request.Context(), id.UserID, application.CreatePlaceInput{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Image:       upload,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"place": toPlace(p)}, "Place created!")
}

func (h *PlaceHandler) Update(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c.Request.Context())
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication failed!", nil)
		return
	}
	var req updatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	p, err := h.Svc.Update(c.Request.Context(), c.Param("pid"), id.UserID, application.UpdatePlaceInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"place": toPlace(p)}, "Place updated!")
}

func (h *PlaceHandler) Delete(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c.Request.Context())
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication failed!", nil)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), c.Param("pid"), id.UserID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"message": "Place deleted!"}, "Place deleted!")
}
