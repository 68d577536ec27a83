package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/pkg/apperror"
	"github.com/oksasatya/go-user-registration/pkg/response"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type phoneRequest struct {
	Number      string `json:"number" binding:"nonblank"`
	CityCode    string `json:"citycode" binding:"nonblank"`
	CountryCode string `json:"contrycode" binding:"nonblank"`
}

type signUpRequest struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required"`
	Password string         `json:"password" binding:"required"`
	Phones   []phoneRequest `json:"phones" binding:"required,dive"`
}

func (r signUpRequest) toInput() userapp.RegisterInput {
	phones := make([]entity.PhoneInput, 0, len(r.Phones))
	for _, p := range r.Phones {
		phones = append(phones, entity.PhoneInput{Number: p.Number, CityCode: p.CityCode, CountryCode: p.CountryCode})
	}
	return userapp.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password, Phones: phones}
}

// SignUp registers a user and returns its public view with the issued token.
func (h *UserHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	view, err := h.Svc.Register(c.Request.Context(), req.toInput())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view, "user registered", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	views, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, views, "users", map[string]any{"count": len(views)})
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	switch apperror.KindOf(err) {
	case apperror.InvalidFormat:
		response.Error[any](c, http.StatusBadRequest, apperror.MessageOf(err), nil)
	case apperror.DuplicateIdentity:
		response.Error[any](c, http.StatusConflict, apperror.MessageOf(err), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, userapp.MsgUnexpected, nil)
	}
}
