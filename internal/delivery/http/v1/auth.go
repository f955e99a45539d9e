package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

const tokenTypeBearer = "Bearer"

type registerRequest struct {
	Name                 string `json:"name" binding:"required,notblank,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8,max=255"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	Role                 string `json:"role" binding:"required,oneof=admin user"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	if fields := bindJSON(c, &req); fields != nil {
		h.logger.Debug().
			Interface("errors", fields).
			Msg("invalid register request")
		abort(c, newValidationError(fields))
		return
	}

	result, err := h.auth.Register(c, services.RegisterParams{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, envelope{
		Status:  statusSuccess,
		Message: "User registered successfully",
		Data:    newAuthResponse(result),
	})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	if fields := bindJSON(c, &req); fields != nil {
		abort(c, newValidationError(fields))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "Login successful",
		Data:    newAuthResponse(result),
	})
}

// HandleLogout closes the current session; ?all=true closes every session
// of the user.
func (h *handlerImpl) HandleLogout(c *gin.Context) {
	all, _ := strconv.ParseBool(c.Query("all"))

	err := h.auth.Logout(c, principalFromContext(c), all)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "Logged out successfully",
	})
}

func (h *handlerImpl) HandleMe(c *gin.Context) {
	user, err := h.auth.GetUser(c, principalFromContext(c).ID)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   gin.H{"user": newUserResponse(user)},
	})
}

func newAuthResponse(result *services.AuthResult) authResponse {
	return authResponse{
		User:      newUserResponse(result.User),
		Token:     result.Token,
		TokenType: tokenTypeBearer,
	}
}
