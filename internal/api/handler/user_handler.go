package handler

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

const headerContentTransferEncoding = "Content-Transfer-Encoding"

// UserHandler handles user signup.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /users.
//
// @Summary      Sign up a user
// @Description  The body may be base64-encoded JSON (Content-Transfer-Encoding: base64).
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User"
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return domain.Validation("could not read body")
	}
	body, err := decodeBody(raw, c.Request().Header.Get(headerContentTransferEncoding))
	if err != nil {
		return err
	}

	var req createUserRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return domain.Validation("invalid JSON body")
		}
	}
	if err := c.Validate(&req); err != nil {
		if req.UserID == "" || req.Email == "" || req.Name == "" || req.Role == "" {
			return domain.Validation("missing fields: userId, email, name, role")
		}
		return err
	}

	user, err := h.service.Create(c.Request().Context(), ports.CreateUserInput{
		UserID: req.UserID,
		Email:  req.Email,
		Name:   req.Name,
		Role:   req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createUserResponse{Message: "user created", UserID: user.ID})
}

// decodeBody returns the JSON payload, base64-decoding it when the header says
// so or when the body is not JSON but is valid base64.
func decodeBody(raw []byte, transferEncoding string) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.EqualFold(transferEncoding, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(trimmed)
		if err != nil {
			return nil, domain.Validation("body is not valid base64")
		}
		return decoded, nil
	}
	if trimmed == "" || json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil && json.Valid(decoded) {
		return decoded, nil
	}
	return nil, domain.Validation("invalid JSON body")
}
