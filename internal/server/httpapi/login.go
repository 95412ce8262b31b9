package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fcdesk/credvault/internal/logging"
	"github.com/fcdesk/credvault/internal/server/services"
)

// LoginService is the slice of the login service the handler needs.
type LoginService interface {
	Login(ctx context.Context, phone, password string) (*services.LoginResult, error)
}

// LoginHandler serves POST /api/login.
type LoginHandler struct {
	Service LoginService
	Logger  logging.Logger
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	res, err := h.Service.Login(r.Context(), req.Phone, req.Password)
	if err != nil {
		h.Logger.Error(r.Context(), "login failed", "error", err)
		writeStoreError(w)
		return
	}

	switch res.Code {
	case "":
		writeOK(w, map[string]any{
			"role":        res.Role,
			"residentId":  res.ResidentID,
			"displayName": res.DisplayName,
		})
	case services.CodeLocked:
		writeFail(w, http.StatusOK, res.Code, map[string]any{"lockedUntil": res.LockedUntil})
	case services.CodeInvalidPassword:
		writeFail(w, http.StatusOK, res.Code, map[string]any{"remaining": res.Remaining})
	default:
		writeFail(w, http.StatusOK, res.Code, nil)
	}
}
