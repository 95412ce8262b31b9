package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fcdesk/credvault/internal/logging"
	"github.com/fcdesk/credvault/internal/server/models"
	"github.com/fcdesk/credvault/internal/server/services"
)

// PasswordService is the slice of the password service the handlers need.
type PasswordService interface {
	SetPassword(ctx context.Context, phone, password string, confirm *string, info models.SignupInfo) (*services.SetPasswordResult, error)
	RequestReset(ctx context.Context, phone string) (*services.ResetRequestResult, error)
	ResetPassword(ctx context.Context, phone, token, newPassword string, confirm *string) (*services.ResetPasswordResult, error)
}

// PasswordHandler serves POST /api/set-password,
// POST /api/request-password-reset, and POST /api/reset-password.
type PasswordHandler struct {
	Service PasswordService
	Logger  logging.Logger
}

type setPasswordRequest struct {
	Phone    string  `json:"phone"`
	Password string  `json:"password"`
	Confirm  *string `json:"confirm"`

	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
	Recommender string `json:"recommender"`
	Email       string `json:"email"`
	Carrier     string `json:"carrier"`
}

func (h *PasswordHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	info := models.SignupInfo{
		Name:        req.Name,
		Affiliation: req.Affiliation,
		Recommender: req.Recommender,
		Email:       req.Email,
		Carrier:     req.Carrier,
	}

	res, err := h.Service.SetPassword(r.Context(), req.Phone, req.Password, req.Confirm, info)
	if err != nil {
		h.Logger.Error(r.Context(), "set password failed", "error", err)
		writeStoreError(w)
		return
	}

	if res.Code != "" {
		writeFail(w, http.StatusOK, res.Code, nil)
		return
	}
	writeOK(w, map[string]any{"residentId": res.ResidentID, "displayName": res.DisplayName})
}

type resetRequest struct {
	Phone       string  `json:"phone"`
	Token       string  `json:"token"`
	NewPassword string  `json:"newPassword"`
	Confirm     *string `json:"confirm"`
}

func (h *PasswordHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	res, err := h.Service.RequestReset(r.Context(), req.Phone)
	if err != nil {
		h.Logger.Error(r.Context(), "password reset request failed", "error", err)
		writeStoreError(w)
		return
	}

	switch {
	case res.Code == "" && res.TestMode:
		writeOK(w, map[string]any{"sent": true, "test_mode": true, "test_code": res.TestCode})
	case res.Code == "":
		writeOK(w, map[string]any{"sent": true})
	case res.Code == services.CodeCooldown:
		writeFail(w, http.StatusTooManyRequests, res.Code, nil)
	case res.Code == services.CodeSMSSendFailed:
		writeFail(w, http.StatusBadGateway, res.Code, nil)
	default:
		writeFail(w, http.StatusOK, res.Code, nil)
	}
}

func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	res, err := h.Service.ResetPassword(r.Context(), req.Phone, req.Token, req.NewPassword, req.Confirm)
	if err != nil {
		h.Logger.Error(r.Context(), "password reset failed", "error", err)
		writeStoreError(w)
		return
	}

	switch res.Code {
	case "":
		writeOK(w, nil)
	case services.CodeLocked:
		writeFail(w, http.StatusTooManyRequests, res.Code, map[string]any{"lockedUntil": res.LockedUntil})
	case services.CodeInvalidToken:
		writeFail(w, http.StatusOK, res.Code, map[string]any{"remaining": res.Remaining})
	default:
		writeFail(w, http.StatusOK, res.Code, nil)
	}
}
