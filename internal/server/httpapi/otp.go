package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fcdesk/credvault/internal/logging"
	"github.com/fcdesk/credvault/internal/server/services"
)

// OtpService is the slice of the OTP service the handlers need.
type OtpService interface {
	Request(ctx context.Context, phone string) (*services.OtpRequestResult, error)
	Verify(ctx context.Context, phone, code string) (*services.OtpVerifyResult, error)
}

// OtpHandler serves POST /api/request-otp and POST /api/verify-otp.
type OtpHandler struct {
	Service OtpService
	Logger  logging.Logger
}

type otpRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *OtpHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	res, err := h.Service.Request(r.Context(), req.Phone)
	if err != nil {
		h.Logger.Error(r.Context(), "otp request failed", "error", err)
		writeStoreError(w)
		return
	}

	switch {
	case res.AlreadyVerified:
		writeOK(w, map[string]any{"already_verified": true})
	case res.Code == "" && res.TestMode:
		writeOK(w, map[string]any{"sent": true, "test_mode": true, "test_code": res.TestCode})
	case res.Code == "":
		writeOK(w, map[string]any{"sent": true})
	case res.Code == services.CodeLocked:
		writeFail(w, http.StatusTooManyRequests, res.Code, map[string]any{"lockedUntil": res.LockedUntil})
	case res.Code == services.CodeCooldown:
		writeFail(w, http.StatusTooManyRequests, res.Code, nil)
	case res.Code == services.CodeSMSSendFailed:
		writeFail(w, http.StatusBadGateway, res.Code, nil)
	default:
		writeFail(w, http.StatusBadRequest, res.Code, nil)
	}
}

func (h *OtpHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	res, err := h.Service.Verify(r.Context(), req.Phone, req.Code)
	if err != nil {
		h.Logger.Error(r.Context(), "otp verify failed", "error", err)
		writeStoreError(w)
		return
	}

	switch res.Code {
	case "":
		writeOK(w, nil)
	case services.CodeLocked:
		writeFail(w, http.StatusTooManyRequests, res.Code, map[string]any{"lockedUntil": res.LockedUntil})
	case services.CodeInvalidCode:
		writeFail(w, http.StatusBadRequest, res.Code, map[string]any{"remaining": res.Remaining})
	case services.CodeNotFound:
		writeFail(w, http.StatusNotFound, res.Code, nil)
	default:
		writeFail(w, http.StatusBadRequest, res.Code, nil)
	}
}
