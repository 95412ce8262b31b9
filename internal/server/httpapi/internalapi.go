package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fcdesk/credvault/internal/logging"
	"github.com/fcdesk/credvault/internal/server/services"
)

// ResidentNumberService is the slice of the decryption gateway the handler
// needs.
type ResidentNumberService interface {
	Decrypt(ctx context.Context, adminPhone string, fcIDs []string) (*services.ResidentNumbersResult, error)
}

// InternalHandler serves POST /internal/resident-numbers. The route is
// additionally guarded by RequireServiceSecret at the router.
type InternalHandler struct {
	Service ResidentNumberService
	Logger  logging.Logger
}

type residentNumbersRequest struct {
	AdminPhone string   `json:"adminPhone"`
	FCIDs      []string `json:"fcIds"`
}

func (h *InternalHandler) ResidentNumbers(w http.ResponseWriter, r *http.Request) {
	var req residentNumbersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	res, err := h.Service.Decrypt(r.Context(), req.AdminPhone, req.FCIDs)
	if err != nil {
		h.Logger.Error(r.Context(), "resident number decrypt failed", "error", err)
		writeStoreError(w)
		return
	}

	switch res.Code {
	case "":
		writeOK(w, map[string]any{"residentNumbers": res.ResidentNumbers})
	case services.CodeUnauthorized:
		writeFail(w, http.StatusForbidden, res.Code, nil)
	default:
		writeFail(w, http.StatusBadRequest, res.Code, nil)
	}
}
