package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fcdesk/credvault/internal/logging"
	"github.com/fcdesk/credvault/internal/server/services"
)

// IdentityService is the slice of the identity service the handler needs.
type IdentityService interface {
	Store(ctx context.Context, in services.StoreIdentityInput) (*services.StoreIdentityResult, error)
}

// IdentityHandler serves POST /api/store-identity.
type IdentityHandler struct {
	Service IdentityService
	Logger  logging.Logger
}

type storeIdentityRequest struct {
	ResidentID    string `json:"residentId"`
	ResidentFront string `json:"residentFront"`
	ResidentBack  string `json:"residentBack"`
	Address       string `json:"address"`
	AddressDetail string `json:"addressDetail"`
}

func (h *IdentityHandler) Store(w http.ResponseWriter, r *http.Request) {
	var req storeIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	res, err := h.Service.Store(r.Context(), services.StoreIdentityInput{
		ResidentID:    req.ResidentID,
		Front:         req.ResidentFront,
		Back:          req.ResidentBack,
		Address:       req.Address,
		AddressDetail: req.AddressDetail,
	})
	if err != nil {
		h.Logger.Error(r.Context(), "store identity failed", "error", err)
		writeStoreError(w)
		return
	}

	switch res.Code {
	case "":
		writeOK(w, nil)
	case services.CodeNotFound:
		writeFail(w, http.StatusNotFound, res.Code, nil)
	case services.CodeDuplicateResident:
		writeFail(w, http.StatusConflict, res.Code, nil)
	default:
		writeFail(w, http.StatusBadRequest, res.Code, nil)
	}
}
