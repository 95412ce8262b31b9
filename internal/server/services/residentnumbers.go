package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fcdesk/credvault/internal/common"
	"github.com/fcdesk/credvault/internal/logging"
	"github.com/fcdesk/credvault/internal/phone"
	"github.com/fcdesk/credvault/internal/piicrypt"
	"github.com/fcdesk/credvault/internal/resident"
	"github.com/fcdesk/credvault/internal/server/repositories/repomanager"
)

// decryptChunkSize bounds one vault query in the batch decrypt.
const decryptChunkSize = 100

// ResidentNumbersResult maps every requested FC id to a hyphenated resident
// number, or nil when the id has no record or its ciphertext cannot be
// opened.
type ResidentNumbersResult struct {
	Code            string
	ResidentNumbers map[string]*string
}

// ResidentNumberService is the privileged decryption gateway. The caller
// must already have passed the service-secret check at the transport layer;
// this service enforces the second gate, an active admin account.
type ResidentNumberService struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	keyring *piicrypt.Keyring
	logger  logging.Logger
}

func NewResidentNumberService(db *sql.DB, rm repomanager.RepositoryManager, keyring *piicrypt.Keyring, logger logging.Logger) *ResidentNumberService {
	return &ResidentNumberService{db: db, rm: rm, keyring: keyring, logger: logger}
}

// Decrypt opens the resident numbers for the given FC ids on behalf of an
// active admin. Records that are missing or fail to decrypt yield nil
// rather than failing the whole batch; every requested id appears in the
// result.
func (s *ResidentNumberService) Decrypt(ctx context.Context, adminPhone string, fcIDs []string) (*ResidentNumbersResult, error) {
	admin, err := s.rm.Accounts(s.db).GetAdminByPhone(ctx, phone.Normalize(adminPhone))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &ResidentNumbersResult{Code: CodeUnauthorized}, nil
		}
		return nil, err
	}
	if !admin.Active {
		return &ResidentNumbersResult{Code: CodeUnauthorized}, nil
	}

	ids := dedupe(fcIDs)
	if len(ids) == 0 {
		return &ResidentNumbersResult{Code: CodeInvalidPayload}, nil
	}

	out := make(map[string]*string, len(ids))
	for _, id := range ids {
		out[id] = nil
	}

	repo := s.rm.Vault(s.db)
	for start := 0; start < len(ids); start += decryptChunkSize {
		end := start + decryptChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		recs, err := repo.GetByFCIDs(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}

		for _, rec := range recs {
			plain, err := s.keyring.Decrypt(rec.ResidentNumberEncrypted, rec.KeyVersion)
			if err != nil {
				s.logger.Warn(ctx, "vault record failed to decrypt", "fc_id", rec.FCID, "key_version", rec.KeyVersion)
				continue
			}
			digits := resident.Normalize(plain)
			if len(digits) != resident.Length {
				continue
			}
			formatted := resident.Hyphenate(digits)
			out[rec.FCID] = &formatted
		}
	}

	return &ResidentNumbersResult{ResidentNumbers: out}, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
