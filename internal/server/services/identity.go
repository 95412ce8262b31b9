package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fcdesk/credvault/internal/common"
	"github.com/fcdesk/credvault/internal/dbx"
	"github.com/fcdesk/credvault/internal/phone"
	"github.com/fcdesk/credvault/internal/piicrypt"
	"github.com/fcdesk/credvault/internal/resident"
	"github.com/fcdesk/credvault/internal/server/models"
	"github.com/fcdesk/credvault/internal/server/repositories/repomanager"
)

// StoreIdentityInput is the identity-submission payload. ResidentID is the
// FC's phone (the client session identity); Front and Back are the 6+7 digit
// halves of the resident registration number.
type StoreIdentityInput struct {
	ResidentID    string
	Front         string
	Back          string
	Address       string
	AddressDetail string
}

// StoreIdentityResult reports one identity submission.
type StoreIdentityResult struct {
	Code string
}

// IdentityService is the vault write path: checksum gate, AEAD seal, and the
// atomic vault+projection update.
type IdentityService struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	keyring *piicrypt.Keyring
	hasher  *piicrypt.LookupHasher
}

func NewIdentityService(db *sql.DB, rm repomanager.RepositoryManager, keyring *piicrypt.Keyring, hasher *piicrypt.LookupHasher) *IdentityService {
	return &IdentityService{db: db, rm: rm, keyring: keyring, hasher: hasher}
}

// Store validates, encrypts, and persists one FC's resident number and
// address. The vault row and the profile's display projection are written in
// the same transaction so they can never disagree.
func (s *IdentityService) Store(ctx context.Context, in StoreIdentityInput) (*StoreIdentityResult, error) {
	phoneNumber := phone.Normalize(in.ResidentID)
	front := resident.Normalize(in.Front)
	back := resident.Normalize(in.Back)
	address := strings.TrimSpace(in.Address)
	addressDetail := strings.TrimSpace(in.AddressDetail)

	if phoneNumber == "" || len(front) != 6 || len(back) != 7 || address == "" {
		return &StoreIdentityResult{Code: CodeInvalidPayload}, nil
	}

	number := front + back
	if !resident.Valid(number) {
		return &StoreIdentityResult{Code: CodeInvalidResidentNumber}, nil
	}

	profile, err := s.rm.Profiles(s.db).GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &StoreIdentityResult{Code: CodeNotFound}, nil
		}
		return nil, err
	}

	hash := s.hasher.Hash(number)
	exists, err := s.rm.Profiles(s.db).ExistsByResidentHash(ctx, hash, profile.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &StoreIdentityResult{Code: CodeDuplicateResident}, nil
	}

	numberEnc, version, err := s.keyring.Encrypt(number)
	if err != nil {
		return nil, err
	}
	addressEnc, _, err := s.keyring.Encrypt(address)
	if err != nil {
		return nil, err
	}
	var addressDetailEnc *string
	if addressDetail != "" {
		enc, _, err := s.keyring.Encrypt(addressDetail)
		if err != nil {
			return nil, err
		}
		addressDetailEnc = &enc
	}

	rec := &models.VaultRecord{
		FCID:                    profile.ID,
		ResidentNumberEncrypted: numberEnc,
		AddressEncrypted:        &addressEnc,
		AddressDetailEncrypted:  addressDetailEnc,
		KeyVersion:              version,
		UpdatedAt:               time.Now(),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Vault(tx).Upsert(ctx, rec); err != nil {
			return err
		}
		return s.rm.Profiles(tx).SetIdentityProjection(ctx, profile.ID, resident.Mask(number), hash, address, addressDetail)
	})
	if err != nil {
		return nil, err
	}

	return &StoreIdentityResult{}, nil
}
