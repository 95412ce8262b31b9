package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/fcdesk/credvault/internal/common"
	"github.com/fcdesk/credvault/internal/piicrypt"
	"github.com/fcdesk/credvault/internal/resident"
	"github.com/fcdesk/credvault/internal/server/models"
)

func testKeyring(t *testing.T) *piicrypt.Keyring {
	t.Helper()
	key := make([]byte, piicrypt.KeyLength)
	for i := range key {
		key[i] = byte(i)
	}
	k, err := piicrypt.NewKeyring(1, map[int][]byte{1: key})
	if err != nil {
		t.Fatalf("NewKeyring error: %v", err)
	}
	return k
}

func testHasher(t *testing.T) *piicrypt.LookupHasher {
	t.Helper()
	h, err := piicrypt.NewLookupHasher([]byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewLookupHasher error: %v", err)
	}
	return h
}

// validResidentNumber builds a checksum-correct 13-digit number.
func validResidentNumber(t *testing.T, first12 string) string {
	t.Helper()
	if len(first12) != 12 {
		t.Fatalf("need 12 digits, got %q", first12)
	}
	return first12 + strconv.Itoa(resident.Checksum(first12))
}

func TestStoreIdentity_InvalidPayload(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewIdentityService(db, &fakeRepoManager{}, testKeyring(t), testHasher(t))
	res, err := s.Store(context.Background(), StoreIdentityInput{
		ResidentID: "01012345678", Front: "900101", Back: "123", Address: "서울시",
	})
	if err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if res.Code != CodeInvalidPayload {
		t.Fatalf("want invalid_payload, got %q", res.Code)
	}
}

func TestStoreIdentity_ChecksumFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	number := validResidentNumber(t, "900101123456")
	// flip the check digit
	bad := number[:12] + string(byte('0'+(number[12]-'0'+1)%10))

	s := NewIdentityService(db, &fakeRepoManager{}, testKeyring(t), testHasher(t))
	res, err := s.Store(context.Background(), StoreIdentityInput{
		ResidentID: "01012345678", Front: bad[:6], Back: bad[6:], Address: "서울시",
	})
	if err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if res.Code != CodeInvalidResidentNumber {
		t.Fatalf("want invalid_resident_number, got %q", res.Code)
	}
}

func TestStoreIdentity_ProfileNotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	number := validResidentNumber(t, "900101123456")
	rm := &fakeRepoManager{profiles: &fakeProfilesRepo{getErr: common.ErrorNotFound}}
	s := NewIdentityService(db, rm, testKeyring(t), testHasher(t))
	res, err := s.Store(context.Background(), StoreIdentityInput{
		ResidentID: "01012345678", Front: number[:6], Back: number[6:], Address: "서울시",
	})
	if err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if res.Code != CodeNotFound {
		t.Fatalf("want not_found, got %q", res.Code)
	}
}

func TestStoreIdentity_Duplicate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	number := validResidentNumber(t, "900101123456")
	rm := &fakeRepoManager{
		profiles: &fakeProfilesRepo{getOut: &models.Profile{ID: "p-1"}, existsOut: true},
	}
	s := NewIdentityService(db, rm, testKeyring(t), testHasher(t))
	res, err := s.Store(context.Background(), StoreIdentityInput{
		ResidentID: "01012345678", Front: number[:6], Back: number[6:], Address: "서울시",
	})
	if err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if res.Code != CodeDuplicateResident {
		t.Fatalf("want duplicate_resident, got %q", res.Code)
	}
}

func TestStoreIdentity_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	number := validResidentNumber(t, "900101123456")
	keyring := testKeyring(t)
	hasher := testHasher(t)
	prof := &fakeProfilesRepo{getOut: &models.Profile{ID: "p-1"}}
	vaultRepo := &fakeVaultRepo{}
	rm := &fakeRepoManager{profiles: prof, vault: vaultRepo}

	s := NewIdentityService(db, rm, keyring, hasher)
	res, err := s.Store(context.Background(), StoreIdentityInput{
		ResidentID:    "010-1234-5678",
		Front:         number[:6],
		Back:          number[6:],
		Address:       "서울시 강남구",
		AddressDetail: "101동 202호",
	})
	if err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if res.Code != "" {
		t.Fatalf("want success, got %q", res.Code)
	}

	rec := vaultRepo.upserted
	if rec == nil || rec.FCID != "p-1" || rec.KeyVersion != keyring.CurrentVersion() {
		t.Fatalf("unexpected vault record: %+v", rec)
	}
	plain, err := keyring.Decrypt(rec.ResidentNumberEncrypted, rec.KeyVersion)
	if err != nil || plain != number {
		t.Fatalf("vault ciphertext does not round-trip: %q %v", plain, err)
	}
	if rec.AddressDetailEncrypted == nil {
		t.Fatalf("address detail should be encrypted")
	}

	if prof.projMasked != resident.Mask(number) {
		t.Fatalf("projection mask %q, want %q", prof.projMasked, resident.Mask(number))
	}
	if prof.projHash != hasher.Hash(number) {
		t.Fatalf("projection hash mismatch")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tx expectations: %v", err)
	}
}
