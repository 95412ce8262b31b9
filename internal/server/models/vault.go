package models

import "time"

// VaultRecord is one subject's encrypted PII. Every encrypted field is
// stored as "base64(iv).base64(ciphertext)"; KeyVersion identifies which
// keyring entry sealed them.
type VaultRecord struct {
	FCID string

	ResidentNumberEncrypted string
	AddressEncrypted        *string
	AddressDetailEncrypted  *string

	KeyVersion int
	UpdatedAt  time.Time
}
