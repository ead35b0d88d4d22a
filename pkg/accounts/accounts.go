// Package accounts persists the binding between a wallet address and
// its enrolled voiceprint.
//
// The Store interface gives the orchestrator atomic get/put by address
// and nothing more. A BadgerDB-backed implementation serves production;
// an in-memory implementation serves tests. Records are encoded with
// msgpack so the float32 voiceprint round-trips at native precision —
// the biometric score computed against a reloaded voiceprint is
// bit-identical to one computed against the freshly extracted vector.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Account types.
const (
	// TypeCustodial marks accounts whose key was generated server-side.
	TypeCustodial = "custodial"

	// TypeExternal marks accounts enrolled with a client-held key.
	TypeExternal = "external"
)

// ErrNotFound is returned when no record exists for an address.
var ErrNotFound = errors.New("accounts: not found")

// Record is the persisted state of one account. VoicePrint is nil until
// the first successful enrollment and is overwritten, never merged, by
// later enrollments.
type Record struct {
	Address    string    `msgpack:"address"`
	VoicePrint []float32 `msgpack:"voice_print"`
	CreatedAt  time.Time `msgpack:"created_at"`
	Type       string    `msgpack:"type"`
}

// New returns a fresh record for address with no voiceprint.
func New(address, typ string) *Record {
	return &Record{
		Address:   address,
		CreatedAt: time.Now().UTC(),
		Type:      typ,
	}
}

// Enrolled reports whether the record carries a voiceprint.
func (r *Record) Enrolled() bool {
	return r != nil && len(r.VoicePrint) > 0
}

// Store is the account persistence contract. Get and Put are atomic
// per address; concurrent requests for different addresses never
// interfere, and overwriting enrollment is last-writer-wins.
type Store interface {
	// Get returns the record for address, or ErrNotFound.
	Get(ctx context.Context, address string) (*Record, error)

	// Put stores the record under its address, overwriting any
	// existing record.
	Put(ctx context.Context, rec *Record) error

	// Delete removes the record for address. Deleting a missing
	// address is not an error.
	Delete(ctx context.Context, address string) error

	// List returns all stored addresses in lexicographic order.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

func encodeRecord(rec *Record) ([]byte, error) {
	if rec.Address == "" {
		return nil, fmt.Errorf("accounts: record without address")
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("accounts: encode %s: %w", rec.Address, err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("accounts: decode: %w", err)
	}
	return &rec, nil
}
