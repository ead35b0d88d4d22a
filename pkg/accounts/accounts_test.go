package accounts_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kestrellabs/voicevault/pkg/accounts"
)

// storeFactory creates a fresh Store per test. Both implementations run
// the same suite.
type storeFactory func(t *testing.T) accounts.Store

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) accounts.Store {
			return accounts.NewMemory()
		},
		"badger": func(t *testing.T) accounts.Store {
			s, err := accounts.NewBadger(accounts.BadgerOptions{InMemory: true})
			if err != nil {
				t.Fatalf("open badger: %v", err)
			}
			return s
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			ctx := context.Background()

			vp := []float32{0.1, -2.75, 3.0e-5, 42, 0.3333333}
			rec := &accounts.Record{
				Address:    "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
				VoicePrint: vp,
				CreatedAt:  time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
				Type:       accounts.TypeCustodial,
			}
			if err := s.Put(ctx, rec); err != nil {
				t.Fatalf("Put: %v", err)
			}

			got, err := s.Get(ctx, rec.Address)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Address != rec.Address || got.Type != rec.Type {
				t.Errorf("got %+v, want %+v", got, rec)
			}
			if !got.CreatedAt.Equal(rec.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
			}
			// The voiceprint must round-trip bit-exactly; the biometric
			// score depends on it.
			if !slices.Equal(got.VoicePrint, vp) {
				t.Errorf("VoicePrint = %v, want %v", got.VoicePrint, vp)
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()

			_, err := s.Get(context.Background(), "missing")
			if !errors.Is(err, accounts.ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			ctx := context.Background()

			first := &accounts.Record{Address: "addr", VoicePrint: []float32{1, 2, 3}, Type: accounts.TypeExternal}
			second := &accounts.Record{Address: "addr", VoicePrint: []float32{9, 9}, Type: accounts.TypeExternal}

			if err := s.Put(ctx, first); err != nil {
				t.Fatalf("first Put: %v", err)
			}
			if err := s.Put(ctx, second); err != nil {
				t.Fatalf("second Put: %v", err)
			}

			got, err := s.Get(ctx, "addr")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			// Re-enrollment overwrites, never merges.
			if !slices.Equal(got.VoicePrint, second.VoicePrint) {
				t.Errorf("VoicePrint = %v, want %v", got.VoicePrint, second.VoicePrint)
			}
		})
	}
}

func TestStoreDeleteAndList(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			ctx := context.Background()

			for _, addr := range []string{"charlie", "alice", "bob"} {
				if err := s.Put(ctx, &accounts.Record{Address: addr, Type: accounts.TypeExternal}); err != nil {
					t.Fatalf("Put %s: %v", addr, err)
				}
			}

			if err := s.Delete(ctx, "bob"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, "never-existed"); err != nil {
				t.Errorf("Delete of missing address: %v", err)
			}

			got, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{"alice", "charlie"}
			if !slices.Equal(got, want) {
				t.Errorf("List() = %v, want %v", got, want)
			}
		})
	}
}

func TestRecordEnrolled(t *testing.T) {
	var nilRec *accounts.Record
	if nilRec.Enrolled() {
		t.Error("nil record reports enrolled")
	}
	if (&accounts.Record{Address: "a"}).Enrolled() {
		t.Error("record without voiceprint reports enrolled")
	}
	if !(&accounts.Record{Address: "a", VoicePrint: []float32{1}}).Enrolled() {
		t.Error("record with voiceprint reports not enrolled")
	}
}

func TestPutRequiresAddress(t *testing.T) {
	s := accounts.NewMemory()
	if err := s.Put(context.Background(), &accounts.Record{}); err == nil {
		t.Error("Put of record without address succeeded")
	}
}
