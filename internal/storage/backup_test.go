package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"zenwallet/internal/core"
)

func TestExportImportRoundTrip(t *testing.T) {
	state := DefaultState()
	state.Wallets = append(state.Wallets, core.Wallet{ID: "w-2", Name: "Cash", Type: "Cash", Color: "#000"})
	state.IsDarkMode = true

	var buf bytes.Buffer
	if err := ExportState(&buf, state); err != nil {
		t.Fatalf("export: %v", err)
	}

	got, err := ImportState(&buf, DefaultState())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Wallets) != 2 || got.Wallets[1].Name != "Cash" {
		t.Fatalf("wallets not round-tripped: %+v", got.Wallets)
	}
	if !got.IsDarkMode {
		t.Fatalf("dark mode preference lost")
	}
}

func TestImportRejectsUnrecognizablePayloads(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty file", ""},
		{"not json", "definitely not json"},
		{"json without app shape", `{"foo": 1, "bar": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ImportState(strings.NewReader(tc.in), DefaultState())
			if !errors.Is(err, ErrInvalidBackup) {
				t.Fatalf("expected ErrInvalidBackup, got %v", err)
			}
		})
	}
}

func TestImportMergesMissingCollectionsFromCurrent(t *testing.T) {
	current := DefaultState()
	current.Schedules = []core.Schedule{{ID: "s-1", Name: "Rent"}}

	// Backup carries wallets only; everything else must survive from the
	// current state.
	in := `{"wallets": [{"id": "w-9", "name": "Imported", "balance": 1500, "type": "Cash", "color": "#fff"}]}`
	got, err := ImportState(strings.NewReader(in), current)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Wallets) != 1 || got.Wallets[0].ID != "w-9" {
		t.Fatalf("wallets not replaced: %+v", got.Wallets)
	}
	if got.Wallets[0].Balance.Cents != 1500 {
		t.Fatalf("balance cents not decoded: %+v", got.Wallets[0].Balance)
	}
	if len(got.Schedules) != 1 || got.Schedules[0].Name != "Rent" {
		t.Fatalf("schedules should be kept from current: %+v", got.Schedules)
	}
	if len(got.Categories) != len(DefaultCategories()) {
		t.Fatalf("categories should be kept from current")
	}
}

func TestImportDoesNotMutateOnError(t *testing.T) {
	current := DefaultState()
	_, err := ImportState(strings.NewReader(`{"nope": true}`), current)
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(current.Wallets) != 1 {
		t.Fatalf("current state mutated on failed import")
	}
}
