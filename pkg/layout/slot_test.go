package layout

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		input  string
		want   Slot
		wantOK bool
	}{
		{input: "header", want: SlotHeader, wantOK: true},
		{input: "hook", want: SlotHook, wantOK: true},
		{input: "hooks", want: SlotHook, wantOK: true},
		{input: "server_error", want: SlotServerError, wantOK: true},
		{input: "banner", want: Slot("banner"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSlot(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseSlot(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSlot_UnmarshalJSON(t *testing.T) {
	var s Slot
	if err := json.Unmarshal([]byte(`"hooks"`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s != SlotHook {
		t.Errorf("alias decoded as %q, want %q", s, SlotHook)
	}

	if err := json.Unmarshal([]byte(`"banner"`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s.Valid() {
		t.Error("unknown slot should not be valid")
	}

	if err := json.Unmarshal([]byte(`5`), &s); err == nil {
		t.Error("expected error for non-string slot")
	}
}

func TestSlot_Mode(t *testing.T) {
	single := []Slot{SlotHeader, SlotFooter, SlotNotFound, SlotSinglePost, SlotSinglePage, SlotSearch, SlotArchives, SlotOffline, SlotServerError}
	stack := []Slot{SlotHook, SlotInside, SlotGlobal, SlotSidebar, SlotIndividual}

	for _, s := range single {
		if s.Mode() != ModeSingle {
			t.Errorf("%s.Mode() = %s, want single", s, s.Mode())
		}
	}
	for _, s := range stack {
		if s.Mode() != ModeStack {
			t.Errorf("%s.Mode() = %s, want stack", s, s.Mode())
		}
	}
}

func TestAvailableSlots(t *testing.T) {
	tests := []struct {
		name        string
		caps        Capabilities
		wantSidebar bool
		wantPWA     bool
	}{
		{name: "no capabilities"},
		{name: "sidebar", caps: Capabilities{Sidebar: true}, wantSidebar: true},
		{name: "pwa", caps: Capabilities{PWA: true}, wantPWA: true},
		{name: "all", caps: Capabilities{Sidebar: true, PWA: true}, wantSidebar: true, wantPWA: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := AvailableSlots(tt.caps)

			if got := slices.Contains(slots, SlotSidebar); got != tt.wantSidebar {
				t.Errorf("sidebar offered = %v, want %v", got, tt.wantSidebar)
			}
			if got := slices.Contains(slots, SlotOffline); got != tt.wantPWA {
				t.Errorf("offline offered = %v, want %v", got, tt.wantPWA)
			}
			if got := slices.Contains(slots, SlotServerError); got != tt.wantPWA {
				t.Errorf("server_error offered = %v, want %v", got, tt.wantPWA)
			}
			if !slices.Contains(slots, SlotHeader) {
				t.Error("header should always be offered")
			}
		})
	}
}
