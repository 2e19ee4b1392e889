package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/krestly/crest-server/internal/models"
)

func windsor() models.DesignRequest {
	return models.DesignRequest{
		Name:    "Windsor",
		Symbols: "lion, oak leaf",
		Colors:  "navy and gold",
		Vibe:    "regal",
		Style:   "heraldic shield",
	}
}

func TestCompose_AllFields(t *testing.T) {
	for _, mode := range []Mode{ModeLenient, ModeStrict} {
		t.Run(string(mode), func(t *testing.T) {
			system, user := Compose(windsor(), mode)

			want := "Name: Windsor\nElements: lion, oak leaf\nColors: navy and gold\nVibe: regal\nStyle: heraldic shield"
			if user != want {
				t.Errorf("user text:\n%q\nwant:\n%q", user, want)
			}
			if n := len(strings.Split(user, "\n")); n != 5 {
				t.Errorf("expected 5 lines, got %d", n)
			}
			if !strings.Contains(system, `"Windsor"`) {
				t.Errorf("system text does not name Windsor:\n%s", system)
			}
			if strings.Contains(system, "do not include any text") {
				t.Error("system text forbids text although a name was given")
			}
		})
	}
}

func TestCompose_Subset(t *testing.T) {
	req := models.DesignRequest{Colors: "green", Style: "badge"}
	system, user := Compose(req, ModeLenient)

	if user != "Colors: green\nStyle: badge" {
		t.Errorf("user text = %q", user)
	}
	if !strings.Contains(system, "do not include any text at all") {
		t.Errorf("system text should forbid text without a name:\n%s", system)
	}
}

func TestCompose_Fallback(t *testing.T) {
	_, user := Compose(models.DesignRequest{}, ModeLenient)
	if user != Fallback {
		t.Errorf("user text = %q, want fallback", user)
	}
	for _, label := range []string{"Name:", "Elements:", "Colors:", "Vibe:", "Style:"} {
		if strings.Contains(user, label) {
			t.Errorf("fallback contains label %q", label)
		}
	}
}

func TestCompose_SystemConstraints(t *testing.T) {
	system, _ := Compose(windsor(), ModeLenient)
	for _, want := range []string{"embroidery-safe", "no gradients", "symmetrical", "2 harmonious", "badge-style"} {
		if !strings.Contains(system, want) {
			t.Errorf("system text missing %q", want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		req         models.DesignRequest
		mode        Mode
		max         int
		wantMissing []string
		wantTooLong []string
	}{
		{name: "lenient empty", req: models.DesignRequest{}, mode: ModeLenient, max: 10},
		{name: "strict full", req: windsor(), mode: ModeStrict, max: 100},
		{
			name:        "strict missing",
			req:         models.DesignRequest{Name: "Windsor", Colors: "navy"},
			mode:        ModeStrict,
			max:         100,
			wantMissing: []string{"symbols", "vibe", "style"},
		},
		{
			name:        "too long",
			req:         models.DesignRequest{Vibe: strings.Repeat("é", 11)},
			mode:        ModeLenient,
			max:         10,
			wantTooLong: []string{"vibe"},
		},
		{name: "limit counts runes", req: models.DesignRequest{Vibe: strings.Repeat("é", 10)}, mode: ModeLenient, max: 10},
		{name: "limit disabled", req: models.DesignRequest{Vibe: strings.Repeat("x", 1000)}, mode: ModeLenient, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req, tt.mode, tt.max)
			if tt.wantMissing == nil && tt.wantTooLong == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %v", err)
			}
			if strings.Join(fe.Missing, ",") != strings.Join(tt.wantMissing, ",") {
				t.Errorf("Missing = %v, want %v", fe.Missing, tt.wantMissing)
			}
			if strings.Join(fe.TooLong, ",") != strings.Join(tt.wantTooLong, ",") {
				t.Errorf("TooLong = %v, want %v", fe.TooLong, tt.wantTooLong)
			}
		})
	}
}

func TestPresence(t *testing.T) {
	got := Presence(models.DesignRequest{Name: "A", Style: "B"})
	want := map[string]bool{"name": true, "symbols": false, "colors": false, "vibe": false, "style": true}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Presence[%s] = %v, want %v", k, got[k], v)
		}
	}
}
