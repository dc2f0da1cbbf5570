package password

import (
	"strings"
	"testing"
	"unicode"
)

func TestPolicyValidate(t *testing.T) {
	p := NewPolicy(8)

	tests := []struct {
		name    string
		pw      string
		attrs   []string
		wantErr bool
	}{
		{"ok", "Guitarra2026", nil, false},
		{"empty", "", nil, true},
		{"short", "ab3", nil, true},
		{"numeric", "1234567890", nil, true},
		{"common", "Password1", nil, true},
		{"contains username", "xxanaperezxx9", []string{"anaperez"}, true},
		{"contains email local part", "9laura.g2026", []string{"laura.g@example.com"}, true},
		{"short attribute ignored", "bobbing77x", []string{"bob"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Validate(tt.pw, tt.attrs...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) err=%v, wantErr=%v", tt.pw, err, tt.wantErr)
			}
		})
	}
}

func TestNewPolicyFloor(t *testing.T) {
	if got := NewPolicy(3).MinLength; got != 8 {
		t.Errorf("MinLength = %d, want 8", got)
	}
	if got := NewPolicy(12).MinLength; got != 12 {
		t.Errorf("MinLength = %d, want 12", got)
	}
}

func TestHashAndMatches(t *testing.T) {
	h, err := Hash("Guitarra2026", 4)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !Matches(h, "Guitarra2026") {
		t.Error("Matches should accept the original password")
	}
	if Matches(h, "guitarra2026") {
		t.Error("Matches should reject a different password")
	}
}

func TestGenerateTemp(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := GenerateTemp(10)
		if err != nil {
			t.Fatalf("GenerateTemp: %v", err)
		}
		if len(pw) != 10 {
			t.Fatalf("len = %d, want 10", len(pw))
		}
		hasLetter := strings.IndexFunc(pw, unicode.IsLetter) >= 0
		hasDigit := strings.IndexFunc(pw, unicode.IsDigit) >= 0
		if !hasLetter || !hasDigit {
			t.Fatalf("%q must contain a letter and a digit", pw)
		}
		if strings.ContainsAny(pw, "0O1lI") {
			t.Fatalf("%q contains an ambiguous character", pw)
		}
	}
}

func TestGenerateTempShortLengthFallsBack(t *testing.T) {
	pw, err := GenerateTemp(3)
	if err != nil {
		t.Fatalf("GenerateTemp: %v", err)
	}
	if len(pw) != 10 {
		t.Errorf("len = %d, want 10", len(pw))
	}
}
