package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"3001234567", "+573001234567", false},
		{"300 123 4567", "+573001234567", false},
		{"+57 300 123 4567", "+573001234567", false},
		{"+34 612 345 678", "+34612345678", false},
		{"12345", "", true},
		{"", "", true},
		{"not a phone", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) err=%v, wantErr=%v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
