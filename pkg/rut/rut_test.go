package rut

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "empty", raw: "   ", wantErr: ErrEmpty},
		{name: "plain valid", raw: "12345678-5", want: "12345678-5"},
		{name: "dotted valid", raw: "12.345.678-5", want: "12345678-5"},
		{name: "no separators", raw: "123456785", want: "12345678-5"},
		{name: "repeated digits", raw: "11111111-1", want: "11111111-1"},
		{name: "lowercase k", raw: "6-k", want: "6-K"},
		{name: "wrong check digit", raw: "12345678-9", wantErr: ErrAgainst},
		{name: "wrong repeated", raw: "22222222-9", wantErr: ErrAgainst},
		{name: "letters in body", raw: "12A45678-5", wantErr: ErrFormat},
		{name: "too long", raw: "1234567890-1", wantErr: ErrFormat},
		{name: "single char", raw: "5", wantErr: ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.raw)
			if err != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(" 12.345.678-k "); got != "12345678K" {
		t.Errorf("Normalize() = %q", got)
	}
}
