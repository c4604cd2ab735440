package validation

import "testing"

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		valid    bool
	}{
		{
			name:     "simple login",
			username: "zaid_ahmed",
			valid:    true,
		},
		{
			name:     "with digits",
			username: "lucky2024",
			valid:    true,
		},
		{
			name:     "too short",
			username: "ab",
			valid:    false,
		},
		{
			name:     "contains space",
			username: "zaid ahmed",
			valid:    false,
		},
		{
			name:     "empty string",
			username: "",
			valid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidUsername(tt.username)
			if got != tt.valid {
				t.Fatalf("IsValidUsername(%q) = %v, want %v", tt.username, got, tt.valid)
			}
		})
	}
}

func TestIsValidAccountNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{
			name:   "valid wallet number",
			number: "03459876543",
			valid:  true,
		},
		{
			name:   "wrong prefix",
			number: "13459876543",
			valid:  false,
		},
		{
			name:   "too short",
			number: "0345987654",
			valid:  false,
		},
		{
			name:   "contains letters",
			number: "0345a876543",
			valid:  false,
		},
		{
			name:   "empty string",
			number: "",
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidAccountNumber(tt.number)
			if got != tt.valid {
				t.Fatalf("IsValidAccountNumber(%q) = %v, want %v", tt.number, got, tt.valid)
			}
		})
	}
}

func TestSupportLink(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		want    string
	}{
		{
			name:    "raw phone number",
			contact: "923177730425",
			want:    "https://wa.me/923177730425",
		},
		{
			name:    "formatted phone number",
			contact: "+92 317 773-04-25",
			want:    "https://wa.me/923177730425",
		},
		{
			name:    "ready link",
			contact: "https://wa.me/923177730425",
			want:    "https://wa.me/923177730425",
		},
		{
			name:    "empty contact",
			contact: "",
			want:    "",
		},
		{
			name:    "no digits",
			contact: "ask admin",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SupportLink(tt.contact)
			if got != tt.want {
				t.Fatalf("SupportLink(%q) = %q, want %q", tt.contact, got, tt.want)
			}
		})
	}
}

func TestIsValidAmount(t *testing.T) {
	if !IsValidAmount(1000) {
		t.Fatalf("positive amount must be valid")
	}
	if IsValidAmount(0) {
		t.Fatalf("zero amount must be invalid")
	}
	if IsValidAmount(-500) {
		t.Fatalf("negative amount must be invalid")
	}
}
