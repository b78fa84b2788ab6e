package auth

import (
	"encoding/base64"
	"errors"
	"testing"

	"facturi/internal/core"
)

func TestStaticVerifier(t *testing.T) {
	v := NewDemoVerifier()

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  bool
	}{
		{"admin ok", "admin", "admin123", false},
		{"user ok", "user", "password", false},
		{"demo ok", "demo", "demo123", false},
		{"wrong password", "admin", "nope", true},
		{"unknown user", "ghost", "admin123", true},
		{"empty credentials", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.user, tt.password)
			if tt.wantErr {
				if !errors.Is(err, core.ErrUnauthenticated) {
					t.Fatalf("Verify(%q, %q) = %v, want ErrUnauthenticated", tt.user, tt.password, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify(%q, %q) = %v, want nil", tt.user, tt.password, err)
			}
		})
	}
}

func TestParseBasicHeader(t *testing.T) {
	valid := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:admin123"))

	user, pass, err := ParseBasicHeader(valid)
	if err != nil {
		t.Fatalf("ParseBasicHeader(valid) = %v", err)
	}
	if user != "admin" || pass != "admin123" {
		t.Fatalf("got (%q, %q), want (admin, admin123)", user, pass)
	}

	bad := []string{
		"",
		"Bearer token",
		"Basic not-base64!!!",
		"Basic " + base64.StdEncoding.EncodeToString([]byte("no-separator")),
	}
	for _, header := range bad {
		if _, _, err := ParseBasicHeader(header); !errors.Is(err, core.ErrUnauthenticated) {
			t.Errorf("ParseBasicHeader(%q) = %v, want ErrUnauthenticated", header, err)
		}
	}
}

func TestPasswordWithColon(t *testing.T) {
	v := NewStaticVerifier(map[string]string{"svc": "a:b:c"})
	header := "Basic " + base64.StdEncoding.EncodeToString([]byte("svc:a:b:c"))

	user, pass, err := ParseBasicHeader(header)
	if err != nil {
		t.Fatalf("ParseBasicHeader = %v", err)
	}
	if err := v.Verify(user, pass); err != nil {
		t.Fatalf("Verify(%q, %q) = %v", user, pass, err)
	}
}
