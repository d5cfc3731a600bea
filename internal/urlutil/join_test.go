package urlutil

import (
	"testing"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		paths []string
		want  string
	}{
		{
			name:  "simple join",
			base:  "https://api.example.com",
			paths: []string{"/auth/provider/callback"},
			want:  "https://api.example.com/auth/provider/callback",
		},
		{
			name:  "base with trailing slash",
			base:  "https://api.example.com/",
			paths: []string{"auth/provider/callback"},
			want:  "https://api.example.com/auth/provider/callback",
		},
		{
			name:  "base with path prefix",
			base:  "https://api.example.com/v1",
			paths: []string{"/auth/provider/callback"},
			want:  "https://api.example.com/v1/auth/provider/callback",
		},
		{
			name:  "multiple segments",
			base:  "https://api.example.com",
			paths: []string{"auth", "provider", "callback"},
			want:  "https://api.example.com/auth/provider/callback",
		},
		{
			name:  "preserves trailing slash",
			base:  "https://api.example.com",
			paths: []string{"auth/"},
			want:  "https://api.example.com/auth/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinPath(tt.base, tt.paths...)
			if err != nil {
				t.Fatalf("JoinPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("JoinPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinPathInvalidBase(t *testing.T) {
	if _, err := JoinPath("://bad"); err == nil {
		t.Error("expected error for invalid base URL")
	}
}
