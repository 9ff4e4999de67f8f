package main

import "testing"

func TestBrowseURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080"},
		{"0.0.0.0:9000", "http://localhost:9000"},
		{"[::]:9000", "http://localhost:9000"},
		{"192.168.1.5:8080", "http://192.168.1.5:8080"},
		{"kiosk", "http://kiosk"},
	}
	for _, tt := range tests {
		if got := browseURL(tt.addr); got != tt.want {
			t.Errorf("browseURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
