package redis

import "testing"

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"session", SessionKey("abc"), "adlinkton:session:abc"},
		{"import lock", ImportLockKey(42), "adlinkton:import-lock:42"},
		{"negative user", ImportLockKey(-1), "adlinkton:import-lock:-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
