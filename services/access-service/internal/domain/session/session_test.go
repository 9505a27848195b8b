package session

import (
	"testing"
	"time"
)

func TestSession_IsActive(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revoked := issued.Add(time.Hour)

	tests := []struct {
		name string
		s    Session
		at   time.Time
		want bool
	}{
		{"fresh", Session{IssuedAt: issued, ExpiresAt: issued.Add(24 * time.Hour)}, issued.Add(time.Minute), true},
		{"expired", Session{IssuedAt: issued, ExpiresAt: issued.Add(24 * time.Hour)}, issued.Add(25 * time.Hour), false},
		{"exactly at expiry", Session{IssuedAt: issued, ExpiresAt: issued.Add(time.Hour)}, issued.Add(time.Hour), false},
		{"revoked", Session{IssuedAt: issued, ExpiresAt: issued.Add(24 * time.Hour), RevokedAt: &revoked}, issued.Add(2 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IsActive(tt.at); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}
