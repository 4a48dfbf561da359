package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecurityMonitor(t *testing.T) {
	m := NewSecurityEventMonitor()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ip := "127.0.0.1"

	t.Run("TrackFailedLogin", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			assert.False(t, m.TrackFailedLogin(ip, 1001))
		}
		assert.True(t, m.TrackFailedLogin(ip, 1001))

		alerts := m.GetRecentAlerts()
		assert.Len(t, alerts, 1)
		assert.Equal(t, ip, alerts[0].IP)
		assert.Equal(t, 1001, alerts[0].RegistrationNumber)
		assert.Contains(t, alerts[0].Reason, "Multiple failed logins")
	})

	t.Run("Duplicate Alert Rate Limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.False(t, m.TrackFailedLogin(ip, 1001))
		}
		assert.Len(t, m.GetRecentAlerts(), 1)
	})

	t.Run("Old attempts fall out of the window", func(t *testing.T) {
		other := "10.0.0.2"
		for i := 0; i < 4; i++ {
			m.TrackFailedLogin(other, 2002)
		}
		now = now.Add(11 * time.Minute)
		assert.False(t, m.TrackFailedLogin(other, 2002))
	})

	t.Run("Reset and cleanup", func(t *testing.T) {
		m.ResetFailedLogins(ip)
		now = now.Add(2 * time.Hour)
		m.Cleanup()

		m.mu.Lock()
		defer m.mu.Unlock()
		assert.Empty(t, m.failedLogins)
		assert.Empty(t, m.alertedIPs)
	})
}
