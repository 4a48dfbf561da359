package services

import (
	"sync"
	"time"

	"court_transfer_app_go/logging"

	"go.uber.org/zap"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlertHistory      = 100
)

// SecurityEventMonitor aggregates failed logins per client IP and raises an
// alert when one IP crosses the threshold inside the window
type SecurityEventMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time
	alertedIPs   map[string]time.Time
	alerts       []SecurityAlert
	now          func() time.Time
}

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp          time.Time `json:"timestamp"`
	IP                 string    `json:"ip"`
	RegistrationNumber int       `json:"registration_number"`
	Reason             string    `json:"reason"`
}

// Monitor is the process-wide instance
var Monitor = NewSecurityEventMonitor()

// NewSecurityEventMonitor returns an empty monitor
func NewSecurityEventMonitor() *SecurityEventMonitor {
	return &SecurityEventMonitor{
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		now:          time.Now,
	}
}

// TrackFailedLogin records a failed login attempt and reports whether it
// raised an alert
func (m *SecurityEventMonitor) TrackFailedLogin(ip string, registrationNumber int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-failedLoginWindow)

	attempts := m.failedLogins[ip][:0]
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			attempts = append(attempts, t)
		}
	}
	attempts = append(attempts, now)
	m.failedLogins[ip] = attempts

	if len(attempts) < failedLoginThreshold {
		return false
	}
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < alertCooldown {
		return false
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{
		Timestamp:          now,
		IP:                 ip,
		RegistrationNumber: registrationNumber,
		Reason:             "Multiple failed logins detected",
	}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlertHistory {
		m.alerts = m.alerts[:maxAlertHistory]
	}

	logging.L().Warn("security alert",
		zap.String("reason", alert.Reason),
		zap.String("ip", ip),
		zap.Int("registration_number", registrationNumber),
		zap.Int("attempts", len(attempts)),
	)
	return true
}

// ResetFailedLogins clears the counter for ip after a successful login
func (m *SecurityEventMonitor) ResetFailedLogins(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failedLogins, ip)
}

// GetRecentAlerts returns a copy of recent alerts, newest first
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alertsCopy := make([]SecurityAlert, len(m.alerts))
	copy(alertsCopy, m.alerts)
	return alertsCopy
}

// Cleanup drops expired counters and cooldowns
func (m *SecurityEventMonitor) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, lastAlert := range m.alertedIPs {
		if now.Sub(lastAlert) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}
