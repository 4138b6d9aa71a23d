package services

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlertHistory      = 100
)

// SecurityAlert records a burst of failed logins from one address
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
}

// LoginMonitor counts failed logins per IP and raises an alert when an
// address crosses the threshold inside the window. At most one alert per
// address is raised per cooldown.
type LoginMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time
	alertedIPs   map[string]time.Time
	alerts       []SecurityAlert

	log      *zap.Logger
	notifier *Notifier
	now      func() time.Time
}

// NewLoginMonitor creates a monitor. notifier may be nil.
func NewLoginMonitor(log *zap.Logger, notifier *Notifier) *LoginMonitor {
	return &LoginMonitor{
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		log:          log,
		notifier:     notifier,
		now:          time.Now,
	}
}

// TrackFailedLogin records a failed attempt from ip
func (m *LoginMonitor) TrackFailedLogin(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.pruneLocked(now)

	windowStart := now.Add(-failedLoginWindow)
	attempts := m.failedLogins[ip][:0]
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			attempts = append(attempts, t)
		}
	}
	attempts = append(attempts, now)
	m.failedLogins[ip] = attempts

	if len(attempts) >= failedLoginThreshold {
		m.alertLocked(now, ip, "Multiple failed logins detected")
	}
}

func (m *LoginMonitor) alertLocked(now time.Time, ip, reason string) {
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < alertCooldown {
		return
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Reason: reason}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlertHistory {
		m.alerts = m.alerts[:maxAlertHistory]
	}

	m.log.Warn("security alert", zap.String("ip", ip), zap.String("reason", reason))
	m.notifier.SecurityAlert(alert)
}

// pruneLocked drops addresses with no recent activity
func (m *LoginMonitor) pruneLocked(now time.Time) {
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}

// RecentAlerts returns a copy of the alert history, newest first
func (m *LoginMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alerts := make([]SecurityAlert, len(m.alerts))
	copy(alerts, m.alerts)
	return alerts
}

// SecurityAlert emails the alert. A nil Notifier or an empty address disables it.
func (n *Notifier) SecurityAlert(alert SecurityAlert) {
	if n == nil || n.cfg.NotifyEmail == "" {
		return
	}
	n.send(n.cfg, n.log, &Email{
		To:      []string{n.cfg.NotifyEmail},
		Subject: fmt.Sprintf("Security Alert: %s", alert.Reason),
		TextBody: fmt.Sprintf("System detected a security event:\n\nType: %s\nIP Address: %s\nTime: %s\n\nPlease investigate.",
			alert.Reason, alert.IP, alert.Timestamp.Format(time.RFC1123)),
	})
}
