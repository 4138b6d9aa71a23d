package services

import (
	"context"
	"encoding/json"
	"fmt"

	"case_docket_app_go/models"

	"gorm.io/gorm"
)

// DefaultAuditLogLimit bounds GetRecentAuditLogs when no limit is given
const DefaultAuditLogLimit = 100

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	UserID    string
	Username  string
	IPAddress string
	UserAgent string
}

type auditContextKey struct{}

// WithAuditContext returns a copy of ctx carrying the acting user
func WithAuditContext(ctx context.Context, actx AuditContext) context.Context {
	return context.WithValue(ctx, auditContextKey{}, actx)
}

// AuditContextFrom returns the acting user stored in ctx, or an empty AuditContext
func AuditContextFrom(ctx context.Context) AuditContext {
	if actx, ok := ctx.Value(auditContextKey{}).(AuditContext); ok {
		return actx
	}
	return AuditContext{}
}

// LogAuditEvent appends an audit entry using tx.
// Callers pass the transaction of the mutation being recorded so the entry
// commits or rolls back together with it.
func LogAuditEvent(
	tx *gorm.DB,
	actx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) error {
	auditLog := models.AuditLog{
		UserID:       ptrIfNotEmpty(actx.UserID),
		Username:     actx.Username,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: resourceName,
		Action:       action,
		Description:  description,
		OldValues:    marshalAuditValues(oldValues),
		NewValues:    marshalAuditValues(newValues),
		IPAddress:    actx.IPAddress,
		UserAgent:    actx.UserAgent,
	}

	if err := tx.Create(&auditLog).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func marshalAuditValues(v interface{}) string {
	if v == nil {
		return ""
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(bytes)
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetResourceAuditHistory retrieves the audit history for a specific resource
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// GetRecentAuditLogs returns the newest audit entries first
func GetRecentAuditLogs(db *gorm.DB, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > DefaultAuditLogLimit {
		limit = DefaultAuditLogLimit
	}
	var logs []models.AuditLog
	err := db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
