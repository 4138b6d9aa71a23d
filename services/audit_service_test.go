package services

import (
	"context"
	"encoding/json"
	"testing"

	"case_docket_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLogAuditEvent(t *testing.T) {
	db := setupTestDB(t)

	actx := AuditContext{
		UserID:    "user-123",
		Username:  "auditor",
		IPAddress: "10.0.0.1",
	}

	oldVals := map[string]interface{}{"case_status": "pending"}
	newVals := map[string]interface{}{"case_status": "active"}

	err := LogAuditEvent(db, actx, models.AuditActionUpdate, "Case", "case-123", "Acme", "Case updated", oldVals, newVals)
	require.NoError(t, err)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry, "resource_id = ?", "case-123").Error)
	assert.Equal(t, "user-123", *entry.UserID)
	assert.Equal(t, "auditor", entry.Username)
	assert.Equal(t, "Case", entry.ResourceType)
	assert.Equal(t, models.AuditActionUpdate, entry.Action)

	var savedOld, savedNew map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(entry.OldValues), &savedOld))
	require.NoError(t, json.Unmarshal([]byte(entry.NewValues), &savedNew))
	assert.Equal(t, "pending", savedOld["case_status"])
	assert.Equal(t, "active", savedNew["case_status"])
}

func TestLogAuditEventRollsBackWithTransaction(t *testing.T) {
	db := setupTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := LogAuditEvent(tx, AuditContext{}, models.AuditActionDelete, "Case", "case-9", "", "", nil, nil); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAuditLogIsImmutable(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, LogAuditEvent(db, AuditContext{}, models.AuditActionCreate, "Case", "case-1", "", "", nil, nil))

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)

	assert.Error(t, db.Model(&entry).Update("description", "tampered").Error)
	assert.Error(t, db.Delete(&entry).Error)
}

func TestAuditContextRoundTrip(t *testing.T) {
	assert.Equal(t, AuditContext{}, AuditContextFrom(context.Background()))

	ctx := WithAuditContext(context.Background(), AuditContext{UserID: "u1", Username: "admin"})
	assert.Equal(t, "admin", AuditContextFrom(ctx).Username)
}

func TestGetRecentAuditLogs(t *testing.T) {
	db := setupTestDB(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, LogAuditEvent(db, AuditContext{}, models.AuditActionCreate, "Case", id, "", "", nil, nil))
	}

	logs, err := GetRecentAuditLogs(db, 2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	history, err := GetResourceAuditHistory(db, "Case", "b")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "b", history[0].ResourceID)
}
