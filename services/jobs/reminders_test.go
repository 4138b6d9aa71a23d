package jobs

import (
	"context"
	"testing"
	"time"

	"case_docket_app_go/config"
	"case_docket_app_go/models"
	"case_docket_app_go/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRemindersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:mem_"+uuid.New().String()+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestSendProceedingReminders(t *testing.T) {
	db := setupRemindersTestDB(t)
	cfg := &config.Config{
		EmailTestMode: true, // logs instead of sending
		NotifyEmail:   "docket@example.com",
	}
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	ctx := context.Background()
	cases := services.NewCaseService(db, services.NewFileStore(services.NewLocalStorage(t.TempDir())), config.DefaultMaxUploadBytes, nil, zap.NewNop())
	proceedings := services.NewProceedingService(db, zap.NewNop())

	kase, err := cases.CreateCase(ctx, services.CaseInput{ClientName: "Reminder Client", CaseStatus: "Open"})
	require.NoError(t, err)

	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

	// 1. Hearing tomorrow
	_, err = proceedings.AddProceeding(ctx, kase.ID, services.ProceedingInput{ProceedingDate: "2024-06-11", Description: "Hearing tomorrow"})
	require.NoError(t, err)
	// 2. Tentative date tomorrow
	_, err = proceedings.AddProceeding(ctx, kase.ID, services.ProceedingInput{ProceedingDate: "2024-06-01", Description: "Follow-up", TentativeDate: "2024-06-11"})
	require.NoError(t, err)
	// 3. Next week, not reminded
	_, err = proceedings.AddProceeding(ctx, kase.ID, services.ProceedingInput{ProceedingDate: "2024-06-17", Description: "Later"})
	require.NoError(t, err)

	count, err := SendProceedingReminders(db, cfg, log, now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	sent := logs.FilterMessage("email logged (test mode, not sent)").All()
	require.Len(t, sent, 1)
	assert.Equal(t, 1, logs.FilterMessage("proceeding reminders sent").Len())
}

func TestSendProceedingRemindersDisabled(t *testing.T) {
	db := setupRemindersTestDB(t)

	count, err := SendProceedingReminders(db, &config.Config{EmailTestMode: true}, zap.NewNop(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSendProceedingRemindersNothingDue(t *testing.T) {
	db := setupRemindersTestDB(t)
	cfg := &config.Config{EmailTestMode: true, NotifyEmail: "docket@example.com"}

	count, err := SendProceedingReminders(db, cfg, zap.NewNop(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBuildProceedingReminderEmail(t *testing.T) {
	day := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	email, err := services.BuildProceedingReminderEmail("to@example.com", day, []services.ReminderItem{
		{ClientName: "A & B", CaseID: "c1", Kind: "Hearing", Description: "Motion"},
	})
	require.NoError(t, err)

	assert.Equal(t, "1 proceeding(s) on 2024-06-11", email.Subject)
	assert.Contains(t, email.HTMLBody, "A &amp; B")
	assert.Contains(t, email.TextBody, "Hearing for A & B: Motion (case c1)")
}
