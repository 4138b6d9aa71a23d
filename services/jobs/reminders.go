package jobs

import (
	"fmt"
	"time"

	"case_docket_app_go/config"
	"case_docket_app_go/models"
	"case_docket_app_go/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SendProceedingReminders emails NOTIFY_EMAIL a digest of every proceeding
// whose proceeding or tentative date falls on the day after now. It returns
// how many entries the digest listed.
func SendProceedingReminders(database *gorm.DB, cfg *config.Config, log *zap.Logger, now time.Time) (int, error) {
	if cfg.NotifyEmail == "" {
		return 0, nil
	}

	today := now.UTC().Truncate(24 * time.Hour)
	dayStart := today.Add(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var proceedings []models.Proceeding
	err := database.
		Where("(proceeding_date >= ? AND proceeding_date < ?) OR (tentative_date >= ? AND tentative_date < ?)",
			dayStart, dayEnd, dayStart, dayEnd).
		Order("proceeding_date ASC").
		Find(&proceedings).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load upcoming proceedings: %w", err)
	}
	if len(proceedings) == 0 {
		log.Debug("no proceedings to remind", zap.String("day", dayStart.Format(models.DateLayout)))
		return 0, nil
	}

	caseIDs := make([]string, 0, len(proceedings))
	for _, p := range proceedings {
		caseIDs = append(caseIDs, p.CaseID)
	}
	var cases []models.Case
	if err := database.Where("id IN ?", caseIDs).Find(&cases).Error; err != nil {
		return 0, fmt.Errorf("failed to load cases for reminders: %w", err)
	}
	clientNames := make(map[string]string, len(cases))
	for _, c := range cases {
		clientNames[c.ID] = c.ClientName
	}

	items := make([]services.ReminderItem, 0, len(proceedings))
	for _, p := range proceedings {
		kind := "Hearing"
		if p.ProceedingDate.Before(dayStart) || !p.ProceedingDate.Before(dayEnd) {
			kind = "Tentative"
		}
		items = append(items, services.ReminderItem{
			ClientName:  clientNames[p.CaseID],
			CaseID:      p.CaseID,
			Kind:        kind,
			Description: p.Description,
		})
	}

	email, err := services.BuildProceedingReminderEmail(cfg.NotifyEmail, dayStart, items)
	if err != nil {
		return 0, err
	}
	if err := services.SendEmail(cfg, log, email); err != nil {
		return 0, fmt.Errorf("failed to send proceeding reminders: %w", err)
	}

	log.Info("proceeding reminders sent",
		zap.Int("count", len(items)),
		zap.String("day", dayStart.Format(models.DateLayout)),
	)
	return len(items), nil
}
