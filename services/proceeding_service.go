package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"case_docket_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const proceedingResourceType = "Proceeding"

// ProceedingInput carries the submitted fields of a proceeding form
type ProceedingInput struct {
	ProceedingDate string
	Description    string
	TentativeDate  string
}

// ProceedingService runs the proceeding workflow
type ProceedingService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewProceedingService creates a proceeding workflow service
func NewProceedingService(db *gorm.DB, log *zap.Logger) *ProceedingService {
	return &ProceedingService{db: db, log: log}
}

type parsedProceeding struct {
	proceedingDate time.Time
	description    string
	tentativeDate  *time.Time
}

// parseProceedingInput validates dates in YYYY-MM-DD form. A blank tentative
// date means none.
func parseProceedingInput(in ProceedingInput) (*parsedProceeding, error) {
	proceedingDate, err := ParseDate(in.ProceedingDate)
	if err != nil {
		return nil, newValidationError("proceeding_date", "Invalid proceeding date format. Please use YYYY-MM-DD")
	}

	tentativeDate, err := ParseOptionalDate(in.TentativeDate)
	if err != nil {
		return nil, newValidationError("tentative_date", "Invalid tentative date format. Please use YYYY-MM-DD")
	}

	description := in.Description
	if isBlank(description) {
		return nil, newValidationError("description", "Description is required")
	}

	return &parsedProceeding{
		proceedingDate: proceedingDate,
		description:    description,
		tentativeDate:  tentativeDate,
	}, nil
}

func proceedingSnapshot(p *models.Proceeding) map[string]interface{} {
	return map[string]interface{}{
		"case_id":         p.CaseID,
		"proceeding_date": p.ProceedingDateString(),
		"description":     p.Description,
		"tentative_date":  p.TentativeDateString(),
	}
}

// GetProceeding loads a single proceeding
func (s *ProceedingService) GetProceeding(ctx context.Context, id string) (*models.Proceeding, error) {
	var p models.Proceeding
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapCommitError(err, "load proceeding")
	}
	return &p, nil
}

// AddProceeding records a proceeding on an existing case
func (s *ProceedingService) AddProceeding(ctx context.Context, caseID string, in ProceedingInput) (*models.Proceeding, error) {
	var p *models.Proceeding

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Case
		if err := tx.Select("id", "client_name").First(&c, "id = ?", caseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		parsed, err := parseProceedingInput(in)
		if err != nil {
			return err
		}

		p = &models.Proceeding{
			CaseID:         c.ID,
			ProceedingDate: parsed.proceedingDate,
			Description:    parsed.description,
			TentativeDate:  parsed.tentativeDate,
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		return LogAuditEvent(tx, AuditContextFrom(ctx), models.AuditActionCreate, proceedingResourceType, p.ID, c.ClientName,
			fmt.Sprintf("Proceeding added on %s", p.ProceedingDateString()), nil, proceedingSnapshot(p))
	})
	if err != nil {
		return nil, wrapCommitError(err, "add proceeding")
	}

	s.log.Info("proceeding added", zap.String("proceeding_id", p.ID), zap.String("case_id", caseID))
	return p, nil
}

// UpdateProceeding overwrites the date, description and tentative date
func (s *ProceedingService) UpdateProceeding(ctx context.Context, id string, in ProceedingInput) (*models.Proceeding, error) {
	var p models.Proceeding

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		parsed, err := parseProceedingInput(in)
		if err != nil {
			return err
		}

		old := proceedingSnapshot(&p)
		p.ProceedingDate = parsed.proceedingDate
		p.Description = parsed.description
		p.TentativeDate = parsed.tentativeDate

		// Select keeps a nil tentative date in the UPDATE so it is cleared
		if err := tx.Model(&p).Select("proceeding_date", "description", "tentative_date").Updates(&p).Error; err != nil {
			return err
		}

		return LogAuditEvent(tx, AuditContextFrom(ctx), models.AuditActionUpdate, proceedingResourceType, p.ID, "",
			"Proceeding updated", old, proceedingSnapshot(&p))
	})
	if err != nil {
		return nil, wrapCommitError(err, "update proceeding")
	}

	s.log.Info("proceeding updated", zap.String("proceeding_id", p.ID), zap.String("case_id", p.CaseID))
	return &p, nil
}

// DeleteProceeding removes a proceeding and returns it
func (s *ProceedingService) DeleteProceeding(ctx context.Context, id string) (*models.Proceeding, error) {
	var p models.Proceeding

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&p).Error; err != nil {
			return err
		}
		return LogAuditEvent(tx, AuditContextFrom(ctx), models.AuditActionDelete, proceedingResourceType, p.ID, "",
			"Proceeding deleted", proceedingSnapshot(&p), nil)
	})
	if err != nil {
		return nil, wrapCommitError(err, "delete proceeding")
	}

	s.log.Info("proceeding deleted", zap.String("proceeding_id", p.ID), zap.String("case_id", p.CaseID))
	return &p, nil
}
