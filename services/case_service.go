package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"unicode/utf8"

	"case_docket_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const caseResourceType = "Case"

// CaseInput carries the submitted fields of a case form.
// File headers are nil when the field was left empty.
type CaseInput struct {
	ClientName        string
	CaseStatus        string
	CaseFile          *multipart.FileHeader
	InterimOrdersFile *multipart.FileHeader
}

// CaseService runs the case workflow against the database and file store
type CaseService struct {
	db             *gorm.DB
	files          *FileStore
	maxUploadBytes int64
	notifier       *Notifier
	log            *zap.Logger
}

// NewCaseService creates a case workflow service. notifier may be nil.
func NewCaseService(db *gorm.DB, files *FileStore, maxUploadBytes int64, notifier *Notifier, log *zap.Logger) *CaseService {
	return &CaseService{
		db:             db,
		files:          files,
		maxUploadBytes: maxUploadBytes,
		notifier:       notifier,
		log:            log,
	}
}

// validateCaseInput applies the required and length rules to the submitted
// values. Text is stored exactly as submitted and escaped when rendered.
func validateCaseInput(in CaseInput) (string, string, error) {
	if isBlank(in.ClientName) {
		return "", "", newValidationError("client_name", "Client name is required")
	}
	if utf8.RuneCountInString(in.ClientName) > models.MaxClientNameLength {
		return "", "", newValidationError("client_name", "Client name too long")
	}
	if isBlank(in.CaseStatus) {
		return "", "", newValidationError("case_status", "Case status is required")
	}
	return in.ClientName, in.CaseStatus, nil
}

// storedUploads holds the names written to the file store for one request
type storedUploads struct {
	caseFile          *string
	interimOrdersFile *string
	names             []string
}

// saveUploads writes the accepted documents of in to the file store.
// Empty fields and disallowed extensions are skipped. The combined size of
// every submitted file counts against the per-request cap.
func (s *CaseService) saveUploads(ctx context.Context, in CaseInput) (*storedUploads, error) {
	var total int64
	for _, fh := range []*multipart.FileHeader{in.CaseFile, in.InterimOrdersFile} {
		if fh != nil {
			total += fh.Size
		}
	}
	if total > s.maxUploadBytes {
		return nil, ErrRequestTooLarge
	}

	out := &storedUploads{}
	remaining := s.maxUploadBytes

	save := func(fh *multipart.FileHeader) (*string, error) {
		if fh == nil || fh.Filename == "" {
			return nil, nil
		}
		if !AllowedFile(fh.Filename) {
			s.log.Info("skipping upload with disallowed extension", zap.String("filename", fh.Filename))
			return nil, nil
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open upload: %v", ErrStorage, err)
		}
		defer f.Close()

		name, n, err := s.files.Save(ctx, fh.Filename, f, remaining)
		if err != nil {
			return nil, err
		}
		remaining -= n
		out.names = append(out.names, name)
		return &name, nil
	}

	var err error
	if out.caseFile, err = save(in.CaseFile); err != nil {
		s.discardUploads(ctx, out)
		return nil, err
	}
	if out.interimOrdersFile, err = save(in.InterimOrdersFile); err != nil {
		s.discardUploads(ctx, out)
		return nil, err
	}
	return out, nil
}

// discardUploads removes files saved for a request whose commit failed
func (s *CaseService) discardUploads(ctx context.Context, uploads *storedUploads) {
	if uploads == nil {
		return
	}
	for _, name := range uploads.names {
		if err := s.files.Remove(ctx, name); err != nil {
			s.log.Warn("failed to remove orphaned upload", zap.String("file", name), zap.Error(err))
		}
	}
}

// caseSnapshot is the audit representation of a case
func caseSnapshot(c *models.Case) map[string]interface{} {
	return map[string]interface{}{
		"client_name":         c.ClientName,
		"case_status":         c.CaseStatus,
		"case_file":           c.CaseFile,
		"interim_orders_file": c.InterimOrdersFile,
	}
}

// wrapCommitError keeps workflow errors as they are and marks the rest as storage failures
func wrapCommitError(err error, op string) error {
	if errors.Is(err, ErrNotFound) || IsValidationError(err) || errors.Is(err, ErrStorage) || errors.Is(err, ErrRequestTooLarge) {
		return err
	}
	return fmt.Errorf("%w: failed to %s: %v", ErrStorage, op, err)
}

// CreateCase validates the input, stores the accepted documents and inserts the case
func (s *CaseService) CreateCase(ctx context.Context, in CaseInput) (*models.Case, error) {
	clientName, caseStatus, err := validateCaseInput(in)
	if err != nil {
		return nil, err
	}

	uploads, err := s.saveUploads(ctx, in)
	if err != nil {
		return nil, err
	}

	c := &models.Case{
		ClientName:        clientName,
		CaseStatus:        caseStatus,
		CaseFile:          uploads.caseFile,
		InterimOrdersFile: uploads.interimOrdersFile,
	}

	actx := AuditContextFrom(ctx)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return LogAuditEvent(tx, actx, models.AuditActionCreate, caseResourceType, c.ID, c.ClientName,
			"Case created", nil, caseSnapshot(c))
	})
	if err != nil {
		s.discardUploads(ctx, uploads)
		return nil, wrapCommitError(err, "create case")
	}

	s.log.Info("case created", zap.String("case_id", c.ID), zap.String("client_name", c.ClientName))
	s.notifier.CaseEvent(c, "created", actx.Username)
	return c, nil
}

// UpdateCase overwrites the text fields of a case. A newly accepted document
// replaces the stored name on the case; the previous file stays in the store.
func (s *CaseService) UpdateCase(ctx context.Context, id string, in CaseInput) (*models.Case, error) {
	var c models.Case
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapCommitError(err, "load case")
	}

	clientName, caseStatus, err := validateCaseInput(in)
	if err != nil {
		return nil, err
	}

	uploads, err := s.saveUploads(ctx, in)
	if err != nil {
		return nil, err
	}

	old := caseSnapshot(&c)
	updates := map[string]interface{}{
		"client_name": clientName,
		"case_status": caseStatus,
	}
	if uploads.caseFile != nil {
		updates["case_file"] = *uploads.caseFile
	}
	if uploads.interimOrdersFile != nil {
		updates["interim_orders_file"] = *uploads.interimOrdersFile
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&c).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		c.ClientName = clientName
		c.CaseStatus = caseStatus
		if uploads.caseFile != nil {
			c.CaseFile = uploads.caseFile
		}
		if uploads.interimOrdersFile != nil {
			c.InterimOrdersFile = uploads.interimOrdersFile
		}
		return LogAuditEvent(tx, AuditContextFrom(ctx), models.AuditActionUpdate, caseResourceType, c.ID, clientName,
			"Case updated", old, caseSnapshot(&c))
	})
	if err != nil {
		s.discardUploads(ctx, uploads)
		return nil, wrapCommitError(err, "update case")
	}

	s.log.Info("case updated", zap.String("case_id", c.ID), zap.String("client_name", c.ClientName))
	return &c, nil
}

// DeleteCase removes a case together with all of its proceedings.
// The proceedings are deleted explicitly in the same transaction; stored
// documents are left in the file store.
func (s *CaseService) DeleteCase(ctx context.Context, id string) error {
	var c models.Case
	var removed int64
	actx := AuditContextFrom(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		result := tx.Where("case_id = ?", c.ID).Delete(&models.Proceeding{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected

		if err := tx.Delete(&c).Error; err != nil {
			return err
		}

		return LogAuditEvent(tx, actx, models.AuditActionDelete, caseResourceType, c.ID, c.ClientName,
			fmt.Sprintf("Case deleted with %d proceedings", removed), caseSnapshot(&c), nil)
	})
	if err != nil {
		return wrapCommitError(err, "delete case")
	}

	s.log.Info("case deleted",
		zap.String("case_id", c.ID),
		zap.String("client_name", c.ClientName),
		zap.Int64("proceedings_deleted", removed),
	)
	s.notifier.CaseEvent(&c, "deleted", actx.Username)
	return nil
}

// ListCases returns every case, newest first
func (s *CaseService) ListCases(ctx context.Context) ([]models.Case, error) {
	var cases []models.Case
	if err := s.db.WithContext(ctx).Order("date_created DESC").Find(&cases).Error; err != nil {
		return nil, wrapCommitError(err, "list cases")
	}
	return cases, nil
}

// ListCasesWithProceedings returns every case, newest first, with proceedings loaded
func (s *CaseService) ListCasesWithProceedings(ctx context.Context) ([]models.Case, error) {
	var cases []models.Case
	err := s.db.WithContext(ctx).
		Preload("Proceedings", func(db *gorm.DB) *gorm.DB {
			return db.Order("proceeding_date ASC, created_at ASC")
		}).
		Order("date_created DESC").
		Find(&cases).Error
	if err != nil {
		return nil, wrapCommitError(err, "list cases")
	}
	return cases, nil
}

// GetCase loads a case with its proceedings ordered by proceeding date
func (s *CaseService) GetCase(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	err := s.db.WithContext(ctx).
		Preload("Proceedings", func(db *gorm.DB) *gorm.DB {
			return db.Order("proceeding_date ASC, created_at ASC")
		}).
		First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapCommitError(err, "load case")
	}
	return &c, nil
}
