package records

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medchain/internal/config"
	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/domain/services"
	"medchain/internal/service/ledger"
)

// validateSubmitRequest checks the draft before anything is encrypted or committed
func (s *recordService) validateSubmitRequest(req *services.SubmitRecordRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", domain.ErrValidation)
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.RecordID, validation.By(validRecordID)),
		validation.Field(&req.PatientName,
			validation.Required,
			validation.Length(1, config.MaxIdentityFieldLength),
		),
		validation.Field(&req.PatientID, validation.Length(0, config.MaxIdentityFieldLength)),
		validation.Field(&req.Department,
			validation.Length(0, config.MaxIdentityFieldLength),
			validation.By(s.knownDepartment),
		),
		validation.Field(&req.DoctorName, validation.Length(0, config.MaxIdentityFieldLength)),
		validation.Field(&req.Symptoms, validation.Length(0, config.MaxClinicalFieldLength)),
		validation.Field(&req.Diagnosis, validation.Length(0, config.MaxClinicalFieldLength)),
		validation.Field(&req.Treatment, validation.Length(0, config.MaxClinicalFieldLength)),
		validation.Field(&req.Notes, validation.Length(0, config.MaxNotesLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return nil
}

// validateRecordFields bounds the fields buildRecord fills in after the
// request was checked: analysis-derived diagnosis, treatment and summary.
func validateRecordFields(record *models.Record) error {
	err := validation.ValidateStruct(record,
		validation.Field(&record.Diagnosis, validation.Length(0, config.MaxClinicalFieldLength)),
		validation.Field(&record.Treatment, validation.Length(0, config.MaxClinicalFieldLength)),
		validation.Field(&record.AIAnalysis, validation.Length(0, config.MaxClinicalFieldLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// analysisFits reports whether every analysis-derived field stays within its bound
func analysisFits(a *models.Analysis) bool {
	bounded := validation.Length(0, config.MaxClinicalFieldLength)
	return validation.Validate(a.SuggestedDiagnosis, bounded) == nil &&
		validation.Validate(a.Treatment(), bounded) == nil &&
		validation.Validate(a.Summary, bounded) == nil
}

// validRecordID accepts an empty id (one is generated) or a valid ledger key
func validRecordID(value interface{}) error {
	id, _ := value.(string)
	if id == "" {
		return nil
	}
	if err := ledger.ValidateKey(id); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return errors.New(ve.Message)
		}
		return err
	}
	return nil
}

// knownDepartment allows an empty department; anything else must be in the catalog
func (s *recordService) knownDepartment(value interface{}) error {
	name, _ := value.(string)
	if name == "" || s.catalog.IsDepartment(name) {
		return nil
	}
	return fmt.Errorf("unknown department %q", name)
}
