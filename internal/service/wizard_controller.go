package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

var identityFields = []string{models.FieldFullName, models.FieldEmail, models.FieldMobile, models.FieldClassLevel}

// entryRequirements lists the fields that must be present before a step can
// be entered. Presence only; validity is checked on advance.
var entryRequirements = map[models.Step][]string{
	models.Step1: nil,
	models.Step2: identityFields,
	models.Step3: append(append([]string{}, identityFields...), models.FieldSubjects, models.FieldExamGoal),
	models.StepReview: append(append([]string{}, identityFields...),
		models.FieldSubjects, models.FieldPinCode, models.FieldGuardianMobile),
}

// WizardController gates navigation between steps for one session. It is not
// safe for concurrent use; the owning Wizard serialises calls.
type WizardController struct {
	engine    *ValidationEngine
	assembler *ReviewAssembler
	store     *DraftStore
	metrics   *MetricsService
	logger    *zap.Logger
	current   models.Step
}

// NewWizardController constructs a controller positioned at Step1.
func NewWizardController(engine *ValidationEngine, store *DraftStore, metrics *MetricsService, logger *zap.Logger) *WizardController {
	if engine == nil {
		engine = NewValidationEngine(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardController{
		engine:    engine,
		assembler: NewReviewAssembler(engine),
		store:     store,
		metrics:   metrics,
		logger:    logger,
		current:   models.Step1,
	}
}

// Current returns the step the user is on.
func (c *WizardController) Current() models.Step {
	return c.current
}

// Record returns a copy of the draft record.
func (c *WizardController) Record() models.EnrollmentRecord {
	return c.store.Get()
}

// CanEnter reports whether step may be shown. When it may not, target is the
// earliest step owning a missing field.
func (c *WizardController) CanEnter(step models.Step) (models.Step, bool) {
	required, ok := entryRequirements[step]
	if !ok {
		return c.current, false
	}
	record := c.store.Get()
	var missing []string
	for _, f := range required {
		if !record.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return step, true
	}
	target, _ := models.FirstOwner(missing)
	return target, false
}

// Enter moves to step, or silently to the redirect target when its guard
// fails, and returns the step actually entered.
func (c *WizardController) Enter(step models.Step) (models.Step, error) {
	if c.current == models.StepSubmitted {
		return c.current, appErrors.ErrWizardSubmitted
	}
	target, ok := c.CanEnter(step)
	if !ok {
		c.metrics.RecordTransition(step, TransitionRedirected)
		c.logger.Debug("step entry redirected", zap.String("requested", string(step)), zap.String("target", string(target)))
	}
	c.current = target
	return target, nil
}

// Check validates values as step's form without storing anything.
func (c *WizardController) Check(step models.Step, values models.EnrollmentRecord) models.ErrorSet {
	return c.engine.ValidateStep(step, c.candidate(step, values))
}

// Advance validates values for step. Valid values replace the step's stored
// fields and the wizard moves to the following step; invalid values leave the
// record untouched.
// Steps whose entry guard fails are rejected with ErrStepLocked.
func (c *WizardController) Advance(step models.Step, values models.EnrollmentRecord) (models.ErrorSet, error) {
	if c.current == models.StepSubmitted {
		return nil, appErrors.ErrWizardSubmitted
	}
	if step == models.StepReview || !step.IsNavigable() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "step cannot be advanced directly")
	}
	if target, ok := c.CanEnter(step); !ok {
		return nil, appErrors.WithDetails(appErrors.ErrStepLocked, map[string]any{"redirect": target})
	}

	candidate := c.candidate(step, values)
	errs := c.engine.ValidateStep(step, candidate)
	if !errs.Empty() {
		c.metrics.RecordTransition(step, TransitionBlocked)
		c.metrics.RecordValidationErrors(errs)
		c.current = step
		return errs, nil
	}

	// the step's stored fields become exactly what was validated
	c.store.Replace(step.Fields(), c.engine.Normalize(candidate))
	c.current = step.Next()
	c.metrics.RecordTransition(step, TransitionAdvanced)
	return errs, nil
}

// Back moves one step back. Step1 and Submitted stay put.
func (c *WizardController) Back() models.Step {
	if c.current != models.StepSubmitted {
		c.current = c.current.Prev()
		c.metrics.RecordTransition(c.current, TransitionBack)
	}
	return c.current
}

// Reset returns to Step1; used after the draft is cleared.
func (c *WizardController) Reset() {
	c.current = models.Step1
}

// Finalize assembles the payload from the stored record. On success the
// wizard is marked Submitted; otherwise it moves to the redirect step.
func (c *WizardController) Finalize() (*models.EnrollmentPayload, *models.Redirect, error) {
	if c.current == models.StepSubmitted {
		return nil, nil, appErrors.ErrWizardSubmitted
	}
	payload, redirect := c.assembler.Finalize(c.store.Get())
	if redirect != nil {
		c.metrics.RecordTransition(models.StepReview, TransitionRedirected)
		c.metrics.RecordValidationErrors(redirect.Errors)
		c.current = redirect.Step
		return nil, redirect, nil
	}
	c.current = models.StepSubmitted
	return payload, nil, nil
}

// Reopen returns a submitted wizard to Review so a failed submission can be
// retried.
func (c *WizardController) Reopen() {
	if c.current == models.StepSubmitted {
		c.current = models.StepReview
	}
}

// candidate restricts values to the fields validated for step. Step2 shares
// classLevel with Step1, so the stored value is used when present.
func (c *WizardController) candidate(step models.Step, values models.EnrollmentRecord) models.EnrollmentRecord {
	if step == models.StepReview {
		return c.store.Get().Merge(values)
	}
	out := values.Only(c.engine.StepFields(step))
	if step == models.Step2 {
		if stored := c.store.Get(); stored.ClassLevel != nil {
			out.ClassLevel = stored.ClassLevel
		}
	}
	return out
}
