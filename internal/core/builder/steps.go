package builder

// Step names as reported by StepError.
const (
	StepInitDefaultValues       = "InitDefaultValues"
	StepConfigureWorkload       = "ConfigureWorkload"
	StepConfigureService        = "ConfigureService"
	StepConfigureRoute          = "ConfigureRoute"
	StepConfigureLivenessProbe  = "ConfigureLivenessProbe"
	StepConfigureReadinessProbe = "ConfigureReadinessProbe"
)

// Steps is the overridable construction sequence of a builder variant.
// Implementations embed Base, which provides the defaults.
type Steps interface {
	InitDefaultValues() error
	ConfigureWorkload() error
	ConfigureService() error
	ConfigureRoute() error
	ConfigureLivenessProbe() error
	ConfigureReadinessProbe() error

	base() *Base
}

// Configure runs the steps of s in their fixed order. It runs at most once
// per builder; a second call returns ErrAlreadyConfigured without touching
// the bundle. The first failing step aborts the sequence.
func Configure(s Steps) error {
	b := s.base()
	if b.configured {
		return ErrAlreadyConfigured
	}
	b.configured = true

	sequence := []struct {
		name string
		run  func() error
	}{
		{StepInitDefaultValues, s.InitDefaultValues},
		{StepConfigureWorkload, s.ConfigureWorkload},
		{StepConfigureService, s.ConfigureService},
		{StepConfigureRoute, s.ConfigureRoute},
		{StepConfigureLivenessProbe, s.ConfigureLivenessProbe},
		{StepConfigureReadinessProbe, s.ConfigureReadinessProbe},
	}
	for _, step := range sequence {
		if err := step.run(); err != nil {
			b.err = &StepError{Builder: b.component, Step: step.name, Err: err}
			return b.err
		}
	}
	b.ready = true
	return nil
}
