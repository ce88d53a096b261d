package source

// StaticBrief is a config-backed project brief: it supplies the default
// business description and target CPL when an analyze request omits them.
// It implements service.ProjectBrief.
type StaticBrief struct {
	targetCpl           *float64
	businessDescription string
}

// NewStaticBrief builds a brief from configuration values. A zero targetCpl
// means no target is set.
func NewStaticBrief(businessDescription string, targetCpl float64) *StaticBrief {
	brief := &StaticBrief{businessDescription: businessDescription}
	if targetCpl > 0 {
		brief.targetCpl = &targetCpl
	}
	return brief
}

// BusinessDescription returns the configured default description.
func (b *StaticBrief) BusinessDescription() string {
	return b.businessDescription
}

// TargetCpl returns the configured default target, or nil when unset.
func (b *StaticBrief) TargetCpl() *float64 {
	return b.targetCpl
}
