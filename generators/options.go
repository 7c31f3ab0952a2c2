package generators

// Option configures a Transpile/TranspileAll run, mirroring coroc's own
// CompileOption functional-options style (coroc/compiler/compile.go).
type Option func(*config)

type config struct {
	loopGuard bool
}

func defaultConfig() *config {
	return &config{loopGuard: true}
}

// WithLoopGuard controls whether the generated switch is wrapped in a
// `do { ... } while (0)` loop (spec §9c). The wrapping exists to placate
// a downstream type inferencer that this module has no equivalent of;
// the option is kept, with its original default, so a host that does
// need the wrapping (or one running this pass before such an
// inferencer) is not forced to guess this module's intent.
func WithLoopGuard(enabled bool) Option {
	return func(c *config) { c.loopGuard = enabled }
}
