package dispatch

import "github.com/Jack4Code/dispatch/config"

// PipelineDescriptors converts a configured pipeline into descriptors.
// Configurator names in pair entries are looked up in configurators; an
// unknown name leaves the pair without a usable configurator, so that entry
// fails with ErrInvalidDescriptor once a request reaches it.
func PipelineDescriptors(p config.Pipeline, configurators map[string]Configurator) (Descriptor, []Descriptor) {
	middleware := make([]Descriptor, 0, len(p.Middleware))
	for _, entry := range p.Middleware {
		middleware = append(middleware, Describe(withConfigurator(entry, configurators)))
	}
	return Service(p.Handler), middleware
}

// NewPipelineDispatcher builds a Dispatcher for a configured pipeline.
func NewPipelineDispatcher(lookup Lookup, p config.Pipeline, configurators map[string]Configurator, opts ...Option) *Dispatcher {
	handler, middleware := PipelineDescriptors(p, configurators)
	return NewDispatcher(lookup, handler, middleware, opts...)
}

func withConfigurator(entry any, configurators map[string]Configurator) any {
	pair, ok := entry.([]any)
	if !ok || len(pair) != 2 {
		return entry
	}
	name, ok := pair[1].(string)
	if !ok {
		return entry
	}
	configure, ok := configurators[name]
	if !ok {
		return entry
	}
	return []any{pair[0], configure}
}
