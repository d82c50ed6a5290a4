package momoto

import "fmt"

// Module installs resources into an engine. Modules run in the order they
// were added and may depend on resources installed before them.
type Module interface {
	Install(e *Engine) error
}

type EngineBuilder struct {
	engine  *Engine
	modules []Module
}

func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{engine: newEngine()}
}

func (b *EngineBuilder) UseModule(modules ...Module) *EngineBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs every module and stops at the first failure.
func (b *EngineBuilder) Build() (*Engine, error) {
	e := b.engine

	for _, module := range b.modules {
		if err := module.Install(e); err != nil {
			return nil, fmt.Errorf("install %T: %w", module, err)
		}
		e.modules = append(e.modules, module)
	}

	return e, nil
}
