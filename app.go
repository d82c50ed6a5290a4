// Package momoto hosts the material engine: a resource container that
// modules install the preset table, hybrid materials, the validator and
// the training worker into.
package momoto

import (
	"fmt"
	"reflect"
)

type Engine struct {
	modules   []Module
	resources map[reflect.Type]any
}

func newEngine() *Engine {
	return &Engine{resources: make(map[reflect.Type]any)}
}

// AddResources registers pointer resources keyed by their element type.
// Adding a second resource of the same type panics.
func (e *Engine) AddResources(resources ...any) *Engine {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType == nil || resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %v must be a pointer", resourceType))
		}
		if _, ok := e.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		e.resources[resourceType.Elem()] = resource
	}
	return e
}

// Resource returns the installed resource of type *T.
func Resource[T any](e *Engine) (*T, bool) {
	if e == nil {
		return nil, false
	}
	r, ok := e.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

// Modules lists the installed modules in install order.
func (e *Engine) Modules() []Module {
	return append([]Module(nil), e.modules...)
}
