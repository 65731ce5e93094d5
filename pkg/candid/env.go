package candid

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"
)

// TypeEnv maps type names to their definitions in declaration order.
// A nil *TypeEnv is a valid empty environment.
type TypeEnv struct {
	types *orderedmap.OrderedMap[string, Type]
}

func NewTypeEnv() *TypeEnv {
	return &TypeEnv{types: orderedmap.NewOrderedMap[string, Type]()}
}

// Define binds the name to the type, it fails if the name is already bound.
func (e *TypeEnv) Define(name string, t Type) error {
	if _, ok := e.types.Get(name); ok {
		return errors.Errorf("duplicate binding for type %q", name)
	}
	e.types.Set(name, t)
	return nil
}

// Find returns the definition of the named type.
func (e *TypeEnv) Find(name string) (Type, bool) {
	if e == nil {
		return nil, false
	}
	return e.types.Get(name)
}

// Names returns type names in declaration order.
func (e *TypeEnv) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, e.types.Len())
	for el := e.types.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}

func (e *TypeEnv) Len() int {
	if e == nil {
		return 0
	}
	return e.types.Len()
}

// Trace follows references until a non-reference type is found.
func (e *TypeEnv) Trace(t Type) (Type, error) {
	seen := make(map[VarType]struct{})
	for {
		v, ok := t.(VarType)
		if !ok {
			return t, nil
		}
		if _, loop := seen[v]; loop {
			return nil, errors.Errorf("type %q is defined by a reference cycle", string(v))
		}
		seen[v] = struct{}{}
		def, ok := e.Find(string(v))
		if !ok {
			return nil, errors.Errorf("unbound type identifier %q", string(v))
		}
		t = def
	}
}

// AsFunc resolves t to a function type.
func (e *TypeEnv) AsFunc(t Type) (FuncType, error) {
	r, err := e.Trace(t)
	if err != nil {
		return FuncType{}, err
	}
	ft, ok := r.(FuncType)
	if !ok {
		return FuncType{}, errors.Errorf("type %s is not a function", t.String())
	}
	return ft, nil
}

// AsService resolves t to a service type.
func (e *TypeEnv) AsService(t Type) (ServiceType, error) {
	r, err := e.Trace(t)
	if err != nil {
		return ServiceType{}, err
	}
	st, ok := r.(ServiceType)
	if !ok {
		return ServiceType{}, errors.Errorf("type %s is not a service", t.String())
	}
	return st, nil
}

// Method returns the signature of the named method of the service.
func (e *TypeEnv) Method(service ServiceType, name string) (FuncType, error) {
	m, ok := service.Method(name)
	if !ok {
		return FuncType{}, errors.Errorf("method %q not found", name)
	}
	return e.AsFunc(m.Type)
}
