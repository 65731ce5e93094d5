package bridge

import (
	"github.com/icpkit/idlbridge/pkg/candid"
)

// Signature is the type of one service method resolved in the environment of its interface.
type Signature struct {
	Name string
	Env  *candid.TypeEnv
	Func candid.FuncType
}

func (s *Signature) Args() []candid.Type {
	return s.Func.Args
}

func (s *Signature) Rets() []candid.Type {
	return s.Func.Rets
}

func (s *Signature) String() string {
	return s.Name + " : " + s.Func.Signature()
}

// LookupMethod finds the named method of the service. It fails if there is no service,
// no such method or the method type doesn't resolve to a function.
func LookupMethod(env *candid.TypeEnv, actor *candid.ServiceType, name string) (*Signature, bool) {
	if actor == nil {
		return nil, false
	}
	ft, err := env.Method(*actor, name)
	if err != nil {
		return nil, false
	}
	return &Signature{Name: name, Env: env, Func: ft}, true
}
