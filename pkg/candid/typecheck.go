package candid

// CheckProgram type checks the parsed program and builds its type environment.
// The returned service is nil if the program doesn't declare one.
func CheckProgram(prog *Program) (*TypeEnv, *ServiceType, error) {
	env := NewTypeEnv()
	for _, def := range prog.Types {
		if err := env.Define(def.Name, def.Type); err != nil {
			return nil, nil, newTypeError("%v at %s", err, def.Pos)
		}
	}
	for _, def := range prog.Types {
		if err := checkType(env, def.Type); err != nil {
			return nil, nil, newTypeError("type %q: %v", def.Name, err)
		}
		if _, err := env.Trace(VarType(def.Name)); err != nil {
			return nil, nil, newTypeError("type %q: %v", def.Name, err)
		}
	}
	if prog.Actor == nil {
		return env, nil, nil
	}
	for _, t := range prog.Actor.Init {
		if err := checkType(env, t); err != nil {
			return nil, nil, newTypeError("service initialization arguments: %v", err)
		}
	}
	if err := checkType(env, prog.Actor.Type); err != nil {
		return nil, nil, newTypeError("service: %v", err)
	}
	st, err := env.AsService(prog.Actor.Type)
	if err != nil {
		return nil, nil, newTypeError("service: %v", err)
	}
	return env, &st, nil
}

func checkType(env *TypeEnv, t Type) error {
	switch tt := t.(type) {
	case Primitive:
		return nil
	case VarType:
		if _, ok := env.Find(string(tt)); !ok {
			return newTypeError("unbound type identifier %q", string(tt))
		}
		return nil
	case OptType:
		return checkType(env, tt.Inner)
	case VecType:
		return checkType(env, tt.Inner)
	case RecordType:
		return checkFields(env, tt.Fields)
	case VariantType:
		return checkFields(env, tt.Fields)
	case FuncType:
		return checkFunc(env, tt)
	case ServiceType:
		return checkService(env, tt)
	default:
		return newTypeError("unsupported type %T", t)
	}
}

func checkFields(env *TypeEnv, fields []FieldType) error {
	for i, f := range fields {
		if i > 0 && fields[i-1].ID == f.ID {
			return newTypeError("field %s has the same id %d as field %s", f.label(), f.ID, fields[i-1].label())
		}
		if err := checkType(env, f.Type); err != nil {
			return err
		}
	}
	return nil
}

func checkFunc(env *TypeEnv, ft FuncType) error {
	for _, t := range ft.Args {
		if err := checkType(env, t); err != nil {
			return err
		}
	}
	for _, t := range ft.Rets {
		if err := checkType(env, t); err != nil {
			return err
		}
	}
	for _, m := range ft.Modes {
		if m == ModeOneway && len(ft.Rets) != 0 {
			return newTypeError("oneway function has non-unit return type")
		}
	}
	return nil
}

func checkService(env *TypeEnv, st ServiceType) error {
	for i, m := range st.Methods {
		if i > 0 && st.Methods[i-1].Name == m.Name {
			return newTypeError("duplicate method name %q", m.Name)
		}
		if err := checkType(env, m.Type); err != nil {
			return err
		}
		if _, err := env.AsFunc(m.Type); err != nil {
			return newTypeError("method %q: %v", m.Name, err)
		}
	}
	return nil
}
