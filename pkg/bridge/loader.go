package bridge

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/icpkit/idlbridge/pkg/candid"
)

// Loader reads and checks interface description files.
type Loader struct {
	fs     afero.Fs
	logger *zap.SugaredLogger
}

func NewLoader(fs afero.Fs, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fs: fs, logger: logger.Sugar()}
}

// CheckFile parses and type checks the interface file. The service is nil if the file
// doesn't declare one.
func (l *Loader) CheckFile(path string) (*candid.TypeEnv, *candid.ServiceType, error) {
	src, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read interface file %q", path)
	}
	prog, err := candid.ParseProgram(path, string(src))
	if err != nil {
		return nil, nil, err
	}
	env, actor, err := candid.CheckProgram(prog)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "type error in %q", path)
	}
	return env, actor, nil
}

// BestEffortSignature returns the signature of the method declared in the interface file.
// Every failure results in no signature, the reason is logged at debug level.
func (l *Loader) BestEffortSignature(path, method string) (*Signature, bool) {
	if path == "" {
		return nil, false
	}
	env, actor, err := l.CheckFile(path)
	if err != nil {
		l.logger.Debugf("No type information for method %q: %v", method, err)
		return nil, false
	}
	sig, ok := LookupMethod(env, actor, method)
	if !ok {
		l.logger.Debugf("No type information for method %q: not found in %q", method, path)
		return nil, false
	}
	return sig, true
}
