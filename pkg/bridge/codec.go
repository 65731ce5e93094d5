package bridge

import (
	"go.uber.org/zap"
)

// Codec converts method arguments from text to the binary message format and results
// back to text. Diagnostics go to the logger, they never change the outcome of a call.
type Codec struct {
	logger *zap.SugaredLogger
}

func NewCodec(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger.Sugar()}
}
