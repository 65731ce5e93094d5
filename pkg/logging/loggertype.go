package logging

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoggerType is a type of logger output.
// Possible types:
//   - LoggerText: console encoder without colors.
//   - LoggerJSON: JSON encoder.
//   - LoggerPretty: console encoder, colored levels if the output is a terminal.
//   - LoggerPrettyNoColor: console encoder with capital levels and no colors.
type LoggerType int

const (
	LoggerText LoggerType = iota
	LoggerJSON
	LoggerPretty
	LoggerPrettyNoColor
)

var loggerTypeNames = map[LoggerType]string{
	LoggerText:          "Text",
	LoggerJSON:          "JSON",
	LoggerPretty:        "Pretty",
	LoggerPrettyNoColor: "PrettyNoColor",
}

func (t LoggerType) String() string {
	if n, ok := loggerTypeNames[t]; ok {
		return n
	}
	return "LoggerType(" + strconv.Itoa(int(t)) + ")"
}

func (t LoggerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the type names case-insensitively.
func (t *LoggerType) UnmarshalText(text []byte) error {
	for k, n := range loggerTypeNames {
		if strings.EqualFold(n, string(text)) {
			*t = k
			return nil
		}
	}
	return errors.Errorf("%q does not belong to LoggerType values", string(text))
}
