package bridge

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/icpkit/idlbridge/pkg/candid"
)

const argumentsSource = "arguments"

// ArgumentStrategy is a row of the argument parsing decision table: Parse is tried if Applies
// holds for the argument text and the method signature.
type ArgumentStrategy struct {
	Name    string
	Applies func(text string, sig *Signature) bool
	Parse   func(text string) (candid.Args, error)
}

// ArgumentStrategies are tried in order until one of them parses the text. Only the strict
// list parsing applies without a signature.
var ArgumentStrategies = []ArgumentStrategy{
	{Name: "list", Applies: always, Parse: parseList},
	{Name: "text", Applies: isSingleTextArgument, Parse: parseVerbatimText},
	{Name: "value", Applies: isSingleArgument, Parse: parseSingleValue},
}

func always(string, *Signature) bool {
	return true
}

// isSingleArgument holds for text that isn't an explicit argument list passed to a method with
// exactly one argument.
func isSingleArgument(text string, sig *Signature) bool {
	return sig != nil && len(sig.Args()) == 1 && !strings.HasPrefix(text, "(")
}

func isSingleTextArgument(text string, sig *Signature) bool {
	if !isSingleArgument(text, sig) || strings.HasPrefix(strings.TrimSpace(text), `"`) {
		return false
	}
	t, err := sig.Env.Trace(sig.Args()[0])
	return err == nil && t == candid.TextType
}

func parseList(text string) (candid.Args, error) {
	return candid.ParseArgs(argumentsSource, text)
}

func parseVerbatimText(text string) (candid.Args, error) {
	return candid.Args{candid.Text(text)}, nil
}

func parseSingleValue(text string) (candid.Args, error) {
	v, err := candid.ParseValue(argumentsSource, text)
	if err != nil {
		return nil, err
	}
	return candid.Args{v}, nil
}

// ParseArguments applies ArgumentStrategies to the text. If none succeeds the error of the
// last applicable strategy is returned.
func ParseArguments(text string, sig *Signature) (candid.Args, error) {
	var lastErr error
	for _, s := range ArgumentStrategies {
		if !s.Applies(text, sig) {
			continue
		}
		args, err := s.Parse(text)
		if err == nil {
			return args, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return nil, errors.New("no applicable argument parsing strategy")
	}
	return nil, lastErr
}
