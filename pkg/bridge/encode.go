package bridge

import (
	"encoding/hex"

	"github.com/icpkit/idlbridge/pkg/candid/wire"
)

// EncodeArguments converts the argument text in the given format ("raw" or "idl", empty means
// "idl") to a message. Absent arguments stand for the empty list, an empty text is passed on
// as is. With a signature the values are encoded with the method argument types, otherwise the
// types are inferred from the values.
func (c *Codec) EncodeArguments(arguments *string, format string, sig *Signature) ([]byte, error) {
	f := IDL
	if format != "" {
		pf, ok := ParseFormat(format)
		if !ok || pf == Pretty {
			return nil, Unknown.Errorf("Invalid type: %s", format)
		}
		f = pf
	}
	if f == Raw {
		if arguments == nil {
			return []byte{}, nil
		}
		b, err := hex.DecodeString(*arguments)
		if err != nil {
			return nil, InvalidArgument.Wrap(err, "Argument is not a valid hex string")
		}
		return b, nil
	}
	text := "()"
	if arguments != nil {
		text = *arguments
	}
	if sig == nil {
		c.logger.Warn("cannot find method type, message will be sent with inferred type")
		args, err := parseList(text)
		if err != nil {
			return nil, InvalidArgument.Wrap(err, "Invalid Candid values")
		}
		blob, err := wire.Encode(args)
		if err != nil {
			return nil, InvalidData.Wrap(err, "Unable to serialize Candid values")
		}
		return blob, nil
	}
	args, err := ParseArguments(text, sig)
	if err != nil {
		return nil, InvalidArgument.Wrap(err, "Invalid Candid values")
	}
	blob, err := wire.EncodeWithTypes(args, sig.Args(), sig.Env)
	if err != nil {
		return nil, InvalidData.Wrap(err, "Unable to serialize Candid values")
	}
	return blob, nil
}
