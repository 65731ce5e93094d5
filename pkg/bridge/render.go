package bridge

import (
	"encoding/hex"

	"github.com/icpkit/idlbridge/pkg/candid"
	"github.com/icpkit/idlbridge/pkg/candid/wire"
)

// Render converts a result message to text in the given format ("raw", "idl" or "pp", empty
// means "pp"). With a signature the message is decoded against the method return types.
func (c *Codec) Render(blob []byte, format string, sig *Signature) (string, error) {
	f := Pretty
	if format != "" {
		pf, ok := ParseFormat(format)
		if !ok {
			return "", Unknown.Errorf("Invalid output type: %s", format)
		}
		f = pf
	}
	if f == Raw {
		return hex.EncodeToString(blob), nil
	}
	var (
		args candid.Args
		err  error
	)
	if sig == nil {
		args, err = wire.Decode(blob)
	} else {
		args, err = wire.DecodeWithTypes(blob, sig.Rets(), sig.Env)
	}
	if err != nil {
		c.logger.Errorf("Error deserializing blob 0x%s", hex.EncodeToString(blob))
		return "", InvalidData.Tag(err)
	}
	if f == IDL {
		return args.String(), nil
	}
	return args.Pretty(candid.DefaultWidth), nil
}
