package bridge

// Format selects the representation of arguments and results.
type Format byte

const (
	Raw    Format = iota + 1 // hexadecimal bytes
	IDL                      // single line values
	Pretty                   // multi-line values, results only
)

var formats = map[string]Format{
	"raw": Raw,
	"idl": IDL,
	"pp":  Pretty,
}

// ParseFormat returns the format named by s.
func ParseFormat(s string) (Format, bool) {
	f, ok := formats[s]
	return f, ok
}

func (f Format) String() string {
	switch f {
	case Raw:
		return "raw"
	case IDL:
		return "idl"
	case Pretty:
		return "pp"
	default:
		return "unknown"
	}
}
