package candid

import (
	"strings"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/pkg/errors"
)

// MaxPrincipalLength is the maximal length of a principal in bytes.
const MaxPrincipalLength = 29

// minPrincipalTextLength is the number of base32 characters of a bare checksum.
const minPrincipalTextLength = 7

// PrincipalFromText parses the textual form of a principal: base32 of the CRC32 checksum
// followed by the principal bytes, lowercase, split into groups of five characters.
func PrincipalFromText(s string) (Principal, error) {
	if len(strings.ReplaceAll(s, "-", "")) < minPrincipalTextLength {
		return nil, errors.Errorf("invalid principal %q: too short", s)
	}
	id, err := principal.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid principal %q", s)
	}
	if len(id.Raw) > MaxPrincipalLength {
		return nil, errors.Errorf("invalid principal %q: length %d exceeds %d bytes", s, len(id.Raw), MaxPrincipalLength)
	}
	p := Principal(id.Raw)
	if canonical := principalToText(p); canonical != s {
		return nil, errors.Errorf("invalid principal %q: expected canonical form %q", s, canonical)
	}
	return p, nil
}

func principalToText(p Principal) string {
	return principal.Principal{Raw: p}.Encode()
}
