package deserializer

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/big"

	"github.com/aviate-labs/leb128"
	"github.com/pkg/errors"
)

type Deserializer struct {
	b []byte
}

func NewDeserializer(b []byte) *Deserializer {
	return &Deserializer{
		b: b,
	}
}

func (a *Deserializer) Byte() (byte, error) {
	if len(a.b) > 0 {
		out := a.b[0]
		a.b = a.b[1:]
		return out, nil
	}
	return 0, errors.Errorf("not enough bytes, expected at least 1, found 0")
}

func (a *Deserializer) Uint16() (uint16, error) {
	l := 2
	if len(a.b) < l {
		return 0, errors.Errorf(
			"not enough bytes to deserialize uint16, expected at least %d, found %d",
			l,
			len(a.b))
	}
	out := binary.LittleEndian.Uint16(a.b[:l])
	a.b = a.b[l:]
	return out, nil
}

func (a *Deserializer) Uint32() (uint32, error) {
	l := 4
	if len(a.b) < l {
		return 0, errors.Errorf(
			"not enough bytes to deserialize uint32, expected at least %d, found %d",
			l,
			len(a.b))
	}
	out := binary.LittleEndian.Uint32(a.b[:l])
	a.b = a.b[l:]
	return out, nil
}

func (a *Deserializer) Uint64() (uint64, error) {
	l := 8
	if len(a.b) < l {
		return 0, errors.Errorf(
			"not enough bytes to deserialize uint64, expected at least %d, found %d",
			l,
			len(a.b))
	}
	out := binary.LittleEndian.Uint64(a.b[:l])
	a.b = a.b[l:]
	return out, nil
}

func (a *Deserializer) Float32() (float32, error) {
	v, err := a.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (a *Deserializer) Float64() (float64, error) {
	v, err := a.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Uleb128 reads an unsigned LEB128 value that fits into uint64.
func (a *Deserializer) Uleb128() (uint64, error) {
	var (
		out   uint64
		shift uint
	)
	for i := 0; ; i++ {
		if i >= len(a.b) {
			return 0, errors.New("not enough bytes to deserialize LEB128 value")
		}
		b := a.b[i]
		if shift == 63 && b > 1 {
			return 0, errors.New("LEB128 value overflows uint64")
		}
		out |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			a.b = a.b[i+1:]
			return out, nil
		}
		shift += 7
	}
}

// Sleb128 reads a signed LEB128 value that fits into int64.
func (a *Deserializer) Sleb128() (int64, error) {
	v, err := a.BigSleb128()
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() {
		return 0, errors.Errorf("SLEB128 value %s overflows int64", v.String())
	}
	return v.Int64(), nil
}

// BigUleb128 reads an unsigned LEB128 value of arbitrary length.
func (a *Deserializer) BigUleb128() (*big.Int, error) {
	groups, err := a.lebGroups()
	if err != nil {
		return nil, err
	}
	out, err := leb128.DecodeUnsigned(bytes.NewReader(groups))
	if err != nil {
		return nil, errors.Wrap(err, "invalid LEB128 value")
	}
	return out, nil
}

// BigSleb128 reads a signed LEB128 value of arbitrary length.
func (a *Deserializer) BigSleb128() (*big.Int, error) {
	groups, err := a.lebGroups()
	if err != nil {
		return nil, err
	}
	out, err := leb128.DecodeSigned(bytes.NewReader(groups))
	if err != nil {
		return nil, errors.Wrap(err, "invalid SLEB128 value")
	}
	return out, nil
}

// lebGroups cuts the bytes of the next LEB128 value, the last one has the high bit clear.
func (a *Deserializer) lebGroups() ([]byte, error) {
	for i, b := range a.b {
		if b&0x80 == 0 {
			out := a.b[:i+1]
			a.b = a.b[i+1:]
			return out, nil
		}
	}
	return nil, errors.New("not enough bytes to deserialize LEB128 value")
}

// Len of the rest bytes.
func (a *Deserializer) Len() int {
	return len(a.b)
}

func (a *Deserializer) Bytes(length uint64) ([]byte, error) {
	if length > uint64(len(a.b)) {
		return nil, errors.Errorf(
			"not enough bytes to deserialize Bytes, expected %d, found %d",
			length,
			len(a.b))
	}
	out := a.b[:length]
	a.b = a.b[length:]
	return out, nil
}

// BytesWithUlebLen reads a LEB128 length followed by that many bytes.
func (a *Deserializer) BytesWithUlebLen() ([]byte, error) {
	l, err := a.Uleb128()
	if err != nil {
		return nil, err
	}
	return a.Bytes(l)
}
