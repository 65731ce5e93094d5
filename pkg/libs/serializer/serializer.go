package serializer

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"

	"github.com/aviate-labs/leb128"
	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"
)

// Serializer writes Candid primitives to the underlying writer and counts written bytes.
// Multi-byte fixed width values are little-endian.
type Serializer struct {
	w io.Writer
	n int
}

func New(w io.Writer) *Serializer {
	return &Serializer{
		w: w,
		n: 0,
	}
}

func (a *Serializer) Write(b []byte) (int, error) {
	n, err := a.w.Write(b)
	if err != nil {
		return 0, err
	}
	a.n += n
	return n, nil
}

// Uleb128 writes v as unsigned LEB128.
func (a *Serializer) Uleb128(v uint64) error {
	buf := make([]byte, 0, binary.MaxVarintLen64)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		buf = append(buf, b)
		break
	}
	return a.Bytes(buf)
}

// Sleb128 writes v as signed LEB128.
func (a *Serializer) Sleb128(v int64) error {
	buf := make([]byte, 0, binary.MaxVarintLen64)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			buf = append(buf, b)
			break
		}
		buf = append(buf, b|0x80)
	}
	return a.Bytes(buf)
}

// BigUleb128 writes non-negative v as unsigned LEB128 of arbitrary length.
func (a *Serializer) BigUleb128(v *big.Int) error {
	if v.Sign() < 0 {
		return errors.Errorf("negative value %s can't be encoded as unsigned LEB128", v.String())
	}
	buf, err := leb128.EncodeUnsigned(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s as unsigned LEB128", v.String())
	}
	return a.Bytes(buf)
}

// BigSleb128 writes v as signed LEB128 of arbitrary length.
func (a *Serializer) BigSleb128(v *big.Int) error {
	buf, err := leb128.EncodeSigned(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s as signed LEB128", v.String())
	}
	return a.Bytes(buf)
}

func (a *Serializer) Uint16(v uint16) error {
	buf := [2]byte{}
	binary.LittleEndian.PutUint16(buf[:], v)
	return a.Bytes(buf[:])
}

func (a *Serializer) Uint32(v uint32) error {
	buf := [4]byte{}
	binary.LittleEndian.PutUint32(buf[:], v)
	return a.Bytes(buf[:])
}

func (a *Serializer) Uint64(v uint64) error {
	buf := [8]byte{}
	binary.LittleEndian.PutUint64(buf[:], v)
	return a.Bytes(buf[:])
}

func (a *Serializer) Float32(v float32) error {
	return a.Uint32(math.Float32bits(v))
}

func (a *Serializer) Float64(v float64) error {
	return a.Uint64(math.Float64bits(v))
}

// StringWithUlebLen writes the length of s as unsigned LEB128 followed with the bytes of s.
func (a *Serializer) StringWithUlebLen(s string) error {
	return a.BytesWithUlebLen([]byte(s))
}

// BytesWithUlebLen writes the length of data as unsigned LEB128 followed with data itself.
func (a *Serializer) BytesWithUlebLen(data []byte) error {
	l, err := safecast.Convert[uint64](len(data))
	if err != nil {
		return errors.Wrap(err, "invalid data length")
	}
	if err := a.Uleb128(l); err != nil {
		return err
	}
	return a.Bytes(data)
}

func (a *Serializer) String(s string) error {
	return a.Bytes([]byte(s))
}

func (a *Serializer) Byte(b byte) error {
	return a.Bytes([]byte{b})
}

func (a *Serializer) N() int64 {
	return int64(a.n)
}

func (a *Serializer) Bool(b bool) error {
	var v byte = 0
	if b {
		v = 1
	}
	return a.Byte(v)
}

func (a *Serializer) Bytes(b []byte) error {
	n, err := a.w.Write(b)
	if err != nil {
		return err
	}
	a.n += n
	return nil
}
