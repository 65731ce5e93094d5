package deserializer

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeserializer_Byte(t *testing.T) {
	b := []byte{4}
	d := NewDeserializer(b)
	t.Run("valid", func(t *testing.T) {
		rs, err := d.Byte()
		require.NoError(t, err)
		require.EqualValues(t, 4, rs)
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := d.Byte()
		require.Error(t, err)
	})
}

func TestDeserializer_Uint32(t *testing.T) {
	d := NewDeserializer([]byte{0x94, 0x88, 0x01, 0x00})
	t.Run("valid", func(t *testing.T) {
		rs, err := d.Uint32()
		require.NoError(t, err)
		require.EqualValues(t, 100500, rs)
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := d.Uint32()
		require.Error(t, err)
	})
}

func TestDeserializer_Float64(t *testing.T) {
	d := NewDeserializer([]byte{0, 0, 0, 0, 0, 0, 0xf8, 0x3f})
	rs, err := d.Float64()
	require.NoError(t, err)
	require.Equal(t, 1.5, rs)
	require.Equal(t, 0, d.Len())
}

func TestDeserializer_Bytes(t *testing.T) {
	b := []byte{1, 2, 3}
	d := NewDeserializer(b)
	t.Run("valid", func(t *testing.T) {
		rs, err := d.Bytes(3)
		require.NoError(t, err)
		require.Equal(t, b, rs)
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := d.Bytes(1)
		require.Error(t, err)
	})
}

func TestDeserializer_Uleb128(t *testing.T) {
	for i, test := range []struct {
		data     []byte
		expected uint64
		rest     int
	}{
		{[]byte{0x00}, 0, 0},
		{[]byte{0x7f, 0x01}, 127, 1},
		{[]byte{0x80, 0x01}, 128, 0},
		{[]byte{0xe5, 0x8e, 0x26, 0xff}, 624485, 1},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			d := NewDeserializer(test.data)
			rs, err := d.Uleb128()
			require.NoError(t, err)
			require.Equal(t, test.expected, rs)
			require.Equal(t, test.rest, d.Len())
		})
	}
}

func TestDeserializer_Uleb128Errors(t *testing.T) {
	_, err := NewDeserializer([]byte{0x80, 0x80}).Uleb128()
	require.Error(t, err)
	overflow := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}
	_, err = NewDeserializer(overflow).Uleb128()
	require.Error(t, err)
}

func TestDeserializer_Sleb128(t *testing.T) {
	for i, test := range []struct {
		data     []byte
		expected int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, -1},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0x40}, -64},
		{[]byte{0xbf, 0x7f}, -65},
		{[]byte{0xc0, 0xbb, 0x78}, -123456},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			d := NewDeserializer(test.data)
			rs, err := d.Sleb128()
			require.NoError(t, err)
			require.Equal(t, test.expected, rs)
		})
	}
}

func TestDeserializer_BigUleb128(t *testing.T) {
	data := make([]byte, 0, 19)
	for i := 0; i < 18; i++ {
		data = append(data, 0x80)
	}
	data = append(data, 0x04)
	rs, err := NewDeserializer(data).BigUleb128()
	require.NoError(t, err)
	expected := new(big.Int).Lsh(big.NewInt(1), 128)
	require.Zero(t, expected.Cmp(rs), "got %s", rs.String())
}

func TestDeserializer_BytesWithUlebLen(t *testing.T) {
	d := NewDeserializer([]byte{3, 'a', 'b', 'c', 9})
	rs, err := d.BytesWithUlebLen()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), rs)
	require.Equal(t, 1, d.Len())

	_, err = NewDeserializer([]byte{4, 'a'}).BytesWithUlebLen()
	require.Error(t, err)
}
