package domain

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// AddressLength is the byte length of an identity.
const AddressLength = 20

// Address identifies a wallet, a payment token or an event ledger.
type Address [AddressLength]byte

// ZeroAddress is the null identity. It never owns tickets or funds.
var ZeroAddress Address

// ParseAddress accepts 0x-prefixed (or bare) 40 digit hex, any case.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != hex.EncodedLen(AddressLength) {
		return Address{}, ErrInvalidAddress
	}
	var a Address
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return Address{}, ErrInvalidAddress
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic("domain: invalid address " + s)
	}
	return a
}

// DeriveAddress computes a deterministic handle from a creator identity and a
// per-creator nonce: the last 20 bytes of BLAKE3(creator || nonce).
func DeriveAddress(creator Address, nonce uint64) Address {
	var buf [AddressLength + 8]byte
	copy(buf[:], creator[:])
	binary.BigEndian.PutUint64(buf[AddressLength:], nonce)
	sum := blake3.Sum256(buf[:])

	var a Address
	copy(a[:], sum[len(sum)-AddressLength:])
	return a
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
