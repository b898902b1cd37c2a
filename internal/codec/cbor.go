// Package codec holds the CBOR modes shared by every prpass wire format.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2) so the same job always
// serializes to the same bytes.
package codec

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// MaxPayloadLen bounds the size of any decoded message. Job payloads are small; anything
// larger is hostile input.
const MaxPayloadLen = 1 << 20

// ErrPayloadTooLarge is returned by Unmarshal for input longer than MaxPayloadLen.
var ErrPayloadTooLarge = errors.New("codec: payload too large")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels:  16,
		MaxArrayElements: 1024,
		MaxMapPairs:      1024,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	if len(data) > MaxPayloadLen {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}
	return decMode.Unmarshal(data, v)
}
