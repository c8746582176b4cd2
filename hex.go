package custody

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/iov-one/custody/errors"
)

// HexBytes is a binary value that is represented as an upper case hex
// string in JSON and in logs. Record keys (group and request identities)
// use it.
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return marshalHex(h)
}

func (h *HexBytes) UnmarshalJSON(raw []byte) error {
	return unmarshalHex((*[]byte)(h), raw)
}

func (h HexBytes) String() string {
	return strings.ToUpper(hex.EncodeToString(h))
}

func unmarshalHex(dst *[]byte, src []byte) (err error) {
	var s string
	if err := json.Unmarshal(src, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "parse string")
	}
	// and interpret that string as hex
	val, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "decode hex")
	}
	*dst = val
	return nil
}

func marshalHex(bytes []byte) ([]byte, error) {
	s := strings.ToUpper(hex.EncodeToString(bytes))
	return json.Marshal(s)
}
