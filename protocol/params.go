package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

// Params is a full or partial vehicle field set. A nil field was not sent
// and must leave the receiver's value untouched.
type Params struct {
	X               *float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Y               *float64 `json:"y,omitempty" msgpack:"y,omitempty"`
	XVelocity       *float64 `json:"xVelocity,omitempty" msgpack:"xVelocity,omitempty"`
	YVelocity       *float64 `json:"yVelocity,omitempty" msgpack:"yVelocity,omitempty"`
	Power           *float64 `json:"power,omitempty" msgpack:"power,omitempty"`
	Reverse         *float64 `json:"reverse,omitempty" msgpack:"reverse,omitempty"`
	Angle           *float64 `json:"angle,omitempty" msgpack:"angle,omitempty"`
	AngularVelocity *float64 `json:"angularVelocity,omitempty" msgpack:"angularVelocity,omitempty"`

	IsThrottling   *Magnitude `json:"isThrottling,omitempty" msgpack:"isThrottling,omitempty"`
	IsReversing    *Magnitude `json:"isReversing,omitempty" msgpack:"isReversing,omitempty"`
	IsShooting     *Magnitude `json:"isShooting,omitempty" msgpack:"isShooting,omitempty"`
	IsTurningLeft  *Magnitude `json:"isTurningLeft,omitempty" msgpack:"isTurningLeft,omitempty"`
	IsTurningRight *Magnitude `json:"isTurningRight,omitempty" msgpack:"isTurningRight,omitempty"`

	IsHit  *bool   `json:"isHit,omitempty" msgpack:"isHit,omitempty"`
	IsShot *bool   `json:"isShot,omitempty" msgpack:"isShot,omitempty"`
	Name   *string `json:"name,omitempty" msgpack:"name,omitempty"`
	Points *int    `json:"points,omitempty" msgpack:"points,omitempty"`
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Mag returns a pointer to a Magnitude of v
func Mag(v float64) *Magnitude { m := Magnitude(v); return &m }

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// Magnitude is an intent strength in [0,1]. Older peers send booleans, so
// it decodes from either a bool or a number and always encodes as a number.
type Magnitude float64

// MarshalJSON implements json.Marshaler
func (m Magnitude) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(m))
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Magnitude) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "true":
		*m = 1
		return nil
	case "false", "null":
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("magnitude: %w", err)
	}
	*m = Magnitude(f)
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder
func (m Magnitude) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeFloat64(float64(m))
}

// DecodeMsgpack implements msgpack.CustomDecoder
func (m *Magnitude) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*m = 0
	case bool:
		if x {
			*m = 1
		} else {
			*m = 0
		}
	case int64:
		*m = Magnitude(x)
	case uint64:
		*m = Magnitude(x)
	case float64:
		*m = Magnitude(x)
	default:
		return fmt.Errorf("magnitude: unexpected %T", v)
	}
	return nil
}
