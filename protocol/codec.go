package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes messages for one websocket frame type
type Codec interface {
	Name() string
	// Binary reports whether frames go out as binary rather than text
	Binary() bool
	Encode(m Message) ([]byte, error)
	Decode(data []byte) (Message, error)
}

// JSONCodec uses text frames. Unknown fields are rejected.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

func (JSONCodec) Decode(data []byte) (Message, error) {
	var m Message
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return Message{}, fmt.Errorf("decode json: %w", err)
	}
	return m, nil
}

// MsgpackCodec uses binary frames. Unknown fields are rejected.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Encode(m Message) ([]byte, error) {
	return msgpack.Marshal(m)
}

func (MsgpackCodec) Decode(data []byte) (Message, error) {
	var m Message
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Message{}, fmt.Errorf("decode msgpack: %w", err)
	}
	return m, nil
}

// CodecFor returns the codec registered under name. Empty means JSON.
func CodecFor(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// DecodeFrame decodes a frame with the codec matching its type, so either
// side may switch codecs without renegotiating.
func DecodeFrame(binary bool, data []byte) (Message, error) {
	if binary {
		return MsgpackCodec{}.Decode(data)
	}
	return JSONCodec{}.Decode(data)
}
