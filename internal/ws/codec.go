package ws

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding is the wire format a client asked for when it connected.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMsgpack
)

func (e Encoding) String() string {
	if e == EncodingMsgpack {
		return "msgpack"
	}
	return "json"
}

// ParseEncoding maps the encoding query parameter to an Encoding. Anything
// other than "msgpack" selects JSON.
func ParseEncoding(s string) Encoding {
	if s == "msgpack" {
		return EncodingMsgpack
	}
	return EncodingJSON
}

// Frame is one outbound WebSocket message.
type Frame struct {
	Binary bool
	Data   []byte
}

// binaryEnvelope is the msgpack form of Message. Data stays generic so it can
// be re-encoded as JSON for the handlers.
type binaryEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// MarshalBinary encodes v as msgpack, reusing its json struct tags for field names.
func MarshalBinary(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeBinaryMessage encodes a typed payload as a binary envelope.
func EncodeBinaryMessage(msgType string, payload any) ([]byte, error) {
	return MarshalBinary(binaryEnvelope{Type: msgType, Data: payload})
}

// DecodeMessage parses an inbound frame into a Message. Binary frames carry a
// msgpack envelope whose data is converted to JSON.
func DecodeMessage(binary bool, data []byte) (Message, error) {
	var msg Message
	if !binary {
		if err := json.Unmarshal(data, &msg); err != nil {
			return Message{}, err
		}
		return msg, nil
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var env binaryEnvelope
	if err := dec.Decode(&env); err != nil {
		return Message{}, fmt.Errorf("decode binary frame: %w", err)
	}
	msg.Type = env.Type
	if env.Data != nil {
		raw, err := json.Marshal(env.Data)
		if err != nil {
			return Message{}, fmt.Errorf("convert binary payload: %w", err)
		}
		msg.Data = raw
	}
	return msg, nil
}
