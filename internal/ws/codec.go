package ws

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

// codec frames messages for one connection. JSON is the default; clients can
// ask for msgpack with ?codec=msgpack.
type codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	MessageType() websocket.MessageType
}

func codecFor(name string) codec {
	if name == "msgpack" {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) MessageType() websocket.MessageType { return websocket.MessageText }

// msgpackCodec reuses the json struct tags so both codecs share field names.
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (msgpackCodec) MessageType() websocket.MessageType { return websocket.MessageBinary }
