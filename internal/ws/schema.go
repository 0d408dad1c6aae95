package ws

import (
	"sync"

	"github.com/invopop/jsonschema"
)

// ProtocolSchema describes the wire messages: the inbound frame and each
// outbound payload keyed by message type.
type ProtocolSchema struct {
	Inbound  *jsonschema.Schema            `json:"inbound"`
	Outbound map[string]*jsonschema.Schema `json:"outbound"`
}

var (
	schemaOnce sync.Once
	schema     ProtocolSchema
)

func Schema() ProtocolSchema {
	schemaOnce.Do(func() {
		schema = ProtocolSchema{
			Inbound:  jsonschema.Reflect(&Inbound{}),
			Outbound: make(map[string]*jsonschema.Schema, len(payloads)),
		}
		for t, v := range payloads {
			schema.Outbound[t] = jsonschema.Reflect(v)
		}
	})
	return schema
}
