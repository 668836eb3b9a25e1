package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ClientEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "client_event",
	"fields": [
		{"name": "session_id", "type": "string"},
		{"name": "action", "type": "string"},
		{"name": "page", "type": "string", "default": ""},
		{"name": "category", "type": "string", "default": ""},
		{"name": "product_id", "type": "string", "default": ""},
		{"name": "size", "type": "string", "default": ""},
		{"name": "item_id", "type": "string", "default": ""},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type ClientEventV1 struct {
	SessionID  string    `avro:"session_id"`
	Action     string    `avro:"action"`
	Page       string    `avro:"page"`
	Category   string    `avro:"category"`
	ProductID  string    `avro:"product_id"`
	Size       string    `avro:"size"`
	ItemID     string    `avro:"item_id"`
	OccurredAt time.Time `avro:"occurred_at"`
}

func ClientEventV1Avro() avro.Schema {
	return avro.MustParse(ClientEventSchemaTextV1)
}
