package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var (
	ErrEmptySubject       = errors.New("subject is empty")
	ErrNoSchemaIdentifier = errors.New("schema identifier is nil")
)

type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// NewClientEventV1Serde registers [ClientEventSchemaTextV1] under the subject
// and returns a serde framing Avro encoded [ClientEventV1] values with the
// registry id.
func NewClientEventV1Serde(
	ctx context.Context, si SchemaIdentifier, subject string,
) (Serde, error) {
	const op = "NewClientEventV1Serde"

	switch {
	case subject == "":
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySubject)
	case si == nil:
		return nil, fmt.Errorf("%s: %w", op, ErrNoSchemaIdentifier)
	}

	id, err := si.DetermineID(ctx, subject, ClientEventSchemaTextV1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	avroSchema := ClientEventV1Avro()

	serde := new(sr.Serde)
	serde.Register(
		id,
		ClientEventV1{},
		sr.EncodeFn(func(v any) ([]byte, error) {
			return avro.Marshal(avroSchema, v)
		}),
		sr.DecodeFn(func(data []byte, v any) error {
			return avro.Unmarshal(avroSchema, data, v)
		}),
	)
	return serde, nil
}
