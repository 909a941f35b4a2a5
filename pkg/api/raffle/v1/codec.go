package rafflev1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype of the raffle service messages
// (application/grpc+json).
const CodecName = "json"

type codec struct{}

func init() {
	encoding.RegisterCodec(codec{})
}

func (codec) Marshal(v interface{}) ([]byte, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %s", v, err)
	}
	return buf, nil
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	if len(data) <= 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %s", v, err)
	}
	return nil
}

func (codec) Name() string {
	return CodecName
}
