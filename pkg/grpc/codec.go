package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName JSON codec 的 content-subtype (application/grpc+json)
const CodecName = "json"

// jsonCodec 以 encoding/json 序列化 gRPC 訊息，訊息型別為一般 Go struct
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
