// Package syncrpc defines the gRPC sync service shared by client and server:
// its request/response messages, a JSON codec and the service descriptor.
//
// Rows travel as plain JSON objects keyed by remote column names, so the
// codec is JSON rather than protobuf. Numbers are decoded as json.Number to
// keep integer columns exact.
package syncrpc

import (
	"bytes"
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype of the JSON codec.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (jsonCodec) Name() string {
	return CodecName
}
