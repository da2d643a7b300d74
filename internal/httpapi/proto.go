package httpapi

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/types"
)

// isProtobuf reports whether the request body is protobuf rather than JSON.
// Only explicit protobuf media types switch transports; anything else,
// application/octet-stream included, is read as JSON.
func isProtobuf(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-protobuf" || ct == "application/protobuf"
}

// batchFromProto decodes a google.protobuf.ListValue and re-encodes each
// element as JSON so both transports share one ingest path.
func batchFromProto(body []byte) ([]json.RawMessage, error) {
	var list structpb.ListValue
	if err := proto.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("invalid protobuf body: %w", err)
	}

	batch := make([]json.RawMessage, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		b, err := protojson.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		batch = append(batch, json.RawMessage(b))
	}
	return batch, nil
}

func resultsToProto(results []types.SyncResult) (*structpb.ListValue, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(results))}
	for _, res := range results {
		fields := map[string]any{
			"id":     res.ID,
			"status": string(res.Status),
		}
		if res.Error != "" {
			fields["erro"] = res.Error
		}
		st, err := structpb.NewStruct(fields)
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, structpb.NewStructValue(st))
	}
	return list, nil
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
