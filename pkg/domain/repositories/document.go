package repositories

import (
	"encoding/json"
	"fmt"
)

// Identifiable entities receive the store id after decoding.
type Identifiable[T any] interface {
	*T
	SetID(id string)
}

// DecodeAll unmarshals documents into entities and stamps their ids.
func DecodeAll[T any, PT Identifiable[T]](docs []Document) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v := new(T)
		if err := json.Unmarshal(doc.Body, v); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
		PT(v).SetID(doc.ID)
		out = append(out, v)
	}
	return out, nil
}

// MergeJSON overlays the top-level fields of patch onto body.
func MergeJSON(body []byte, patch any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("decode stored document: %w", err)
		}
	}
	patchBody, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	var patchFields map[string]json.RawMessage
	if err := json.Unmarshal(patchBody, &patchFields); err != nil {
		return nil, fmt.Errorf("patch must be a JSON object: %w", err)
	}
	for k, v := range patchFields {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// EncodeObject marshals doc and checks it is a JSON object.
func EncodeObject(doc any) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	return body, nil
}
