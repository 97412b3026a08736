package repositories

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (w *widget) SetID(id string) { w.ID = id }

func TestMergeJSON_ShallowOverlay(t *testing.T) {
	body := []byte(`{"name":"bolt","count":3,"tags":{"a":1}}`)

	merged, err := MergeJSON(body, map[string]any{"count": 9, "tags": map[string]int{"b": 2}})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(merged, &fields))
	assert.Equal(t, "bolt", fields["name"])
	assert.Equal(t, float64(9), fields["count"])
	assert.Equal(t, map[string]any{"b": float64(2)}, fields["tags"], "nested objects are replaced, not merged")
}

func TestMergeJSON_RejectsNonObject(t *testing.T) {
	_, err := MergeJSON([]byte(`{}`), []int{1, 2})
	assert.Error(t, err)
}

func TestDecodeAll(t *testing.T) {
	docs := []Document{
		{ID: "a", Body: []byte(`{"name":"bolt","count":1}`)},
		{ID: "b", Body: []byte(`{"id":"stale","name":"nut","count":2}`)},
	}

	widgets, err := DecodeAll[widget](docs)
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	assert.Equal(t, "a", widgets[0].ID)
	assert.Equal(t, "b", widgets[1].ID, "store id wins over a stored id field")
	assert.Equal(t, 2, widgets[1].Count)

	_, err = DecodeAll[widget]([]Document{{ID: "x", Body: []byte(`not json`)}})
	assert.ErrorContains(t, err, "decode document x")
}

func TestEncodeObject(t *testing.T) {
	body, err := EncodeObject(widget{Name: "washer"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"washer","count":0}`, string(body))

	_, err = EncodeObject("scalar")
	assert.Error(t, err)
}
