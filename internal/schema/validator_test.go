package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestValidateRespond(t *testing.T) {
	v := NewValidator(16)

	valid := decode(t, `{
		"responses": [{
			"item_id": "a",
			"response": "partial_accept",
			"counter_amount": 20,
			"explanation": "partial damage",
			"evidence_photos": [],
			"evidence_documents": []
		}]
	}`)
	assert.NoError(t, v.ValidateRespond(valid))

	nullCounter := decode(t, `{
		"responses": [{"item_id": "a", "response": "accept", "counter_amount": null, "explanation": ""}]
	}`)
	assert.NoError(t, v.ValidateRespond(nullCounter))
}

func TestValidateRespond_Rejections(t *testing.T) {
	v := NewValidator(16)

	cases := map[string]string{
		"empty responses":  `{"responses": []}`,
		"missing item_id":  `{"responses": [{"response": "accept"}]}`,
		"unknown response": `{"responses": [{"item_id": "a", "response": "maybe"}]}`,
		"string counter":   `{"responses": [{"item_id": "a", "response": "accept", "counter_amount": "20"}]}`,
		"no responses key": `{}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, v.ValidateRespond(decode(t, raw)))
		})
	}
}

func TestValidatorReusesCompiledSchema(t *testing.T) {
	v := NewValidator(16)
	doc := decode(t, `{"responses": [{"item_id": "a", "response": "accept"}]}`)

	require.NoError(t, v.ValidateRespond(doc))
	require.NoError(t, v.ValidateRespond(doc))
	assert.Equal(t, 1, v.cache.Len())
}
