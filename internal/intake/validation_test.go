package intake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AcceptsLeadgenChanges(t *testing.T) {
	batch, err := Parse([]byte(`{
		"object": "page",
		"entry": [
			{"id": "P1", "changes": [
				{"field": "leadgen", "value": {"leadgen_id": "L1", "ad_id": "A1", "form_id": "F1", "page_id": "P1"}},
				{"field": "feed", "value": {"post_id": "X"}},
				{"field": "leadgen", "value": {"leadgen_id": ""}}
			]},
			{"changes": [{"field": "leadgen", "value": {"leadgen_id": "L2", "form_id": 123456789012345}}]},
			{"changes": [{"field": "leadgen", "value": {"leadgen_id": 444444444444}}]}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "page", batch.Object)
	require.Len(t, batch.Events, 3)
	assert.Equal(t, LeadgenEvent{LeadgenID: "L1", AdID: "A1", FormID: "F1", PageID: "P1", Entry: 0, Change: 0}, batch.Events[0])
	assert.Equal(t, "L2", batch.Events[1].LeadgenID)
	assert.Equal(t, "123456789012345", batch.Events[1].FormID)
	assert.Equal(t, 1, batch.Events[1].Entry)
	assert.Equal(t, "444444444444", batch.Events[2].LeadgenID)
	assert.Equal(t, 2, batch.Events[2].Entry)

	require.Len(t, batch.Rejected, 2)
	assert.Equal(t, 1, batch.Rejected[0].Change)
	assert.Equal(t, 2, batch.Rejected[1].Change)
}

func TestParse_RejectsShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		rejected int
	}{
		{"wrong object", `{"object":"group","entry":[{"changes":[{"field":"leadgen","value":{"leadgen_id":"L1"}}]}]}`, 1},
		{"missing object", `{"entry":[]}`, 1},
		{"entry not a list", `{"object":"page","entry":{}}`, 1},
		{"entry not an object", `{"object":"page","entry":["x", 1]}`, 2},
		{"changes missing", `{"object":"page","entry":[{"id":"P1"}]}`, 1},
		{"value missing", `{"object":"page","entry":[{"changes":[{"field":"leadgen"}]}]}`, 1},
		{"leadgen id a boolean", `{"object":"page","entry":[{"changes":[{"field":"leadgen","value":{"leadgen_id":true}}]}]}`, 1},
		{"leadgen id null", `{"object":"page","entry":[{"changes":[{"field":"leadgen","value":{"leadgen_id":null}}]}]}`, 1},
		{"change is null", `{"object":"page","entry":[{"changes":[null]}]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := Parse([]byte(tt.body))
			require.NoError(t, err)
			assert.Empty(t, batch.Events)
			assert.Len(t, batch.Rejected, tt.rejected)
		})
	}
}

func TestParse_NotAnObject(t *testing.T) {
	for _, body := range []string{
		`"hello"`, `[]`, `42`, `null`, `{`, ``,
		`{"object":"page","entry":[]} garbage`,
		`{"object":"page","entry":[]}{"object":"page"}`,
	} {
		_, err := Parse([]byte(body))
		assert.True(t, errors.Is(err, ErrPayloadNotObject), "body %q", body)
	}
}

func TestParse_TrailingWhitespaceAllowed(t *testing.T) {
	batch, err := Parse([]byte("{\"object\":\"page\",\"entry\":[]}\n\t "))
	require.NoError(t, err)
	assert.Equal(t, "page", batch.Object)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{DefaultLoanType: "x", MaxBodyBytes: 1}).Validate())
	assert.Error(t, (&Config{DefaultBranchID: "x", MaxBodyBytes: 1}).Validate())
	assert.Error(t, (&Config{DefaultBranchID: "x", DefaultLoanType: "y"}).Validate())
}
