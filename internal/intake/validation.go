package intake

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"

	"loandesk/internal/common/validation"
)

// ErrPayloadNotObject is returned when the body is not a JSON object.
var ErrPayloadNotObject = stderrors.New("payload is not a JSON object")

const (
	subscribedObject = "page"
	leadgenField     = "leadgen"
)

var changeSchema = validation.MustCompile("leadgen-change", `{
	"type": "object",
	"required": ["field", "value"],
	"properties": {
		"field": {"type": "string", "enum": ["leadgen"]},
		"value": {
			"type": "object",
			"required": ["leadgen_id"],
			"properties": {
				"leadgen_id": {"type": ["string", "number"], "minLength": 1},
				"ad_id": {"type": ["string", "number"]},
				"form_id": {"type": ["string", "number"]},
				"page_id": {"type": ["string", "number"]}
			}
		}
	}
}`)

// Parse decodes a webhook body into a Batch. Only a non-object body fails;
// every other defect rejects the smallest enclosing entry or change.
func Parse(body []byte) (*Batch, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadNotObject, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrPayloadNotObject)
	}
	root, ok := raw.(map[string]interface{})
	if !ok {
		return nil, ErrPayloadNotObject
	}

	batch := &Batch{Events: []LeadgenEvent{}}
	batch.Object, _ = root["object"].(string)
	if batch.Object != subscribedObject {
		batch.Rejected = append(batch.Rejected, Rejection{
			Entry: -1, Change: -1,
			Reason: fmt.Sprintf("unsupported object %q", batch.Object),
		})
		return batch, nil
	}

	entries, ok := root["entry"].([]interface{})
	if !ok {
		batch.Rejected = append(batch.Rejected, Rejection{Entry: -1, Change: -1, Reason: "entry is not a list"})
		return batch, nil
	}

	for i, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok {
			batch.Rejected = append(batch.Rejected, Rejection{Entry: i, Change: -1, Reason: "entry is not an object"})
			continue
		}
		changes, ok := entry["changes"].([]interface{})
		if !ok {
			batch.Rejected = append(batch.Rejected, Rejection{Entry: i, Change: -1, Reason: "changes is not a list"})
			continue
		}
		for j, c := range changes {
			event, reason := parseChange(c)
			if reason != "" {
				batch.Rejected = append(batch.Rejected, Rejection{Entry: i, Change: j, Reason: reason})
				continue
			}
			event.Entry, event.Change = i, j
			batch.Events = append(batch.Events, event)
		}
	}

	return batch, nil
}

func parseChange(c interface{}) (LeadgenEvent, string) {
	if result := changeSchema.Validate(c); !result.Valid {
		return LeadgenEvent{}, result.Error()
	}
	// the schema guarantees these shapes
	change := c.(map[string]interface{})
	value := change["value"].(map[string]interface{})

	leadgenID := idString(value["leadgen_id"])
	if leadgenID == "" {
		return LeadgenEvent{}, "value.leadgen_id: empty lead id"
	}

	return LeadgenEvent{
		LeadgenID: leadgenID,
		AdID:      idString(value["ad_id"]),
		FormID:    idString(value["form_id"]),
		PageID:    idString(value["page_id"]),
	}, ""
}

// idString accepts ids sent either as strings or as JSON numbers.
func idString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
