package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRecordKeepsOpaqueFields(t *testing.T) {
	raw := `{
		"id": 7,
		"merchantDocument": "11111111000199",
		"status": "Confirmed",
		"createdAt": "2024-10-01T10:00:00-03:00",
		"updatedAt": "2024-10-01T12:00:00-03:00",
		"fees": {"merchantRate": "3.00", "planName": "PB"},
		"card": {"cardBrand": "Visa", "cardIssuer": "X"},
		"extraTop": "keep-me",
		"riskScore": {"value": 0.4}
	}`

	var record PaymentRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))

	assert.Equal(t, int64(7), record.ID)
	assert.Equal(t, "11111111000199", record.MerchantDocument)
	assert.JSONEq(t, `{"merchantRate":"3.00","planName":"PB"}`, string(record.Fees))
	assert.Equal(t, json.RawMessage(`"keep-me"`), record.Extra["extraTop"])
	assert.Nil(t, record.TerminalIdentifiers)

	encoded, err := json.Marshal(record)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &out))
	assert.JSONEq(t, `{"cardBrand":"Visa","cardIssuer":"X"}`, string(out["card"]))
	assert.JSONEq(t, `{"merchantRate":"3.00","planName":"PB"}`, string(out["fees"]))
	assert.JSONEq(t, `"keep-me"`, string(out["extraTop"]))
	assert.JSONEq(t, `{"value":0.4}`, string(out["riskScore"]))
	assert.NotContains(t, out, "terminalIdentifiers", "absent objects must not be invented")

	var again PaymentRecord
	require.NoError(t, json.Unmarshal(encoded, &again))
	assert.Equal(t, record, again)
}

func TestPaymentRecordNullNestedObject(t *testing.T) {
	var record PaymentRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "card": null}`), &record))

	encoded, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"card":null`)
	assert.Nil(t, record.Extra)
}

func TestPaymentRecordExtraCannotShadowFields(t *testing.T) {
	record := PaymentRecord{
		ID:     9,
		Status: StatusPending,
		Extra: map[string]json.RawMessage{
			"status": json.RawMessage(`"Confirmed"`),
			"zone":   json.RawMessage(`"south"`),
		},
	}

	encoded, err := json.Marshal(record)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &out))
	assert.Equal(t, StatusPending, out["status"])
	assert.Equal(t, "south", out["zone"])
}

func TestPaymentRecordDeclaredFieldTypes(t *testing.T) {
	var record PaymentRecord
	err := json.Unmarshal([]byte(`{"id": "not-a-number"}`), &record)
	assert.Error(t, err)
}
