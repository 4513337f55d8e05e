package entity

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// PaymentRecord represents a payment transaction snapshot as supplied by a
// record provider. Records are read-only once fetched.
//
// The nested terminalIdentifiers, fees and card objects are kept as the
// provider sent them, and so are top-level keys not named here (in Extra).
// Decoding compacts them, so a decode/encode round trip is stable.
type PaymentRecord struct {
	ID                    int64           `json:"id"`
	NsuProvider           string          `json:"nsuProvider"`
	NsuAcquirer           string          `json:"nsuAcquirer"`
	TerminalIdentifiers   json.RawMessage `json:"terminalIdentifiers,omitempty"`
	Fees                  json.RawMessage `json:"fees,omitempty"`
	Product               string          `json:"product"`
	MerchantDocument      string          `json:"merchantDocument"`
	ResellerDocument      string          `json:"resellerDocument"`
	AuthorizationNumber   string          `json:"authorizationNumber"`
	Status                string          `json:"status"`
	AmountInCents         int64           `json:"amountInCents"`
	NetAmountInCents      int64           `json:"netAmountInCents"`
	FeeAmountInCents      int64           `json:"feeAmountInCents"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
	PaymentMethod         string          `json:"paymentMethod"`
	InstallmentMethod     string          `json:"installmentMethod"`
	Installments          int             `json:"installments"`
	Card                  json.RawMessage `json:"card,omitempty"`
	InstallmentMethodCode int             `json:"installmentMethodCode"`
	PaymentMethodCode     int             `json:"paymentMethodCode"`
	ProductCode           int             `json:"productCode"`
	StatusCode            int             `json:"statusCode"`
	UUIDPhoebus           string          `json:"uuidPhoebus"`
	ResponseMessage       string          `json:"responseMessage"`
	SimcardSerialNumber   string          `json:"simcardSerialNumber"`
	TransactionType       string          `json:"transactionType"`
	RefundedValue         int64           `json:"refundedValue"`

	// Extra holds top-level keys the record model does not name
	Extra map[string]json.RawMessage `json:"-"`
}

// paymentFields has the PaymentRecord layout without its JSON methods
type paymentFields PaymentRecord

// knownKeys holds the lowercased JSON names of the declared fields.
// encoding/json matches object keys to fields case-insensitively.
var knownKeys = map[string]struct{}{
	"id": {}, "nsuprovider": {}, "nsuacquirer": {}, "terminalidentifiers": {},
	"fees": {}, "product": {}, "merchantdocument": {}, "resellerdocument": {},
	"authorizationnumber": {}, "status": {}, "amountincents": {},
	"netamountincents": {}, "feeamountincents": {}, "createdat": {},
	"updatedat": {}, "paymentmethod": {}, "installmentmethod": {},
	"installments": {}, "card": {}, "installmentmethodcode": {},
	"paymentmethodcode": {}, "productcode": {}, "statuscode": {},
	"uuidphoebus": {}, "responsemessage": {}, "simcardserialnumber": {},
	"transactiontype": {}, "refundedvalue": {},
}

// UnmarshalJSON decodes the declared fields and keeps the rest verbatim
func (p *PaymentRecord) UnmarshalJSON(data []byte) error {
	var fields paymentFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	var extra map[string]json.RawMessage
	for k, v := range all {
		if _, ok := knownKeys[strings.ToLower(k)]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = compact(v)
	}

	*p = PaymentRecord(fields)
	p.TerminalIdentifiers = compact(p.TerminalIdentifiers)
	p.Fees = compact(p.Fees)
	p.Card = compact(p.Card)
	p.Extra = extra
	return nil
}

// MarshalJSON encodes the declared fields followed by Extra in key order.
// Extra keys never override a declared field.
func (p PaymentRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(paymentFields(p))
	if err != nil || len(p.Extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		if _, ok := knownKeys[strings.ToLower(k)]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, k := range keys {
		v := p.Extra[k]
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		if len(v) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(v)
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func compact(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return json.RawMessage(buf.Bytes())
}
