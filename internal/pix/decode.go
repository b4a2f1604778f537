package pix

import (
	"fmt"
	"strings"
)

// Decoded is the readable view of a verified payload.
type Decoded struct {
	Key         string  `json:"key"`
	Description string  `json:"description,omitempty"`
	Amount      string  `json:"amount,omitempty"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	TxID        string  `json:"txid"`
	Checksum    string  `json:"checksum"`
	Fields      []Field `json:"fields"`
}

// Verify checks the 6304 trailer and recomputes the checksum over the body.
func Verify(payload string) error {
	if len(payload) < trailerLength {
		return fmt.Errorf("%w: payload shorter than CRC trailer", ErrMalformed)
	}
	split := len(payload) - checksumDigits
	if payload[split-len(crcHeader):split] != crcHeader {
		return fmt.Errorf("%w: missing %s trailer", ErrMalformed, crcHeader)
	}
	want := Checksum(payload[:split])
	if got := payload[split:]; !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, want)
	}
	return nil
}

// Decode verifies payload and extracts the PIX fields, parsing the merchant
// account (26) and additional data (62) templates with the same grammar.
func Decode(payload string) (*Decoded, error) {
	if err := Verify(payload); err != nil {
		return nil, err
	}
	fields, err := Parse(payload)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 || fields[0].ID != idPayloadFormat || fields[0].Value != payloadFormatValue {
		return nil, fmt.Errorf("%w: payload must start with format indicator %s%02d%s",
			ErrMalformed, idPayloadFormat, len(payloadFormatValue), payloadFormatValue)
	}

	d := &Decoded{Fields: fields}
	for _, f := range fields {
		switch f.ID {
		case idMerchantAccount:
			if err := d.decodeAccount(f.Value); err != nil {
				return nil, err
			}
		case idAmount:
			d.Amount = f.Value
		case idMerchantName:
			d.Name = f.Value
		case idMerchantCity:
			d.City = f.Value
		case idAdditionalData:
			sub, err := Parse(f.Value)
			if err != nil {
				return nil, fmt.Errorf("additional data: %w", err)
			}
			for _, s := range sub {
				if s.ID == idAdditionalTxID {
					d.TxID = s.Value
				}
			}
		case idCRC:
			d.Checksum = f.Value
		}
	}
	if d.Key == "" {
		return nil, fmt.Errorf("%w: no PIX merchant account", ErrMalformed)
	}
	return d, nil
}

func (d *Decoded) decodeAccount(value string) error {
	sub, err := Parse(value)
	if err != nil {
		return fmt.Errorf("merchant account: %w", err)
	}
	var gui string
	for _, s := range sub {
		switch s.ID {
		case idAccountGUI:
			gui = s.Value
		case idAccountKey:
			d.Key = s.Value
		case idAccountInfo:
			d.Description = s.Value
		}
	}
	if !strings.EqualFold(gui, pixGUI) {
		return fmt.Errorf("%w: merchant account GUI %q is not %s", ErrMalformed, gui, pixGUI)
	}
	return nil
}
