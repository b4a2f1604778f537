// Package pix builds and verifies static PIX BR-Code payloads: a TLV text
// grammar closed by a CRC16/CCITT-FALSE trailer.
package pix

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Fallbacks used when a sanitized text field comes out empty.
const (
	DefaultMerchantName = "RECEBEDOR"
	DefaultMerchantCity = "SAO PAULO"
	DefaultTxID         = "***"
)

const (
	pixGUI = "BR.GOV.BCB.PIX"

	idPayloadFormat     = "00"
	idInitiationMethod  = "01"
	idMerchantAccount   = "26"
	idMerchantCategory  = "52"
	idCurrency          = "53"
	idAmount            = "54"
	idCountry           = "58"
	idMerchantName      = "59"
	idMerchantCity      = "60"
	idAdditionalData    = "62"
	idCRC               = "63"
	idAccountGUI        = "00"
	idAccountKey        = "01"
	idAccountInfo       = "02"
	idAdditionalTxID    = "05"
	payloadFormatValue  = "01"
	staticInitiation    = "11"
	merchantCategory    = "0000"
	currencyBRL         = "986"
	countryBR           = "BR"
	crcHeader           = idCRC + "04"
	checksumDigits      = 4
	trailerLength       = len(crcHeader) + checksumDigits
	amountDecimalPlaces = 2
)

// PaymentRequest holds the caller's payment parameters.
type PaymentRequest struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Amount      float64 `json:"amount"`
	TxID        string  `json:"txid,omitempty"`
	Description string  `json:"description,omitempty"`
}

// BuildPayload encodes req as a checksummed BR-Code payload. It either returns
// a complete payload or an error, never a partial string.
//
// Fields are emitted in the canonical order 00, 01, 26, 52, 53, 54, 58, 59,
// 60, 62 followed by 6304 and the checksum over everything before it.
func BuildPayload(req PaymentRequest) (string, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return "", ErrMissingKey
	}

	amount, err := FormatAmount(req.Amount)
	if err != nil {
		return "", err
	}

	name := sanitizeText(req.Name, maxNameLength, DefaultMerchantName)
	city := sanitizeText(req.City, maxCityLength, DefaultMerchantCity)
	txid := sanitizeText(req.TxID, maxTxIDLength, DefaultTxID)
	var description string
	if req.Description != "" {
		description = sanitizeText(req.Description, maxDescriptionLength, "")
	}

	var w fieldWriter
	w.field(idPayloadFormat, payloadFormatValue)
	w.field(idInitiationMethod, staticInitiation)
	w.template(idMerchantAccount, func(account *fieldWriter) {
		account.field(idAccountGUI, pixGUI)
		account.field(idAccountKey, key)
		if description != "" {
			account.field(idAccountInfo, description)
		}
	})
	w.field(idMerchantCategory, merchantCategory)
	w.field(idCurrency, currencyBRL)
	w.field(idAmount, amount)
	w.field(idCountry, countryBR)
	w.field(idMerchantName, name)
	w.field(idMerchantCity, city)
	w.template(idAdditionalData, func(data *fieldWriter) {
		data.field(idAdditionalTxID, txid)
	})
	if w.err != nil {
		return "", w.err
	}

	body := w.String() + crcHeader
	return body + Checksum(body), nil
}

// FormatAmount renders amount with exactly two decimals and a dot separator.
//
// Rounding is half-up on the shortest decimal form of the float, so 77.777
// becomes 77.78 and 1.005 becomes 1.01. Amounts that round to 0.00 are
// rejected along with zero, negative and non-finite values.
func FormatAmount(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return "", &InvalidAmountError{Amount: amount}
	}
	rounded := decimal.NewFromFloat(amount).Round(amountDecimalPlaces)
	if !rounded.IsPositive() {
		return "", &InvalidAmountError{Amount: amount}
	}
	return rounded.StringFixed(amountDecimalPlaces), nil
}
