package summary

import (
	"strconv"
	"strings"
)

// Amount is the paid amount read from one receipt. Value holds the parsed
// yen amount when Valid; otherwise Raw preserves the original text so the
// detail log shows exactly what the model returned.
type Amount struct {
	Raw   string
	Value int
	Valid bool
}

// String renders the amount for the detail log: the parsed integer when
// valid, the original text otherwise
func (a Amount) String() string {
	if a.Valid {
		return strconv.Itoa(a.Value)
	}
	return a.Raw
}

// ParseAmount interprets the amount text from one model response. Thousands
// separators, the 円 symbol, and spaces are stripped before parsing; text
// that still does not parse as a non-negative integer keeps its original
// form and is excluded from totals downstream.
func ParseAmount(raw string) Amount {
	cleaned := strings.NewReplacer(",", "", "円", "", " ", "", "　", "").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)

	value, err := strconv.Atoi(cleaned)
	if err != nil || value < 0 {
		return Amount{Raw: raw}
	}
	return Amount{Raw: raw, Value: value, Valid: true}
}

// ReceiptItem is the structured extraction result for a single input image.
// Name fields are normalized upstream; items are immutable once created.
type ReceiptItem struct {
	Filename     string `json:"filename"`
	PatientName  string `json:"patient_name"`
	HospitalName string `json:"hospital_name"`
	AmountText   string `json:"amount"`
	AmountValue  int    `json:"amount_value"`
	AmountValid  bool   `json:"amount_valid"`
}

// NewReceiptItem builds an item from the parsed fields of one response
func NewReceiptItem(filename, patientName, hospitalName string, amount Amount) ReceiptItem {
	return ReceiptItem{
		Filename:     filename,
		PatientName:  patientName,
		HospitalName: hospitalName,
		AmountText:   amount.Raw,
		AmountValue:  amount.Value,
		AmountValid:  amount.Valid,
	}
}

// Amount reconstructs the item's amount value type
func (r ReceiptItem) Amount() Amount {
	return Amount{Raw: r.AmountText, Value: r.AmountValue, Valid: r.AmountValid}
}
