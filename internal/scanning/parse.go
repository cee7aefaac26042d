package scanning

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrorName is the placeholder recorded when a whole extraction attempt
// failed unrecoverably for an item
const ErrorName = "エラー"

// Extraction holds the three fields read from one model response. Names
// are already normalized; Amount is the raw amount text, left untouched
// for the caller to interpret.
type Extraction struct {
	PatientName  string
	HospitalName string
	Amount       string
}

// ErrorExtraction returns the sentinel triple for a permanently failed item
func ErrorExtraction() Extraction {
	return Extraction{PatientName: ErrorName, HospitalName: ErrorName, Amount: ErrorName}
}

// fencedJSON matches a ```json fenced block, the output format the prompt demands
var fencedJSON = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```")

// responseLabels are searched for in free text when JSON decoding fails
var responseLabels = struct {
	patient, hospital, amount string
}{
	patient:  "患者氏名:",
	hospital: "医療機関名:",
	amount:   "支払った医療費の金額:",
}

// extractionPayload mirrors the JSON layout the prompt demands
type extractionPayload struct {
	PatientName  looseString `json:"患者氏名"`
	HospitalName looseString `json:"医療機関名"`
	Amount       looseString `json:"支払った医療費の金額"`
}

// looseString decodes a JSON string or number as a string. Models regularly
// return the amount as a bare number despite the prompt asking for strings.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = looseString(t)
	case float64:
		*s = looseString(strconv.FormatFloat(t, 'f', -1, 64))
	case nil:
		*s = ""
	default:
		return fmt.Errorf("unexpected value type %T", v)
	}
	return nil
}

// ParseResponse converts one raw model response into an Extraction. The
// candidate payload is the inner content of a ```json fenced block if one
// is present, otherwise the whole text. If JSON decoding of the candidate
// fails, each field is searched for as a "<label>:" line in the raw text.
// A field found by neither path stays at the unknown sentinel; the call
// itself never fails.
func ParseResponse(raw string) Extraction {
	candidate := raw
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err == nil {
		amount := string(payload.Amount)
		if amount == "" {
			amount = UnknownName
		}
		return Extraction{
			PatientName:  NormalizeName(string(payload.PatientName)),
			HospitalName: NormalizeName(string(payload.HospitalName)),
			Amount:       amount,
		}
	}

	return Extraction{
		PatientName:  NormalizeName(searchLabel(raw, responseLabels.patient)),
		HospitalName: NormalizeName(searchLabel(raw, responseLabels.hospital)),
		Amount:       searchLabelOr(raw, responseLabels.amount, UnknownName),
	}
}

// searchLabel returns the text after "<label>" up to the next line break,
// trimmed, or empty when the label is absent
func searchLabel(text, label string) string {
	idx := strings.Index(text, label)
	if idx == -1 {
		return ""
	}
	rest := text[idx+len(label):]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

func searchLabelOr(text, label, fallback string) string {
	if v := searchLabel(text, label); v != "" {
		return v
	}
	return fallback
}
