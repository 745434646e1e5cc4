// Package spend holds the cloud-spend record model and the pure in-memory
// operations the dashboard derives its views from.
package spend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// recordNamespace seeds name-based keys for records without an external id.
var recordNamespace = uuid.MustParse("4f1c0e8a-3d5b-4c2e-9a61-7b2d8e5f0c31")

// Field is one named value of a source row, kept in source order.
type Field struct {
	Name  string
	Value any
}

// Record is one cloud-spend line item.
type Record struct {
	ID      string
	Date    string
	Cloud   string
	Service string
	Team    string
	Env     string
	CostUSD decimal.Decimal

	// Fields holds every field the source delivered, including the ones above.
	Fields []Field
}

// Provider returns the normalized (upper-case) cloud provider.
func (r Record) Provider() string {
	return strings.ToUpper(strings.TrimSpace(r.Cloud))
}

// Day returns the calendar date portion of Date (first 10 characters).
func (r Record) Day() string {
	if len(r.Date) > 10 {
		return r.Date[:10]
	}
	return r.Date
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// Time parses Date. Unparseable or missing dates yield the zero time.
func (r Record) Time() time.Time {
	s := strings.TrimSpace(r.Date)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Key identifies the record: the external id when present, otherwise a
// deterministic UUID over the canonical fields.
func (r Record) Key() string {
	if r.ID != "" {
		return r.ID
	}
	name := strings.Join([]string{r.Date, r.Provider(), r.Service, r.Team, r.Env, r.CostUSD.String()}, "|")
	return uuid.NewSHA1(recordNamespace, []byte(name)).String()
}

// FromFields builds a Record from source fields, applying the coercion rules:
// provider from cloud, cloud_provider, provider (first present); cost from
// cost_usd then cost, non-numeric or missing values count as zero.
func FromFields(fields []Field) Record {
	lookup := make(map[string]any, len(fields))
	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		key := strings.ToLower(strings.TrimSpace(f.Name))
		lookup[key] = f.Value
		present[key] = f.Value != nil
	}

	first := func(names ...string) any {
		for _, n := range names {
			if present[n] {
				return lookup[n]
			}
		}
		return nil
	}

	return Record{
		ID:      stringValue(first("_id", "id")),
		Date:    stringValue(first("date")),
		Cloud:   stringValue(first("cloud", "cloud_provider", "provider")),
		Service: stringValue(first("service")),
		Team:    stringValue(first("team")),
		Env:     stringValue(first("env")),
		CostUSD: costValue(first("cost_usd", "cost")),
		Fields:  fields,
	}
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func costValue(v any) decimal.Decimal {
	switch x := v.(type) {
	case json.Number:
		return parseCost(x.String())
	case string:
		return parseCost(x)
	case []byte:
		return parseCost(string(x))
	case float64:
		return decimal.NewFromFloat(x)
	case int64:
		return decimal.NewFromInt(x)
	case int:
		return decimal.NewFromInt(int64(x))
	default:
		return decimal.Zero
	}
}

func parseCost(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// UnmarshalJSON decodes one JSON object, keeping field order.
func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// Non-object rows carry no usable fields.
		*r = Record{}
		return nil
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = FromFields(fields)
	return nil
}

// MarshalJSON writes the source fields in their original order, or the
// canonical fields when the record was built without source fields.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := r.Fields
	if len(fields) == 0 {
		fields = r.canonicalFields()
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Record) canonicalFields() []Field {
	var fields []Field
	if r.ID != "" {
		fields = append(fields, Field{"id", r.ID})
	}
	return append(fields,
		Field{"date", r.Date},
		Field{"cloud", r.Cloud},
		Field{"service", r.Service},
		Field{"team", r.Team},
		Field{"env", r.Env},
		Field{"cost_usd", json.Number(r.CostUSD.String())},
	)
}

// DecodeJSON reads a spend payload: either a raw array of records or an
// object with a "rows" array. A missing "rows" field yields no records.
// It fails once the payload exceeds limit bytes; zero or less reads everything.
func DecodeJSON(rd io.Reader, limit int64) ([]Record, error) {
	if limit > 0 {
		rd = io.LimitReader(rd, limit+1)
	}
	body, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, fmt.Errorf("payload exceeds %d bytes", limit)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if body[0] == '[' {
		var records []Record
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("decoding records: %w", err)
		}
		return records, nil
	}

	var envelope struct {
		Rows []Record `json:"rows"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return envelope.Rows, nil
}
