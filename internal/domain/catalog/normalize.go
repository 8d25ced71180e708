package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// Field precedence lists. The first field holding a non-empty value wins.
// A value is empty when it is missing, null, "", false or numeric zero.
var (
	IDFields          = []string{"id", "idProducto", "codigo", "sku"}
	NameFields        = []string{"nombre", "name", "descripcion"}
	DescriptionFields = []string{"descripcion", "description"}
	PriceFields       = []string{"precio", "price"}
)

// Warning codes emitted by normalization
const (
	WarnMissingID    = "missing_id"
	WarnMissingName  = "missing_name"
	WarnMissingPrice = "missing_price"
	WarnInvalidPrice = "invalid_price"
	WarnDuplicateID  = "duplicate_id"
	WarnNotAnObject  = "not_an_object"
)

// RawProduct is one upstream entry, keyed by field name
type RawProduct map[string]json.RawMessage

// NormalizationWarning describes a default applied while normalizing an entry
type NormalizationWarning struct {
	Position int    `json:"position"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// ParseCollection decodes a catalog response body. A body that is not JSON
// at all (an HTML error page, a truncated payload) is a transport error
// wrapping the decoder's message. Well-formed JSON other than an array is a
// schema error. Array elements that are not objects are kept as empty
// entries so positions stay aligned with the upstream order.
func ParseCollection(body []byte) ([]RawProduct, []NormalizationWarning, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		var v any
		err := json.Unmarshal(trimmed, &v)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, nil, WrapTransportError(fmt.Errorf("response is not valid JSON: %w", err))
	}
	if trimmed[0] != '[' {
		return nil, nil, NewSchemaError("response is not a JSON array")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, nil, NewSchemaError(err.Error())
	}

	raws := make([]RawProduct, len(elements))
	var warnings []NormalizationWarning
	for i, el := range elements {
		var obj RawProduct
		el = bytes.TrimSpace(el)
		if len(el) > 0 && el[0] == '{' {
			if err := json.Unmarshal(el, &obj); err == nil {
				raws[i] = obj
				continue
			}
		}
		raws[i] = RawProduct{}
		warnings = append(warnings, NormalizationWarning{
			Position: i,
			Code:     WarnNotAnObject,
			Message:  "entry is not a JSON object",
		})
	}
	return raws, warnings, nil
}

// NormalizeAll normalizes a batch in upstream order. Duplicate ids are kept
// (lookups resolve to the first occurrence) and reported as warnings.
func NormalizeAll(raws []RawProduct) ([]Product, []NormalizationWarning) {
	products := make([]Product, 0, len(raws))
	var warnings []NormalizationWarning
	seen := make(map[string]int, len(raws))

	for i, raw := range raws {
		p, w := Normalize(raw, i)
		warnings = append(warnings, w...)
		if first, dup := seen[p.ID]; dup {
			warnings = append(warnings, NormalizationWarning{
				Position: i,
				Code:     WarnDuplicateID,
				Message:  fmt.Sprintf("id %q already used at position %d", p.ID, first),
			})
		} else {
			seen[p.ID] = i
		}
		products = append(products, p)
	}
	return products, warnings
}

// Normalize turns one upstream entry at the given position into a Product
func Normalize(raw RawProduct, position int) (Product, []NormalizationWarning) {
	var warnings []NormalizationWarning
	warn := func(code, msg string) {
		warnings = append(warnings, NormalizationWarning{Position: position, Code: code, Message: msg})
	}

	p := Product{Position: position, Price: decimal.Zero}

	if v, _, ok := firstNonEmpty(raw, NameFields); ok {
		p.DisplayName = v.text
	} else {
		p.DisplayName = UnnamedProduct
		warn(WarnMissingName, "no name field present, using placeholder")
	}

	if v, _, ok := firstNonEmpty(raw, DescriptionFields); ok {
		p.Description = v.text
	}

	if v, field, ok := firstNonEmpty(raw, PriceFields); ok {
		price, err := v.decimal()
		if err != nil {
			warn(WarnInvalidPrice, fmt.Sprintf("%s is not numeric: %s", field, v.text))
		} else {
			p.Price = price
		}
	} else {
		warn(WarnMissingPrice, "no price field present, using 0")
	}

	if v, field, ok := firstNonEmpty(raw, IDFields); ok {
		p.ID = v.text
		p.IDSource = IDSource(field)
	} else {
		p.ID = SynthesizeID(p.DisplayName, p.Price, position)
		p.IDSource = IDSourceSynthesized
		warn(WarnMissingID, fmt.Sprintf("no id field present, synthesized %s", p.ID))
	}

	return p, warnings
}

// SynthesizeID derives a fallback identifier from content and position.
// It is unique within a batch and identical for identical data across reloads.
func SynthesizeID(name string, price decimal.Decimal, position int) string {
	key := name + "|" + price.String() + "|" + strconv.Itoa(position)
	sum := strconv.FormatUint(xxhash.Sum64String(key), 16)
	sum = strings.Repeat("0", 16-len(sum)) + sum
	return fmt.Sprintf("producto_%d_%s", position, sum[:8])
}

type fieldValue struct {
	text string
}

func (v fieldValue) decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(v.text))
}

func firstNonEmpty(raw RawProduct, fields []string) (fieldValue, string, bool) {
	for _, field := range fields {
		msg, ok := raw[field]
		if !ok {
			continue
		}
		if v, ok := decodeField(msg); ok {
			return v, field, true
		}
	}
	return fieldValue{}, "", false
}

// decodeField interprets a raw JSON value, reporting false for empty values
func decodeField(msg json.RawMessage) (fieldValue, bool) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 {
		return fieldValue{}, false
	}
	switch msg[0] {
	case 'n', 'f':
		// null, false
		return fieldValue{}, false
	case 't':
		return fieldValue{text: "true"}, true
	case '"':
		var s string
		if err := json.Unmarshal(msg, &s); err != nil || s == "" {
			return fieldValue{}, false
		}
		return fieldValue{text: s}, true
	case '{', '[':
		return fieldValue{text: string(msg)}, true
	default:
		d, err := decimal.NewFromString(string(msg))
		if err != nil || d.IsZero() {
			return fieldValue{}, false
		}
		return fieldValue{text: d.String()}, true
	}
}
