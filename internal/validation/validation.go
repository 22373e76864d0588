// Package validation checks raw field maps (decoded JSON bodies or HTML form
// values) against a declared schema and produces either typed values or
// per-field error messages.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DateFormat is the wire format for date fields
const DateFormat = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// IsEmailShaped reports whether the identifier matches the email grammar
func IsEmailShaped(identifier string) bool {
	return emailPattern.MatchString(identifier)
}

// Kind is the primitive type of a schema field
type Kind int

const (
	String Kind = iota
	Integer
	Date
	Decimal
)

// Rule describes one field of a payload schema
type Rule struct {
	Name     string
	Kind     Kind
	Required bool
	ReadOnly bool // listed for introspection, ignored on input
	Blank    bool // strings only: empty string is a valid value
	Nullable bool // explicit null clears the field
	MaxLen   int  // strings only, 0 = unlimited (counted in runes)
	Email    bool // strings only: must match the email grammar

	// Decimal only
	MaxDigits     int
	DecimalPlaces int
}

// Schema is an ordered list of field rules
type Schema []Rule

// Names returns the field names in declared order
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, rule := range s {
		names[i] = rule.Name
	}
	return names
}

// Errors maps field name to its validation failures
type Errors map[string][]string

// Error implements the error interface with a deterministic summary
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(e))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) add(field, message string) {
	e[field] = append(e[field], message)
}

// Values holds the typed results of a successful validation, keyed by field
// name. Only fields that were supplied appear; a nil value marks an explicit
// null for a nullable field.
type Values map[string]interface{}

// Has reports whether the field was supplied
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// IsNull reports whether the field was supplied as an explicit null
func (v Values) IsNull(name string) bool {
	val, ok := v[name]
	return ok && val == nil
}

// String returns the field as a string when supplied with that type
func (v Values) String(name string) (string, bool) {
	val, ok := v[name].(string)
	return val, ok
}

// Int64 returns the field as an int64 when supplied with that type
func (v Values) Int64(name string) (int64, bool) {
	val, ok := v[name].(int64)
	return val, ok
}

// Time returns the field as a time.Time when supplied with that type
func (v Values) Time(name string) (time.Time, bool) {
	val, ok := v[name].(time.Time)
	return val, ok
}

// Float returns the field as a float64 when supplied with that type
func (v Values) Float(name string) (float64, bool) {
	val, ok := v[name].(float64)
	return val, ok
}

// Validate checks the raw input against the schema. In create mode
// (partial=false) every required field must be present; in partial mode all
// fields are optional and absent ones are left out of the result.
// Unknown input keys are ignored. On failure the returned Values is nil, so
// no partially validated state can leak downstream.
func (s Schema) Validate(input map[string]interface{}, partial bool) (Values, Errors) {
	values := make(Values)
	errs := make(Errors)

	for _, rule := range s {
		if rule.ReadOnly {
			continue
		}

		raw, present := input[rule.Name]
		if !present || isEmptyNonString(rule, raw) {
			if rule.Required && !partial {
				errs.add(rule.Name, "this field is required")
			}
			continue
		}

		if raw == nil {
			if rule.Nullable {
				values[rule.Name] = nil
			} else {
				errs.add(rule.Name, "this field may not be null")
			}
			continue
		}

		value, ok := coerce(rule, raw, errs)
		if ok {
			values[rule.Name] = value
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

// isEmptyNonString treats an empty string for a non-string field as absent.
// HTML forms submit every input, so an untouched optional date or number
// arrives as "".
func isEmptyNonString(rule Rule, raw interface{}) bool {
	if rule.Kind == String {
		return false
	}
	str, ok := raw.(string)
	return ok && strings.TrimSpace(str) == ""
}

func coerce(rule Rule, raw interface{}, errs Errors) (interface{}, bool) {
	switch rule.Kind {
	case String:
		return coerceString(rule, raw, errs)
	case Integer:
		return coerceInteger(rule, raw, errs)
	case Date:
		return coerceDate(rule, raw, errs)
	case Decimal:
		return coerceDecimal(rule, raw, errs)
	}
	errs.add(rule.Name, "unsupported field kind")
	return nil, false
}

func coerceString(rule Rule, raw interface{}, errs Errors) (interface{}, bool) {
	str, ok := raw.(string)
	if !ok {
		errs.add(rule.Name, "must be a string")
		return nil, false
	}
	if str == "" {
		if rule.Blank {
			return "", true
		}
		errs.add(rule.Name, "this field may not be blank")
		return nil, false
	}
	if rule.MaxLen > 0 && utf8.RuneCountInString(str) > rule.MaxLen {
		errs.add(rule.Name, fmt.Sprintf("ensure this field has no more than %d characters", rule.MaxLen))
		return nil, false
	}
	if rule.Email && !emailPattern.MatchString(str) {
		errs.add(rule.Name, "enter a valid email address")
		return nil, false
	}
	return str, true
}

func coerceInteger(rule Rule, raw interface{}, errs Errors) (interface{}, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			errs.add(rule.Name, "a valid integer is required")
			return nil, false
		}
		return n, true
	case float64:
		if v != math.Trunc(v) {
			errs.add(rule.Name, "a valid integer is required")
			return nil, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs.add(rule.Name, "a valid integer is required")
			return nil, false
		}
		return n, true
	}
	errs.add(rule.Name, "a valid integer is required")
	return nil, false
}

func coerceDate(rule Rule, raw interface{}, errs Errors) (interface{}, bool) {
	str, ok := raw.(string)
	if !ok {
		errs.add(rule.Name, "date has wrong format, use YYYY-MM-DD")
		return nil, false
	}
	t, err := time.Parse(DateFormat, strings.TrimSpace(str))
	if err != nil {
		errs.add(rule.Name, "date has wrong format, use YYYY-MM-DD")
		return nil, false
	}
	return t, true
}

func coerceDecimal(rule Rule, raw interface{}, errs Errors) (interface{}, bool) {
	var literal string
	switch v := raw.(type) {
	case json.Number:
		literal = v.String()
	case float64:
		literal = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		literal = strings.TrimSpace(v)
	default:
		errs.add(rule.Name, "a valid number is required")
		return nil, false
	}

	value, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		errs.add(rule.Name, "a valid number is required")
		return nil, false
	}

	whole, frac, ok := splitDecimal(literal)
	if !ok {
		errs.add(rule.Name, "a valid number is required")
		return nil, false
	}
	if rule.DecimalPlaces > 0 && len(frac) > rule.DecimalPlaces {
		errs.add(rule.Name, fmt.Sprintf("ensure that there are no more than %d decimal places", rule.DecimalPlaces))
		return nil, false
	}
	if rule.MaxDigits > 0 {
		wholeLimit := rule.MaxDigits - rule.DecimalPlaces
		if len(whole) > wholeLimit {
			errs.add(rule.Name, fmt.Sprintf("ensure that there are no more than %d digits before the decimal point", wholeLimit))
			return nil, false
		}
	}
	return value, true
}

// splitDecimal returns the digit runs before and after the decimal point,
// with the sign stripped and any exponent applied, so "1e11" counts as
// twelve whole digits. ok is false when the mantissa holds anything
// besides digits and a point.
func splitDecimal(literal string) (whole, frac string, ok bool) {
	literal = strings.TrimLeft(literal, "+-")
	mantissa, exp := literal, 0
	if i := strings.IndexAny(literal, "eE"); i >= 0 {
		n, err := strconv.Atoi(literal[i+1:])
		if err != nil {
			return "", "", false
		}
		mantissa, exp = literal[:i], n
	}
	intPart, fracPart, _ := strings.Cut(mantissa, ".")
	digits := intPart + fracPart
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	point := len(intPart) + exp
	switch {
	case point <= 0:
		whole, frac = "", strings.Repeat("0", -point)+digits
	case point >= len(digits):
		whole, frac = digits+strings.Repeat("0", point-len(digits)), ""
	default:
		whole, frac = digits[:point], digits[point:]
	}
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	return whole, frac, true
}
