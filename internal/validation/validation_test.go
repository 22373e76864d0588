package validation_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/accounts-service/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSchema mirrors the shape of a typical account payload: required and
// optional strings, nullable date and integer, a bounded decimal and a
// read-only id.
var testSchema = validation.Schema{
	{Name: "id", Kind: validation.Integer, ReadOnly: true},
	{Name: "username", Kind: validation.String, Required: true, MaxLen: 10},
	{Name: "nickname", Kind: validation.String, Blank: true, MaxLen: 5},
	{Name: "email", Kind: validation.String, Required: true, Email: true},
	{Name: "birthdate", Kind: validation.Date, Nullable: true},
	{Name: "national_id", Kind: validation.Integer, Nullable: true},
	{Name: "wallet", Kind: validation.Decimal, MaxDigits: 12, DecimalPlaces: 2},
}

// TestValidateCreateRequiresFields tests that create mode reports every
// missing required field and nothing else
func TestValidateCreateRequiresFields(t *testing.T) {
	values, errs := testSchema.Validate(map[string]interface{}{}, false)

	require.NotNil(t, errs, "Empty input should fail in create mode")
	assert.Nil(t, values, "Values must be nil on failure")

	assert.Equal(t, []string{"this field is required"}, errs["username"])
	assert.Equal(t, []string{"this field is required"}, errs["email"])
	assert.NotContains(t, errs, "nickname", "Optional fields are not required")
	assert.NotContains(t, errs, "birthdate", "Nullable fields are not required")
	assert.NotContains(t, errs, "wallet", "Optional decimal is not required")
}

// TestValidateCreateHappyPath tests full coercion of a valid payload
func TestValidateCreateHappyPath(t *testing.T) {
	input := map[string]interface{}{
		"id":          int64(99),
		"username":    "alice",
		"nickname":    "",
		"email":       "alice@example.com",
		"birthdate":   "1990-05-04",
		"national_id": "1234567890",
		"wallet":      json.Number("150.75"),
		"unknown":     "ignored",
	}

	values, errs := testSchema.Validate(input, false)
	require.Nil(t, errs, "Valid payload should produce no errors")

	username, ok := values.String("username")
	assert.True(t, ok)
	assert.Equal(t, "alice", username)

	nickname, ok := values.String("nickname")
	assert.True(t, ok, "Blank string is a valid value")
	assert.Equal(t, "", nickname)

	birthdate, ok := values.Time("birthdate")
	assert.True(t, ok)
	assert.Equal(t, time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC), birthdate)

	nationalID, ok := values.Int64("national_id")
	assert.True(t, ok, "String digits coerce to integer")
	assert.Equal(t, int64(1234567890), nationalID)

	wallet, ok := values.Float("wallet")
	assert.True(t, ok)
	assert.InDelta(t, 150.75, wallet, 1e-9)

	assert.False(t, values.Has("id"), "Read-only fields are ignored on input")
	assert.False(t, values.Has("unknown"), "Unknown keys are ignored")
}

// TestValidatePartialMode tests that partial mode treats every field as
// optional and keeps only the supplied ones
func TestValidatePartialMode(t *testing.T) {
	values, errs := testSchema.Validate(map[string]interface{}{}, true)
	require.Nil(t, errs, "Empty input is fine in partial mode")
	assert.Empty(t, values)

	values, errs = testSchema.Validate(map[string]interface{}{"username": "bob"}, true)
	require.Nil(t, errs)
	assert.True(t, values.Has("username"))
	assert.False(t, values.Has("email"), "Absent fields stay absent")
}

// TestValidateFieldErrors tests the per-field failure messages
func TestValidateFieldErrors(t *testing.T) {
	testCases := []struct {
		name    string
		input   map[string]interface{}
		field   string
		message string
	}{
		{
			name:    "String Too Long",
			input:   map[string]interface{}{"username": "abcdefghijk"},
			field:   "username",
			message: "ensure this field has no more than 10 characters",
		},
		{
			name:    "Required String Blank",
			input:   map[string]interface{}{"username": ""},
			field:   "username",
			message: "this field may not be blank",
		},
		{
			name:    "Wrong Type For String",
			input:   map[string]interface{}{"username": 42},
			field:   "username",
			message: "must be a string",
		},
		{
			name:    "Invalid Email",
			input:   map[string]interface{}{"email": "not-an-email"},
			field:   "email",
			message: "enter a valid email address",
		},
		{
			name:    "Email Missing Dot",
			input:   map[string]interface{}{"email": "user@domain"},
			field:   "email",
			message: "enter a valid email address",
		},
		{
			name:    "Bad Date Format",
			input:   map[string]interface{}{"birthdate": "04/05/1990"},
			field:   "birthdate",
			message: "date has wrong format, use YYYY-MM-DD",
		},
		{
			name:    "Fractional Integer",
			input:   map[string]interface{}{"national_id": json.Number("12.5")},
			field:   "national_id",
			message: "a valid integer is required",
		},
		{
			name:    "Non Numeric Integer",
			input:   map[string]interface{}{"national_id": "abc"},
			field:   "national_id",
			message: "a valid integer is required",
		},
		{
			name:    "Null On Non Nullable",
			input:   map[string]interface{}{"username": nil},
			field:   "username",
			message: "this field may not be null",
		},
		{
			name:    "Decimal Not A Number",
			input:   map[string]interface{}{"wallet": "lots"},
			field:   "wallet",
			message: "a valid number is required",
		},
		{
			name:    "Decimal Too Many Places",
			input:   map[string]interface{}{"wallet": "10.505"},
			field:   "wallet",
			message: "ensure that there are no more than 2 decimal places",
		},
		{
			name:    "Decimal Too Many Digits",
			input:   map[string]interface{}{"wallet": "12345678901.00"},
			field:   "wallet",
			message: "ensure that there are no more than 10 digits before the decimal point",
		},
		{
			name:    "Decimal Exponent Over Digit Budget",
			input:   map[string]interface{}{"wallet": json.Number("1e11")},
			field:   "wallet",
			message: "ensure that there are no more than 10 digits before the decimal point",
		},
		{
			name:    "Decimal Huge Exponent",
			input:   map[string]interface{}{"wallet": json.Number("1e300")},
			field:   "wallet",
			message: "ensure that there are no more than 10 digits before the decimal point",
		},
		{
			name:    "Decimal Negative Exponent Precision",
			input:   map[string]interface{}{"wallet": json.Number("1e-5")},
			field:   "wallet",
			message: "ensure that there are no more than 2 decimal places",
		},
		{
			name:    "Decimal NaN Literal",
			input:   map[string]interface{}{"wallet": "NaN"},
			field:   "wallet",
			message: "a valid number is required",
		},
		{
			name:    "Decimal Infinity Literal",
			input:   map[string]interface{}{"wallet": "Infinity"},
			field:   "wallet",
			message: "a valid number is required",
		},
		{
			name:    "Decimal Negative Infinity Literal",
			input:   map[string]interface{}{"wallet": "-inf"},
			field:   "wallet",
			message: "a valid number is required",
		},
		{
			name:    "Decimal Hex Float Literal",
			input:   map[string]interface{}{"wallet": "0x1p10"},
			field:   "wallet",
			message: "a valid number is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, errs := testSchema.Validate(tc.input, true)
			require.NotNil(t, errs, "Input should fail validation")
			assert.Nil(t, values)
			assert.Contains(t, errs[tc.field], tc.message)
		})
	}
}

// TestValidateDecimalExponentInBudget tests that exponent notation is still
// a legal spelling when the expanded value fits the digit budget
func TestValidateDecimalExponentInBudget(t *testing.T) {
	values, errs := testSchema.Validate(map[string]interface{}{"wallet": json.Number("2.5e3")}, true)
	require.Nil(t, errs, "2500 fits twelve digits: %v", errs)

	wallet, ok := values.Float("wallet")
	assert.True(t, ok)
	assert.InDelta(t, 2500.0, wallet, 1e-9)
}

// TestValidateExplicitNull tests that nullable fields record the null so a
// partial update can clear them
func TestValidateExplicitNull(t *testing.T) {
	input := map[string]interface{}{
		"birthdate":   nil,
		"national_id": nil,
	}

	values, errs := testSchema.Validate(input, true)
	require.Nil(t, errs)

	assert.True(t, values.Has("birthdate"))
	assert.True(t, values.IsNull("birthdate"))
	assert.True(t, values.IsNull("national_id"))

	_, ok := values.Time("birthdate")
	assert.False(t, ok, "A null never surfaces as a typed value")
}

// TestValidateEmptyStringAsAbsent tests the HTML form convention: untouched
// non-string inputs arrive as empty strings and count as absent
func TestValidateEmptyStringAsAbsent(t *testing.T) {
	input := map[string]interface{}{
		"username":    "carol",
		"email":       "carol@example.com",
		"birthdate":   "",
		"national_id": " ",
		"wallet":      "",
	}

	values, errs := testSchema.Validate(input, false)
	require.Nil(t, errs, "Empty non-string inputs should not fail: %v", errs)

	assert.False(t, values.Has("birthdate"))
	assert.False(t, values.Has("national_id"))
	assert.False(t, values.Has("wallet"))
}

// TestValidateCollectsAllErrors tests that a bad payload reports every
// failing field in one pass
func TestValidateCollectsAllErrors(t *testing.T) {
	input := map[string]interface{}{
		"username":  "way-too-long-name",
		"email":     "nope",
		"birthdate": "yesterday",
	}

	_, errs := testSchema.Validate(input, true)
	require.NotNil(t, errs)
	assert.Len(t, errs, 3, "Each failing field gets its own entry")
}

// TestErrorsSummaryDeterministic tests that the error summary lists fields
// in sorted order regardless of map iteration
func TestErrorsSummaryDeterministic(t *testing.T) {
	errs := validation.Errors{
		"zeta":  {"bad"},
		"alpha": {"worse", "worst"},
	}

	want := "validation failed: alpha: worse, worst; zeta: bad"
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, errs.Error())
	}
}

// TestIsEmailShaped tests the identifier classification used by login
func TestIsEmailShaped(t *testing.T) {
	testCases := []struct {
		identifier string
		isEmail    bool
	}{
		{"alice@example.com", true},
		{"first.last+tag@sub.domain.org", true},
		{"a@b.c", true},
		{"alice", false},
		{"alice@", false},
		{"@example.com", false},
		{"alice@domain", false},
		{"alice example.com", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.identifier, func(t *testing.T) {
			assert.Equal(t, tc.isEmail, validation.IsEmailShaped(tc.identifier))
		})
	}
}
