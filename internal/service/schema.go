package service

import (
	"github.com/accounts-service/internal/validation"
)

// Field names shared by the JSON payloads and the HTML forms
const (
	FieldID          = "id"
	FieldUsername    = "username"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldBirthdate   = "birthdate"
	FieldNationalID  = "national_id"
	FieldPhoneNumber = "phone_number"
	FieldWallet      = "wallet"

	FieldIdentifier = "username_or_email"
)

// UserSchema declares the user payload, one rule per record field. The id is
// read-only: listed for introspection, ignored on input. The declared order
// drives the field listing of the create endpoint.
var UserSchema = validation.Schema{
	{Name: FieldID, Kind: validation.Integer, ReadOnly: true},
	{Name: FieldUsername, Kind: validation.String, Required: true, MaxLen: 150},
	{Name: FieldFirstName, Kind: validation.String, Blank: true, MaxLen: 30},
	{Name: FieldLastName, Kind: validation.String, Blank: true, MaxLen: 150},
	{Name: FieldEmail, Kind: validation.String, Required: true, Email: true},
	{Name: FieldPassword, Kind: validation.String, Required: true},
	{Name: FieldBirthdate, Kind: validation.Date, Nullable: true},
	{Name: FieldNationalID, Kind: validation.Integer, Nullable: true},
	{Name: FieldPhoneNumber, Kind: validation.String, Required: true, MaxLen: 20},
	{Name: FieldWallet, Kind: validation.Decimal, MaxDigits: 12, DecimalPlaces: 2},
}

// LoginSchema declares the login submission: an identifier that may be a
// username or an email, plus the password
var LoginSchema = validation.Schema{
	{Name: FieldIdentifier, Kind: validation.String, Required: true},
	{Name: FieldPassword, Kind: validation.String, Required: true},
}
