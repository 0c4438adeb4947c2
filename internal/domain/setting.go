package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Known setting keys.
const (
	SettingAllowSignup = "allowSignup"
)

type settingKind int

const (
	settingString settingKind = iota
	settingBool
)

// SettingValue holds either a boolean or a string.
type SettingValue struct {
	kind settingKind
	b    bool
	s    string
}

// BoolValue wraps a boolean.
func BoolValue(b bool) SettingValue {
	return SettingValue{kind: settingBool, b: b}
}

// StringValue wraps a string.
func StringValue(s string) SettingValue {
	return SettingValue{kind: settingString, s: s}
}

// ParseSettingValue reads form or stored input: on/off/true/false
// (any case) become booleans, everything else stays a string.
func ParseSettingValue(raw string) SettingValue {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true":
		return BoolValue(true)
	case "off", "false":
		return BoolValue(false)
	}
	return StringValue(raw)
}

// IsBool reports whether the value is a boolean.
func (v SettingValue) IsBool() bool {
	return v.kind == settingBool
}

// Bool returns the boolean and whether the value is one.
func (v SettingValue) Bool() (bool, bool) {
	return v.b, v.kind == settingBool
}

// String returns the encoded form used for storage.
func (v SettingValue) String() string {
	if v.kind == settingBool {
		return strconv.FormatBool(v.b)
	}
	return v.s
}

// MarshalJSON renders booleans as JSON booleans and strings as JSON strings.
func (v SettingValue) MarshalJSON() ([]byte, error) {
	if v.kind == settingBool {
		return json.Marshal(v.b)
	}
	return json.Marshal(v.s)
}

// Setting is an installation-wide key/value pair.
type Setting struct {
	ID    string       `json:"id"`
	Value SettingValue `json:"value"`
}
