package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingValue(t *testing.T) {
	tests := []struct {
		raw      string
		wantBool bool
		isBool   bool
		encoded  string
	}{
		{raw: "on", wantBool: true, isBool: true, encoded: "true"},
		{raw: "TRUE", wantBool: true, isBool: true, encoded: "true"},
		{raw: "off", isBool: true, encoded: "false"},
		{raw: "false", isBool: true, encoded: "false"},
		{raw: "Welcome!", encoded: "Welcome!"},
		{raw: "", encoded: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := ParseSettingValue(tt.raw)
			b, ok := v.Bool()
			assert.Equal(t, tt.isBool, ok)
			assert.Equal(t, tt.wantBool, b)
			assert.Equal(t, tt.encoded, v.String())
		})
	}
}

func TestSettingValue_JSON(t *testing.T) {
	out, err := json.Marshal([]Setting{
		{ID: SettingAllowSignup, Value: BoolValue(true)},
		{ID: "motd", Value: StringValue("hi")},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"allowSignup","value":true},{"id":"motd","value":"hi"}]`, string(out))
}
