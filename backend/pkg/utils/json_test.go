package utils

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Joint       string  `json:"joint"`
	Temperature float64 `json:"temperature"`
}

func TestFromJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    sample
		wantErr bool
	}{
		{name: "valid", input: `{"joint":"HeadYaw","temperature":41.5}`, want: sample{Joint: "HeadYaw", Temperature: 41.5}},
		{name: "empty input", input: ``, want: sample{}},
		{name: "truncated", input: `{"joint":`, wantErr: true},
		{name: "unknown field", input: `{"joint":"LHand","stiffness":1}`, wantErr: true},
		{name: "two objects", input: `{"joint":"LHand"}{"joint":"RHand"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FromJSON[sample]([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromJSON() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && got != tt.want {
				t.Errorf("FromJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromJSONStreamExtraData(t *testing.T) {
	t.Parallel()

	_, err := FromJSONStream[sample](strings.NewReader(`{"joint":"HeadYaw"} []`))

	var extra *ExtraDataAfterJSONError
	if !errors.As(err, &extra) {
		t.Fatalf("expected ExtraDataAfterJSONError, got %v", err)
	}

	if extra.Error() != "extra data after JSON object" {
		t.Errorf("Error() = %q", extra.Error())
	}
}

func TestFromJSONStreamTrailingWhitespace(t *testing.T) {
	t.Parallel()

	got, err := FromJSONStream[sample](strings.NewReader("{\"joint\":\"RHand\"}\n  "))
	if err != nil {
		t.Fatalf("FromJSONStream() error = %v", err)
	}

	if got.Joint != "RHand" {
		t.Errorf("Joint = %q, want RHand", got.Joint)
	}
}

func TestToJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "struct", input: sample{Joint: "LHand", Temperature: 75}, want: `{"joint":"LHand","temperature":75}`},
		{name: "nil", input: nil, want: `null`},
		{name: "degree sign and html kept", input: map[string]string{"hot": "\nLHand: 75°C <b>"}, want: `{"hot":"\nLHand: 75°C <b>"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToJSON(tt.input)
			if err != nil {
				t.Fatalf("ToJSON() error = %v", err)
			}

			if string(got) != tt.want {
				t.Errorf("ToJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}
