// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	first, err := Marshal(map[string]any{"zeta": 1, "alpha": "x", "mid": []byte{1, 2}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(map[string]any{"mid": []byte{1, 2}, "alpha": "x", "zeta": 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("encoding depends on map insertion order:\n%x\n%x", first, second)
	}
}

func TestJSONTagsFallback(t *testing.T) {
	type payload struct {
		ProjectPath string `json:"projectPath"`
		Platform    string `json:"platformName,omitempty"`
	}

	data, err := Marshal(payload{ProjectPath: "/src/app.csproj"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["projectPath"] != "/src/app.csproj" {
		t.Errorf("projectPath = %v, want /src/app.csproj", decoded["projectPath"])
	}
	if _, present := decoded["platformName"]; present {
		t.Error("omitempty field was encoded")
	}
}

func TestStreamRoundTripSequence(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, value := range []string{"first", "second"} {
		if err := encoder.Encode(value); err != nil {
			t.Fatalf("Encode(%q): %v", value, err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, want := range []string{"first", "second"} {
		var got string
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != want {
			t.Errorf("Decode = %q, want %q", got, want)
		}
	}
}

func TestRawMessageDefersDecoding(t *testing.T) {
	type envelope struct {
		Method string     `cbor:"method"`
		Params RawMessage `cbor:"params"`
	}

	inner, err := Marshal(map[string]string{"name": "Sample.Command"})
	if err != nil {
		t.Fatalf("Marshal inner: %v", err)
	}
	data, err := Marshal(envelope{Method: "commands/get", Params: inner})
	if err != nil {
		t.Fatalf("Marshal envelope: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(decoded.Params, inner) {
		t.Errorf("params = %x, want %x", []byte(decoded.Params), inner)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"kind": "request", "id": 7})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	for _, want := range []string{`"id"`, "7", `"kind"`, `"request"`} {
		if !strings.Contains(got, want) {
			t.Errorf("Diagnose = %s, missing %s", got, want)
		}
	}

	if _, err := Diagnose([]byte{0xff}); err == nil {
		t.Error("Diagnose accepted a lone break byte")
	}
}
