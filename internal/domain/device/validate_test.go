package device

import (
	"errors"
	"strings"
	"testing"
)

func validPayload() Payload {
	return Payload{
		"name":       "r1",
		"ip_address": "10.0.0.1",
		"type":       "Router",
		"location":   "NY",
	}
}

func TestValidateCreateAcceptsValidPayload(t *testing.T) {
	t.Helper()

	got, err := ValidateCreate(validPayload())
	if err != nil {
		t.Fatalf("ValidateCreate returned error: %v", err)
	}
	want := Device{Name: "r1", IPAddress: "10.0.0.1", Type: TypeRouter, Location: "NY"}
	if got != want {
		t.Fatalf("ValidateCreate() = %+v, want %+v", got, want)
	}
}

func TestValidateCreateTrimsNameAndLocation(t *testing.T) {
	t.Helper()

	in := validPayload()
	in["name"] = "  core-sw  "
	in["location"] = "\tDC-A "
	got, err := ValidateCreate(in)
	if err != nil {
		t.Fatalf("ValidateCreate returned error: %v", err)
	}
	if got.Name != "core-sw" || got.Location != "DC-A" {
		t.Fatalf("expected trimmed values, got %+v", got)
	}
}

func TestValidateCreateRejectsInvalidFields(t *testing.T) {
	t.Helper()

	tests := []struct {
		name    string
		mutate  func(Payload)
		wantMsg string
	}{
		{name: "missing name", mutate: func(p Payload) { delete(p, "name") }, wantMsg: "name is required"},
		{name: "null name", mutate: func(p Payload) { p["name"] = nil }, wantMsg: "name is required"},
		{name: "blank name", mutate: func(p Payload) { p["name"] = "   " }, wantMsg: "name must not be empty"},
		{name: "numeric name", mutate: func(p Payload) { p["name"] = 42.0 }, wantMsg: "name must be a string"},
		{name: "octet out of range", mutate: func(p Payload) { p["ip_address"] = "999.1.1.1" }, wantMsg: "ip_address must be a valid IPv4"},
		{name: "word as ip", mutate: func(p Payload) { p["ip_address"] = "abc" }, wantMsg: "ip_address must be a valid IPv4"},
		{name: "three octets", mutate: func(p Payload) { p["ip_address"] = "1.2.3" }, wantMsg: "ip_address must be a valid IPv4"},
		{name: "ipv6", mutate: func(p Payload) { p["ip_address"] = "fe80::1" }, wantMsg: "ip_address must be a valid IPv4"},
		{name: "mapped ipv6", mutate: func(p Payload) { p["ip_address"] = "::ffff:10.0.0.1" }, wantMsg: "ip_address must be a valid IPv4"},
		{name: "leading zero", mutate: func(p Payload) { p["ip_address"] = "10.0.0.01" }, wantMsg: "ip_address must be a valid IPv4"},
		{name: "hostname", mutate: func(p Payload) { p["ip_address"] = "router.local" }, wantMsg: "ip_address must be a valid IPv4"},
		{name: "missing ip", mutate: func(p Payload) { delete(p, "ip_address") }, wantMsg: "ip_address is required"},
		{name: "lowercase type", mutate: func(p Payload) { p["type"] = "router" }, wantMsg: "type must be one of Router, Switch, Server"},
		{name: "unknown type", mutate: func(p Payload) { p["type"] = "Firewall" }, wantMsg: "type must be one of Router, Switch, Server"},
		{name: "empty location", mutate: func(p Payload) { p["location"] = "" }, wantMsg: "location must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPayload()
			tt.mutate(in)
			_, err := ValidateCreate(in)
			assertBadRequest(t, err, tt.wantMsg)
		})
	}
}

func TestValidateCreateReportsAllFieldsInOrder(t *testing.T) {
	t.Helper()

	_, err := ValidateCreate(Payload{"type": "Hub"})
	var classified *Error
	if !errors.As(err, &classified) {
		t.Fatalf("expected *Error, got %v", err)
	}
	want := "name is required; ip_address is required; type must be one of Router, Switch, Server; location is required"
	if classified.Message != want {
		t.Fatalf("message = %q, want %q", classified.Message, want)
	}
}

func TestValidateUpdate(t *testing.T) {
	t.Helper()

	body := Payload{"ip_address": "10.0.0.2", "type": "Switch", "location": "LA"}
	attrs, err := ValidateUpdate("r1", body)
	if err != nil {
		t.Fatalf("ValidateUpdate returned error: %v", err)
	}
	if attrs != (Attributes{IPAddress: "10.0.0.2", Type: TypeSwitch, Location: "LA"}) {
		t.Fatalf("unexpected attributes: %+v", attrs)
	}

	body["name"] = "r1"
	if _, err := ValidateUpdate("r1", body); err != nil {
		t.Fatalf("matching name in body should be accepted, got %v", err)
	}

	body["name"] = "r2"
	_, err = ValidateUpdate("r1", body)
	assertBadRequest(t, err, "name cannot be changed")

	_, err = ValidateUpdate("r1", Payload{"type": "Router"})
	assertBadRequest(t, err, "ip_address is required")
}

func TestIsIPv4(t *testing.T) {
	t.Helper()

	valid := []string{"0.0.0.0", "10.0.0.1", "192.168.1.1", "255.255.255.255"}
	for _, value := range valid {
		if !IsIPv4(value) {
			t.Fatalf("IsIPv4(%q) = false, want true", value)
		}
	}
	invalid := []string{"", " 10.0.0.1", "256.0.0.1", "1.2.3.4.5", "1.2.3.-1", "::1", "1.2.3.4%eth0", "0x1.2.3.4"}
	for _, value := range invalid {
		if IsIPv4(value) {
			t.Fatalf("IsIPv4(%q) = true, want false", value)
		}
	}
}

func assertBadRequest(t *testing.T, err error, wantMsg string) {
	t.Helper()
	var classified *Error
	if !errors.As(err, &classified) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if classified.Code != CodeBadRequest {
		t.Fatalf("code = %s, want %s", classified.Code, CodeBadRequest)
	}
	if !strings.Contains(classified.Message, wantMsg) {
		t.Fatalf("message %q does not contain %q", classified.Message, wantMsg)
	}
}
