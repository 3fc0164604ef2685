package device

import (
	"fmt"
	"net/netip"
	"strings"
)

const (
	fieldName      = "name"
	fieldIPAddress = "ip_address"
	fieldType      = "type"
	fieldLocation  = "location"
)

// ValidateCreate checks a create payload and returns the device to store.
// All failing fields are reported in a fixed order in one BadRequest error.
func ValidateCreate(in Payload) (Device, error) {
	var problems []string

	name, msg := requiredText(in, fieldName)
	problems = appendProblem(problems, msg)

	attrs, attrProblems := validateAttributes(in)
	problems = append(problems, attrProblems...)

	if len(problems) > 0 {
		return Device{}, BadRequest(strings.Join(problems, "; "))
	}
	return Device{Name: name}.WithAttributes(attrs), nil
}

// ValidateUpdate checks an update payload for the device addressed by name.
// A name key in the body is tolerated only when it equals the addressed name.
func ValidateUpdate(name string, in Payload) (Attributes, error) {
	var problems []string

	if raw, ok := in[fieldName]; ok && raw != nil {
		bodyName, isString := raw.(string)
		if !isString || strings.TrimSpace(bodyName) != strings.TrimSpace(name) {
			problems = append(problems, "name cannot be changed")
		}
	}

	attrs, attrProblems := validateAttributes(in)
	problems = append(problems, attrProblems...)

	if len(problems) > 0 {
		return Attributes{}, BadRequest(strings.Join(problems, "; "))
	}
	return attrs, nil
}

func validateAttributes(in Payload) (Attributes, []string) {
	var problems []string

	ip, msg := ipv4(in, fieldIPAddress)
	problems = appendProblem(problems, msg)

	kind, msg := deviceType(in, fieldType)
	problems = appendProblem(problems, msg)

	location, msg := requiredText(in, fieldLocation)
	problems = appendProblem(problems, msg)

	return Attributes{IPAddress: ip, Type: kind, Location: location}, problems
}

func appendProblem(problems []string, msg string) []string {
	if msg == "" {
		return problems
	}
	return append(problems, msg)
}

func stringField(in Payload, field string) (string, string) {
	raw, ok := in[field]
	if !ok || raw == nil {
		return "", fmt.Sprintf("%s is required", field)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Sprintf("%s must be a string", field)
	}
	return value, ""
}

func requiredText(in Payload, field string) (string, string) {
	value, msg := stringField(in, field)
	if msg != "" {
		return "", msg
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Sprintf("%s must not be empty", field)
	}
	return value, ""
}

func ipv4(in Payload, field string) (string, string) {
	value, msg := stringField(in, field)
	if msg != "" {
		return "", msg
	}
	if !IsIPv4(value) {
		return "", fmt.Sprintf("%s must be a valid IPv4 address in dotted-quad form (e.g. 192.168.1.1)", field)
	}
	return value, ""
}

func deviceType(in Payload, field string) (Type, string) {
	value, msg := stringField(in, field)
	if msg != "" {
		return "", msg
	}
	kind := Type(value)
	if !kind.Valid() {
		return "", fmt.Sprintf("%s must be one of Router, Switch, Server", field)
	}
	return kind, ""
}

// IsIPv4 reports whether value is a plain dotted-quad IPv4 address. IPv6,
// IPv4-mapped IPv6, zones, leading zeros and hostnames are rejected.
func IsIPv4(value string) bool {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return false
	}
	return addr.Is4() && addr.String() == value
}
