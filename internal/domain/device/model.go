package device

// Type is the closed set of device kinds accepted by the inventory.
type Type string

const (
	TypeRouter Type = "Router"
	TypeSwitch Type = "Switch"
	TypeServer Type = "Server"
)

// Valid reports whether t is one of the accepted device types.
func (t Type) Valid() bool {
	switch t {
	case TypeRouter, TypeSwitch, TypeServer:
		return true
	default:
		return false
	}
}

// Device is a single inventory record. Name is the business key and never changes.
type Device struct {
	Name      string `json:"name" bson:"name"`
	IPAddress string `json:"ip_address" bson:"ip_address"`
	Type      Type   `json:"type" bson:"type"`
	Location  string `json:"location" bson:"location"`
}

// Attributes holds the mutable part of a device replaced on update.
type Attributes struct {
	IPAddress string `json:"ip_address" bson:"ip_address"`
	Type      Type   `json:"type" bson:"type"`
	Location  string `json:"location" bson:"location"`
}

// WithAttributes returns a copy of d with attrs applied and the name kept.
func (d Device) WithAttributes(attrs Attributes) Device {
	d.IPAddress = attrs.IPAddress
	d.Type = attrs.Type
	d.Location = attrs.Location
	return d
}

// Payload is an untyped JSON request body before validation.
type Payload map[string]any
