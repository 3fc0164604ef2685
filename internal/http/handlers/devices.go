package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	devicedomain "github.com/micro-ha/device-inventory/internal/domain/device"
)

const maxBodyBytes = 1 << 20

// ListDevices returns every device.
func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	items, err := a.devices.List(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateDevice adds a device with a unique name.
func (a *API) CreateDevice(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	device, err := a.devices.Create(r.Context(), payload)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

// GetDevice returns one device by name.
func (a *API) GetDevice(w http.ResponseWriter, r *http.Request, name string) {
	device, err := a.devices.Get(r.Context(), name)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// UpdateDevice replaces the mutable attributes of a device.
func (a *API) UpdateDevice(w http.ResponseWriter, r *http.Request, name string) {
	payload, err := decodePayload(w, r)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	device, err := a.devices.Update(r.Context(), name, payload)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// DeleteDevice removes a device and answers 204.
func (a *API) DeleteDevice(w http.ResponseWriter, r *http.Request, name string) {
	if err := a.devices.Delete(r.Context(), name); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeviceHistory returns recorded changes of a device, newest first.
func (a *API) DeviceHistory(w http.ResponseWriter, r *http.Request, name string) {
	entries, err := a.devices.History(r.Context(), name)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// decodePayload reads a single JSON object body. An empty body decodes to an
// empty payload so the validator reports every missing field.
func decodePayload(w http.ResponseWriter, r *http.Request) (devicedomain.Payload, error) {
	var raw any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(&raw)
	if errors.Is(err, io.EOF) {
		return devicedomain.Payload{}, nil
	}
	if err != nil {
		return nil, devicedomain.BadRequest("Invalid JSON payload")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, devicedomain.BadRequest("Invalid JSON payload")
	}
	switch body := raw.(type) {
	case map[string]any:
		return devicedomain.Payload(body), nil
	case nil:
		return devicedomain.Payload{}, nil
	default:
		return nil, devicedomain.BadRequest("Request body must be a JSON object")
	}
}
