package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CarDetails is the validated vehicle description attached to a quote.
type CarDetails struct {
	Year  int    `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
}

// String renders the details for display, e.g. "2020 Honda Civic".
func (c CarDetails) String() string {
	return strconv.Itoa(c.Year) + " " + c.Make + " " + c.Model
}

// InvalidCarDetailsError reports why a vehicle-description payload was
// rejected, so rejection reasons survive past the validation site.
type InvalidCarDetailsError struct {
	Reason string
}

func (e *InvalidCarDetailsError) Error() string {
	return "invalid car details: " + e.Reason
}

// Sentinel strings used on the rendering path.
const (
	carDetailsNotApplicable = "N/A"
	carDetailsInvalid       = "Invalid car details"
)

// ParseCarDetails validates a raw vehicle-description payload. The payload may
// be a JSON object or a JSON string containing an encoded object (some legacy
// rows are double-encoded). A nil or JSON-null payload returns (nil, nil):
// absence is not an error. Any other failure returns *InvalidCarDetailsError
// with the rejection reason.
func ParseCarDetails(raw json.RawMessage) (*CarDetails, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	// Unwrap a double-encoded payload.
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, &InvalidCarDetailsError{Reason: "malformed JSON"}
		}
		trimmed = strings.TrimSpace(inner)
		if trimmed == "" || trimmed == "null" {
			return nil, nil
		}
	}

	// Decode into loose types first so a missing field or a wrong type can be
	// reported precisely rather than as a generic unmarshal failure.
	var shape struct {
		Year  any `json:"year"`
		Make  any `json:"make"`
		Model any `json:"model"`
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&shape); err != nil {
		return nil, &InvalidCarDetailsError{Reason: "malformed JSON"}
	}

	var missing []string
	if shape.Year == nil {
		missing = append(missing, "year")
	}
	if shape.Make == nil {
		missing = append(missing, "make")
	}
	if shape.Model == nil {
		missing = append(missing, "model")
	}
	if len(missing) > 0 {
		return nil, &InvalidCarDetailsError{
			Reason: fmt.Sprintf("missing fields: %s", strings.Join(missing, ", ")),
		}
	}

	number, ok := shape.Year.(json.Number)
	if !ok {
		return nil, &InvalidCarDetailsError{Reason: "year must be a number"}
	}
	year, err := strconv.Atoi(number.String())
	if err != nil {
		return nil, &InvalidCarDetailsError{Reason: "year must be an integer"}
	}
	makeName, ok := shape.Make.(string)
	if !ok || makeName == "" {
		return nil, &InvalidCarDetailsError{Reason: "make must be a non-empty string"}
	}
	model, ok := shape.Model.(string)
	if !ok || model == "" {
		return nil, &InvalidCarDetailsError{Reason: "model must be a non-empty string"}
	}

	return &CarDetails{Year: year, Make: makeName, Model: model}, nil
}

// FormatCarDetails renders a raw payload for display. It is total: absent
// input yields "N/A", an unparseable or invalid payload yields "Invalid car
// details", and a valid payload yields "<year> <make> <model>". It never
// panics or returns an error because it sits on a rendering path.
func FormatCarDetails(raw json.RawMessage) string {
	details, err := ParseCarDetails(raw)
	if err != nil {
		return carDetailsInvalid
	}
	if details == nil {
		return carDetailsNotApplicable
	}
	return details.String()
}
