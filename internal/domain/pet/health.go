package pet

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

type HealthWireKind int

const (
	HealthWireAbsent HealthWireKind = iota
	HealthWirePlain
	HealthWireTimed
	HealthWireUnrecognized
)

// HealthWire is the health field as sent by the backend: either a bare status
// string or a single-entry object mapping the status to the block or time it
// started at.
type HealthWire struct {
	Kind   HealthWireKind
	Status string
	Since  float64
}

var ErrInvalidHealthWire = errors.New("invalid health field")

func PlainHealth(status string) HealthWire {
	return HealthWire{Kind: HealthWirePlain, Status: status}
}

func TimedHealth(status string, since float64) HealthWire {
	return HealthWire{Kind: HealthWireTimed, Status: status, Since: since}
}

func (w *HealthWire) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return ErrInvalidHealthWire
	}
	r := gjson.ParseBytes(b)
	switch {
	case r.Type == gjson.Null:
		*w = HealthWire{}
	case r.Type == gjson.String:
		*w = PlainHealth(r.String())
	case r.IsObject():
		*w = HealthWire{Kind: HealthWireUnrecognized}
		r.ForEach(func(key, value gjson.Result) bool {
			*w = TimedHealth(key.String(), value.Float())
			return false
		})
	default:
		*w = HealthWire{Kind: HealthWireUnrecognized}
	}
	return nil
}

func (w HealthWire) MarshalJSON() ([]byte, error) {
	switch w.Kind {
	case HealthWirePlain:
		return json.Marshal(w.Status)
	case HealthWireTimed:
		return json.Marshal(map[string]float64{w.Status: w.Since})
	default:
		return []byte("null"), nil
	}
}

// ParseHealthStatus collapses the wire representation into a status. Anything
// unknown is treated as healthy.
func ParseHealthStatus(w HealthWire) HealthStatus {
	switch w.Kind {
	case HealthWirePlain, HealthWireTimed:
		return ParseHealthName(w.Status)
	default:
		return HealthHealthy
	}
}

func ParseHealthName(name string) HealthStatus {
	switch HealthStatus(name) {
	case HealthSick:
		return HealthSick
	case HealthDead:
		return HealthDead
	default:
		return HealthHealthy
	}
}
