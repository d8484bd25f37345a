package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ProbabilityJSON stores an emotion probability map as JSONB. A nil map is
// stored as SQL NULL so "absent" survives a round trip.
type ProbabilityJSON map[string]float64

// Value marshals the map for persistence.
func (p ProbabilityJSON) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(map[string]float64(p))
	if err != nil {
		return nil, fmt.Errorf("marshal probabilities: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads.
func (p *ProbabilityJSON) Scan(value interface{}) error {
	data, err := jsonBytes(value, "ProbabilityJSON")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*p = nil
		return nil
	}
	out := map[string]float64{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal probabilities: %w", err)
	}
	*p = out
	return nil
}

func jsonBytes(value interface{}, target string) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T for %s", value, target)
	}
}
