package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a string list as a JSON array in a text column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		// nil is stored as an empty JSON array
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil {
		return fmt.Errorf("StringSlice Scan: %w", err)
	}
	if len(data) == 0 || string(data) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// StringMap stores a flat string map as a JSON object in a text column.
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

func (m *StringMap) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil {
		return fmt.Errorf("StringMap Scan: %w", err)
	}
	if len(data) == 0 || string(data) == "null" {
		*m = StringMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// IntMap stores a flat counter map as a JSON object in a text column.
type IntMap map[string]int

func (m IntMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

func (m *IntMap) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil {
		return fmt.Errorf("IntMap Scan: %w", err)
	}
	if len(data) == 0 || string(data) == "null" {
		*m = IntMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported type " + fmt.Sprintf("%T", value))
	}
}

// QuizResponse is a row of quiz_responses.
type QuizResponse struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Responses   StringMap `db:"responses"`
	Result      string    `db:"result"`
	Scores      IntMap    `db:"scores"`
	CompletedAt time.Time `db:"completed_at"`
}
