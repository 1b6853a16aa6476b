package sequence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"seqcode/domain/core"
)

// TriggerEvent selects the record write direction a definition fires on.
type TriggerEvent int

const (
	TriggerCreate TriggerEvent = 0
	TriggerUpdate TriggerEvent = 1
)

// String returns the wire form of the trigger event.
func (t TriggerEvent) String() string {
	if t == TriggerUpdate {
		return "update"
	}
	return "create"
}

// ParseTriggerEvent parses the wire form of a trigger event.
func ParseTriggerEvent(s string) (TriggerEvent, error) {
	switch s {
	case "create":
		return TriggerCreate, nil
	case "update":
		return TriggerUpdate, nil
	default:
		return TriggerCreate, fmt.Errorf("unknown trigger event %q", s)
	}
}

// MarshalJSON encodes the trigger event as its wire string.
func (t TriggerEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the trigger event from its wire string.
func (t *TriggerEvent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTriggerEvent(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer; the store persists the numeric form.
func (t TriggerEvent) Value() (driver.Value, error) {
	return int64(t), nil
}

// Scan implements sql.Scanner.
func (t *TriggerEvent) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*t = TriggerEvent(v)
		return nil
	case []byte:
		return t.UnmarshalJSON(v)
	default:
		return fmt.Errorf("cannot scan trigger event from %T", src)
	}
}

// Definition is one sequence definition: where to write a code, when to fire
// and how to compose the value. The definition row also carries the counter
// state; its ID doubles as the deterministic lock-ordering key.
type Definition struct {
	ID                   core.DefinitionID `db:"id" json:"id"`
	Name                 string            `db:"name" json:"name"`
	EntityName           string            `db:"entity_name" json:"entity_name"`
	AttributeName        string            `db:"attribute_name" json:"attribute_name"`
	TriggerEvent         TriggerEvent      `db:"trigger_event" json:"trigger_event"`
	TriggerAttribute     string            `db:"trigger_attribute" json:"trigger_attribute,omitempty"`
	ConditionalAttribute string            `db:"conditional_attribute" json:"conditional_attribute,omitempty"`
	ConditionalValue     int               `db:"conditional_value" json:"conditional_value,omitempty"`
	CharacterLength      int               `db:"character_length" json:"character_length"`
	PrefixTemplate       string            `db:"prefix_template" json:"prefix_template,omitempty"`
	SuffixTemplate       string            `db:"suffix_template" json:"suffix_template,omitempty"`
	NextCode             string            `db:"next_code" json:"next_code"`
	Active               bool              `db:"active" json:"active"`
	LastPreview          string            `db:"last_preview" json:"last_preview,omitempty"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
}

// Conditional reports whether the definition only applies to records whose
// conditional attribute carries the configured option value.
func (d *Definition) Conditional() bool {
	return d.ConditionalAttribute != ""
}

// CounterSegment renders the current counter, left-padded to the configured
// width. A zero-width counter contributes nothing to the code.
func (d *Definition) CounterSegment() string {
	if d.CharacterLength == 0 {
		return ""
	}
	return Pad(d.NextCode, d.CharacterLength, AlphaNumeric)
}

// DisplayName composes the administrative display name stamped onto new
// definitions.
func DisplayName(entityName, attributeName string) string {
	return fmt.Sprintf("Sequence for %s, %s", entityName, attributeName)
}
