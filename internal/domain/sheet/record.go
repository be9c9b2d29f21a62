package sheet

// MessageKind classifies a field-level annotation
type MessageKind string

const (
	MessageInfo  MessageKind = "info"
	MessageWarn  MessageKind = "warn"
	MessageError MessageKind = "error"
)

// Message is a human-readable annotation attached to a record field.
// The platform surfaces these to users reviewing the sheet.
type Message struct {
	Kind MessageKind `json:"type"`
	Text string      `json:"message"`
}

// FieldValue is a single cell of a record: the value plus optional
// validity flag and annotations
type FieldValue struct {
	Value    any       `json:"value"`
	Valid    bool      `json:"valid,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Record is one row of a sheet, a field-keyed value mapping
type Record struct {
	ID     string                `json:"id,omitempty"`
	Values map[string]FieldValue `json:"values"`
}

// NewRecord creates an empty record
func NewRecord(id string) Record {
	return Record{ID: id, Values: make(map[string]FieldValue)}
}

// Get returns the field value for a key, and whether it is present
func (r Record) Get(key string) (FieldValue, bool) {
	fv, ok := r.Values[key]
	return fv, ok
}

// StringValue returns the field's value as a string, or "" if absent or
// not a string
func (r Record) StringValue(key string) string {
	fv, ok := r.Values[key]
	if !ok {
		return ""
	}
	s, _ := fv.Value.(string)
	return s
}

// Set assigns a plain value to a field
func (r Record) Set(key string, value any) {
	r.Values[key] = FieldValue{Value: value}
}

// SetField assigns a full field value including flags and messages
func (r Record) SetField(key string, fv FieldValue) {
	r.Values[key] = fv
}

// Delete removes a field from the record
func (r Record) Delete(key string) {
	delete(r.Values, key)
}

// Clone returns a deep copy of the record. Message slices are copied so
// annotating the clone never mutates the original.
func (r Record) Clone() Record {
	out := Record{ID: r.ID, Values: make(map[string]FieldValue, len(r.Values))}
	for k, fv := range r.Values {
		cp := fv
		if len(fv.Messages) > 0 {
			cp.Messages = append([]Message(nil), fv.Messages...)
		}
		out.Values[k] = cp
	}
	return out
}

// Annotate appends a message to a field, preserving its current value
func (r Record) Annotate(key string, kind MessageKind, text string) {
	fv := r.Values[key]
	fv.Messages = append(fv.Messages, Message{Kind: kind, Text: text})
	r.Values[key] = fv
}
