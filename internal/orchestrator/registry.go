package orchestrator

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Jayden3422/voice-assistant/internal/backend"
)

// FieldKind tags a payload field as a directly editable scalar or a
// structured value edited as text at the boundary.
type FieldKind string

// Payload field kinds.
const (
	FieldScalar     FieldKind = "scalar"
	FieldStructured FieldKind = "structured"
)

// ActionPreview is one proposed action derived from the current run. Only
// the enabled flag and individual payload fields mutate; the preview list
// length is fixed for the life of its run.
type ActionPreview struct {
	ActionType string         `json:"action_type"`
	Confidence float64        `json:"confidence"`
	Preview    string         `json:"preview,omitempty"`
	Enabled    bool           `json:"enabled"`
	Payload    map[string]any `json:"payload"`
}

// Registry holds the editable, enableable action list for one run. It never
// changes the list's length; a replacement run builds a new Registry.
type Registry struct {
	previews []ActionPreview
}

// NewRegistry initializes a registry from a run's proposed actions with
// every action enabled by default.
func NewRegistry(actions []backend.Action) *Registry {
	previews := make([]ActionPreview, len(actions))
	for i, a := range actions {
		previews[i] = ActionPreview{
			ActionType: a.ActionType,
			Confidence: a.Confidence,
			Preview:    a.Preview,
			Enabled:    true,
			Payload:    clonePayload(a.Payload),
		}
	}
	return &Registry{previews: previews}
}

// Len returns the fixed action count.
func (r *Registry) Len() int {
	return len(r.previews)
}

// Previews returns a copy of the current action list. Payloads are deep
// copies: callers encode them outside the owning mutex, so they must never
// alias the registry's live maps.
func (r *Registry) Previews() []ActionPreview {
	out := make([]ActionPreview, len(r.previews))
	for i, p := range r.previews {
		out[i] = p
		out[i].Payload = clonePayload(p.Payload)
	}
	return out
}

// At returns a copy of the preview at index.
func (r *Registry) At(index int) (ActionPreview, bool) {
	if index < 0 || index >= len(r.previews) {
		return ActionPreview{}, false
	}
	p := r.previews[index]
	p.Payload = clonePayload(p.Payload)
	return p, true
}

// Toggle flips only the enabled flag at index. Out-of-bounds indices are a
// silent no-op: the edit raced a run replacement.
func (r *Registry) Toggle(index int, enabled bool) bool {
	if index < 0 || index >= len(r.previews) {
		return false
	}
	r.previews[index].Enabled = enabled
	return true
}

// EditPayloadField replaces exactly one existing field of the action's
// payload from its textual form, leaving siblings untouched. Structured
// values are deserialized here at the edit boundary; the canonical in-memory
// value stays structured. A stale index is a silent no-op; a field the
// payload never had is rejected, the edit surface cannot grow the payload.
func (r *Registry) EditPayloadField(index int, field, raw string) (bool, error) {
	if index < 0 || index >= len(r.previews) {
		return false, nil
	}

	current, exists := r.previews[index].Payload[field]
	if !exists {
		return false, fmt.Errorf("%w: unknown payload field %q", ErrValidation, field)
	}
	if payloadFieldKind(current) == FieldStructured {
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return false, fmt.Errorf("%w: field %s: %v", ErrValidation, field, err)
		}
		r.previews[index].Payload[field] = value
		return true, nil
	}

	r.previews[index].Payload[field] = coerceScalar(current, raw)
	return true, nil
}

// SerializeForConfirmation emits every action in list order with its fields
// plus confirmed and skip flags. Disabled actions are included, not dropped,
// so the audit trail records the decision to skip them. Payloads are deep
// copies; the wire encoding happens after the owning mutex is released.
func (r *Registry) SerializeForConfirmation() []map[string]any {
	out := make([]map[string]any, len(r.previews))
	for i, p := range r.previews {
		out[i] = map[string]any{
			"action_type": p.ActionType,
			"confidence":  p.Confidence,
			"payload":     clonePayload(p.Payload),
			"confirmed":   p.Enabled,
			"skip":        !p.Enabled,
		}
	}
	return out
}

// action converts the preview at index into its wire shape. At already
// detaches the payload.
func (r *Registry) action(index int) (backend.Action, bool) {
	p, ok := r.At(index)
	if !ok {
		return backend.Action{}, false
	}
	return backend.Action{
		ActionType: p.ActionType,
		Confidence: p.Confidence,
		Preview:    p.Preview,
		Payload:    p.Payload,
	}, true
}

// clonePayload deep-copies a payload so registry edits and escaped copies
// never share map or slice storage. Nil payloads become empty maps.
func clonePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return clonePayload(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func payloadFieldKind(value any) FieldKind {
	switch value.(type) {
	case map[string]any, []any:
		return FieldStructured
	default:
		return FieldScalar
	}
}

// coerceScalar keeps the prior scalar type where the raw text still fits it;
// otherwise the field becomes the raw string.
func coerceScalar(current any, raw string) any {
	switch current.(type) {
	case float64:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}
