package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

// typeSeparator joins entity and bundle in a resource type name.
const typeSeparator = "--"

// ResourceType is a JSON:API type name such as "taxonomy_term--person".
type ResourceType string

// NewResourceType joins an entity type and a bundle.
func NewResourceType(entity, bundle string) ResourceType {
	return ResourceType(entity + typeSeparator + bundle)
}

// Split returns the entity type and the bundle.
func (t ResourceType) Split() (entity, bundle string, err error) {
	entity, bundle, ok := strings.Cut(string(t), typeSeparator)
	if !ok || entity == "" || bundle == "" {
		return "", "", e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "resource type %q is not <entity>--<bundle>", string(t))
	}
	return entity, bundle, nil
}

// Entity returns the entity type, or "" when t is malformed.
func (t ResourceType) Entity() string {
	entity, _, _ := t.Split()
	return entity
}

// Bundle returns the bundle, or "" when t is malformed.
func (t ResourceType) Bundle() string {
	_, bundle, _ := t.Split()
	return bundle
}

// Identifier points at another resource.
type Identifier struct {
	Type ResourceType `json:"type"`
	ID   string       `json:"id"`
}

// Relationship holds the identifiers of a relationship field. To-one and
// to-many relationships both decode into Data.
type Relationship struct {
	Data []Identifier
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Relationship) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	return unmarshalOneOrMany(raw.Data, &r.Data)
}

// Resource is one element of a response's data member.
type Resource struct {
	Type          ResourceType            `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships"`
}

// Decode copies the attributes into v, a pointer to a struct whose fields are
// matched by their json tags. Unknown attributes are ignored.
func (r Resource) Decode(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           v,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return e2eerrors.Wrapf(e2eerrors.ErrJSONAPI, "decoder for %s %s: %v", r.Type, r.ID, err)
	}
	if err := dec.Decode(r.Attributes); err != nil {
		return e2eerrors.Wrapf(e2eerrors.ErrJSONAPI, "decode %s %s: %v", r.Type, r.ID, err)
	}
	return nil
}

// Related returns the identifiers of relationship name.
func (r Resource) Related(name string) []Identifier {
	return r.Relationships[name].Data
}

// Document is a response body. Data holds one element for a single-resource
// response and none for a null one.
type Document struct {
	Data []Resource
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, ok := raw["data"]
	if !ok {
		return e2eerrors.Wrap(e2eerrors.ErrJSONAPI, "response has no data member")
	}
	return unmarshalOneOrMany(data, &d.Data)
}

// unmarshalOneOrMany decodes a JSON array, object or null into out.
func unmarshalOneOrMany[T any](b json.RawMessage, out *[]T) error {
	trimmed := bytes.TrimSpace(b)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*out = nil
		return nil
	case trimmed[0] == '[':
		return json.Unmarshal(trimmed, out)
	case trimmed[0] == '{':
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*out = []T{one}
		return nil
	default:
		return fmt.Errorf("%w: data is neither an object nor an array", e2eerrors.ErrJSONAPI)
	}
}
