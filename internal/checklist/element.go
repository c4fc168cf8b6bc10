// Package checklist defines the recursive checklist template schema and the
// pure response validator that drives inspection completion state.
package checklist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// InputType is the kind of value a checklist item records
type InputType string

const (
	InputBoolean InputType = "boolean"
	InputNumber  InputType = "number"
	InputText    InputType = "text"
	InputSelect  InputType = "select"
)

// RuleType is the kind of a validation rule attached to an item
type RuleType string

const (
	RuleRequired RuleType = "required"
	RuleMin      RuleType = "min"
	RuleMax      RuleType = "max"
	RuleRegex    RuleType = "regex"
)

// Rule is a validation rule attached to a checklist item
type Rule struct {
	Type    RuleType    `json:"type"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Element is a node of the checklist tree: a Section, a Group, or an Item.
// Only Item nodes hold responses; containers aggregate their descendants.
type Element interface {
	ElementID() string
	ElementOrder() int
	isElement()
}

// Section is a top-level container. Its children are groups or items.
type Section struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	Required    bool      `json:"required"`
	Elements    []Element `json:"elements"`
}

// Group is a nested container of items (or further sections)
type Group struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	Required    bool      `json:"required"`
	Elements    []Element `json:"elements"`
}

// Item is a leaf node that records a single response
type Item struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Order        int         `json:"order"`
	Required     bool        `json:"required"`
	InputType    InputType   `json:"inputType"`
	Critical     bool        `json:"critical,omitempty"`
	Options      []string    `json:"options,omitempty"`
	DefaultValue interface{} `json:"defaultValue,omitempty"`
	Validation   []Rule      `json:"validation,omitempty"`
}

func (s *Section) ElementID() string { return s.ID }
func (s *Section) ElementOrder() int { return s.Order }
func (s *Section) isElement()        {}
func (g *Group) ElementID() string   { return g.ID }
func (g *Group) ElementOrder() int   { return g.Order }
func (g *Group) isElement()          {}
func (i *Item) ElementID() string    { return i.ID }
func (i *Item) ElementOrder() int    { return i.Order }
func (i *Item) isElement()           {}

// Response is one recorded answer for an item
type Response struct {
	Value     interface{} `json:"value"`
	Timestamp time.Time   `json:"timestamp"`
	Inspector string      `json:"inspector"`
	Notes     string      `json:"notes,omitempty"`
}

// UnmarshalJSON accepts either the full response object or a bare value,
// which clients send for quick single-item updates.
func (r *Response) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		type plain Response
		var full plain
		if err := json.Unmarshal(trimmed, &full); err != nil {
			return err
		}
		*r = Response(full)
		return nil
	}
	var value interface{}
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*r = Response{Value: value}
	return nil
}

// Responses maps item id to the recorded response
type Responses map[string]Response

// Children returns the child elements of a container, or nil for items
func Children(e Element) []Element {
	switch n := e.(type) {
	case *Section:
		return n.Elements
	case *Group:
		return n.Elements
	default:
		return nil
	}
}

// elementJSON is the wire shape shared by all node types. The "type" field
// discriminates which concrete node to decode.
type elementJSON struct {
	Type         string            `json:"type"`
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Order        int               `json:"order"`
	Required     bool              `json:"required"`
	InputType    InputType         `json:"inputType,omitempty"`
	Critical     bool              `json:"critical,omitempty"`
	Options      []string          `json:"options,omitempty"`
	DefaultValue interface{}       `json:"defaultValue,omitempty"`
	Validation   []Rule            `json:"validation,omitempty"`
	Elements     []json.RawMessage `json:"elements,omitempty"`
}

// MarshalJSON emits the section with its type discriminator
func (s *Section) MarshalJSON() ([]byte, error) {
	return marshalContainer("section", s.ID, s.Title, s.Description, s.Order, s.Required, s.Elements)
}

// MarshalJSON emits the group with its type discriminator
func (g *Group) MarshalJSON() ([]byte, error) {
	return marshalContainer("group", g.ID, g.Title, g.Description, g.Order, g.Required, g.Elements)
}

// MarshalJSON emits the item with its type discriminator
func (i *Item) MarshalJSON() ([]byte, error) {
	type alias Item
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "item", alias: (*alias)(i)})
}

func marshalContainer(typ, id, title, desc string, order int, required bool, elements []Element) ([]byte, error) {
	children := make([]json.RawMessage, 0, len(elements))
	for _, e := range elements {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		children = append(children, raw)
	}
	return json.Marshal(elementJSON{
		Type:        typ,
		ID:          id,
		Title:       title,
		Description: desc,
		Order:       order,
		Required:    required,
		Elements:    children,
	})
}

// UnmarshalElement decodes a single element by its type discriminator
func UnmarshalElement(data []byte) (Element, error) {
	var raw elementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Type {
	case "item":
		return &Item{
			ID:           raw.ID,
			Title:        raw.Title,
			Description:  raw.Description,
			Order:        raw.Order,
			Required:     raw.Required,
			InputType:    raw.InputType,
			Critical:     raw.Critical,
			Options:      raw.Options,
			DefaultValue: raw.DefaultValue,
			Validation:   raw.Validation,
		}, nil
	case "section":
		children, err := unmarshalChildren(raw.Elements)
		if err != nil {
			return nil, err
		}
		return &Section{
			ID:          raw.ID,
			Title:       raw.Title,
			Description: raw.Description,
			Order:       raw.Order,
			Required:    raw.Required,
			Elements:    children,
		}, nil
	case "group":
		children, err := unmarshalChildren(raw.Elements)
		if err != nil {
			return nil, err
		}
		return &Group{
			ID:          raw.ID,
			Title:       raw.Title,
			Description: raw.Description,
			Order:       raw.Order,
			Required:    raw.Required,
			Elements:    children,
		}, nil
	default:
		return nil, fmt.Errorf("checklist: unknown element type %q", raw.Type)
	}
}

func unmarshalChildren(raws []json.RawMessage) ([]Element, error) {
	children := make([]Element, 0, len(raws))
	for _, r := range raws {
		child, err := UnmarshalElement(r)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// UnmarshalJSON decodes a section, rejecting non-section roots
func (s *Section) UnmarshalJSON(data []byte) error {
	el, err := UnmarshalElement(data)
	if err != nil {
		return err
	}
	sec, ok := el.(*Section)
	if !ok {
		return fmt.Errorf("checklist: expected section, got %T", el)
	}
	*s = *sec
	return nil
}

// MarshalElements serializes a template's top-level sections
func MarshalElements(sections []*Section) ([]byte, error) {
	return json.Marshal(sections)
}

// UnmarshalElements deserializes a template's top-level sections
func UnmarshalElements(data []byte) ([]*Section, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var sections []*Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}
