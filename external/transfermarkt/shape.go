package transfermarkt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	sonic "github.com/bytedance/sonic"
)

type PayloadKind int

const (
	PayloadUnrecognized PayloadKind = iota
	PayloadList
	PayloadMapping
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadList:
		return "list"
	case PayloadMapping:
		return "mapping"
	default:
		return "unrecognized"
	}
}

// Payload is a decoded upstream body. Mapping keys keep document order.
type Payload struct {
	Kind   PayloadKind
	List   []any
	Keys   []string
	Fields map[string]any
	Scalar any
}

type EntityKind string

const (
	EntityClubs   EntityKind = "clubs"
	EntityPlayers EntityKind = "players"
)

const (
	SourceRoot = "root"
	SourceNone = "none"
)

var clubKeys = []string{"clubs", "teams", "results"}

// Resolution is the entity list located inside a Payload. Found=false means
// no list-shaped value was found, which is different from an empty list.
type Resolution struct {
	Entities []any
	Found    bool
	Source   string
}

// DecodePayload parses raw JSON into a Payload. Numbers decode as float64.
func DecodePayload(raw []byte) (Payload, error) {
	var value any
	if err := sonic.Unmarshal(raw, &value); err != nil {
		return Payload{}, fmt.Errorf("%w: decode payload: %w", ErrDecode, err)
	}

	switch typed := value.(type) {
	case []any:
		return Payload{Kind: PayloadList, List: typed}, nil
	case map[string]any:
		keys, err := objectKeys(raw)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: scan payload keys: %w", ErrDecode, err)
		}
		return Payload{Kind: PayloadMapping, Keys: keys, Fields: typed}, nil
	default:
		return Payload{Kind: PayloadUnrecognized, Scalar: typed}, nil
	}
}

// Resolve locates the entity list for kind.
//
// Clubs look at "clubs", "teams" and "results" in that order and take the
// first one holding a list, else a root list. Players prefer "players", then
// a root list, then the first key in document order holding a list.
func Resolve(p Payload, kind EntityKind) Resolution {
	switch kind {
	case EntityClubs:
		if p.Kind == PayloadMapping {
			for _, key := range clubKeys {
				if list, ok := p.Fields[key].([]any); ok {
					return Resolution{Entities: list, Found: true, Source: key}
				}
			}
		}
		if p.Kind == PayloadList {
			return Resolution{Entities: p.List, Found: true, Source: SourceRoot}
		}
	case EntityPlayers:
		if p.Kind == PayloadMapping {
			if list, ok := p.Fields["players"].([]any); ok {
				return Resolution{Entities: list, Found: true, Source: "players"}
			}
		}
		if p.Kind == PayloadList {
			return Resolution{Entities: p.List, Found: true, Source: SourceRoot}
		}
		if p.Kind == PayloadMapping {
			for _, key := range p.Keys {
				if key == "players" {
					continue
				}
				if list, ok := p.Fields[key].([]any); ok {
					return Resolution{Entities: list, Found: true, Source: key}
				}
			}
		}
	}
	return Resolution{Source: SourceNone}
}

// ResolveBody decodes raw and resolves kind in one step.
func ResolveBody(raw []byte, kind EntityKind) (Resolution, error) {
	payload, err := DecodePayload(raw)
	if err != nil {
		return Resolution{Source: SourceNone}, err
	}
	return Resolve(payload, kind), nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
// Duplicate keys are reported once, at their first position.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
		if depth == 0 {
			return nil
		}
	}
}
