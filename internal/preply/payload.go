package preply

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"preplycal/internal/model"
)

// ErrEmptyQuery is returned when the payload document has no query text.
var ErrEmptyQuery = errors.New("preply: payload has empty query")

// Payload is the GraphQL request body sent for every window.
type Payload struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

// LoadPayload reads the base query document from path.
func LoadPayload(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preply: read payload: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("preply: parse payload %s: %w", path, err)
	}
	if strings.TrimSpace(p.Query) == "" {
		return nil, ErrEmptyQuery
	}
	if p.Variables == nil {
		p.Variables = map[string]any{}
	}
	return &p, nil
}

// ForWindow returns a copy of p with dateStart/dateEnd set to w's bounds.
// p itself is left untouched.
func (p *Payload) ForWindow(w model.Window) *Payload {
	vars := make(map[string]any, len(p.Variables)+2)
	maps.Copy(vars, p.Variables)
	vars["dateStart"] = w.StartDate()
	vars["dateEnd"] = w.EndDate()

	return &Payload{
		OperationName: p.OperationName,
		Query:         p.Query,
		Variables:     vars,
	}
}
