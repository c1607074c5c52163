package league

import (
	"fmt"
	"strings"
)

// League is a competition identified by its upstream code, e.g. GB1.
type League struct {
	ID      string
	Name    string
	Country string
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	return nil
}
