package launchsdk

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

type statusText struct {
	Name        *string
	Description *string
}

// lookupCache memoizes secondary lookups. Entries are copied on the way in and out
// so that every parse still produces its own object graph.
type lookupCache struct {
	statuses *lru.Cache[int, statusText]
	lsps     *lru.Cache[string, LSP]
}

func newLookupCache(size int) (*lookupCache, error) {
	statuses, err := lru.New[int, statusText](size)
	if err != nil {
		return nil, fmt.Errorf("status cache: %w", err)
	}
	lsps, err := lru.New[string, LSP](size)
	if err != nil {
		return nil, fmt.Errorf("lsp cache: %w", err)
	}
	return &lookupCache{statuses: statuses, lsps: lsps}, nil
}

func (c *lookupCache) status(code int) (statusText, bool) {
	if c == nil {
		return statusText{}, false
	}
	st, ok := c.statuses.Get(code)
	if !ok {
		return statusText{}, false
	}
	return statusText{Name: cloneString(st.Name), Description: cloneString(st.Description)}, true
}

func (c *lookupCache) putStatus(code int, st statusText) {
	if c == nil {
		return
	}
	c.statuses.Add(code, statusText{Name: cloneString(st.Name), Description: cloneString(st.Description)})
}

func (c *lookupCache) lsp(ref string) (LSP, bool) {
	if c == nil {
		return LSP{}, false
	}
	l, ok := c.lsps.Get(ref)
	if !ok {
		return LSP{}, false
	}
	return LSP(cloneAgency(Agency(l))), true
}

func (c *lookupCache) putLSP(ref string, l LSP) {
	if c == nil {
		return
	}
	c.lsps.Add(ref, LSP(cloneAgency(Agency(l))))
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

func cloneAgency(a Agency) Agency {
	return Agency{
		ID:           cloneInt(a.ID),
		Name:         cloneString(a.Name),
		Abbreviation: cloneString(a.Abbreviation),
		CountryCode:  cloneString(a.CountryCode),
		WikiURL:      cloneString(a.WikiURL),
	}
}
