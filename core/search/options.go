package search

import (
	"strings"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
)

// Scope restricts a query to one partition of the corpus.
type Scope string

// Scopes.
const (
	ScopeAll            Scope = "all"
	ScopeCanon          Scope = Scope(books.GroupCanon)
	ScopeApocrypha      Scope = Scope(books.GroupApocrypha)
	ScopePseudepigrapha Scope = Scope(books.GroupPseudepigrapha)
)

// DefaultLimit is the page size used when Options.Limit is zero.
const DefaultLimit = 50

// ErrInvalidScope is returned (wrapped in a ValidationError) for an unknown scope.
var ErrInvalidScope = errors.Wrap(errors.ErrInvalidInput, "invalid scope")

// Scopes lists the accepted scope values.
var Scopes = []Scope{ScopeAll, ScopeCanon, ScopeApocrypha, ScopePseudepigrapha}

// IsValid returns true for the four known scopes and for the empty scope,
// which means ScopeAll.
func (s Scope) IsValid() bool {
	switch s {
	case "", ScopeAll, ScopeCanon, ScopeApocrypha, ScopePseudepigrapha:
		return true
	}
	return false
}

// ParseScope parses a scope case-insensitively. Blank input yields ScopeAll.
func ParseScope(s string) (Scope, error) {
	scope := Scope(strings.ToLower(strings.TrimSpace(s)))
	if scope == "" {
		return ScopeAll, nil
	}
	if !scope.IsValid() {
		return "", invalidScope(s)
	}
	return scope, nil
}

func invalidScope(value string) error {
	return &errors.ValidationError{
		Field:   "scope",
		Value:   value,
		Message: "must be one of all, canon, apocrypha, pseudepigrapha",
		Err:     ErrInvalidScope,
	}
}

// Options controls a single query.
type Options struct {
	// Scope limits matches to a book group. Zero value means ScopeAll.
	Scope Scope `json:"scope,omitempty"`

	// Book limits matches to one book, given by id, name or alias.
	Book string `json:"book,omitempty"`

	// Limit is the page size. Zero means DefaultLimit.
	Limit int `json:"limit,omitempty"`

	// Offset is the number of ranked results to skip.
	Offset int `json:"offset,omitempty"`
}

// Validate reports unknown scopes and negative paging values.
func (o Options) Validate() error {
	if !o.Scope.IsValid() {
		return invalidScope(string(o.Scope))
	}
	if o.Limit < 0 {
		return errors.NewValidation("limit", "must not be negative")
	}
	if o.Offset < 0 {
		return errors.NewValidation("offset", "must not be negative")
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Scope == "" {
		o.Scope = ScopeAll
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	o.Book = strings.TrimSpace(o.Book)
	return o
}
