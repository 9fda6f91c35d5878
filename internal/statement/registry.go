package statement

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jask/finvault/internal/database/repository"
)

// UnknownAccountError names an account no registered format files rows
// under.
type UnknownAccountError struct {
	Account repository.AccountKey
	Known   []repository.AccountKey
}

func (e *UnknownAccountError) Error() string {
	known := make([]string, len(e.Known))
	for i, k := range e.Known {
		known[i] = string(k)
	}
	return fmt.Sprintf("unknown account %q (known: %s)", e.Account, strings.Join(known, ", "))
}

// Registry holds the known formats in registration order. Detection picks the
// first parser whose header marker is present, so adding a format never
// changes how existing ones are selected.
type Registry struct {
	parsers []Parser
}

// NewRegistry registers parsers in order.
func NewRegistry(parsers ...Parser) (*Registry, error) {
	r := &Registry{}
	for _, p := range parsers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns a registry with the built-in formats.
func Default() *Registry {
	return &Registry{parsers: []Parser{NewInter(), NewMercadoPago()}}
}

// Register appends p. Names and tags must be unique.
func (r *Registry) Register(p Parser) error {
	for _, existing := range r.parsers {
		if existing.Name() == p.Name() {
			return fmt.Errorf("statement: format %q already registered", p.Name())
		}
		if existing.Tag() == p.Tag() {
			return fmt.Errorf("statement: tag %q already used by %q", p.Tag(), existing.Name())
		}
	}
	r.parsers = append(r.parsers, p)
	return nil
}

// Detect returns the parser for raw or ErrFormatUnrecognized.
func (r *Registry) Detect(raw []byte) (Parser, error) {
	for _, p := range r.parsers {
		if p.Detect(raw) {
			return p, nil
		}
	}
	return nil, ErrFormatUnrecognized
}

// Parsers lists registered parsers in detection order.
func (r *Registry) Parsers() []Parser {
	out := make([]Parser, len(r.parsers))
	copy(out, r.parsers)
	return out
}

// Accounts returns the built-in account keys plus the default account of
// every registered format, sorted.
func (r *Registry) Accounts() []repository.AccountKey {
	out := slices.Clone(repository.Accounts)
	for _, p := range r.parsers {
		if !slices.Contains(out, p.Account()) {
			out = append(out, p.Account())
		}
	}
	slices.Sort(out)
	return out
}

// CheckAccount returns an *UnknownAccountError unless account is one of
// Accounts.
func (r *Registry) CheckAccount(account repository.AccountKey) error {
	known := r.Accounts()
	if slices.Contains(known, account) {
		return nil
	}
	return &UnknownAccountError{Account: account, Known: known}
}
