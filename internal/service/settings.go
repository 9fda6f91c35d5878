package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/jask/finvault/internal/database/repository"
)

// DefaultRulePriority is used when a rule is created without a priority.
const DefaultRulePriority = 100

var (
	ErrCategoryInUse = errors.New("category is used by a rule")
	ErrRuleNotFound  = errors.New("rule not found")
)

// UnknownCategoryError names a category id that does not exist, with the
// closest existing id when one is near enough.
type UnknownCategoryError struct {
	ID         string
	Suggestion string
}

func (e *UnknownCategoryError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown category %q (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown category %q", e.ID)
}

// SettingsService manages categories and rules.
type SettingsService struct {
	Categories *repository.CategoryRepo
	Rules      *repository.RuleRepo
	Log        *zerolog.Logger
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Slugify derives a category id from its display name: accents are removed,
// runs of anything but a-z and 0-9 become one underscore, and leading or
// trailing underscores are trimmed. "Saúde & Bem-estar" becomes
// "saude_bem_estar".
func Slugify(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks), strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(name))
	}
	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// AddCategory creates a category whose id is the slug of name.
func (s *SettingsService) AddCategory(ctx context.Context, name string, kind repository.Direction) (repository.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Category{}, fmt.Errorf("category name is required")
	}
	if !kind.Valid() {
		return repository.Category{}, fmt.Errorf("category kind must be %q or %q, got %q",
			repository.DirectionIncome, repository.DirectionExpense, kind)
	}
	id := Slugify(name)
	if id == "" {
		return repository.Category{}, fmt.Errorf("cannot derive an id from %q", name)
	}
	c := repository.Category{ID: id, Name: name, Kind: kind}
	if err := s.Categories.Add(ctx, c); err != nil {
		if repository.IsDuplicateKey(err) {
			return repository.Category{}, fmt.Errorf("category %q already exists: %w", id, err)
		}
		return repository.Category{}, err
	}
	loggerOr(s.Log).Info().Str("id", id).Msg("category added")
	return c, nil
}

// ListCategories returns categories ordered by kind then name.
func (s *SettingsService) ListCategories(ctx context.Context) ([]repository.Category, error) {
	return s.Categories.List(ctx)
}

// DeleteCategory removes a category no rule refers to. Transactions that
// used it become uncategorized.
func (s *SettingsService) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.Rules.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %q has %d rule(s)", ErrCategoryInUse, id, n)
	}
	ok, err := s.Categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return unknownCategory(ctx, s.Categories, id)
	}
	loggerOr(s.Log).Info().Str("id", id).Msg("category deleted")
	return nil
}

// AddRule creates an enabled or disabled rule with a generated id.
func (s *SettingsService) AddRule(ctx context.Context, pattern, categoryID string, priority int, enabled bool) (repository.Rule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return repository.Rule{}, fmt.Errorf("rule pattern is required")
	}
	if err := requireCategory(ctx, s.Categories, categoryID); err != nil {
		return repository.Rule{}, err
	}
	r := repository.Rule{
		ID:         uuid.NewString(),
		Pattern:    pattern,
		CategoryID: categoryID,
		Priority:   priority,
		Enabled:    enabled,
	}
	seq, err := s.Rules.Add(ctx, r)
	if err != nil {
		return repository.Rule{}, err
	}
	r.Seq = seq
	loggerOr(s.Log).Info().Str("id", r.ID).Str("category", categoryID).Int("priority", priority).Msg("rule added")
	return r, nil
}

// ListRules returns rules by priority descending, ties in insertion order.
func (s *SettingsService) ListRules(ctx context.Context) ([]repository.Rule, error) {
	list, err := s.Rules.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Priority > list[j].Priority })
	return list, nil
}

func (s *SettingsService) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	ok, err := s.Rules.SetEnabled(ctx, id, enabled)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	return nil
}

func (s *SettingsService) DeleteRule(ctx context.Context, id string) error {
	ok, err := s.Rules.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	return nil
}

type ruleDoc struct {
	ID       string `yaml:"id,omitempty"`
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
	Priority *int   `yaml:"priority,omitempty"`
	Enabled  *bool  `yaml:"enabled,omitempty"`
}

type rulesDoc struct {
	Rules []ruleDoc `yaml:"rules"`
}

// ExportRules writes every rule as YAML in evaluation order.
func (s *SettingsService) ExportRules(ctx context.Context, w io.Writer) error {
	list, err := s.ListRules(ctx)
	if err != nil {
		return err
	}
	doc := rulesDoc{Rules: make([]ruleDoc, 0, len(list))}
	for _, r := range list {
		priority, enabled := r.Priority, r.Enabled
		doc.Rules = append(doc.Rules, ruleDoc{
			ID:       r.ID,
			Pattern:  r.Pattern,
			Category: r.CategoryID,
			Priority: &priority,
			Enabled:  &enabled,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return enc.Close()
}

// RulesImport reports what ImportRules did.
type RulesImport struct {
	Added   int
	Skipped int
}

// ImportRules reads rules written by ExportRules. Every entry is validated
// before any is stored. Rules whose id already exists are skipped; entries
// without an id get a new one. Missing priority defaults to
// DefaultRulePriority and missing enabled to true.
func (s *SettingsService) ImportRules(ctx context.Context, r io.Reader) (RulesImport, error) {
	var doc rulesDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return RulesImport{}, fmt.Errorf("decode rules: %w", err)
	}

	pending := make([]repository.Rule, 0, len(doc.Rules))
	for i, d := range doc.Rules {
		pattern := strings.TrimSpace(d.Pattern)
		if pattern == "" {
			return RulesImport{}, fmt.Errorf("rules[%d]: pattern is required", i)
		}
		if err := requireCategory(ctx, s.Categories, d.Category); err != nil {
			return RulesImport{}, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rule := repository.Rule{ID: d.ID, Pattern: pattern, CategoryID: d.Category, Priority: DefaultRulePriority, Enabled: true}
		if rule.ID == "" {
			rule.ID = uuid.NewString()
		}
		if d.Priority != nil {
			rule.Priority = *d.Priority
		}
		if d.Enabled != nil {
			rule.Enabled = *d.Enabled
		}
		pending = append(pending, rule)
	}

	var res RulesImport
	for _, rule := range pending {
		existing, err := s.Rules.Get(ctx, rule.ID)
		if err != nil {
			return res, err
		}
		if existing != nil {
			res.Skipped++
			continue
		}
		if _, err := s.Rules.Add(ctx, rule); err != nil {
			if repository.IsDuplicateKey(err) {
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Added++
	}
	loggerOr(s.Log).Info().Int("added", res.Added).Int("skipped", res.Skipped).Msg("rules imported")
	return res, nil
}

// requireCategory returns *UnknownCategoryError when id does not exist.
func requireCategory(ctx context.Context, repo *repository.CategoryRepo, id string) error {
	c, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return unknownCategory(ctx, repo, id)
	}
	return nil
}

func unknownCategory(ctx context.Context, repo *repository.CategoryRepo, id string) error {
	e := &UnknownCategoryError{ID: id}
	cats, err := repo.List(ctx)
	if err != nil {
		return e
	}
	best := -1
	for _, c := range cats {
		d := levenshtein.ComputeDistance(strings.ToLower(id), c.ID)
		if d <= suggestionDistance(c.ID) && (best < 0 || d < best) {
			best = d
			e.Suggestion = c.ID
		}
	}
	return e
}

func suggestionDistance(s string) int {
	if n := len(s) / 3; n > 2 {
		return n
	}
	return 2
}
