package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	apperrors "learn-graph/backend/pkg/errors"
)

// Filter is an equality-only predicate: every entry must match the node or
// relationship property of the same name. Values are always bound as
// parameters, never interpolated into query text.
type Filter map[string]interface{}

// Direction of a relationship relative to the origin node
type Direction string

const (
	DirectionOut Direction = "OUT"
	DirectionIn  Direction = "IN"
)

// SortDirection for ordered traversals
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// SortEntity names which side of a traversal a sort field belongs to
type SortEntity string

const (
	SortEntityOrigin       SortEntity = "originNode"
	SortEntityRelationship SortEntity = "relationship"
	SortEntityDestination  SortEntity = "destinationNode"
)

// Sorting orders traversal results by a named field on either endpoint or the
// relationship itself
type Sorting struct {
	Entity    SortEntity
	Field     string
	Direction SortDirection
}

// Pagination bounds a result set. A nil field means "no bound".
type Pagination struct {
	Offset *int
	Limit  *int
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateIdentifier guards the only strings that reach query text: labels,
// relationship types and field names, all fixed at build time.
func validateIdentifier(kind, name string) error {
	if !identifierPattern.MatchString(name) {
		return apperrors.NewConfiguration(fmt.Sprintf("invalid %s %q", kind, name))
	}
	return nil
}

func validateFilterValue(field string, value interface{}) error {
	switch value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	default:
		return apperrors.NewConfiguration(fmt.Sprintf("unsupported filter value type %T for field %q", value, field))
	}
}

// filterFragment renders an equality filter as a Cypher property map fragment
// referencing a single bound parameter, e.g. `{key: $topicFilter.key}`. An
// empty filter renders as "" (always true). Keys are emitted in sorted order
// so rendered text is deterministic.
func filterFragment(paramName string, filter Filter) (string, map[string]interface{}, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	if err := validateIdentifier("parameter name", paramName); err != nil {
		return "", nil, err
	}

	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	values := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		if err := validateIdentifier("filter field", field); err != nil {
			return "", nil, err
		}
		if err := validateFilterValue(field, filter[field]); err != nil {
			return "", nil, err
		}
		parts = append(parts, fmt.Sprintf("%s: $%s.%s", field, paramName, field))
		values[field] = filter[field]
	}

	fragment := " {" + strings.Join(parts, ", ") + "}"
	return fragment, map[string]interface{}{paramName: values}, nil
}

// paginationFragment renders SKIP/LIMIT clauses with bound parameters. Absent
// fields emit nothing.
func paginationFragment(p *Pagination) (string, map[string]interface{}, error) {
	if p == nil {
		return "", nil, nil
	}
	var fragment strings.Builder
	params := map[string]interface{}{}
	if p.Offset != nil {
		if *p.Offset < 0 {
			return "", nil, apperrors.NewConfiguration(fmt.Sprintf("pagination offset must not be negative, got %d", *p.Offset))
		}
		fragment.WriteString(" SKIP $skip")
		params["skip"] = *p.Offset
	}
	if p.Limit != nil {
		if *p.Limit <= 0 {
			return "", nil, apperrors.NewConfiguration(fmt.Sprintf("pagination limit must be positive, got %d", *p.Limit))
		}
		fragment.WriteString(" LIMIT $limit")
		params["limit"] = *p.Limit
	}
	return fragment.String(), params, nil
}

// sortingFragment renders an ORDER BY clause over one of the traversal aliases
func sortingFragment(s *Sorting) (string, error) {
	if s == nil {
		return "", nil
	}
	switch s.Entity {
	case SortEntityOrigin, SortEntityRelationship, SortEntityDestination:
	default:
		return "", apperrors.NewConfiguration(fmt.Sprintf("unknown sorting entity %q", s.Entity))
	}
	if err := validateIdentifier("sorting field", s.Field); err != nil {
		return "", err
	}
	direction := s.Direction
	if direction == "" {
		direction = SortAscending
	}
	if direction != SortAscending && direction != SortDescending {
		return "", apperrors.NewConfiguration(fmt.Sprintf("unknown sorting direction %q", direction))
	}
	return fmt.Sprintf(" ORDER BY %s.%s %s", s.Entity, s.Field, direction), nil
}

// mergeParams folds parameter maps together; keys are disjoint by construction
func mergeParams(maps ...map[string]interface{}) map[string]interface{} {
	merged := map[string]interface{}{}
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
