package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	apperrors "learn-graph/backend/pkg/errors"
	"learn-graph/backend/pkg/logger"
)

// Repository exposes label- and relationship-type-parameterized primitives so
// concrete entity repositories are built by supplying labels, types and
// filters instead of writing new traversal code. Operations are package-level
// generic functions because methods cannot carry type parameters.
type Repository struct {
	store  *Store
	logger *zap.Logger
}

// NewRepository creates a generic relationship repository over a store
func NewRepository(store *Store) *Repository {
	return &Repository{
		store:  store,
		logger: logger.Get(),
	}
}

// Store exposes the underlying store for bespoke multi-clause queries the
// generic primitives cannot express.
func (r *Repository) Store() *Store {
	return r.store
}

// NodeMatch selects existing nodes by label and equality filter
type NodeMatch struct {
	Label  string
	Filter Filter
}

// NewNode describes a node to create. A node may carry several labels to model
// polymorphic membership (e.g. Resource + LearningMaterial).
type NewNode struct {
	Labels []string
	Props  map[string]interface{}
}

// RelCreate describes a relationship created alongside a new node
type RelCreate struct {
	Label string
	Props map[string]interface{}
}

// RelMatch selects relationships by type, direction and equality filter
type RelMatch struct {
	Label     string
	Direction Direction
	Filter    Filter
}

// RelMerge describes a merge-or-create relationship. OnCreateProps apply only
// when the relationship is first created, OnMergeProps only when it already
// existed; both are optional.
type RelMerge struct {
	Label         string
	OnCreateProps map[string]interface{}
	OnMergeProps  map[string]interface{}
}

// RelatedEntities is one traversal row: both endpoints plus the relationship
// properties, which callers usually need together.
type RelatedEntities[O, R, D any] struct {
	Origin       O
	Relationship R
	Destination  D
}

// DetachedEntities is the result of a detach: both endpoints as found
type DetachedEntities[O, D any] struct {
	Origin      O
	Destination D
}

// CreateRelatedNodeRequest creates a destination node and a relationship from
// an existing origin node in one atomic write.
type CreateRelatedNodeRequest struct {
	Origin       NodeMatch
	Relationship RelCreate
	NewNode      NewNode
}

// RelatedNodesRequest is the shared request shape of the one-hop traversals
type RelatedNodesRequest struct {
	Origin       NodeMatch
	Relationship RelMatch
	Destination  NodeMatch
	Sorting      *Sorting
	Pagination   *Pagination
}

// AttachRequest merge-creates a unique relationship between two matched nodes
type AttachRequest struct {
	Origin       NodeMatch
	Relationship RelMerge
	Destination  NodeMatch
}

// DetachRequest removes the relationship, if present, between two matched nodes
type DetachRequest struct {
	Origin       NodeMatch
	Relationship RelMatch
	Destination  NodeMatch
}

// decodeProps maps a property map returned by the store into a typed record
func decodeProps[T any](row interface{}) (*T, error) {
	props, ok := row.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("expected property map, got %T", row))
	}
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("building decoder: %v", err))
	}
	if err := decoder.Decode(props); err != nil {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("decoding properties: %v", err))
	}
	return &out, nil
}

func orDefault(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return map[string]interface{}{}
	}
	return props
}

// buildCreateRelatedNodeQuery renders the compound create statement
func buildCreateRelatedNodeQuery(req CreateRelatedNodeRequest) (string, map[string]interface{}, error) {
	if err := validateIdentifier("label", req.Origin.Label); err != nil {
		return "", nil, err
	}
	if err := validateIdentifier("relationship type", req.Relationship.Label); err != nil {
		return "", nil, err
	}
	if len(req.NewNode.Labels) == 0 {
		return "", nil, apperrors.NewConfiguration("new node requires at least one label")
	}
	for _, label := range req.NewNode.Labels {
		if err := validateIdentifier("label", label); err != nil {
			return "", nil, err
		}
	}
	originFragment, originParams, err := filterFragment("originNodeFilter", req.Origin.Filter)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(
		"MATCH (originNode:%s%s) CREATE (originNode)-[relationship:%s $relationshipProps]->(node:%s $nodeProps) RETURN properties(node) AS node",
		req.Origin.Label, originFragment,
		req.Relationship.Label,
		strings.Join(req.NewNode.Labels, ":"),
	)
	params := mergeParams(originParams, map[string]interface{}{
		"relationshipProps": orDefault(req.Relationship.Props),
		"nodeProps":         orDefault(req.NewNode.Props),
	})
	return query, params, nil
}

// CreateRelatedNode creates a new node plus its origin relationship in one
// statement and returns the new node. Fails with NotFoundError when the origin
// filter matches nothing, in which case nothing is written.
func CreateRelatedNode[N any](ctx context.Context, r *Repository, req CreateRelatedNodeRequest) (*N, error) {
	query, params, err := buildCreateRelatedNodeQuery(req)
	if err != nil {
		return nil, err
	}
	rows, err := r.store.Write(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound(req.Origin.Label, req.Origin.Filter)
	}
	return decodeProps[N](rows[0]["node"])
}

// FindOne returns the single node matching the filter, or nil when nothing
// matches. Filters passed here must be unique-by-construction; more than one
// match surfaces as AmbiguousResultError instead of silently picking one.
func FindOne[N any](ctx context.Context, r *Repository, label string, filter Filter) (*N, error) {
	if err := validateIdentifier("label", label); err != nil {
		return nil, err
	}
	fragment, params, err := filterFragment("nodeFilter", filter)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("MATCH (node:%s%s) RETURN properties(node) AS node LIMIT 2", label, fragment)
	rows, err := r.store.Read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		return nil, apperrors.NewAmbiguousResult(label, filter)
	}
	return decodeProps[N](rows[0]["node"])
}

// UpdateOne merges the supplied properties into the matching node and stamps
// updatedAt. Returns nil when nothing matched; never creates.
func UpdateOne[N any](ctx context.Context, r *Repository, label string, filter Filter, props map[string]interface{}, updatedAt int64) (*N, error) {
	if err := validateIdentifier("label", label); err != nil {
		return nil, err
	}
	fragment, params, err := filterFragment("nodeFilter", filter)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		"MATCH (node:%s%s) SET node += $props, node.updatedAt = $updatedAt RETURN properties(node) AS node",
		label, fragment,
	)
	params = mergeParams(params, map[string]interface{}{
		"props":     orDefault(props),
		"updatedAt": updatedAt,
	})
	rows, err := r.store.Write(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decodeProps[N](rows[0]["node"])
}

// DeleteOne deletes the matching node(s) along with incident relationships and
// returns the deleted count. Zero matches is not an error.
func DeleteOne(ctx context.Context, r *Repository, label string, filter Filter) (int64, error) {
	if err := validateIdentifier("label", label); err != nil {
		return 0, err
	}
	fragment, params, err := filterFragment("nodeFilter", filter)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("MATCH (node:%s%s) DETACH DELETE node RETURN count(node) AS deletedCount", label, fragment)
	rows, err := r.store.Write(ctx, query, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	count, _ := rows[0]["deletedCount"].(int64)
	return count, nil
}

// buildAttachQuery renders the merge-or-create statement. Attach is keyed by
// (type, ordered endpoint pair): a second call with the same triple follows
// the merge path instead of duplicating the edge.
func buildAttachQuery(req AttachRequest) (string, map[string]interface{}, error) {
	for _, label := range []string{req.Origin.Label, req.Destination.Label} {
		if err := validateIdentifier("label", label); err != nil {
			return "", nil, err
		}
	}
	if err := validateIdentifier("relationship type", req.Relationship.Label); err != nil {
		return "", nil, err
	}
	originFragment, originParams, err := filterFragment("originNodeFilter", req.Origin.Filter)
	if err != nil {
		return "", nil, err
	}
	destinationFragment, destinationParams, err := filterFragment("destinationNodeFilter", req.Destination.Filter)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(
		"MATCH (originNode:%s%s) MATCH (destinationNode:%s%s) "+
			"MERGE (originNode)-[relationship:%s]->(destinationNode) "+
			"ON CREATE SET relationship += $onCreateProps ON MATCH SET relationship += $onMergeProps "+
			"RETURN properties(originNode) AS originNode, properties(relationship) AS relationship, properties(destinationNode) AS destinationNode",
		req.Origin.Label, originFragment,
		req.Destination.Label, destinationFragment,
		req.Relationship.Label,
	)
	params := mergeParams(originParams, destinationParams, map[string]interface{}{
		"onCreateProps": orDefault(req.Relationship.OnCreateProps),
		"onMergeProps":  orDefault(req.Relationship.OnMergeProps),
	})
	return query, params, nil
}

// AttachUniqueNodes merge-creates the relationship between the two uniquely
// matched endpoints and returns both endpoints as found post-merge.
func AttachUniqueNodes[O, R, D any](ctx context.Context, r *Repository, req AttachRequest) (*RelatedEntities[O, R, D], error) {
	query, params, err := buildAttachQuery(req)
	if err != nil {
		return nil, err
	}
	rows, err := r.store.Write(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, r.missingEndpoint(ctx, req.Origin, req.Destination)
	}
	if len(rows) > 1 {
		return nil, apperrors.NewAmbiguousResult(
			fmt.Sprintf("(%s)-[%s]->(%s)", req.Origin.Label, req.Relationship.Label, req.Destination.Label),
			req.Origin.Filter,
		)
	}
	return decodeRelatedRow[O, R, D](rows[0])
}

// DetachUniqueNodes removes the relationship between the uniquely matched
// endpoints if it exists and returns both endpoint nodes. Detaching a
// non-existent relationship is a no-op, not an error.
func DetachUniqueNodes[O, D any](ctx context.Context, r *Repository, req DetachRequest) (*DetachedEntities[O, D], error) {
	for _, label := range []string{req.Origin.Label, req.Destination.Label} {
		if err := validateIdentifier("label", label); err != nil {
			return nil, err
		}
	}
	if err := validateIdentifier("relationship type", req.Relationship.Label); err != nil {
		return nil, err
	}
	originFragment, originParams, err := filterFragment("originNodeFilter", req.Origin.Filter)
	if err != nil {
		return nil, err
	}
	destinationFragment, destinationParams, err := filterFragment("destinationNodeFilter", req.Destination.Filter)
	if err != nil {
		return nil, err
	}
	relationshipFragment, relationshipParams, err := filterFragment("relationshipFilter", req.Relationship.Filter)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"MATCH (originNode:%s%s) MATCH (destinationNode:%s%s) "+
			"OPTIONAL MATCH (originNode)-[relationship:%s%s]->(destinationNode) DELETE relationship "+
			"RETURN properties(originNode) AS originNode, properties(destinationNode) AS destinationNode",
		req.Origin.Label, originFragment,
		req.Destination.Label, destinationFragment,
		req.Relationship.Label, relationshipFragment,
	)
	rows, err := r.store.Write(ctx, query, mergeParams(originParams, destinationParams, relationshipParams))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, r.missingEndpoint(ctx, req.Origin, req.Destination)
	}
	origin, err := decodeProps[O](rows[0]["originNode"])
	if err != nil {
		return nil, err
	}
	destination, err := decodeProps[D](rows[0]["destinationNode"])
	if err != nil {
		return nil, err
	}
	return &DetachedEntities[O, D]{Origin: *origin, Destination: *destination}, nil
}

// buildRelatedNodesQuery renders the shared one-hop traversal
func buildRelatedNodesQuery(req RelatedNodesRequest, returning string) (string, map[string]interface{}, error) {
	for _, label := range []string{req.Origin.Label, req.Destination.Label} {
		if err := validateIdentifier("label", label); err != nil {
			return "", nil, err
		}
	}
	if err := validateIdentifier("relationship type", req.Relationship.Label); err != nil {
		return "", nil, err
	}
	originFragment, originParams, err := filterFragment("originNodeFilter", req.Origin.Filter)
	if err != nil {
		return "", nil, err
	}
	relationshipFragment, relationshipParams, err := filterFragment("relationshipFilter", req.Relationship.Filter)
	if err != nil {
		return "", nil, err
	}
	destinationFragment, destinationParams, err := filterFragment("destinationNodeFilter", req.Destination.Filter)
	if err != nil {
		return "", nil, err
	}
	sortFragment, err := sortingFragment(req.Sorting)
	if err != nil {
		return "", nil, err
	}
	pageFragment, pageParams, err := paginationFragment(req.Pagination)
	if err != nil {
		return "", nil, err
	}

	leftArrow, rightArrow := "-", "->"
	if req.Relationship.Direction == DirectionIn {
		leftArrow, rightArrow = "<-", "-"
	}

	query := fmt.Sprintf(
		"MATCH (originNode:%s%s)%s[relationship:%s%s]%s(destinationNode:%s%s) RETURN %s%s%s",
		req.Origin.Label, originFragment,
		leftArrow, req.Relationship.Label, relationshipFragment, rightArrow,
		req.Destination.Label, destinationFragment,
		returning, sortFragment, pageFragment,
	)
	return query, mergeParams(originParams, relationshipParams, destinationParams, pageParams), nil
}

const relatedRowReturn = "properties(originNode) AS originNode, properties(relationship) AS relationship, properties(destinationNode) AS destinationNode"

func decodeRelatedRow[O, R, D any](row map[string]interface{}) (*RelatedEntities[O, R, D], error) {
	origin, err := decodeProps[O](row["originNode"])
	if err != nil {
		return nil, err
	}
	relationship, err := decodeProps[R](row["relationship"])
	if err != nil {
		return nil, err
	}
	destination, err := decodeProps[D](row["destinationNode"])
	if err != nil {
		return nil, err
	}
	return &RelatedEntities[O, R, D]{Origin: *origin, Relationship: *relationship, Destination: *destination}, nil
}

// GetRelatedNodes traverses one hop and returns every matching row with the
// relationship properties alongside each destination node.
func GetRelatedNodes[O, R, D any](ctx context.Context, r *Repository, req RelatedNodesRequest) ([]RelatedEntities[O, R, D], error) {
	query, params, err := buildRelatedNodesQuery(req, relatedRowReturn)
	if err != nil {
		return nil, err
	}
	rows, err := r.store.Read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	items := make([]RelatedEntities[O, R, D], 0, len(rows))
	for _, row := range rows {
		item, err := decodeRelatedRow[O, R, D](row)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// GetRelatedNode traverses exactly one hop and requires exactly one result
func GetRelatedNode[O, R, D any](ctx context.Context, r *Repository, req RelatedNodesRequest) (*RelatedEntities[O, R, D], error) {
	item, err := GetOptionalRelatedNode[O, R, D](ctx, r, req)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NewNotFound(req.Destination.Label, req.Destination.Filter)
	}
	return item, nil
}

// GetOptionalRelatedNode traverses exactly one hop; absence returns nil rather
// than an error. More than one match is an integrity fault.
func GetOptionalRelatedNode[O, R, D any](ctx context.Context, r *Repository, req RelatedNodesRequest) (*RelatedEntities[O, R, D], error) {
	probe := req
	limit := 2
	probe.Pagination = &Pagination{Limit: &limit}
	items, err := GetRelatedNodes[O, R, D](ctx, r, probe)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if len(items) > 1 {
		return nil, apperrors.NewAmbiguousResult(req.Destination.Label, req.Destination.Filter)
	}
	return &items[0], nil
}

// CountRelatedNodes runs the same traversal predicate as GetRelatedNodes
// without fetching rows, for totals distinct from a page.
func CountRelatedNodes(ctx context.Context, r *Repository, req RelatedNodesRequest) (int64, error) {
	stripped := req
	stripped.Sorting = nil
	stripped.Pagination = nil
	query, params, err := buildRelatedNodesQuery(stripped, "count(destinationNode) AS count")
	if err != nil {
		return 0, err
	}
	rows, err := r.store.Read(ctx, query, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	count, _ := rows[0]["count"].(int64)
	return count, nil
}

// missingEndpoint reports which endpoint of a two-node match was absent
func (r *Repository) missingEndpoint(ctx context.Context, origin, destination NodeMatch) error {
	fragment, params, err := filterFragment("nodeFilter", origin.Filter)
	if err == nil {
		query := fmt.Sprintf("MATCH (node:%s%s) RETURN count(node) AS count", origin.Label, fragment)
		if rows, readErr := r.store.Read(ctx, query, params); readErr == nil && len(rows) == 1 {
			if count, _ := rows[0]["count"].(int64); count == 0 {
				return apperrors.NewNotFound(origin.Label, origin.Filter)
			}
		}
	}
	return apperrors.NewNotFound(destination.Label, destination.Filter)
}
