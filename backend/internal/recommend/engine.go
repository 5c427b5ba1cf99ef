package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"learn-graph/backend/internal/entities"
	"learn-graph/backend/internal/graph"
	"learn-graph/backend/pkg/logger"
)

// SortingType selects the ordering policy for topic learning materials
type SortingType string

const (
	SortingTypeRecommended SortingType = "recommended"
	SortingTypeRating      SortingType = "rating"
	SortingTypeCreatedAt   SortingType = "created_at"
)

// MaterialsFilter narrows the candidate set
type MaterialsFilter struct {
	ResourceTypeIn         []entities.ResourceType
	CompletedByUser        bool
	LearningMaterialTypeIn []entities.LearningMaterialType
}

// MaterialsQuery is the full request for one materials listing
type MaterialsQuery struct {
	Query       *string
	Filter      MaterialsFilter
	SortingType SortingType
}

// Engine answers "which learning materials are relevant to topic X, in what
// order". It composes bespoke multi-clause queries directly against the store
/// for the shapes the generic repository cannot express: variable-length paths,
// aggregation and scoring arithmetic.
type Engine struct {
	store             *graph.Store
	learningPathBonus float64
	logger            *zap.Logger
}

// NewEngine creates a scoring engine over a store
func NewEngine(store *graph.Store, learningPathBonus float64) *Engine {
	return &Engine{
		store:             store,
		learningPathBonus: learningPathBonus,
		logger:            logger.Get(),
	}
}

// GetTopicLearningMaterials returns the materials shown in a topic, ordered by
// the requested policy. A topic that does not exist yields an empty slice;
// existence checks belong to the caller.
func (e *Engine) GetTopicLearningMaterials(ctx context.Context, topicID string, userID *string, q MaterialsQuery) ([]entities.LearningMaterial, error) {
	cypher, params := buildMaterialsQuery(topicID, userID, q)

	rows, err := e.store.Read(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	if q.SortingType == SortingTypeRecommended {
		return e.scoreAndOrder(rows, userAware(userID, q))
	}

	materials := make([]entities.LearningMaterial, 0, len(rows))
	for _, row := range rows {
		material, err := materialFromRow(row)
		if err != nil {
			return nil, err
		}
		materials = append(materials, *material)
	}
	return materials, nil
}

// userAware reports whether the full usefulness formula applies: an acting
// user is known and the not-completed side of the split was requested.
func userAware(userID *string, q MaterialsQuery) bool {
	return userID != nil && !q.Filter.CompletedByUser
}

type scoredCandidate struct {
	material entities.LearningMaterial
	score    float64
}

func (e *Engine) scoreAndOrder(rows []map[string]interface{}, aware bool) ([]entities.LearningMaterial, error) {
	candidates := make([]scoredCandidate, 0, len(rows))
	for _, row := range rows {
		material, err := materialFromRow(row)
		if err != nil {
			return nil, err
		}
		stats := Stats{
			CoveredCount:       asInt64(row["ccc"]),
			KnownCoveredCount:  asInt64(row["krc"]),
			MissingPrereqCount: asInt64(row["cmpc"]),
			SeriesPosition:     asInt64(row["cprnc"]),
			NoPredecessor:      asInt64(row["npr"]) == 1,
			IsLearningPath:     asInt64(row["isLearningPath"]) == 1,
		}
		score := Score(stats, aware, e.learningPathBonus)
		e.logger.Debug("Scored learning material",
			zap.String("id", material.ID()),
			zap.Float64("score", score),
			zap.Int64("covered", stats.CoveredCount),
			zap.Int64("missingPrereqs", stats.MissingPrereqCount),
			zap.Int64("seriesPosition", stats.SeriesPosition),
		)
		candidates = append(candidates, scoredCandidate{material: *material, score: score})
	}

	// Stable sort keeps store order for equal scores
	sort.SliceStable(candidates, func(i, j int) bool {
		return scoreLess(candidates[i].score, candidates[j].score)
	})

	materials := make([]entities.LearningMaterial, 0, len(candidates))
	for _, c := range candidates {
		materials = append(materials, c.material)
	}
	return materials, nil
}

// candidateLabel picks the narrowest usable node label for the query. Only a
// single-element type filter holding one of the two known material types can
// narrow the label; anything else keeps the shared LearningMaterial label, so
// request-derived values never become query text.
func candidateLabel(filter MaterialsFilter) string {
	if len(filter.LearningMaterialTypeIn) == 1 {
		switch filter.LearningMaterialTypeIn[0] {
		case entities.LearningMaterialTypeResource:
			return entities.ResourceLabel
		case entities.LearningMaterialTypeLearningPath:
			return entities.LearningPathLabel
		}
	}
	return entities.LearningMaterialLabel
}

// buildMaterialsQuery renders one statement per sorting policy. Candidates are
// always the nodes one SHOWN_IN hop away from the topic; the Recommended
// variant additionally gathers per-candidate topology stats for Go-side
// scoring.
func buildMaterialsQuery(topicID string, userID *string, q MaterialsQuery) (string, map[string]interface{}) {
	var b strings.Builder
	params := map[string]interface{}{"topicId": topicID}
	lmLabel := candidateLabel(q.Filter)

	if userID != nil {
		b.WriteString("MATCH (u:" + entities.UserLabel + " {_id: $userId})\n")
		params["userId"] = *userID
	}
	fmt.Fprintf(&b, "MATCH (t:%s {_id: $topicId})<-[:%s]-(lm:%s)\n",
		entities.TopicLabel, entities.LearningMaterialShowedInLabel, lmLabel)

	fmt.Fprintf(&b, "WHERE (NOT lm:%s OR lm.public = true)\n", entities.LearningPathLabel)

	if len(q.Filter.ResourceTypeIn) > 0 {
		fmt.Fprintf(&b, "AND (NOT lm:%s OR lm.type IN $resourceTypeIn)\n", entities.ResourceLabel)
		types := make([]string, 0, len(q.Filter.ResourceTypeIn))
		for _, t := range q.Filter.ResourceTypeIn {
			types = append(types, string(t))
		}
		params["resourceTypeIn"] = types
	}

	if q.Query != nil && *q.Query != "" {
		b.WriteString("AND (toLower(lm.name) CONTAINS toLower($query)" +
			" OR toLower(lm.description) CONTAINS toLower($query)" +
			" OR toLower(lm.url) CONTAINS toLower($query)" +
			" OR toLower(lm.type) CONTAINS toLower($query))\n")
		params["query"] = *q.Query
	}

	if userID != nil {
		writeCompletionPredicate(&b, q.Filter.CompletedByUser)
	}

	switch q.SortingType {
	case SortingTypeRecommended:
		writeRecommendedClauses(&b, userID != nil, !q.Filter.CompletedByUser, lmLabel)
	case SortingTypeRating:
		fmt.Fprintf(&b, "OPTIONAL MATCH (lm)<-[ratedLearningMaterial:%s]-(:%s)\n",
			entities.UserRatedLearningMaterialLabel, entities.UserLabel)
		b.WriteString("WITH lm, avg(ratedLearningMaterial.value) AS rating\n")
		b.WriteString("RETURN properties(lm) AS lm, labels(lm) AS lmLabels, rating\n")
		b.WriteString("ORDER BY rating IS NOT NULL DESC, rating DESC")
	default: // created at, most recent first
		fmt.Fprintf(&b, "MATCH (lm)<-[createdLearningMaterial:%s]-(:%s)\n",
			entities.UserCreatedLabel, entities.UserLabel)
		b.WriteString("RETURN properties(lm) AS lm, labels(lm) AS lmLabels\n")
		b.WriteString("ORDER BY createdLearningMaterial.createdAt DESC")
	}

	return b.String(), params
}

// writeCompletionPredicate splits the candidate set on the user's completion
// state. A missing CONSUMED/STARTED edge counts as not-completed.
func writeCompletionPredicate(b *strings.Builder, completed bool) {
	if completed {
		fmt.Fprintf(b, "AND ((NOT lm:%s OR EXISTS { MATCH (u)-[consumed_r:%s]->(lm) WHERE consumed_r.consumedAt IS NOT NULL })\n",
			entities.ResourceLabel, entities.UserConsumedResourceLabel)
		fmt.Fprintf(b, "AND (NOT lm:%s OR EXISTS { MATCH (u)-[started_r:%s]->(lm) WHERE started_r.completedAt IS NOT NULL }))\n",
			entities.LearningPathLabel, entities.UserStartedLearningPathLabel)
		return
	}
	fmt.Fprintf(b, "AND (NOT lm:%s OR NOT (u)-[:%s]->(lm) OR EXISTS { MATCH (u)-[consumed_r:%s]->(lm) WHERE consumed_r.consumedAt IS NULL })\n",
		entities.ResourceLabel, entities.UserConsumedResourceLabel, entities.UserConsumedResourceLabel)
	fmt.Fprintf(b, "AND (NOT lm:%s OR NOT (u)-[:%s]->(lm) OR EXISTS { MATCH (u)-[started_r:%s]->(lm) WHERE started_r.completedAt IS NULL })\n",
		entities.LearningPathLabel, entities.UserStartedLearningPathLabel, entities.UserStartedLearningPathLabel)
}

// writeRecommendedClauses gathers coverage, prerequisite and series-position
// stats per candidate. The hop bounds are load-bearing: hierarchical
// relationships are not guaranteed acyclic.
func writeRecommendedClauses(b *strings.Builder, hasUser, notCompleted bool, lmLabel string) {
	fmt.Fprintf(b, "OPTIONAL MATCH (lm)-[:%s]->(cc:%s)\n",
		entities.LearningMaterialCoversTopicLabel, entities.TopicLabel)
	fmt.Fprintf(b, "OPTIONAL MATCH (cc)-[:%s*0..%d]->(mpc:%s)\n",
		entities.TopicHasPrerequisiteTopicLabel, entities.PrerequisiteTraversalMaxHops, entities.TopicLabel)
	fmt.Fprintf(b, "WHERE NOT (lm)-[:%s]->(mpc)\n", entities.LearningMaterialCoversTopicLabel)
	if hasUser {
		fmt.Fprintf(b, "AND NOT (u)-[:%s]->(mpc)\n", entities.UserKnowsTopicLabel)
		fmt.Fprintf(b, "OPTIONAL MATCH (cc)<-[rkc:%s]-(u)\n", entities.UserKnowsTopicLabel)
		b.WriteString("WITH lm, u, CASE WHEN lm:" + entities.LearningPathLabel + " THEN 1 ELSE 0 END AS isLearningPath, " +
			"count(DISTINCT cc) AS ccc, count(DISTINCT mpc) AS cmpc, count(DISTINCT rkc) AS krc\n")
	} else {
		b.WriteString("WITH lm, CASE WHEN lm:" + entities.LearningPathLabel + " THEN 1 ELSE 0 END AS isLearningPath, " +
			"count(DISTINCT cc) AS ccc, count(DISTINCT mpc) AS cmpc\n")
	}

	seriesTypes := entities.ResourceHasNextResourceLabel + "|" + entities.ResourceSeriesStartsWithLabel
	if hasUser && notCompleted {
		// Longest chain of not-yet-consumed predecessors leading to lm
		b.WriteString("CALL {\n WITH lm, u\n")
		fmt.Fprintf(b, " MATCH (nextToConsume:%s)-[rel:%s*0..%d]->(lm)\n", lmLabel, seriesTypes, entities.SeriesTraversalMaxHops)
		fmt.Fprintf(b, " WHERE (NOT (u)-[:%s]->(nextToConsume) OR EXISTS { MATCH (u)-[consumed_r:%s]->(nextToConsume) WHERE consumed_r.consumedAt IS NULL })\n",
			entities.UserConsumedResourceLabel, entities.UserConsumedResourceLabel)
		fmt.Fprintf(b, " AND (NOT (nextToConsume)<-[:%s]-(:%s) OR EXISTS { MATCH (u)-[consumed_r:%s]->(previous:%s)-[:%s]->(nextToConsume) WHERE consumed_r.consumedAt IS NOT NULL })\n",
			seriesTypes, entities.ResourceLabel, entities.UserConsumedResourceLabel, entities.ResourceLabel, seriesTypes)
		fmt.Fprintf(b, " WITH rel, size(rel) AS chainLength, (1 - sign(COUNT { (lm)<-[:%s]-(:%s) })) AS npr\n",
			entities.ResourceHasNextResourceLabel, entities.ResourceLabel)
		b.WriteString(" ORDER BY chainLength DESC LIMIT 1\n")
		fmt.Fprintf(b, " RETURN npr, size([x IN rel WHERE type(x) = '%s']) AS cprnc\n}\n", entities.ResourceHasNextResourceLabel)
		b.WriteString("RETURN properties(lm) AS lm, labels(lm) AS lmLabels, isLearningPath, ccc, cmpc, krc, cprnc, npr")
		return
	}

	// Anonymous or completed side: chains are measured from the start of the
	// series regardless of consumption.
	b.WriteString("CALL {\n WITH lm\n")
	fmt.Fprintf(b, " MATCH (nextToConsume:%s)-[rel:%s*0..%d]->(lm)\n", lmLabel, seriesTypes, entities.SeriesTraversalMaxHops)
	fmt.Fprintf(b, " WHERE NOT (nextToConsume)<-[:%s]-(:%s)\n", seriesTypes, entities.ResourceLabel)
	b.WriteString(" WITH rel ORDER BY size(rel) DESC LIMIT 1\n")
	fmt.Fprintf(b, " RETURN size([x IN rel WHERE type(x) = '%s']) AS cprnc\n}\n", entities.ResourceHasNextResourceLabel)
	if hasUser {
		b.WriteString("RETURN properties(lm) AS lm, labels(lm) AS lmLabels, isLearningPath, ccc, cmpc, krc, cprnc")
		return
	}
	b.WriteString("RETURN properties(lm) AS lm, labels(lm) AS lmLabels, isLearningPath, ccc, cmpc, cprnc")
}

func materialFromRow(row map[string]interface{}) (*entities.LearningMaterial, error) {
	props, ok := row["lm"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected property map for lm, got %T", row["lm"])
	}
	return entities.LearningMaterialFromNode(asStringSlice(row["lmLabels"]), props)
}

func asInt64(val interface{}) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func asStringSlice(val interface{}) []string {
	slice, ok := val.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(slice))
	for _, v := range slice {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
