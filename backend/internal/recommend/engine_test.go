package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learn-graph/backend/internal/entities"
)

func strPtr(s string) *string { return &s }

func TestBuildMaterialsQuery_AnonymousRecommended(t *testing.T) {
	query, params := buildMaterialsQuery("t1", nil, MaterialsQuery{SortingType: SortingTypeRecommended})

	assert.NotContains(t, query, "MATCH (u:User")
	assert.Contains(t, query, "MATCH (t:Topic {_id: $topicId})<-[:SHOWN_IN]-(lm:LearningMaterial)")
	assert.Contains(t, query, "(NOT lm:LearningPath OR lm.public = true)")
	// Anonymous branch carries no user stats
	assert.NotContains(t, query, "krc")
	assert.NotContains(t, query, "KNOWS")
	assert.Contains(t, query, "ccc, cmpc, cprnc")
	assert.Equal(t, "t1", params["topicId"])
	_, hasUser := params["userId"]
	assert.False(t, hasUser)
}

func TestBuildMaterialsQuery_UserAwareRecommended(t *testing.T) {
	userID := "u1"
	query, params := buildMaterialsQuery("t1", &userID, MaterialsQuery{SortingType: SortingTypeRecommended})

	assert.Contains(t, query, "MATCH (u:User {_id: $userId})")
	assert.Contains(t, query, "count(DISTINCT rkc) AS krc")
	assert.Contains(t, query, "npr")
	// Not-completed split is the default
	assert.Contains(t, query, "consumed_r.consumedAt IS NULL")
	assert.Contains(t, query, "started_r.completedAt IS NULL")
	assert.Equal(t, "u1", params["userId"])
}

func TestBuildMaterialsQuery_CompletedSplit(t *testing.T) {
	userID := "u1"
	query, _ := buildMaterialsQuery("t1", &userID, MaterialsQuery{
		SortingType: SortingTypeRecommended,
		Filter:      MaterialsFilter{CompletedByUser: true},
	})

	assert.Contains(t, query, "consumed_r.consumedAt IS NOT NULL")
	assert.Contains(t, query, "started_r.completedAt IS NOT NULL")
	// Completed side uses the consumption-agnostic series subquery
	assert.NotContains(t, query, "nextToConsume)<-[:HAS_NEXT|STARTS_WITH]-(:Resource) OR EXISTS { MATCH (u)")
}

func TestBuildMaterialsQuery_ResourceTypeFilter(t *testing.T) {
	query, params := buildMaterialsQuery("t1", nil, MaterialsQuery{
		SortingType: SortingTypeRecommended,
		Filter: MaterialsFilter{
			ResourceTypeIn: []entities.ResourceType{entities.ResourceTypeArticle, entities.ResourceTypeCourse},
		},
	})

	assert.Contains(t, query, "(NOT lm:Resource OR lm.type IN $resourceTypeIn)")
	assert.Equal(t, []string{"article", "course"}, params["resourceTypeIn"])
}

func TestBuildMaterialsQuery_SubstringQuery(t *testing.T) {
	query, params := buildMaterialsQuery("t1", nil, MaterialsQuery{
		SortingType: SortingTypeRecommended,
		Query:       strPtr("concurrency"),
	})

	assert.Contains(t, query, "toLower(lm.name) CONTAINS toLower($query)")
	assert.Contains(t, query, "toLower(lm.url) CONTAINS toLower($query)")
	assert.Equal(t, "concurrency", params["query"])
}

func TestBuildMaterialsQuery_SingleTypeFilterNarrowsLabel(t *testing.T) {
	query, _ := buildMaterialsQuery("t1", nil, MaterialsQuery{
		SortingType: SortingTypeRecommended,
		Filter: MaterialsFilter{
			LearningMaterialTypeIn: []entities.LearningMaterialType{entities.LearningMaterialTypeResource},
		},
	})
	assert.Contains(t, query, "-(lm:Resource)")

	query, _ = buildMaterialsQuery("t1", nil, MaterialsQuery{
		SortingType: SortingTypeRecommended,
		Filter: MaterialsFilter{
			LearningMaterialTypeIn: []entities.LearningMaterialType{
				entities.LearningMaterialTypeResource,
				entities.LearningMaterialTypeLearningPath,
			},
		},
	})
	assert.Contains(t, query, "-(lm:LearningMaterial)")
}

func TestBuildMaterialsQuery_UnknownTypeFilterKeepsSharedLabel(t *testing.T) {
	// Type filters arrive from request query params; only the two known
	// material types may narrow the label, anything else must never reach
	// the query text.
	hostile := entities.LearningMaterialType("Foo) WITH 1 AS x MATCH (lm")
	query, _ := buildMaterialsQuery("t1", nil, MaterialsQuery{
		SortingType: SortingTypeRecommended,
		Filter: MaterialsFilter{
			LearningMaterialTypeIn: []entities.LearningMaterialType{hostile},
		},
	})
	assert.Contains(t, query, "-(lm:LearningMaterial)")
	assert.NotContains(t, query, "Foo")

	assert.Equal(t, entities.LearningMaterialLabel, candidateLabel(MaterialsFilter{
		LearningMaterialTypeIn: []entities.LearningMaterialType{"Topic"},
	}))
	assert.Equal(t, entities.LearningPathLabel, candidateLabel(MaterialsFilter{
		LearningMaterialTypeIn: []entities.LearningMaterialType{entities.LearningMaterialTypeLearningPath},
	}))
}

func TestBuildMaterialsQuery_RatingSort(t *testing.T) {
	query, _ := buildMaterialsQuery("t1", nil, MaterialsQuery{SortingType: SortingTypeRating})

	assert.Contains(t, query, "avg(ratedLearningMaterial.value) AS rating")
	// Unrated materials sort after rated ones
	assert.Contains(t, query, "ORDER BY rating IS NOT NULL DESC, rating DESC")
	assert.NotContains(t, query, "cmpc")
}

func TestBuildMaterialsQuery_CreatedAtSort(t *testing.T) {
	query, _ := buildMaterialsQuery("t1", nil, MaterialsQuery{SortingType: SortingTypeCreatedAt})
	assert.Contains(t, query, "ORDER BY createdLearningMaterial.createdAt DESC")
}

func TestBuildMaterialsQuery_HopBoundsPresent(t *testing.T) {
	query, _ := buildMaterialsQuery("t1", nil, MaterialsQuery{SortingType: SortingTypeRecommended})
	assert.Contains(t, query, "*0..5")
	assert.Contains(t, query, "*0..100")
}

func TestUserAware(t *testing.T) {
	userID := "u1"
	assert.True(t, userAware(&userID, MaterialsQuery{}))
	assert.False(t, userAware(nil, MaterialsQuery{}))
	assert.False(t, userAware(&userID, MaterialsQuery{Filter: MaterialsFilter{CompletedByUser: true}}))
}

func TestMaterialFromRow(t *testing.T) {
	material, err := materialFromRow(map[string]interface{}{
		"lm":       map[string]interface{}{"_id": "r1", "name": "A Tour of Go"},
		"lmLabels": []interface{}{"Resource", "LearningMaterial"},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.LearningMaterialTypeResource, material.Type)
	assert.Equal(t, "r1", material.ID())
	assert.Equal(t, "A Tour of Go", material.Name())
}

func TestMaterialFromRow_LearningPath(t *testing.T) {
	material, err := materialFromRow(map[string]interface{}{
		"lm":       map[string]interface{}{"_id": "lp1", "name": "Path", "public": true},
		"lmLabels": []interface{}{"LearningPath", "LearningMaterial"},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.LearningMaterialTypeLearningPath, material.Type)
	assert.True(t, material.LearningPath.Public)
}

func TestMaterialFromRow_NoMaterialLabel(t *testing.T) {
	_, err := materialFromRow(map[string]interface{}{
		"lm":       map[string]interface{}{"_id": "x"},
		"lmLabels": []interface{}{"Topic"},
	})
	assert.Error(t, err)
}

func TestScoreAndOrder_StableForEqualScores(t *testing.T) {
	engine := NewEngine(nil, 0.5)
	rows := []map[string]interface{}{
		{
			"lm":       map[string]interface{}{"_id": "r1", "name": "first"},
			"lmLabels": []interface{}{"Resource"},
			"ccc":      int64(1), "cmpc": int64(0), "cprnc": int64(0), "isLearningPath": int64(0),
		},
		{
			"lm":       map[string]interface{}{"_id": "r2", "name": "second"},
			"lmLabels": []interface{}{"Resource"},
			"ccc":      int64(1), "cmpc": int64(0), "cprnc": int64(0), "isLearningPath": int64(0),
		},
	}
	materials, err := engine.scoreAndOrder(rows, false)
	require.NoError(t, err)
	require.Len(t, materials, 2)
	assert.Equal(t, "r1", materials[0].ID())
	assert.Equal(t, "r2", materials[1].ID())
}

func TestScoreAndOrder_RanksByScore(t *testing.T) {
	engine := NewEngine(nil, 0.5)
	rows := []map[string]interface{}{
		{
			"lm":       map[string]interface{}{"_id": "part3"},
			"lmLabels": []interface{}{"Resource"},
			"ccc":      int64(1), "cmpc": int64(0), "cprnc": int64(2), "isLearningPath": int64(0),
		},
		{
			"lm":       map[string]interface{}{"_id": "part1"},
			"lmLabels": []interface{}{"Resource"},
			"ccc":      int64(1), "cmpc": int64(0), "cprnc": int64(0), "isLearningPath": int64(0),
		},
		{
			"lm":       map[string]interface{}{"_id": "part2"},
			"lmLabels": []interface{}{"Resource"},
			"ccc":      int64(1), "cmpc": int64(0), "cprnc": int64(1), "isLearningPath": int64(0),
		},
	}
	materials, err := engine.scoreAndOrder(rows, false)
	require.NoError(t, err)
	require.Len(t, materials, 3)
	assert.Equal(t, "part1", materials[0].ID())
	assert.Equal(t, "part2", materials[1].ID())
	assert.Equal(t, "part3", materials[2].ID())
}
