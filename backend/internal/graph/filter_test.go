package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "learn-graph/backend/pkg/errors"
)

func TestFilterFragment_Empty(t *testing.T) {
	fragment, params, err := filterFragment("nodeFilter", Filter{})
	assert.NoError(t, err)
	assert.Equal(t, "", fragment)
	assert.Nil(t, params)
}

func TestFilterFragment_SingleField(t *testing.T) {
	fragment, params, err := filterFragment("nodeFilter", Filter{"key": "topic_go"})
	assert.NoError(t, err)
	assert.Equal(t, " {key: $nodeFilter.key}", fragment)
	assert.Equal(t, map[string]interface{}{
		"nodeFilter": map[string]interface{}{"key": "topic_go"},
	}, params)
}

func TestFilterFragment_SortedKeys(t *testing.T) {
	fragment, _, err := filterFragment("f", Filter{"name": "go", "key": "go", "createdAt": int64(1)})
	assert.NoError(t, err)
	// Deterministic rendering regardless of map iteration order
	assert.Equal(t, " {createdAt: $f.createdAt, key: $f.key, name: $f.name}", fragment)
}

func TestFilterFragment_InvalidFieldName(t *testing.T) {
	_, _, err := filterFragment("nodeFilter", Filter{"bad-field": "x"})
	assert.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))

	_, _, err = filterFragment("nodeFilter", Filter{"1leading": "x"})
	assert.True(t, apperrors.IsConfiguration(err))

	_, _, err = filterFragment("nodeFilter", Filter{"key: 1} MATCH (n) DETACH DELETE n //": "x"})
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestFilterFragment_UnsupportedValueType(t *testing.T) {
	_, _, err := filterFragment("nodeFilter", Filter{"tags": []string{"a"}})
	assert.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))

	_, _, err = filterFragment("nodeFilter", Filter{"meta": map[string]string{}})
	assert.True(t, apperrors.IsConfiguration(err))

	_, _, err = filterFragment("nodeFilter", Filter{"value": nil})
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestFilterFragment_PrimitiveValueTypes(t *testing.T) {
	_, _, err := filterFragment("f", Filter{
		"s": "str",
		"b": true,
		"i": 42,
		"u": uint32(7),
		"f": 1.5,
	})
	assert.NoError(t, err)
}

func TestPaginationFragment_Nil(t *testing.T) {
	fragment, params, err := paginationFragment(nil)
	assert.NoError(t, err)
	assert.Equal(t, "", fragment)
	assert.Empty(t, params)
}

func TestPaginationFragment_OffsetAndLimit(t *testing.T) {
	offset, limit := 10, 25
	fragment, params, err := paginationFragment(&Pagination{Offset: &offset, Limit: &limit})
	assert.NoError(t, err)
	assert.Equal(t, " SKIP $skip LIMIT $limit", fragment)
	assert.Equal(t, 10, params["skip"])
	assert.Equal(t, 25, params["limit"])
}

func TestPaginationFragment_LimitOnly(t *testing.T) {
	limit := 5
	fragment, params, err := paginationFragment(&Pagination{Limit: &limit})
	assert.NoError(t, err)
	assert.Equal(t, " LIMIT $limit", fragment)
	_, hasSkip := params["skip"]
	assert.False(t, hasSkip)
}

func TestPaginationFragment_NegativeOffset(t *testing.T) {
	offset := -1
	_, _, err := paginationFragment(&Pagination{Offset: &offset})
	assert.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestPaginationFragment_NonPositiveLimit(t *testing.T) {
	limit := 0
	_, _, err := paginationFragment(&Pagination{Limit: &limit})
	assert.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestSortingFragment(t *testing.T) {
	fragment, err := sortingFragment(&Sorting{Entity: SortEntityRelationship, Field: "index", Direction: SortAscending})
	assert.NoError(t, err)
	assert.Equal(t, " ORDER BY relationship.index ASC", fragment)
}

func TestSortingFragment_DefaultsToAscending(t *testing.T) {
	fragment, err := sortingFragment(&Sorting{Entity: SortEntityDestination, Field: "name"})
	assert.NoError(t, err)
	assert.Equal(t, " ORDER BY destinationNode.name ASC", fragment)
}

func TestSortingFragment_UnknownEntity(t *testing.T) {
	_, err := sortingFragment(&Sorting{Entity: "somethingElse", Field: "name"})
	assert.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestSortingFragment_InvalidField(t *testing.T) {
	_, err := sortingFragment(&Sorting{Entity: SortEntityOrigin, Field: "name; DROP"})
	assert.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestMergeParams_DisjointKeys(t *testing.T) {
	merged := mergeParams(
		map[string]interface{}{"a": 1},
		nil,
		map[string]interface{}{"b": 2},
	)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, merged)
}
