package graph

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "learn-graph/backend/pkg/errors"
	"learn-graph/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestBuildCreateRelatedNodeQuery(t *testing.T) {
	query, params, err := buildCreateRelatedNodeQuery(CreateRelatedNodeRequest{
		Origin:       NodeMatch{Label: "User", Filter: Filter{"_id": "u1"}},
		Relationship: RelCreate{Label: "CREATED", Props: map[string]interface{}{"createdAt": int64(1)}},
		NewNode:      NewNode{Labels: []string{"Resource", "LearningMaterial"}, Props: map[string]interface{}{"name": "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (originNode:User {_id: $originNodeFilter._id}) "+
			"CREATE (originNode)-[relationship:CREATED $relationshipProps]->(node:Resource:LearningMaterial $nodeProps) "+
			"RETURN properties(node) AS node",
		query,
	)
	assert.Equal(t, map[string]interface{}{"_id": "u1"}, params["originNodeFilter"])
	assert.Equal(t, map[string]interface{}{"name": "x"}, params["nodeProps"])
}

func TestBuildCreateRelatedNodeQuery_RequiresLabels(t *testing.T) {
	_, _, err := buildCreateRelatedNodeQuery(CreateRelatedNodeRequest{
		Origin:       NodeMatch{Label: "User"},
		Relationship: RelCreate{Label: "CREATED"},
		NewNode:      NewNode{},
	})
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestBuildCreateRelatedNodeQuery_RejectsBadLabel(t *testing.T) {
	_, _, err := buildCreateRelatedNodeQuery(CreateRelatedNodeRequest{
		Origin:       NodeMatch{Label: "User) DETACH DELETE (x"},
		Relationship: RelCreate{Label: "CREATED"},
		NewNode:      NewNode{Labels: []string{"Topic"}},
	})
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestBuildAttachQuery(t *testing.T) {
	query, params, err := buildAttachQuery(AttachRequest{
		Origin:       NodeMatch{Label: "Topic", Filter: Filter{"_id": "sub"}},
		Relationship: RelMerge{Label: "IS_SUBTOPIC_OF", OnCreateProps: map[string]interface{}{"index": 1.0}},
		Destination:  NodeMatch{Label: "Topic", Filter: Filter{"_id": "parent"}},
	})
	require.NoError(t, err)
	assert.Contains(t, query, "MERGE (originNode)-[relationship:IS_SUBTOPIC_OF]->(destinationNode)")
	assert.Contains(t, query, "ON CREATE SET relationship += $onCreateProps")
	assert.Contains(t, query, "ON MATCH SET relationship += $onMergeProps")
	assert.Equal(t, map[string]interface{}{"index": 1.0}, params["onCreateProps"])
	// Unset merge props still bind an empty map
	assert.Equal(t, map[string]interface{}{}, params["onMergeProps"])
}

func TestBuildRelatedNodesQuery_Outgoing(t *testing.T) {
	query, _, err := buildRelatedNodesQuery(RelatedNodesRequest{
		Origin:       NodeMatch{Label: "Topic", Filter: Filter{"_id": "t1"}},
		Relationship: RelMatch{Label: "HAS_PREREQUISITE"},
		Destination:  NodeMatch{Label: "Topic"},
	}, relatedRowReturn)
	require.NoError(t, err)
	assert.Contains(t, query, "(originNode:Topic {_id: $originNodeFilter._id})-[relationship:HAS_PREREQUISITE]->(destinationNode:Topic)")
}

func TestBuildRelatedNodesQuery_Incoming(t *testing.T) {
	query, _, err := buildRelatedNodesQuery(RelatedNodesRequest{
		Origin:       NodeMatch{Label: "Topic", Filter: Filter{"_id": "t1"}},
		Relationship: RelMatch{Label: "IS_SUBTOPIC_OF", Direction: DirectionIn},
		Destination:  NodeMatch{Label: "Topic"},
	}, relatedRowReturn)
	require.NoError(t, err)
	assert.Contains(t, query, "(originNode:Topic {_id: $originNodeFilter._id})<-[relationship:IS_SUBTOPIC_OF]-(destinationNode:Topic)")
}

func TestBuildRelatedNodesQuery_SortAndPage(t *testing.T) {
	offset, limit := 0, 10
	query, params, err := buildRelatedNodesQuery(RelatedNodesRequest{
		Origin:       NodeMatch{Label: "Topic", Filter: Filter{"_id": "t1"}},
		Relationship: RelMatch{Label: "IS_SUBTOPIC_OF", Direction: DirectionIn},
		Destination:  NodeMatch{Label: "Topic"},
		Sorting:      &Sorting{Entity: SortEntityRelationship, Field: "index", Direction: SortAscending},
		Pagination:   &Pagination{Offset: &offset, Limit: &limit},
	}, relatedRowReturn)
	require.NoError(t, err)
	assert.Contains(t, query, "ORDER BY relationship.index ASC SKIP $skip LIMIT $limit")
	assert.Equal(t, 10, params["limit"])
}

// The remaining tests exercise the primitives against a live store. They are
// skipped in short mode and when NEO4J_TEST_URI is unset.

type testNode struct {
	ID   string `mapstructure:"_id"`
	Name string `mapstructure:"name"`
}

type testRel struct {
	Index float64 `mapstructure:"index"`
}

func testRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping store integration test in short mode")
	}
	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}
	store, err := NewStore(uri, os.Getenv("NEO4J_TEST_USER"), os.Getenv("NEO4J_TEST_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })
	require.NoError(t, store.VerifyConnectivity(context.Background()))
	return NewRepository(store)
}

func seedNode(t *testing.T, r *Repository, label, name string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := r.store.Write(context.Background(),
		fmt.Sprintf("CREATE (n:%s $props)", label),
		map[string]interface{}{"props": map[string]interface{}{"_id": id, "name": name}},
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = DeleteOne(context.Background(), r, label, Filter{"_id": id})
	})
	return id
}

func TestFindOne_ZeroMatchesReturnsNil(t *testing.T) {
	r := testRepository(t)
	node, err := FindOne[testNode](context.Background(), r, "Topic", Filter{"_id": uuid.NewString()})
	assert.NoError(t, err)
	assert.Nil(t, node)
}

func TestFindOne_AmbiguousMatch(t *testing.T) {
	r := testRepository(t)
	name := "dup-" + uuid.NewString()
	seedNode(t, r, "Topic", name)
	seedNode(t, r, "Topic", name)

	_, err := FindOne[testNode](context.Background(), r, "Topic", Filter{"name": name})
	assert.True(t, apperrors.IsAmbiguousResult(err))
}

func TestCreateRelatedNode_MissingOrigin(t *testing.T) {
	r := testRepository(t)
	_, err := CreateRelatedNode[testNode](context.Background(), r, CreateRelatedNodeRequest{
		Origin:       NodeMatch{Label: "User", Filter: Filter{"_id": uuid.NewString()}},
		Relationship: RelCreate{Label: "CREATED"},
		NewNode:      NewNode{Labels: []string{"Topic"}, Props: map[string]interface{}{"_id": uuid.NewString()}},
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAttachUniqueNodes_Idempotent(t *testing.T) {
	r := testRepository(t)
	ctx := context.Background()
	subID := seedNode(t, r, "Topic", "sub")
	parentID := seedNode(t, r, "Topic", "parent")

	req := AttachRequest{
		Origin:       NodeMatch{Label: "Topic", Filter: Filter{"_id": subID}},
		Relationship: RelMerge{Label: "IS_SUBTOPIC_OF", OnCreateProps: map[string]interface{}{"index": 3.0}},
		Destination:  NodeMatch{Label: "Topic", Filter: Filter{"_id": parentID}},
	}
	first, err := AttachUniqueNodes[testNode, testRel, testNode](ctx, r, req)
	require.NoError(t, err)
	assert.Equal(t, 3.0, first.Relationship.Index)

	// Second attach follows the merge path; OnCreateProps must not reapply
	req.Relationship.OnCreateProps = map[string]interface{}{"index": 9.0}
	second, err := AttachUniqueNodes[testNode, testRel, testNode](ctx, r, req)
	require.NoError(t, err)
	assert.Equal(t, 3.0, second.Relationship.Index)

	count, err := CountRelatedNodes(ctx, r, RelatedNodesRequest{
		Origin:       NodeMatch{Label: "Topic", Filter: Filter{"_id": subID}},
		Relationship: RelMatch{Label: "IS_SUBTOPIC_OF"},
		Destination:  NodeMatch{Label: "Topic"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDetachUniqueNodes_AbsentRelationshipIsNoOp(t *testing.T) {
	r := testRepository(t)
	ctx := context.Background()
	aID := seedNode(t, r, "Topic", "a")
	bID := seedNode(t, r, "Topic", "b")

	req := DetachRequest{
		Origin:       NodeMatch{Label: "Topic", Filter: Filter{"_id": aID}},
		Relationship: RelMatch{Label: "IS_SUBTOPIC_OF"},
		Destination:  NodeMatch{Label: "Topic", Filter: Filter{"_id": bID}},
	}
	result, err := DetachUniqueNodes[testNode, testNode](ctx, r, req)
	require.NoError(t, err)
	assert.Equal(t, aID, result.Origin.ID)
	assert.Equal(t, bID, result.Destination.ID)

	// Detaching twice is just as harmless
	_, err = DetachUniqueNodes[testNode, testNode](ctx, r, req)
	assert.NoError(t, err)
}

func TestDetachUniqueNodes_MissingEndpoint(t *testing.T) {
	r := testRepository(t)
	aID := seedNode(t, r, "Topic", "a")

	_, err := DetachUniqueNodes[testNode, testNode](context.Background(), r, DetachRequest{
		Origin:       NodeMatch{Label: "Topic", Filter: Filter{"_id": aID}},
		Relationship: RelMatch{Label: "IS_SUBTOPIC_OF"},
		Destination:  NodeMatch{Label: "Topic", Filter: Filter{"_id": uuid.NewString()}},
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateOne_StampsUpdatedAt(t *testing.T) {
	r := testRepository(t)
	id := seedNode(t, r, "Topic", "before")

	type stamped struct {
		Name      string `mapstructure:"name"`
		UpdatedAt int64  `mapstructure:"updatedAt"`
	}
	node, err := UpdateOne[stamped](context.Background(), r, "Topic", Filter{"_id": id},
		map[string]interface{}{"name": "after"}, int64(1234))
	require.NoError(t, err)
	assert.Equal(t, "after", node.Name)
	assert.Equal(t, int64(1234), node.UpdatedAt)
}

func TestUpdateOne_NoMatchReturnsNil(t *testing.T) {
	r := testRepository(t)
	node, err := UpdateOne[testNode](context.Background(), r, "Topic", Filter{"_id": uuid.NewString()},
		map[string]interface{}{"name": "x"}, int64(1))
	assert.NoError(t, err)
	assert.Nil(t, node)
}

func TestDeleteOne_ReturnsCount(t *testing.T) {
	r := testRepository(t)
	id := seedNode(t, r, "Topic", "doomed")

	count, err := DeleteOne(context.Background(), r, "Topic", Filter{"_id": id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = DeleteOne(context.Background(), r, "Topic", Filter{"_id": id})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
