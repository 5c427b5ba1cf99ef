package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearningMaterialFromNode_Resource(t *testing.T) {
	material, err := LearningMaterialFromNode(
		[]string{ResourceLabel, LearningMaterialLabel},
		map[string]interface{}{"_id": "r1", "name": "A Tour of Go", "type": "course", "url": "https://go.dev/tour/"},
	)
	require.NoError(t, err)
	assert.Equal(t, LearningMaterialTypeResource, material.Type)
	require.NotNil(t, material.Resource)
	assert.Nil(t, material.LearningPath)
	assert.Equal(t, "r1", material.ID())
	assert.Equal(t, "A Tour of Go", material.Name())
	assert.Equal(t, ResourceTypeCourse, material.Resource.Type)
}

func TestLearningMaterialFromNode_LearningPath(t *testing.T) {
	material, err := LearningMaterialFromNode(
		[]string{LearningPathLabel, LearningMaterialLabel},
		map[string]interface{}{"_id": "lp1", "name": "Go from Scratch", "public": true},
	)
	require.NoError(t, err)
	assert.Equal(t, LearningMaterialTypeLearningPath, material.Type)
	require.NotNil(t, material.LearningPath)
	assert.Nil(t, material.Resource)
	assert.True(t, material.LearningPath.Public)
}

func TestLearningMaterialFromNode_UnknownLabels(t *testing.T) {
	_, err := LearningMaterialFromNode([]string{TopicLabel}, map[string]interface{}{"_id": "x"})
	assert.Error(t, err)
}

func TestSubGoalFromNode_LearningGoalWinsOverTopic(t *testing.T) {
	// Learning goal nodes carry both labels; the goal variant must win
	subGoal, err := SubGoalFromNode(
		[]string{TopicLabel, LearningGoalLabel},
		map[string]interface{}{"_id": "g1", "name": "Master concurrency", "type": "milestone"},
	)
	require.NoError(t, err)
	assert.Equal(t, SubGoalTypeLearningGoal, subGoal.Type)
	require.NotNil(t, subGoal.LearningGoal)
	assert.Nil(t, subGoal.Topic)
}

func TestSubGoalFromNode_PlainTopic(t *testing.T) {
	subGoal, err := SubGoalFromNode(
		[]string{TopicLabel},
		map[string]interface{}{"_id": "t1", "name": "Channels"},
	)
	require.NoError(t, err)
	assert.Equal(t, SubGoalTypeTopic, subGoal.Type)
	require.NotNil(t, subGoal.Topic)
	assert.Equal(t, "Channels", subGoal.Topic.Name)
}

func TestSubGoalFromNode_UnknownLabels(t *testing.T) {
	_, err := SubGoalFromNode([]string{UserLabel}, map[string]interface{}{"_id": "u1"})
	assert.Error(t, err)
}
