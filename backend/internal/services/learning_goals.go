package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learn-graph/backend/internal/entities"
	"learn-graph/backend/internal/graph"
	"learn-graph/backend/internal/utils"
	"learn-graph/backend/pkg/logger"
)

// LearningGoalService exposes learning goal operations. A learning goal node
// carries both the LearningGoal and Topic labels, so it can participate in
// every topic traversal while keeping its own operations.
type LearningGoalService struct {
	repo   *graph.Repository
	logger *zap.Logger
}

// NewLearningGoalService creates a learning goal service
func NewLearningGoalService(repo *graph.Repository) *LearningGoalService {
	return &LearningGoalService{
		repo:   repo,
		logger: logger.Get(),
	}
}

// CreateLearningGoalData carries the caller-supplied learning goal fields
type CreateLearningGoalData struct {
	Name        string
	Key         string
	Type        string
	Description string
	Hidden      bool
}

// Create creates a learning goal and its CREATED edge from the acting user
func (s *LearningGoalService) Create(ctx context.Context, userFilter graph.Filter, data CreateLearningGoalData) (*entities.LearningGoal, error) {
	now := nowMs()
	key := data.Key
	if key == "" {
		key = data.Name
	}

	props := map[string]interface{}{
		"_id":       uuid.NewString(),
		"key":       utils.GenerateURLKey(key),
		"name":      data.Name,
		"type":      data.Type,
		"hidden":    data.Hidden,
		"createdAt": now,
		"updatedAt": now,
	}
	if data.Description != "" {
		props["description"] = data.Description
	}

	goal, err := graph.CreateRelatedNode[entities.LearningGoal](ctx, s.repo, graph.CreateRelatedNodeRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: userFilter},
		Relationship: graph.RelCreate{Label: entities.UserCreatedLabel, Props: map[string]interface{}{"createdAt": now}},
		NewNode: graph.NewNode{
			Labels: []string{entities.LearningGoalLabel, entities.TopicLabel},
			Props:  props,
		},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Learning goal created", zap.String("id", goal.ID), zap.String("key", goal.Key))
	return goal, nil
}

// UpdateLearningGoalData carries partial updates; nil fields are untouched
type UpdateLearningGoalData struct {
	Name        *string
	Key         *string
	Type        *string
	Description *string
	Hidden      *bool
}

// Update merges the supplied fields into the learning goal
func (s *LearningGoalService) Update(ctx context.Context, filter graph.Filter, data UpdateLearningGoalData) (*entities.LearningGoal, error) {
	props := map[string]interface{}{}
	if data.Name != nil {
		props["name"] = *data.Name
	}
	if data.Key != nil {
		props["key"] = utils.GenerateURLKey(*data.Key)
	}
	if data.Type != nil {
		props["type"] = *data.Type
	}
	if data.Description != nil {
		props["description"] = *data.Description
	}
	if data.Hidden != nil {
		props["hidden"] = *data.Hidden
	}
	return graph.UpdateOne[entities.LearningGoal](ctx, s.repo, entities.LearningGoalLabel, filter, props, nowMs())
}

// Delete removes the learning goal and its incident relationships
func (s *LearningGoalService) Delete(ctx context.Context, filter graph.Filter) (int64, error) {
	return graph.DeleteOne(ctx, s.repo, entities.LearningGoalLabel, filter)
}

// GetByID returns the learning goal with the given _id, or nil
func (s *LearningGoalService) GetByID(ctx context.Context, goalID string) (*entities.LearningGoal, error) {
	return graph.FindOne[entities.LearningGoal](ctx, s.repo, entities.LearningGoalLabel, graph.Filter{"_id": goalID})
}

// GetByKey returns the learning goal with the given key, or nil
func (s *LearningGoalService) GetByKey(ctx context.Context, key string) (*entities.LearningGoal, error) {
	return graph.FindOne[entities.LearningGoal](ctx, s.repo, entities.LearningGoalLabel, graph.Filter{"key": key})
}

// ShowInTopic attaches the goal under a topic. The contextual key renames the
// goal within that topic without touching its canonical key.
func (s *LearningGoalService) ShowInTopic(ctx context.Context, goalID, topicID, contextualKey string) error {
	onCreate := map[string]interface{}{"createdAt": nowMs()}
	if contextualKey != "" {
		onCreate["contextualKey"] = contextualKey
	}
	_, err := graph.AttachUniqueNodes[entities.LearningGoal, entities.ShowedInRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningGoalLabel, Filter: graph.Filter{"_id": goalID}},
		Relationship: graph.RelMerge{Label: entities.LearningMaterialShowedInLabel, OnCreateProps: onCreate},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// HideFromTopic removes the SHOWN_IN relationship if present
func (s *LearningGoalService) HideFromTopic(ctx context.Context, goalID, topicID string) error {
	_, err := graph.DetachUniqueNodes[entities.LearningGoal, entities.Topic](ctx, s.repo, graph.DetachRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningGoalLabel, Filter: graph.Filter{"_id": goalID}},
		Relationship: graph.RelMatch{Label: entities.LearningMaterialShowedInLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// AttachSubGoal records that the goal requires subGoalID, which may be another
// learning goal or a plain topic.
func (s *LearningGoalService) AttachSubGoal(ctx context.Context, goalID, subGoalID string, strength *float64) error {
	onCreate := map[string]interface{}{"strength": entities.TopicHasPrerequisiteStrengthDefault}
	onMerge := map[string]interface{}{}
	if strength != nil {
		onCreate["strength"] = *strength
		onMerge["strength"] = *strength
	}
	_, err := graph.AttachUniqueNodes[entities.LearningGoal, entities.RequiresRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningGoalLabel, Filter: graph.Filter{"_id": goalID}},
		Relationship: graph.RelMerge{Label: entities.LearningGoalRequiresSubGoalLabel, OnCreateProps: onCreate, OnMergeProps: onMerge},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": subGoalID}},
	})
	return err
}

// DetachSubGoal removes the requirement if present
func (s *LearningGoalService) DetachSubGoal(ctx context.Context, goalID, subGoalID string) error {
	_, err := graph.DetachUniqueNodes[entities.LearningGoal, entities.Topic](ctx, s.repo, graph.DetachRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningGoalLabel, Filter: graph.Filter{"_id": goalID}},
		Relationship: graph.RelMatch{Label: entities.LearningGoalRequiresSubGoalLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": subGoalID}},
	})
	return err
}

// SubGoalRelation pairs one required sub goal with its relationship
type SubGoalRelation struct {
	SubGoal      entities.SubGoal
	Relationship entities.RequiresRel
}

// GetSubGoals lists what the goal requires. The destinations are heterogeneous
// so the query returns labels alongside properties and the union is resolved
// per row.
func (s *LearningGoalService) GetSubGoals(ctx context.Context, goalID string) ([]SubGoalRelation, error) {
	query := fmt.Sprintf(
		"MATCH (goal:%s {_id: $goalId})-[r:%s]->(subGoal) "+
			"RETURN properties(r) AS relationship, properties(subGoal) AS subGoal, labels(subGoal) AS labels",
		entities.LearningGoalLabel, entities.LearningGoalRequiresSubGoalLabel,
	)
	rows, err := s.repo.Store().Read(ctx, query, map[string]interface{}{"goalId": goalID})
	if err != nil {
		return nil, err
	}
	relations := make([]SubGoalRelation, 0, len(rows))
	for _, row := range rows {
		labels := asStringSlice(row["labels"])
		props, _ := row["subGoal"].(map[string]interface{})
		subGoal, err := entities.SubGoalFromNode(labels, props)
		if err != nil {
			return nil, err
		}
		var rel entities.RequiresRel
		if relProps, ok := row["relationship"].(map[string]interface{}); ok {
			if v, ok := relProps["strength"]; ok {
				switch value := v.(type) {
				case float64:
					rel.Strength = value
				case int64:
					rel.Strength = float64(value)
				}
			}
		}
		relations = append(relations, SubGoalRelation{SubGoal: *subGoal, Relationship: rel})
	}
	return relations, nil
}

// GetCreator returns the user that created the goal, or nil when the goal was
// seeded without one.
func (s *LearningGoalService) GetCreator(ctx context.Context, goalID string) (*entities.User, error) {
	item, err := graph.GetOptionalRelatedNode[entities.LearningGoal, entities.CreatedRel, entities.User](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningGoalLabel, Filter: graph.Filter{"_id": goalID}},
		Relationship: graph.RelMatch{Label: entities.UserCreatedLabel, Direction: graph.DirectionIn},
		Destination:  graph.NodeMatch{Label: entities.UserLabel},
	})
	if err != nil || item == nil {
		return nil, err
	}
	return &item.Destination, nil
}

func asStringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
