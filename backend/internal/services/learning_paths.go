package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learn-graph/backend/internal/entities"
	"learn-graph/backend/internal/graph"
	"learn-graph/backend/internal/utils"
	"learn-graph/backend/pkg/logger"
)

// LearningPathService exposes learning path operations
type LearningPathService struct {
	repo   *graph.Repository
	logger *zap.Logger
}

// NewLearningPathService creates a learning path service
func NewLearningPathService(repo *graph.Repository) *LearningPathService {
	return &LearningPathService{
		repo:   repo,
		logger: logger.Get(),
	}
}

// CreateLearningPathData carries the caller-supplied learning path fields
type CreateLearningPathData struct {
	Name        string
	Key         string
	Description string
	Public      bool
	DurationMs  *int64
}

// Create creates a learning path and its CREATED edge from the acting user.
// Paths start private unless the caller says otherwise; only public paths are
// visible to other users.
func (s *LearningPathService) Create(ctx context.Context, userFilter graph.Filter, data CreateLearningPathData) (*entities.LearningPath, error) {
	now := nowMs()
	key := data.Key
	if key == "" {
		key = data.Name
	}

	props := map[string]interface{}{
		"_id":       uuid.NewString(),
		"key":       utils.GenerateURLKey(key),
		"name":      data.Name,
		"public":    data.Public,
		"createdAt": now,
		"updatedAt": now,
	}
	if data.Description != "" {
		props["description"] = data.Description
	}
	if data.DurationMs != nil {
		props["durationMs"] = *data.DurationMs
	}

	path, err := graph.CreateRelatedNode[entities.LearningPath](ctx, s.repo, graph.CreateRelatedNodeRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: userFilter},
		Relationship: graph.RelCreate{Label: entities.UserCreatedLabel, Props: map[string]interface{}{"createdAt": now}},
		NewNode: graph.NewNode{
			Labels: []string{entities.LearningPathLabel, entities.LearningMaterialLabel},
			Props:  props,
		},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Learning path created", zap.String("id", path.ID), zap.Bool("public", path.Public))
	return path, nil
}

// UpdateLearningPathData carries partial updates; nil fields are untouched
type UpdateLearningPathData struct {
	Name        *string
	Key         *string
	Description *string
	Public      *bool
	DurationMs  *int64
}

// Update merges the supplied fields into the learning path
func (s *LearningPathService) Update(ctx context.Context, pathID string, data UpdateLearningPathData) (*entities.LearningPath, error) {
	props := map[string]interface{}{}
	if data.Name != nil {
		props["name"] = *data.Name
	}
	if data.Key != nil {
		props["key"] = utils.GenerateURLKey(*data.Key)
	}
	if data.Description != nil {
		props["description"] = *data.Description
	}
	if data.Public != nil {
		props["public"] = *data.Public
	}
	if data.DurationMs != nil {
		props["durationMs"] = *data.DurationMs
	}
	return graph.UpdateOne[entities.LearningPath](ctx, s.repo, entities.LearningPathLabel, graph.Filter{"_id": pathID}, props, nowMs())
}

// SetPublic flips the visibility of a learning path
func (s *LearningPathService) SetPublic(ctx context.Context, pathID string, public bool) (*entities.LearningPath, error) {
	return s.Update(ctx, pathID, UpdateLearningPathData{Public: &public})
}

// Delete removes the learning path and its incident relationships
func (s *LearningPathService) Delete(ctx context.Context, pathID string) (int64, error) {
	return graph.DeleteOne(ctx, s.repo, entities.LearningPathLabel, graph.Filter{"_id": pathID})
}

// GetByID returns the learning path with the given _id, or nil
func (s *LearningPathService) GetByID(ctx context.Context, pathID string) (*entities.LearningPath, error) {
	return graph.FindOne[entities.LearningPath](ctx, s.repo, entities.LearningPathLabel, graph.Filter{"_id": pathID})
}

// GetByKey returns the learning path with the given key, or nil
func (s *LearningPathService) GetByKey(ctx context.Context, key string) (*entities.LearningPath, error) {
	return graph.FindOne[entities.LearningPath](ctx, s.repo, entities.LearningPathLabel, graph.Filter{"key": key})
}

// ShowInTopic attaches the learning path to a topic through SHOWN_IN
func (s *LearningPathService) ShowInTopic(ctx context.Context, pathID, topicID string) error {
	_, err := graph.AttachUniqueNodes[entities.LearningPath, entities.ShowedInRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningPathLabel, Filter: graph.Filter{"_id": pathID}},
		Relationship: graph.RelMerge{Label: entities.LearningMaterialShowedInLabel, OnCreateProps: map[string]interface{}{"createdAt": nowMs()}},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// HideFromTopic removes the SHOWN_IN relationship if present
func (s *LearningPathService) HideFromTopic(ctx context.Context, pathID, topicID string) error {
	_, err := graph.DetachUniqueNodes[entities.LearningPath, entities.Topic](ctx, s.repo, graph.DetachRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningPathLabel, Filter: graph.Filter{"_id": pathID}},
		Relationship: graph.RelMatch{Label: entities.LearningMaterialShowedInLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// SetSeriesStart marks resourceID as the first resource of the path
func (s *LearningPathService) SetSeriesStart(ctx context.Context, pathID, resourceID string) error {
	_, err := graph.AttachUniqueNodes[entities.LearningPath, entities.StartsWithRel, entities.Resource](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningPathLabel, Filter: graph.Filter{"_id": pathID}},
		Relationship: graph.RelMerge{Label: entities.ResourceSeriesStartsWithLabel, OnCreateProps: map[string]interface{}{"createdAt": nowMs()}},
		Destination:  graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
	})
	return err
}

// Start records that the user started the path. Restarting an already started
// path keeps the original startedAt.
func (s *LearningPathService) Start(ctx context.Context, userID, pathID string) (*entities.StartedRel, error) {
	result, err := graph.AttachUniqueNodes[entities.User, entities.StartedRel, entities.LearningPath](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMerge{Label: entities.UserStartedLearningPathLabel, OnCreateProps: map[string]interface{}{"startedAt": nowMs(), "completedAt": nil}},
		Destination:  graph.NodeMatch{Label: entities.LearningPathLabel, Filter: graph.Filter{"_id": pathID}},
	})
	if err != nil {
		return nil, err
	}
	return &result.Relationship, nil
}

// Complete stamps completedAt on the user's STARTED relationship. Completing a
// path the user never started also creates the relationship, stamping both
// timestamps at once.
func (s *LearningPathService) Complete(ctx context.Context, userID, pathID string, completedAt *int64) (*entities.StartedRel, error) {
	now := nowMs()
	done := now
	if completedAt != nil {
		done = *completedAt
	}
	result, err := graph.AttachUniqueNodes[entities.User, entities.StartedRel, entities.LearningPath](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMerge{
			Label:         entities.UserStartedLearningPathLabel,
			OnCreateProps: map[string]interface{}{"startedAt": now, "completedAt": done},
			OnMergeProps:  map[string]interface{}{"completedAt": done},
		},
		Destination: graph.NodeMatch{Label: entities.LearningPathLabel, Filter: graph.Filter{"_id": pathID}},
	})
	if err != nil {
		return nil, err
	}
	return &result.Relationship, nil
}

// GetStarted returns the user's STARTED relationship for the path, or nil when
// the user never started it.
func (s *LearningPathService) GetStarted(ctx context.Context, userID, pathID string) (*entities.StartedRel, error) {
	item, err := graph.GetOptionalRelatedNode[entities.User, entities.StartedRel, entities.LearningPath](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMatch{Label: entities.UserStartedLearningPathLabel},
		Destination:  graph.NodeMatch{Label: entities.LearningPathLabel, Filter: graph.Filter{"_id": pathID}},
	})
	if err != nil || item == nil {
		return nil, err
	}
	return &item.Relationship, nil
}

// GetCreator returns the user that created the path
func (s *LearningPathService) GetCreator(ctx context.Context, pathID string) (*entities.User, error) {
	item, err := graph.GetRelatedNode[entities.LearningPath, entities.CreatedRel, entities.User](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.LearningPathLabel, Filter: graph.Filter{"_id": pathID}},
		Relationship: graph.RelMatch{Label: entities.UserCreatedLabel, Direction: graph.DirectionIn},
		Destination:  graph.NodeMatch{Label: entities.UserLabel},
	})
	if err != nil {
		return nil, err
	}
	return &item.Destination, nil
}
