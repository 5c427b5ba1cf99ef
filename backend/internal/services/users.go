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

// UserService exposes user operations. Users are the one node type created
// without an origin, so creation goes through the store directly instead of
// the relationship repository.
type UserService struct {
	repo   *graph.Repository
	logger *zap.Logger
}

// NewUserService creates a user service
func NewUserService(repo *graph.Repository) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.Get(),
	}
}

// CreateUserData carries the caller-supplied user fields
type CreateUserData struct {
	DisplayName string
	Key         string
	Email       string
}

// Create creates a user node
func (s *UserService) Create(ctx context.Context, data CreateUserData) (*entities.User, error) {
	key := data.Key
	if key == "" {
		key = data.DisplayName
	}
	props := map[string]interface{}{
		"_id":         uuid.NewString(),
		"key":         utils.GenerateURLKey(key),
		"displayName": data.DisplayName,
		"createdAt":   nowMs(),
	}
	if data.Email != "" {
		props["email"] = data.Email
	}

	query := fmt.Sprintf("CREATE (u:%s $props) RETURN properties(u) AS node", entities.UserLabel)
	rows, err := s.repo.Store().Write(ctx, query, map[string]interface{}{"props": props})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("user creation returned no row")
	}
	nodeProps, _ := rows[0]["node"].(map[string]interface{})
	var user entities.User
	if err := decodeInto(nodeProps, &user); err != nil {
		return nil, err
	}
	s.logger.Info("User created", zap.String("id", user.ID), zap.String("key", user.Key))
	return &user, nil
}

// GetByID returns the user with the given _id, or nil
func (s *UserService) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	return graph.FindOne[entities.User](ctx, s.repo, entities.UserLabel, graph.Filter{"_id": userID})
}

// GetByKey returns the user with the given key, or nil
func (s *UserService) GetByKey(ctx context.Context, key string) (*entities.User, error) {
	return graph.FindOne[entities.User](ctx, s.repo, entities.UserLabel, graph.Filter{"key": key})
}

// Delete removes the user and all their relationships
func (s *UserService) Delete(ctx context.Context, userID string) (int64, error) {
	return graph.DeleteOne(ctx, s.repo, entities.UserLabel, graph.Filter{"_id": userID})
}

// SetKnows upserts the user's knowledge of a topic. A nil level records bare
// familiarity; recommendations only test for the relationship's presence.
func (s *UserService) SetKnows(ctx context.Context, userID, topicID string, level *float64) error {
	props := map[string]interface{}{"createdAt": nowMs()}
	merge := map[string]interface{}{}
	if level != nil {
		props["level"] = *level
		merge["level"] = *level
	}
	_, err := graph.AttachUniqueNodes[entities.User, entities.KnowsRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMerge{Label: entities.UserKnowsTopicLabel, OnCreateProps: props, OnMergeProps: merge},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// UnsetKnows removes the user's knowledge relationship if present
func (s *UserService) UnsetKnows(ctx context.Context, userID, topicID string) error {
	_, err := graph.DetachUniqueNodes[entities.User, entities.Topic](ctx, s.repo, graph.DetachRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMatch{Label: entities.UserKnowsTopicLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// GetKnownTopics lists the topics the user knows
func (s *UserService) GetKnownTopics(ctx context.Context, userID string) ([]entities.Topic, error) {
	items, err := graph.GetRelatedNodes[entities.User, entities.KnowsRel, entities.Topic](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMatch{Label: entities.UserKnowsTopicLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel},
	})
	if err != nil {
		return nil, err
	}
	topics := make([]entities.Topic, 0, len(items))
	for _, item := range items {
		topics = append(topics, item.Destination)
	}
	return topics, nil
}
