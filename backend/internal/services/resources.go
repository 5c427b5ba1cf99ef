package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learn-graph/backend/internal/entities"
	"learn-graph/backend/internal/graph"
	"learn-graph/backend/internal/webmeta"
	"learn-graph/backend/pkg/logger"
)

// ResourceService exposes resource operations over the generic repository
type ResourceService struct {
	repo    *graph.Repository
	fetcher *webmeta.Fetcher
	logger  *zap.Logger
}

// NewResourceService creates a resource service
func NewResourceService(repo *graph.Repository, fetcher *webmeta.Fetcher) *ResourceService {
	return &ResourceService{
		repo:    repo,
		fetcher: fetcher,
		logger:  logger.Get(),
	}
}

// CreateResourceData carries the caller-supplied resource fields
type CreateResourceData struct {
	Name        string
	Type        entities.ResourceType
	MediaType   entities.ResourceMediaType
	URL         string
	Description string
	DurationMs  *int64
}

// Create creates a resource and its CREATED edge from the acting user. Missing
// name/description are prefilled from the page metadata when the URL yields
// any; scraping failures are logged and ignored.
func (s *ResourceService) Create(ctx context.Context, userFilter graph.Filter, data CreateResourceData) (*entities.Resource, error) {
	if (data.Name == "" || data.Description == "") && s.fetcher != nil && data.URL != "" {
		if meta, err := s.fetcher.Fetch(ctx, data.URL); err != nil {
			s.logger.Warn("Resource metadata scrape failed", zap.String("url", data.URL), zap.Error(err))
		} else {
			if data.Name == "" {
				data.Name = meta.Title
			}
			if data.Description == "" {
				data.Description = meta.Description
			}
		}
	}

	now := nowMs()
	props := map[string]interface{}{
		"_id":       uuid.NewString(),
		"name":      data.Name,
		"type":      string(data.Type),
		"mediaType": string(data.MediaType),
		"url":       data.URL,
		"createdAt": now,
		"updatedAt": now,
	}
	if data.Description != "" {
		props["description"] = data.Description
	}
	if data.DurationMs != nil {
		props["durationMs"] = *data.DurationMs
	}

	return graph.CreateRelatedNode[entities.Resource](ctx, s.repo, graph.CreateRelatedNodeRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: userFilter},
		Relationship: graph.RelCreate{Label: entities.UserCreatedLabel, Props: map[string]interface{}{"createdAt": now}},
		NewNode: graph.NewNode{
			Labels: []string{entities.ResourceLabel, entities.LearningMaterialLabel},
			Props:  props,
		},
	})
}

// UpdateResourceData carries partial resource updates; nil fields are untouched
type UpdateResourceData struct {
	Name        *string
	Type        *entities.ResourceType
	MediaType   *entities.ResourceMediaType
	URL         *string
	Description *string
	DurationMs  *int64
}

// Update merges the supplied fields into the resource
func (s *ResourceService) Update(ctx context.Context, resourceID string, data UpdateResourceData) (*entities.Resource, error) {
	props := map[string]interface{}{}
	if data.Name != nil {
		props["name"] = *data.Name
	}
	if data.Type != nil {
		props["type"] = string(*data.Type)
	}
	if data.MediaType != nil {
		props["mediaType"] = string(*data.MediaType)
	}
	if data.URL != nil {
		props["url"] = *data.URL
	}
	if data.Description != nil {
		props["description"] = *data.Description
	}
	if data.DurationMs != nil {
		props["durationMs"] = *data.DurationMs
	}
	return graph.UpdateOne[entities.Resource](ctx, s.repo, entities.ResourceLabel, graph.Filter{"_id": resourceID}, props, nowMs())
}

// GetByID returns the resource with the given _id, or nil
func (s *ResourceService) GetByID(ctx context.Context, resourceID string) (*entities.Resource, error) {
	return graph.FindOne[entities.Resource](ctx, s.repo, entities.ResourceLabel, graph.Filter{"_id": resourceID})
}

// Delete removes the resource and its incident relationships
func (s *ResourceService) Delete(ctx context.Context, resourceID string) (int64, error) {
	return graph.DeleteOne(ctx, s.repo, entities.ResourceLabel, graph.Filter{"_id": resourceID})
}

// DeleteCreatedBy deletes a resource only when the given user created it.
// Returns 0 without error when the user is not the creator.
func (s *ResourceService) DeleteCreatedBy(ctx context.Context, creatorFilter graph.Filter, resourceID string) (int64, error) {
	creator, err := s.GetCreator(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	for field, expected := range creatorFilter {
		switch field {
		case "_id":
			if creator.ID != expected {
				return 0, nil
			}
		case "key":
			if creator.Key != expected {
				return 0, nil
			}
		}
	}
	return s.Delete(ctx, resourceID)
}

// GetCreator returns the user that created the resource
func (s *ResourceService) GetCreator(ctx context.Context, resourceID string) (*entities.User, error) {
	item, err := graph.GetRelatedNode[entities.Resource, entities.CreatedRel, entities.User](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
		Relationship: graph.RelMatch{Label: entities.UserCreatedLabel, Direction: graph.DirectionIn},
		Destination:  graph.NodeMatch{Label: entities.UserLabel},
	})
	if err != nil {
		return nil, err
	}
	return &item.Destination, nil
}

// ShowInTopic attaches the resource to a topic through SHOWN_IN
func (s *ResourceService) ShowInTopic(ctx context.Context, resourceID, topicID string) error {
	_, err := graph.AttachUniqueNodes[entities.Resource, entities.ShowedInRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
		Relationship: graph.RelMerge{Label: entities.LearningMaterialShowedInLabel, OnCreateProps: map[string]interface{}{"createdAt": nowMs()}},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// HideFromTopic removes the SHOWN_IN relationship if present
func (s *ResourceService) HideFromTopic(ctx context.Context, resourceID, topicID string) error {
	_, err := graph.DetachUniqueNodes[entities.Resource, entities.Topic](ctx, s.repo, graph.DetachRequest{
		Origin:       graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
		Relationship: graph.RelMatch{Label: entities.LearningMaterialShowedInLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// AttachCovers marks the resource as covering a topic
func (s *ResourceService) AttachCovers(ctx context.Context, resourceID, topicID, byUserID string) error {
	onCreate := map[string]interface{}{"createdAt": nowMs()}
	if byUserID != "" {
		onCreate["createdByUserId"] = byUserID
	}
	_, err := graph.AttachUniqueNodes[entities.Resource, entities.CoversRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
		Relationship: graph.RelMerge{Label: entities.LearningMaterialCoversTopicLabel, OnCreateProps: onCreate},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// DetachCovers removes one covers relationship if present
func (s *ResourceService) DetachCovers(ctx context.Context, resourceID, topicID string) error {
	_, err := graph.DetachUniqueNodes[entities.Resource, entities.Topic](ctx, s.repo, graph.DetachRequest{
		Origin:       graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
		Relationship: graph.RelMatch{Label: entities.LearningMaterialCoversTopicLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
	})
	return err
}

// GetCoveredTopics lists the topics the resource covers
func (s *ResourceService) GetCoveredTopics(ctx context.Context, resourceID string) ([]entities.Topic, error) {
	items, err := graph.GetRelatedNodes[entities.Resource, entities.CoversRel, entities.Topic](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
		Relationship: graph.RelMatch{Label: entities.LearningMaterialCoversTopicLabel},
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

// Rate upserts the user's rating of a learning material
func (s *ResourceService) Rate(ctx context.Context, userID, materialID string, value float64) error {
	props := map[string]interface{}{"value": value}
	_, err := graph.AttachUniqueNodes[entities.User, entities.RatedRel, entities.Resource](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMerge{Label: entities.UserRatedLearningMaterialLabel, OnCreateProps: props, OnMergeProps: props},
		Destination:  graph.NodeMatch{Label: entities.LearningMaterialLabel, Filter: graph.Filter{"_id": materialID}},
	})
	return err
}

// Vote upserts the user's vote on a learning material
func (s *ResourceService) Vote(ctx context.Context, userID, materialID string, value float64) error {
	props := map[string]interface{}{"value": value}
	_, err := graph.AttachUniqueNodes[entities.User, entities.VotedRel, entities.Resource](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMerge{Label: entities.UserVotedLearningMaterialLabel, OnCreateProps: props, OnMergeProps: props},
		Destination:  graph.NodeMatch{Label: entities.LearningMaterialLabel, Filter: graph.Filter{"_id": materialID}},
	})
	return err
}

// GetRating returns the mean rating of a learning material, or nil when it has
// no ratings (absence of ratings is not a zero rating).
func (s *ResourceService) GetRating(ctx context.Context, materialID string) (*float64, error) {
	query := fmt.Sprintf(
		"MATCH (lm:%s {_id: $materialId})<-[r:%s]-(:%s) RETURN avg(r.value) AS rating",
		entities.LearningMaterialLabel, entities.UserRatedLearningMaterialLabel, entities.UserLabel,
	)
	rows, err := s.repo.Store().Read(ctx, query, map[string]interface{}{"materialId": materialID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0]["rating"] == nil {
		return nil, nil
	}
	switch v := rows[0]["rating"].(type) {
	case float64:
		return &v, nil
	case int64:
		f := float64(v)
		return &f, nil
	}
	return nil, nil
}

// GetUpvoteCount sums the votes on a learning material
func (s *ResourceService) GetUpvoteCount(ctx context.Context, materialID string) (int64, error) {
	query := fmt.Sprintf(
		"MATCH (lm:%s {_id: $materialId})<-[v:%s]-(:%s) RETURN sum(v.value) AS upvoteCount",
		entities.LearningMaterialLabel, entities.UserVotedLearningMaterialLabel, entities.UserLabel,
	)
	rows, err := s.repo.Store().Read(ctx, query, map[string]interface{}{"materialId": materialID})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	switch v := rows[0]["upvoteCount"].(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	}
	return 0, nil
}

// SetConsumed upserts the user's consumption state of a resource. A nil
// consumedAt records the resource as opened but not completed.
func (s *ResourceService) SetConsumed(ctx context.Context, userID, resourceID string, consumedAt *int64) error {
	props := map[string]interface{}{
		"openedAt":   nowMs(),
		"consumedAt": nil,
	}
	if consumedAt != nil {
		props["consumedAt"] = *consumedAt
	}
	merge := map[string]interface{}{"consumedAt": props["consumedAt"]}
	_, err := graph.AttachUniqueNodes[entities.User, entities.ConsumedRel, entities.Resource](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMerge{Label: entities.UserConsumedResourceLabel, OnCreateProps: props, OnMergeProps: merge},
		Destination:  graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
	})
	return err
}

// GetConsumed returns the user's consumption relationship for a resource, or
// nil when the user never opened it.
func (s *ResourceService) GetConsumed(ctx context.Context, userID, resourceID string) (*entities.ConsumedRel, error) {
	item, err := graph.GetOptionalRelatedNode[entities.User, entities.ConsumedRel, entities.Resource](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: graph.Filter{"_id": userID}},
		Relationship: graph.RelMatch{Label: entities.UserConsumedResourceLabel},
		Destination:  graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
	})
	if err != nil || item == nil {
		return nil, err
	}
	return &item.Relationship, nil
}

// SetSeriesStart marks firstResourceID as the first part of a series
func (s *ResourceService) SetSeriesStart(ctx context.Context, seriesResourceID, firstResourceID string) error {
	_, err := graph.AttachUniqueNodes[entities.Resource, entities.StartsWithRel, entities.Resource](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": seriesResourceID}},
		Relationship: graph.RelMerge{Label: entities.ResourceSeriesStartsWithLabel, OnCreateProps: map[string]interface{}{"createdAt": nowMs()}},
		Destination:  graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": firstResourceID}},
	})
	return err
}

// AttachNext chains nextResourceID after resourceID in its series
func (s *ResourceService) AttachNext(ctx context.Context, resourceID, nextResourceID string) error {
	_, err := graph.AttachUniqueNodes[entities.Resource, entities.HasNextRel, entities.Resource](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": resourceID}},
		Relationship: graph.RelMerge{Label: entities.ResourceHasNextResourceLabel, OnCreateProps: map[string]interface{}{"createdAt": nowMs()}},
		Destination:  graph.NodeMatch{Label: entities.ResourceLabel, Filter: graph.Filter{"_id": nextResourceID}},
	})
	return err
}
