package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"learn-graph/backend/internal/entities"
	"learn-graph/backend/internal/graph"
	"learn-graph/backend/internal/recommend"
	"learn-graph/backend/internal/utils"
	"learn-graph/backend/pkg/logger"
)

// TopicService exposes topic operations by parameterizing the generic
// repository with topic labels and relationship types.
type TopicService struct {
	repo   *graph.Repository
	engine *recommend.Engine
	logger *zap.Logger
}

// NewTopicService creates a topic service
func NewTopicService(repo *graph.Repository, engine *recommend.Engine) *TopicService {
	return &TopicService{
		repo:   repo,
		engine: engine,
		logger: logger.Get(),
	}
}

// CreateTopicData carries the caller-supplied topic fields
type CreateTopicData struct {
	Name        string
	Key         string
	Description string
}

// Create creates a topic together with its CREATED edge from the acting user
// in one atomic write.
func (s *TopicService) Create(ctx context.Context, userFilter graph.Filter, data CreateTopicData) (*entities.Topic, error) {
	now := nowMs()
	key := data.Key
	if key == "" {
		key = data.Name
	}

	props := map[string]interface{}{
		"_id":       uuid.NewString(),
		"key":       utils.GenerateURLKey(key),
		"name":      data.Name,
		"createdAt": now,
		"updatedAt": now,
	}
	if data.Description != "" {
		props["description"] = data.Description
	}

	topic, err := graph.CreateRelatedNode[entities.Topic](ctx, s.repo, graph.CreateRelatedNodeRequest{
		Origin:       graph.NodeMatch{Label: entities.UserLabel, Filter: userFilter},
		Relationship: graph.RelCreate{Label: entities.UserCreatedLabel, Props: map[string]interface{}{"createdAt": now}},
		NewNode:      graph.NewNode{Labels: []string{entities.TopicLabel}, Props: props},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Topic created", zap.String("id", topic.ID), zap.String("key", topic.Key))
	return topic, nil
}

// UpdateTopicData carries partial topic updates; nil fields are untouched
type UpdateTopicData struct {
	Name        *string
	Key         *string
	Description *string
}

// Update merges the supplied fields into the topic and stamps updatedAt
func (s *TopicService) Update(ctx context.Context, filter graph.Filter, data UpdateTopicData) (*entities.Topic, error) {
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
	return graph.UpdateOne[entities.Topic](ctx, s.repo, entities.TopicLabel, filter, props, nowMs())
}

// Delete removes the topic and its incident relationships
func (s *TopicService) Delete(ctx context.Context, filter graph.Filter) (int64, error) {
	return graph.DeleteOne(ctx, s.repo, entities.TopicLabel, filter)
}

// GetByID returns the topic with the given _id, or nil
func (s *TopicService) GetByID(ctx context.Context, topicID string) (*entities.Topic, error) {
	return graph.FindOne[entities.Topic](ctx, s.repo, entities.TopicLabel, graph.Filter{"_id": topicID})
}

// GetByKey returns the topic with the given key, or nil
func (s *TopicService) GetByKey(ctx context.Context, key string) (*entities.Topic, error) {
	return graph.FindOne[entities.Topic](ctx, s.repo, entities.TopicLabel, graph.Filter{"key": key})
}

// SubTopicRelation pairs a parent and sub topic with their ordering relationship
type SubTopicRelation struct {
	ParentTopic  entities.Topic
	Relationship entities.SubTopicRel
	SubTopic     entities.Topic
}

// AttachSubTopic attaches subTopic under parentTopic. The index orders
// siblings; callers omitting it get the sentinel default, so sibling order
// must always be read from the relationship, never assumed dense.
func (s *TopicService) AttachSubTopic(ctx context.Context, parentTopicID, subTopicID string, index *float64, createdByUserID string) (*SubTopicRelation, error) {
	idx := entities.SubTopicIndexDefault
	if index != nil {
		idx = *index
	}
	onCreate := map[string]interface{}{
		"index":     idx,
		"createdAt": nowMs(),
	}
	if createdByUserID != "" {
		onCreate["createdByUserId"] = createdByUserID
	}

	result, err := graph.AttachUniqueNodes[entities.Topic, entities.SubTopicRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": subTopicID}},
		Relationship: graph.RelMerge{Label: entities.TopicIsSubTopicOfTopicLabel, OnCreateProps: onCreate},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": parentTopicID}},
	})
	if err != nil {
		return nil, err
	}
	return &SubTopicRelation{ParentTopic: result.Destination, Relationship: result.Relationship, SubTopic: result.Origin}, nil
}

// UpdateSubTopicIndex repositions an existing sub topic among its siblings.
// Repositioning a pair that was never attached creates the relationship with
// the same properties AttachSubTopic would stamp on it.
func (s *TopicService) UpdateSubTopicIndex(ctx context.Context, parentTopicID, subTopicID string, index float64) (*SubTopicRelation, error) {
	result, err := graph.AttachUniqueNodes[entities.Topic, entities.SubTopicRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin: graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": subTopicID}},
		Relationship: graph.RelMerge{
			Label:         entities.TopicIsSubTopicOfTopicLabel,
			OnCreateProps: map[string]interface{}{"index": index, "createdAt": nowMs()},
			OnMergeProps:  map[string]interface{}{"index": index},
		},
		Destination: graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": parentTopicID}},
	})
	if err != nil {
		return nil, err
	}
	return &SubTopicRelation{ParentTopic: result.Destination, Relationship: result.Relationship, SubTopic: result.Origin}, nil
}

// DetachSubTopic removes the parent/sub relationship; detaching an absent
// relationship returns both topics unchanged.
func (s *TopicService) DetachSubTopic(ctx context.Context, parentTopicID, subTopicID string) (subTopic, parentTopic *entities.Topic, err error) {
	result, err := graph.DetachUniqueNodes[entities.Topic, entities.Topic](ctx, s.repo, graph.DetachRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": subTopicID}},
		Relationship: graph.RelMatch{Label: entities.TopicIsSubTopicOfTopicLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": parentTopicID}},
	})
	if err != nil {
		return nil, nil, err
	}
	return &result.Origin, &result.Destination, nil
}

// GetSubTopics lists the direct sub topics ordered by their relationship index
func (s *TopicService) GetSubTopics(ctx context.Context, topicID string, direction graph.SortDirection, pagination *graph.Pagination) ([]SubTopicRelation, error) {
	items, err := graph.GetRelatedNodes[entities.Topic, entities.SubTopicRel, entities.Topic](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
		Relationship: graph.RelMatch{Label: entities.TopicIsSubTopicOfTopicLabel, Direction: graph.DirectionIn},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel},
		Sorting: &graph.Sorting{
			Entity:    graph.SortEntityRelationship,
			Field:     "index",
			Direction: direction,
		},
		Pagination: pagination,
	})
	if err != nil {
		return nil, err
	}
	relations := make([]SubTopicRelation, 0, len(items))
	for _, item := range items {
		relations = append(relations, SubTopicRelation{ParentTopic: item.Origin, Relationship: item.Relationship, SubTopic: item.Destination})
	}
	return relations, nil
}

// GetParentTopic returns the topic this one is a sub topic of, or nil
func (s *TopicService) GetParentTopic(ctx context.Context, topicID string) (*entities.Topic, error) {
	item, err := graph.GetOptionalRelatedNode[entities.Topic, entities.SubTopicRel, entities.Topic](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
		Relationship: graph.RelMatch{Label: entities.TopicIsSubTopicOfTopicLabel, Direction: graph.DirectionOut},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel},
	})
	if err != nil || item == nil {
		return nil, err
	}
	return &item.Destination, nil
}

// GetSubTopicsMaxIndex returns the highest sibling index under a topic, or nil
// when the topic has no sub topics.
func (s *TopicService) GetSubTopicsMaxIndex(ctx context.Context, topicID string) (*float64, error) {
	query := fmt.Sprintf(
		"MATCH (n:%s {_id: $topicId})<-[r:%s]-(:%s) RETURN r.index AS maxIndex ORDER BY r.index DESC LIMIT 1",
		entities.TopicLabel, entities.TopicIsSubTopicOfTopicLabel, entities.TopicLabel,
	)
	rows, err := s.repo.Store().Read(ctx, query, map[string]interface{}{"topicId": topicID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	switch v := rows[0]["maxIndex"].(type) {
	case float64:
		return &v, nil
	case int64:
		f := float64(v)
		return &f, nil
	}
	return nil, nil
}

// SearchSubTopics finds sub topics anywhere under a root topic whose name or
// description contains the query, with the traversal bounded against cycles.
func (s *TopicService) SearchSubTopics(ctx context.Context, rootTopicID, query string, pagination *graph.Pagination) ([]entities.Topic, error) {
	cypher := fmt.Sprintf(
		"MATCH (rootTopic:%s {_id: $rootTopicId})<-[:%s*1..%d]-(node:%s) "+
			"WHERE toLower(node.name) CONTAINS toLower($query) OR toLower(node.description) CONTAINS toLower($query) "+
			"RETURN DISTINCT properties(node) AS node",
		entities.TopicLabel, entities.TopicIsSubTopicOfTopicLabel, entities.SubTopicTraversalMaxHops, entities.TopicLabel,
	)
	params := map[string]interface{}{"rootTopicId": rootTopicID, "query": query}
	if pagination != nil {
		if pagination.Offset != nil {
			cypher += " SKIP $skip"
			params["skip"] = *pagination.Offset
		}
		if pagination.Limit != nil {
			cypher += " LIMIT $limit"
			params["limit"] = *pagination.Limit
		}
	}
	rows, err := s.repo.Store().Read(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	topics := make([]entities.Topic, 0, len(rows))
	for _, row := range rows {
		topic, err := decodeTopic(row["node"])
		if err != nil {
			return nil, err
		}
		topics = append(topics, *topic)
	}
	return topics, nil
}

// PrerequisiteRelation pairs a topic with one prerequisite relationship
type PrerequisiteRelation struct {
	Topic        entities.Topic
	Relationship entities.PrerequisiteRel
}

// AttachPrerequisite records that topicID requires prerequisiteTopicID first
func (s *TopicService) AttachPrerequisite(ctx context.Context, topicID, prerequisiteTopicID string, strength *float64) (*PrerequisiteRelation, error) {
	onCreate := map[string]interface{}{"strength": entities.TopicHasPrerequisiteStrengthDefault}
	onMerge := map[string]interface{}{}
	if strength != nil {
		onCreate["strength"] = *strength
		onMerge["strength"] = *strength
	}
	result, err := graph.AttachUniqueNodes[entities.Topic, entities.PrerequisiteRel, entities.Topic](ctx, s.repo, graph.AttachRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
		Relationship: graph.RelMerge{Label: entities.TopicHasPrerequisiteTopicLabel, OnCreateProps: onCreate, OnMergeProps: onMerge},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": prerequisiteTopicID}},
	})
	if err != nil {
		return nil, err
	}
	return &PrerequisiteRelation{Topic: result.Destination, Relationship: result.Relationship}, nil
}

// DetachPrerequisite removes the prerequisite relationship if present
func (s *TopicService) DetachPrerequisite(ctx context.Context, topicID, prerequisiteTopicID string) error {
	_, err := graph.DetachUniqueNodes[entities.Topic, entities.Topic](ctx, s.repo, graph.DetachRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
		Relationship: graph.RelMatch{Label: entities.TopicHasPrerequisiteTopicLabel},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": prerequisiteTopicID}},
	})
	return err
}

// GetPrerequisites lists the topics this one depends on
func (s *TopicService) GetPrerequisites(ctx context.Context, filter graph.Filter) ([]PrerequisiteRelation, error) {
	return s.prerequisiteRelations(ctx, filter, graph.DirectionOut)
}

// GetFollowUps lists the topics that depend on this one
func (s *TopicService) GetFollowUps(ctx context.Context, filter graph.Filter) ([]PrerequisiteRelation, error) {
	return s.prerequisiteRelations(ctx, filter, graph.DirectionIn)
}

func (s *TopicService) prerequisiteRelations(ctx context.Context, filter graph.Filter, direction graph.Direction) ([]PrerequisiteRelation, error) {
	items, err := graph.GetRelatedNodes[entities.Topic, entities.PrerequisiteRel, entities.Topic](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: filter},
		Relationship: graph.RelMatch{Label: entities.TopicHasPrerequisiteTopicLabel, Direction: direction},
		Destination:  graph.NodeMatch{Label: entities.TopicLabel},
	})
	if err != nil {
		return nil, err
	}
	relations := make([]PrerequisiteRelation, 0, len(items))
	for _, item := range items {
		relations = append(relations, PrerequisiteRelation{Topic: item.Destination, Relationship: item.Relationship})
	}
	return relations, nil
}

// GetCreator returns the user that created the topic
func (s *TopicService) GetCreator(ctx context.Context, topicID string) (*entities.User, error) {
	item, err := graph.GetRelatedNode[entities.Topic, entities.CreatedRel, entities.User](ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
		Relationship: graph.RelMatch{Label: entities.UserCreatedLabel, Direction: graph.DirectionIn},
		Destination:  graph.NodeMatch{Label: entities.UserLabel},
	})
	if err != nil {
		return nil, err
	}
	return &item.Destination, nil
}

// CountLearningMaterials totals the materials shown in a topic, independent of
// any page the caller fetched.
func (s *TopicService) CountLearningMaterials(ctx context.Context, topicID string) (int64, error) {
	return graph.CountRelatedNodes(ctx, s.repo, graph.RelatedNodesRequest{
		Origin:       graph.NodeMatch{Label: entities.TopicLabel, Filter: graph.Filter{"_id": topicID}},
		Relationship: graph.RelMatch{Label: entities.LearningMaterialShowedInLabel, Direction: graph.DirectionIn},
		Destination:  graph.NodeMatch{Label: entities.LearningMaterialLabel},
	})
}

// GetLearningMaterials returns the topic's materials in the requested order
func (s *TopicService) GetLearningMaterials(ctx context.Context, topicID string, userID *string, q recommend.MaterialsQuery) ([]entities.LearningMaterial, error) {
	return s.engine.GetTopicLearningMaterials(ctx, topicID, userID, q)
}

// TopicOverview aggregates the data a topic page needs
type TopicOverview struct {
	Topic          entities.Topic
	ParentTopic    *entities.Topic
	SubTopics      []SubTopicRelation
	Prerequisites  []PrerequisiteRelation
	MaterialsCount int64
}

// GetTopicOverview assembles the overview with one concurrent traversal per
// section. Each traversal runs on its own session; a failure of any cancels
// the rest.
func (s *TopicService) GetTopicOverview(ctx context.Context, topicID string) (*TopicOverview, error) {
	topic, err := s.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, nil
	}

	overview := &TopicOverview{Topic: *topic}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		parent, err := s.GetParentTopic(gctx, topicID)
		overview.ParentTopic = parent
		return err
	})
	g.Go(func() error {
		subTopics, err := s.GetSubTopics(gctx, topicID, graph.SortAscending, nil)
		overview.SubTopics = subTopics
		return err
	})
	g.Go(func() error {
		prerequisites, err := s.GetPrerequisites(gctx, graph.Filter{"_id": topicID})
		overview.Prerequisites = prerequisites
		return err
	})
	g.Go(func() error {
		count, err := s.CountLearningMaterials(gctx, topicID)
		overview.MaterialsCount = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}
