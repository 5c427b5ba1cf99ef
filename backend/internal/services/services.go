package services

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"learn-graph/backend/internal/entities"
	"learn-graph/backend/internal/graph"
	"learn-graph/backend/internal/recommend"
	"learn-graph/backend/internal/webmeta"
	"learn-graph/backend/pkg/config"
)

// Services wires the per-entity services over the shared store, generic
// repository and scoring engine.
type Services struct {
	Topics        *TopicService
	Resources     *ResourceService
	LearningGoals *LearningGoalService
	LearningPaths *LearningPathService
	Users         *UserService
}

// New constructs all domain services
func New(store *graph.Store, cfg *config.Config) *Services {
	repo := graph.NewRepository(store)
	engine := recommend.NewEngine(store, cfg.LearningPathBonus)
	fetcher := webmeta.NewFetcher()

	return &Services{
		Topics:        NewTopicService(repo, engine),
		Resources:     NewResourceService(repo, fetcher),
		LearningGoals: NewLearningGoalService(repo),
		LearningPaths: NewLearningPathService(repo),
		Users:         NewUserService(repo),
	}
}

// nowMs returns the current time as epoch milliseconds, the timestamp unit
// used across all node and relationship properties.
func nowMs() int64 {
	return time.Now().UnixMilli()
}

// decodeInto decodes a raw property map returned by a bespoke query
func decodeInto(props map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(props); err != nil {
		return fmt.Errorf("failed to decode node properties: %w", err)
	}
	return nil
}

func decodeTopic(value interface{}) (*entities.Topic, error) {
	props, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected node value of type %T", value)
	}
	var topic entities.Topic
	if err := decodeInto(props, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}
