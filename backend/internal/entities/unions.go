package entities

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// LearningMaterialType discriminates the LearningMaterial union
type LearningMaterialType string

const (
	LearningMaterialTypeResource     LearningMaterialType = "Resource"
	LearningMaterialTypeLearningPath LearningMaterialType = "LearningPath"
)

// LearningMaterial is the tagged union of the node types that can be shown in
// a topic. Exactly one of Resource / LearningPath is set, per Type.
type LearningMaterial struct {
	Type         LearningMaterialType `json:"type"`
	Resource     *Resource            `json:"resource,omitempty"`
	LearningPath *LearningPath        `json:"learningPath,omitempty"`
}

// ID returns the `_id` of the underlying node
func (lm LearningMaterial) ID() string {
	switch lm.Type {
	case LearningMaterialTypeResource:
		return lm.Resource.ID
	case LearningMaterialTypeLearningPath:
		return lm.LearningPath.ID
	}
	return ""
}

// Name returns the name of the underlying node
func (lm LearningMaterial) Name() string {
	switch lm.Type {
	case LearningMaterialTypeResource:
		return lm.Resource.Name
	case LearningMaterialTypeLearningPath:
		return lm.LearningPath.Name
	}
	return ""
}

// LearningMaterialFromNode resolves the union variant from the node's labels
// and decodes its property map. Resolution is a pure function over the label
// set, not shape-sniffing.
func LearningMaterialFromNode(labels []string, props map[string]interface{}) (*LearningMaterial, error) {
	for _, label := range labels {
		switch label {
		case LearningPathLabel:
			var lp LearningPath
			if err := mapstructure.Decode(props, &lp); err != nil {
				return nil, fmt.Errorf("decoding learning path: %w", err)
			}
			return &LearningMaterial{Type: LearningMaterialTypeLearningPath, LearningPath: &lp}, nil
		case ResourceLabel:
			var res Resource
			if err := mapstructure.Decode(props, &res); err != nil {
				return nil, fmt.Errorf("decoding resource: %w", err)
			}
			return &LearningMaterial{Type: LearningMaterialTypeResource, Resource: &res}, nil
		}
	}
	return nil, fmt.Errorf("node labels %v carry no learning material label", labels)
}

// SubGoalType discriminates the SubGoal union
type SubGoalType string

const (
	SubGoalTypeLearningGoal SubGoalType = "LearningGoal"
	SubGoalTypeTopic        SubGoalType = "Topic"
)

// SubGoal is the tagged union of the node types a learning goal can require:
// either another learning goal or a plain topic.
type SubGoal struct {
	Type         SubGoalType   `json:"type"`
	LearningGoal *LearningGoal `json:"learningGoal,omitempty"`
	Topic        *Topic        `json:"topic,omitempty"`
}

// SubGoalFromNode resolves the union variant from the node's labels. A node
// carrying both Topic and LearningGoal labels resolves as a learning goal.
func SubGoalFromNode(labels []string, props map[string]interface{}) (*SubGoal, error) {
	for _, label := range labels {
		if label == LearningGoalLabel {
			var lg LearningGoal
			if err := mapstructure.Decode(props, &lg); err != nil {
				return nil, fmt.Errorf("decoding learning goal: %w", err)
			}
			return &SubGoal{Type: SubGoalTypeLearningGoal, LearningGoal: &lg}, nil
		}
	}
	for _, label := range labels {
		if label == TopicLabel {
			var t Topic
			if err := mapstructure.Decode(props, &t); err != nil {
				return nil, fmt.Errorf("decoding topic: %w", err)
			}
			return &SubGoal{Type: SubGoalTypeTopic, Topic: &t}, nil
		}
	}
	return nil, fmt.Errorf("node labels %v carry no sub goal label", labels)
}
