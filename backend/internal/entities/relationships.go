package entities

// Relationship property records. Each struct mirrors the property map carried
// by one relationship type; all timestamps are epoch milliseconds.

// CreatedRel is the CREATED relationship from a user to a node it created
type CreatedRel struct {
	CreatedAt int64 `json:"createdAt" mapstructure:"createdAt"`
}

// ShowedInRel is the SHOWN_IN relationship from a learning material or
// learning goal to the topic it appears under
type ShowedInRel struct {
	ContextualKey string `json:"contextualKey,omitempty" mapstructure:"contextualKey"`
	CreatedAt     int64  `json:"createdAt" mapstructure:"createdAt"`
}

// CoversRel is the COVERS relationship from a learning material to a topic
type CoversRel struct {
	CreatedByUserID string `json:"createdByUserId,omitempty" mapstructure:"createdByUserId"`
	CreatedAt       int64  `json:"createdAt" mapstructure:"createdAt"`
}

// SubTopicRel is the IS_SUBTOPIC_OF relationship between two topics. Index
// orders siblings; values are not necessarily contiguous.
type SubTopicRel struct {
	Index           float64 `json:"index" mapstructure:"index"`
	CreatedAt       int64   `json:"createdAt" mapstructure:"createdAt"`
	CreatedByUserID string  `json:"createdByUserId,omitempty" mapstructure:"createdByUserId"`
}

// PrerequisiteRel is the HAS_PREREQUISITE relationship between two topics
type PrerequisiteRel struct {
	Strength float64 `json:"strength" mapstructure:"strength"`
}

// RequiresRel is the REQUIRES relationship from a learning goal to a sub goal
type RequiresRel struct {
	Strength float64 `json:"strength" mapstructure:"strength"`
}

// KnowsRel is the KNOWS relationship from a user to a topic
type KnowsRel struct {
	Level *float64 `json:"level,omitempty" mapstructure:"level"`
}

// ConsumedRel is the CONSUMED relationship from a user to a resource. A nil
// ConsumedAt means the resource was opened but not completed.
type ConsumedRel struct {
	OpenedAt   *int64 `json:"openedAt,omitempty" mapstructure:"openedAt"`
	ConsumedAt *int64 `json:"consumedAt,omitempty" mapstructure:"consumedAt"`
}

// StartedRel is the STARTED relationship from a user to a learning path. A nil
// CompletedAt means the path is still in progress.
type StartedRel struct {
	StartedAt   int64  `json:"startedAt" mapstructure:"startedAt"`
	CompletedAt *int64 `json:"completedAt,omitempty" mapstructure:"completedAt"`
}

// RatedRel is the RATED relationship from a user to a learning material
type RatedRel struct {
	Value float64 `json:"value" mapstructure:"value"`
}

// VotedRel is the VOTED relationship from a user to a learning material
type VotedRel struct {
	Value float64 `json:"value" mapstructure:"value"`
}

// HasNextRel is the HAS_NEXT relationship between two resources in a series
type HasNextRel struct {
	CreatedAt int64 `json:"createdAt" mapstructure:"createdAt"`
}

// StartsWithRel is the STARTS_WITH relationship from a series resource to its
// first part
type StartsWithRel struct {
	CreatedAt int64 `json:"createdAt" mapstructure:"createdAt"`
}
