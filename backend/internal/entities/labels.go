package entities

// Node labels. These are compile-time constants and are the only identifiers
// ever interpolated into query text; everything else travels as bound
// parameters.
const (
	UserLabel             = "User"
	TopicLabel            = "Topic"
	LearningGoalLabel     = "LearningGoal"
	ResourceLabel         = "Resource"
	LearningPathLabel     = "LearningPath"
	LearningMaterialLabel = "LearningMaterial"
)

// Relationship types
const (
	UserCreatedLabel                 = "CREATED"
	LearningMaterialShowedInLabel    = "SHOWN_IN"
	LearningMaterialCoversTopicLabel = "COVERS"
	TopicIsSubTopicOfTopicLabel      = "IS_SUBTOPIC_OF"
	TopicHasPrerequisiteTopicLabel   = "HAS_PREREQUISITE"
	LearningGoalRequiresSubGoalLabel = "REQUIRES"
	UserKnowsTopicLabel              = "KNOWS"
	UserConsumedResourceLabel        = "CONSUMED"
	UserStartedLearningPathLabel     = "STARTED"
	UserRatedLearningMaterialLabel   = "RATED"
	UserVotedLearningMaterialLabel   = "VOTED"
	ResourceHasNextResourceLabel     = "HAS_NEXT"
	ResourceSeriesStartsWithLabel    = "STARTS_WITH"
)

const (
	// TopicHasPrerequisiteStrengthDefault is the strength stamped on a
	// HAS_PREREQUISITE relationship when the caller does not supply one.
	TopicHasPrerequisiteStrengthDefault = float64(100)

	// SubTopicIndexDefault is the sentinel index for subtopics attached without
	// an explicit position. Index values order siblings but are not dense.
	SubTopicIndexDefault = float64(10000000)
)

// Traversal hop bounds. Hierarchical relationships are not guaranteed acyclic
// by the data layer, so every variable-length traversal carries an explicit
// bound instead of recursing freely.
const (
	PrerequisiteTraversalMaxHops = 5
	SubTopicTraversalMaxHops     = 20
	SeriesTraversalMaxHops       = 100
)
