package entities

// ResourceType classifies a resource node
type ResourceType string

const (
	ResourceTypeArticle        ResourceType = "article"
	ResourceTypeArticleSeries  ResourceType = "article_series"
	ResourceTypeCourse         ResourceType = "course"
	ResourceTypePodcast        ResourceType = "podcast"
	ResourceTypePodcastEpisode ResourceType = "podcast_episode"
	ResourceTypeVideo          ResourceType = "youtube_video"
	ResourceTypeVideoSeries    ResourceType = "youtube_playlist"
	ResourceTypeBook           ResourceType = "book"
	ResourceTypeExercise       ResourceType = "exercise"
	ResourceTypeProject        ResourceType = "project"
	ResourceTypeDocumentation  ResourceType = "documentation"
	ResourceTypeTalk           ResourceType = "talk"
	ResourceTypeTweet          ResourceType = "tweet"
	ResourceTypeOther          ResourceType = "other"
)

// ResourceMediaType classifies how a resource is consumed
type ResourceMediaType string

const (
	ResourceMediaTypeText        ResourceMediaType = "text"
	ResourceMediaTypeVideo       ResourceMediaType = "video"
	ResourceMediaTypeAudio       ResourceMediaType = "audio"
	ResourceMediaTypeImage       ResourceMediaType = "image"
	ResourceMediaTypeInteractive ResourceMediaType = "interactive_content"
)

// User represents a registered user
type User struct {
	ID          string `json:"_id" mapstructure:"_id"`
	Key         string `json:"key" mapstructure:"key"`
	DisplayName string `json:"displayName" mapstructure:"displayName"`
	Email       string `json:"email,omitempty" mapstructure:"email"`
}

// Topic represents a topic node. Timestamps are epoch milliseconds.
type Topic struct {
	ID          string `json:"_id" mapstructure:"_id"`
	Key         string `json:"key" mapstructure:"key"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	CreatedAt   int64  `json:"createdAt" mapstructure:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt" mapstructure:"updatedAt"`
}

// LearningGoal represents a learning goal node. A learning goal node also
// carries the Topic label; Type and Hidden are the discriminated extension
// fields of that shared node.
type LearningGoal struct {
	ID          string `json:"_id" mapstructure:"_id"`
	Key         string `json:"key" mapstructure:"key"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	Type        string `json:"type" mapstructure:"type"`
	Hidden      bool   `json:"hidden" mapstructure:"hidden"`
	CreatedAt   int64  `json:"createdAt" mapstructure:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt" mapstructure:"updatedAt"`
}

// Resource represents a learning resource node
type Resource struct {
	ID          string            `json:"_id" mapstructure:"_id"`
	Name        string            `json:"name" mapstructure:"name"`
	Type        ResourceType      `json:"type" mapstructure:"type"`
	MediaType   ResourceMediaType `json:"mediaType" mapstructure:"mediaType"`
	URL         string            `json:"url" mapstructure:"url"`
	Description string            `json:"description,omitempty" mapstructure:"description"`
	DurationMs  *int64            `json:"durationMs,omitempty" mapstructure:"durationMs"`
	CreatedAt   int64             `json:"createdAt" mapstructure:"createdAt"`
	UpdatedAt   int64             `json:"updatedAt" mapstructure:"updatedAt"`
}

// LearningPath represents a curated sequence of resources
type LearningPath struct {
	ID          string `json:"_id" mapstructure:"_id"`
	Key         string `json:"key" mapstructure:"key"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	Public      bool   `json:"public" mapstructure:"public"`
	DurationMs  *int64 `json:"durationMs,omitempty" mapstructure:"durationMs"`
	CreatedAt   int64  `json:"createdAt" mapstructure:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt" mapstructure:"updatedAt"`
}
