package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"learn-graph/backend/internal/entities"
	"learn-graph/backend/internal/graph"
	"learn-graph/backend/internal/services"
	"learn-graph/backend/pkg/config"
	"learn-graph/backend/pkg/logger"
)

func main() {
	userKey := flag.String("user-key", "seed_user", "Key of the user the sample content is created as")
	force := flag.Bool("force", false, "Seed even when the sample user already exists")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	store, err := graph.NewStore(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to create graph store", zap.Error(err))
	}
	defer store.Close(context.Background())

	ctx := context.Background()
	if err := store.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify graph connectivity", zap.Error(err))
	}

	// Create constraints and indexes
	log.Info("Creating constraints...")
	if err := createConstraints(ctx, store); err != nil {
		log.Warn("Failed to create some constraints (may already exist)", zap.Error(err))
	}
	log.Info("Creating indexes...")
	if err := createIndexes(ctx, store); err != nil {
		log.Warn("Failed to create some indexes (may already exist)", zap.Error(err))
	}

	svc := services.New(store, cfg)

	existing, err := svc.Users.GetByKey(ctx, *userKey)
	if err != nil {
		log.Fatal("Failed to look up sample user", zap.Error(err))
	}
	if existing != nil && !*force {
		log.Info("Sample user already exists, skipping seeding (use -force to reseed)",
			zap.String("user_key", *userKey),
		)
		os.Exit(0)
	}

	user := existing
	if user == nil {
		user, err = svc.Users.Create(ctx, services.CreateUserData{DisplayName: "Seed User", Key: *userKey})
		if err != nil {
			log.Fatal("Failed to create sample user", zap.Error(err))
		}
	}
	userFilter := graph.Filter{"_id": user.ID}

	// Topic tree: programming > go > {goroutines, channels}
	log.Info("Creating sample topics...")
	topicIDs := map[string]string{}
	sampleTopics := []struct {
		name        string
		description string
	}{
		{"Programming", "Writing computer programs"},
		{"Go", "The Go programming language"},
		{"Goroutines", "Concurrent execution in Go"},
		{"Channels", "Typed conduits between goroutines"},
	}
	for _, t := range sampleTopics {
		topic, err := svc.Topics.Create(ctx, userFilter, services.CreateTopicData{Name: t.name, Description: t.description})
		if err != nil {
			log.Fatal("Failed to create topic", zap.String("topic", t.name), zap.Error(err))
		}
		topicIDs[t.name] = topic.ID
	}

	subTopicLinks := []struct {
		parent string
		sub    string
	}{
		{"Programming", "Go"},
		{"Go", "Goroutines"},
		{"Go", "Channels"},
	}
	for i, link := range subTopicLinks {
		index := float64(i + 1)
		if _, err := svc.Topics.AttachSubTopic(ctx, topicIDs[link.parent], topicIDs[link.sub], &index, user.ID); err != nil {
			log.Fatal("Failed to attach sub topic", zap.String("sub", link.sub), zap.Error(err))
		}
	}

	// Channels build on goroutines
	if _, err := svc.Topics.AttachPrerequisite(ctx, topicIDs["Channels"], topicIDs["Goroutines"], nil); err != nil {
		log.Fatal("Failed to attach prerequisite", zap.Error(err))
	}

	// Resources shown in the Go topic, one three-part article series among them
	log.Info("Creating sample resources...")
	resourceIDs := map[string]string{}
	sampleResources := []struct {
		name      string
		url       string
		rtype     entities.ResourceType
		mediaType entities.ResourceMediaType
		covers    []string
	}{
		{"A Tour of Go", "https://go.dev/tour/", entities.ResourceTypeCourse, entities.ResourceMediaTypeInteractive, []string{"Go"}},
		{"Concurrency Patterns, Part 1", "https://example.com/concurrency-1", entities.ResourceTypeArticle, entities.ResourceMediaTypeText, []string{"Goroutines"}},
		{"Concurrency Patterns, Part 2", "https://example.com/concurrency-2", entities.ResourceTypeArticle, entities.ResourceMediaTypeText, []string{"Channels"}},
		{"Concurrency Patterns, Part 3", "https://example.com/concurrency-3", entities.ResourceTypeArticle, entities.ResourceMediaTypeText, []string{"Channels"}},
	}
	for _, r := range sampleResources {
		resource, err := svc.Resources.Create(ctx, userFilter, services.CreateResourceData{
			Name:      r.name,
			Type:      r.rtype,
			MediaType: r.mediaType,
			URL:       r.url,
		})
		if err != nil {
			log.Fatal("Failed to create resource", zap.String("resource", r.name), zap.Error(err))
		}
		resourceIDs[r.name] = resource.ID

		if err := svc.Resources.ShowInTopic(ctx, resource.ID, topicIDs["Go"]); err != nil {
			log.Fatal("Failed to show resource in topic", zap.Error(err))
		}
		for _, topicName := range r.covers {
			if err := svc.Resources.AttachCovers(ctx, resource.ID, topicIDs[topicName], user.ID); err != nil {
				log.Fatal("Failed to attach covered topic", zap.Error(err))
			}
		}
	}

	// Chain the series
	seriesOrder := []string{"Concurrency Patterns, Part 1", "Concurrency Patterns, Part 2", "Concurrency Patterns, Part 3"}
	for i := 0; i < len(seriesOrder)-1; i++ {
		if err := svc.Resources.AttachNext(ctx, resourceIDs[seriesOrder[i]], resourceIDs[seriesOrder[i+1]]); err != nil {
			log.Fatal("Failed to chain series resources", zap.Error(err))
		}
	}

	// A public learning path starting with the tour
	path, err := svc.LearningPaths.Create(ctx, userFilter, services.CreateLearningPathData{
		Name:        "Go Concurrency from Scratch",
		Description: "From the basics of the language to concurrent pipelines",
		Public:      true,
	})
	if err != nil {
		log.Fatal("Failed to create learning path", zap.Error(err))
	}
	if err := svc.LearningPaths.ShowInTopic(ctx, path.ID, topicIDs["Go"]); err != nil {
		log.Fatal("Failed to show learning path in topic", zap.Error(err))
	}
	if err := svc.LearningPaths.SetSeriesStart(ctx, path.ID, resourceIDs["A Tour of Go"]); err != nil {
		log.Fatal("Failed to set learning path start", zap.Error(err))
	}

	log.Info("Seed completed",
		zap.String("user_key", user.Key),
		zap.Int("topics", len(topicIDs)),
		zap.Int("resources", len(resourceIDs)),
	)
}

// createConstraints creates uniqueness constraints for node identity fields
func createConstraints(ctx context.Context, store *graph.Store) error {
	constraints := []string{
		"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u._id IS UNIQUE",
		"CREATE CONSTRAINT topic_id_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t._id IS UNIQUE",
		"CREATE CONSTRAINT topic_key_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t.key IS UNIQUE",
		"CREATE CONSTRAINT resource_id_unique IF NOT EXISTS FOR (r:Resource) REQUIRE r._id IS UNIQUE",
		"CREATE CONSTRAINT learning_path_id_unique IF NOT EXISTS FOR (lp:LearningPath) REQUIRE lp._id IS UNIQUE",
	}

	for _, constraint := range constraints {
		if _, err := store.Write(ctx, constraint, nil); err != nil {
			// Constraints may already exist
			continue
		}
	}
	return nil
}

// createIndexes creates indexes for the lookup fields the services filter on
func createIndexes(ctx context.Context, store *graph.Store) error {
	indexes := []string{
		"CREATE INDEX user_key IF NOT EXISTS FOR (u:User) ON (u.key)",
		"CREATE INDEX topic_name IF NOT EXISTS FOR (t:Topic) ON (t.name)",
		"CREATE INDEX resource_url IF NOT EXISTS FOR (r:Resource) ON (r.url)",
		"CREATE INDEX learning_material_name IF NOT EXISTS FOR (lm:LearningMaterial) ON (lm.name)",
		"CREATE INDEX learning_goal_key IF NOT EXISTS FOR (lg:LearningGoal) ON (lg.key)",
	}

	for _, idx := range indexes {
		if _, err := store.Write(ctx, idx, nil); err != nil {
			// Indexes may already exist
			continue
		}
	}
	return nil
}
