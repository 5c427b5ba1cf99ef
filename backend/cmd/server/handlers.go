package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learn-graph/backend/internal/entities"
	"learn-graph/backend/internal/graph"
	"learn-graph/backend/internal/recommend"
	"learn-graph/backend/internal/services"
	apperrors "learn-graph/backend/pkg/errors"
)

// api bundles the services behind the route handlers
type api struct {
	svc *services.Services
	log *zap.Logger
}

func registerRoutes(router *gin.Engine, svc *services.Services, log *zap.Logger) {
	a := &api{svc: svc, log: log}

	root := router.Group("/api")
	{
		users := root.Group("/users")
		{
			users.POST("", a.createUser)
			users.GET("/:id", a.getUser)
			users.POST("/:id/knows/:topicId", a.setKnows)
			users.DELETE("/:id/knows/:topicId", a.unsetKnows)
		}

		topics := root.Group("/topics")
		{
			topics.POST("", a.createTopic)
			topics.GET("/:id", a.getTopic)
			topics.PUT("/:id", a.updateTopic)
			topics.DELETE("/:id", a.deleteTopic)
			topics.GET("/:id/overview", a.getTopicOverview)
			topics.GET("/:id/subtopics", a.getSubTopics)
			topics.POST("/:id/subtopics/:subTopicId", a.attachSubTopic)
			topics.DELETE("/:id/subtopics/:subTopicId", a.detachSubTopic)
			topics.GET("/:id/subtopics/search", a.searchSubTopics)
			topics.GET("/:id/prerequisites", a.getPrerequisites)
			topics.POST("/:id/prerequisites/:prereqId", a.attachPrerequisite)
			topics.DELETE("/:id/prerequisites/:prereqId", a.detachPrerequisite)
			topics.GET("/:id/materials", a.getTopicMaterials)
		}

		resources := root.Group("/resources")
		{
			resources.POST("", a.createResource)
			resources.GET("/:id", a.getResource)
			resources.PUT("/:id", a.updateResource)
			resources.DELETE("/:id", a.deleteResource)
			resources.POST("/:id/topics/:topicId", a.showResourceInTopic)
			resources.POST("/:id/covers/:topicId", a.attachCovers)
			resources.DELETE("/:id/covers/:topicId", a.detachCovers)
			resources.POST("/:id/rating", a.rateResource)
			resources.POST("/:id/vote", a.voteResource)
			resources.GET("/:id/rating", a.getResourceRating)
			resources.POST("/:id/consumed", a.setResourceConsumed)
			resources.POST("/:id/next/:nextId", a.attachNextResource)
		}

		goals := root.Group("/learning-goals")
		{
			goals.POST("", a.createLearningGoal)
			goals.GET("/:id", a.getLearningGoal)
			goals.GET("/:id/subgoals", a.getSubGoals)
			goals.POST("/:id/subgoals/:subGoalId", a.attachSubGoal)
			goals.DELETE("/:id/subgoals/:subGoalId", a.detachSubGoal)
		}

		paths := root.Group("/learning-paths")
		{
			paths.POST("", a.createLearningPath)
			paths.GET("/:id", a.getLearningPath)
			paths.PUT("/:id", a.updateLearningPath)
			paths.POST("/:id/start", a.startLearningPath)
			paths.POST("/:id/complete", a.completeLearningPath)
		}
	}
}

// respondError maps domain errors onto HTTP statuses
func (a *api) respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsConfiguration(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsAmbiguousResult(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.IsStorageUnavailable(err):
		a.log.Error("Storage unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	default:
		a.log.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// actingUser reads the acting user id from the X-User-Id header. Identity
// verification happens upstream of this service.
func actingUser(c *gin.Context) *string {
	id := c.GetHeader("X-User-Id")
	if id == "" {
		return nil
	}
	return &id
}

func (a *api) createUser(c *gin.Context) {
	var req struct {
		DisplayName string `json:"displayName" binding:"required"`
		Key         string `json:"key"`
		Email       string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := a.svc.Users.Create(c.Request.Context(), services.CreateUserData{
		DisplayName: req.DisplayName,
		Key:         req.Key,
		Email:       req.Email,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *api) getUser(c *gin.Context) {
	user, err := a.svc.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *api) setKnows(c *gin.Context) {
	var req struct {
		Level *float64 `json:"level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.svc.Users.SetKnows(c.Request.Context(), c.Param("id"), c.Param("topicId"), req.Level); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "attached"})
}

func (a *api) unsetKnows(c *gin.Context) {
	if err := a.svc.Users.UnsetKnows(c.Request.Context(), c.Param("id"), c.Param("topicId")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "detached"})
}

func (a *api) createTopic(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		Key         string `json:"key"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	topic, err := a.svc.Topics.Create(c.Request.Context(), graph.Filter{"_id": *userID}, services.CreateTopicData{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (a *api) getTopic(c *gin.Context) {
	topic, err := a.svc.Topics.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if topic == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (a *api) updateTopic(c *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Key         *string `json:"key"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	topic, err := a.svc.Topics.Update(c.Request.Context(), graph.Filter{"_id": c.Param("id")}, services.UpdateTopicData{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (a *api) deleteTopic(c *gin.Context) {
	deleted, err := a.svc.Topics.Delete(c.Request.Context(), graph.Filter{"_id": c.Param("id")})
	if err != nil {
		a.respondError(c, err)
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (a *api) getTopicOverview(c *gin.Context) {
	overview, err := a.svc.Topics.GetTopicOverview(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if overview == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (a *api) getSubTopics(c *gin.Context) {
	direction := graph.SortAscending
	if c.Query("order") == "desc" {
		direction = graph.SortDescending
	}
	subTopics, err := a.svc.Topics.GetSubTopics(c.Request.Context(), c.Param("id"), direction, paginationFromQuery(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subTopics)
}

func (a *api) attachSubTopic(c *gin.Context) {
	var req struct {
		Index *float64 `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	byUser := ""
	if userID := actingUser(c); userID != nil {
		byUser = *userID
	}
	relation, err := a.svc.Topics.AttachSubTopic(c.Request.Context(), c.Param("id"), c.Param("subTopicId"), req.Index, byUser)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, relation)
}

func (a *api) detachSubTopic(c *gin.Context) {
	_, _, err := a.svc.Topics.DetachSubTopic(c.Request.Context(), c.Param("id"), c.Param("subTopicId"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "detached"})
}

func (a *api) searchSubTopics(c *gin.Context) {
	topics, err := a.svc.Topics.SearchSubTopics(c.Request.Context(), c.Param("id"), c.Query("q"), paginationFromQuery(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topics)
}

func (a *api) getPrerequisites(c *gin.Context) {
	prerequisites, err := a.svc.Topics.GetPrerequisites(c.Request.Context(), graph.Filter{"_id": c.Param("id")})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prerequisites)
}

func (a *api) attachPrerequisite(c *gin.Context) {
	var req struct {
		Strength *float64 `json:"strength"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	relation, err := a.svc.Topics.AttachPrerequisite(c.Request.Context(), c.Param("id"), c.Param("prereqId"), req.Strength)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, relation)
}

func (a *api) detachPrerequisite(c *gin.Context) {
	if err := a.svc.Topics.DetachPrerequisite(c.Request.Context(), c.Param("id"), c.Param("prereqId")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "detached"})
}

func (a *api) getTopicMaterials(c *gin.Context) {
	q := recommend.MaterialsQuery{SortingType: recommend.SortingTypeRecommended}
	if sorting := c.Query("sorting"); sorting != "" {
		q.SortingType = recommend.SortingType(sorting)
	}
	if query := c.Query("q"); query != "" {
		q.Query = &query
	}
	if c.Query("completed") == "true" {
		q.Filter.CompletedByUser = true
	}
	for _, rt := range c.QueryArray("resourceType") {
		q.Filter.ResourceTypeIn = append(q.Filter.ResourceTypeIn, entities.ResourceType(rt))
	}
	for _, mt := range c.QueryArray("materialType") {
		q.Filter.LearningMaterialTypeIn = append(q.Filter.LearningMaterialTypeIn, entities.LearningMaterialType(mt))
	}

	materials, err := a.svc.Topics.GetLearningMaterials(c.Request.Context(), c.Param("id"), actingUser(c), q)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

func (a *api) createResource(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	var req struct {
		Name        string `json:"name"`
		Type        string `json:"type" binding:"required"`
		MediaType   string `json:"mediaType" binding:"required"`
		URL         string `json:"url" binding:"required"`
		Description string `json:"description"`
		DurationMs  *int64 `json:"durationMs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resource, err := a.svc.Resources.Create(c.Request.Context(), graph.Filter{"_id": *userID}, services.CreateResourceData{
		Name:        req.Name,
		Type:        entities.ResourceType(req.Type),
		MediaType:   entities.ResourceMediaType(req.MediaType),
		URL:         req.URL,
		Description: req.Description,
		DurationMs:  req.DurationMs,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

func (a *api) getResource(c *gin.Context) {
	resource, err := a.svc.Resources.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if resource == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	c.JSON(http.StatusOK, resource)
}

func (a *api) updateResource(c *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Type        *string `json:"type"`
		MediaType   *string `json:"mediaType"`
		URL         *string `json:"url"`
		Description *string `json:"description"`
		DurationMs  *int64  `json:"durationMs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data := services.UpdateResourceData{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		DurationMs:  req.DurationMs,
	}
	if req.Type != nil {
		rt := entities.ResourceType(*req.Type)
		data.Type = &rt
	}
	if req.MediaType != nil {
		mt := entities.ResourceMediaType(*req.MediaType)
		data.MediaType = &mt
	}
	resource, err := a.svc.Resources.Update(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

func (a *api) deleteResource(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	deleted, err := a.svc.Resources.DeleteCreatedBy(c.Request.Context(), graph.Filter{"_id": *userID}, c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "resource not deleted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (a *api) showResourceInTopic(c *gin.Context) {
	if err := a.svc.Resources.ShowInTopic(c.Request.Context(), c.Param("id"), c.Param("topicId")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "attached"})
}

func (a *api) attachCovers(c *gin.Context) {
	byUser := ""
	if userID := actingUser(c); userID != nil {
		byUser = *userID
	}
	if err := a.svc.Resources.AttachCovers(c.Request.Context(), c.Param("id"), c.Param("topicId"), byUser); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "attached"})
}

func (a *api) detachCovers(c *gin.Context) {
	if err := a.svc.Resources.DetachCovers(c.Request.Context(), c.Param("id"), c.Param("topicId")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "detached"})
}

func (a *api) rateResource(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	// Pointer value so an explicit 0 passes the required binding
	var req struct {
		Value *float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.svc.Resources.Rate(c.Request.Context(), *userID, c.Param("id"), *req.Value); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rated"})
}

func (a *api) voteResource(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	var req struct {
		Value *float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.svc.Resources.Vote(c.Request.Context(), *userID, c.Param("id"), *req.Value); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "voted"})
}

func (a *api) getResourceRating(c *gin.Context) {
	rating, err := a.svc.Resources.GetRating(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": rating})
}

func (a *api) setResourceConsumed(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	var req struct {
		ConsumedAt *int64 `json:"consumedAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.svc.Resources.SetConsumed(c.Request.Context(), *userID, c.Param("id"), req.ConsumedAt); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "consumed"})
}

func (a *api) attachNextResource(c *gin.Context) {
	if err := a.svc.Resources.AttachNext(c.Request.Context(), c.Param("id"), c.Param("nextId")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "attached"})
}

func (a *api) createLearningGoal(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		Key         string `json:"key"`
		Type        string `json:"type" binding:"required"`
		Description string `json:"description"`
		Hidden      bool   `json:"hidden"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	goal, err := a.svc.LearningGoals.Create(c.Request.Context(), graph.Filter{"_id": *userID}, services.CreateLearningGoalData{
		Name:        req.Name,
		Key:         req.Key,
		Type:        req.Type,
		Description: req.Description,
		Hidden:      req.Hidden,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (a *api) getLearningGoal(c *gin.Context) {
	goal, err := a.svc.LearningGoals.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if goal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "learning goal not found"})
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (a *api) getSubGoals(c *gin.Context) {
	subGoals, err := a.svc.LearningGoals.GetSubGoals(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subGoals)
}

func (a *api) attachSubGoal(c *gin.Context) {
	var req struct {
		Strength *float64 `json:"strength"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.svc.LearningGoals.AttachSubGoal(c.Request.Context(), c.Param("id"), c.Param("subGoalId"), req.Strength); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "attached"})
}

func (a *api) detachSubGoal(c *gin.Context) {
	if err := a.svc.LearningGoals.DetachSubGoal(c.Request.Context(), c.Param("id"), c.Param("subGoalId")); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "detached"})
}

func (a *api) createLearningPath(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		Key         string `json:"key"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
		DurationMs  *int64 `json:"durationMs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	path, err := a.svc.LearningPaths.Create(c.Request.Context(), graph.Filter{"_id": *userID}, services.CreateLearningPathData{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
		Public:      req.Public,
		DurationMs:  req.DurationMs,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, path)
}

func (a *api) getLearningPath(c *gin.Context) {
	path, err := a.svc.LearningPaths.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if path == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "learning path not found"})
		return
	}
	c.JSON(http.StatusOK, path)
}

func (a *api) updateLearningPath(c *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Key         *string `json:"key"`
		Description *string `json:"description"`
		Public      *bool   `json:"public"`
		DurationMs  *int64  `json:"durationMs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	path, err := a.svc.LearningPaths.Update(c.Request.Context(), c.Param("id"), services.UpdateLearningPathData{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
		Public:      req.Public,
		DurationMs:  req.DurationMs,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}

func (a *api) startLearningPath(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	started, err := a.svc.LearningPaths.Start(c.Request.Context(), *userID, c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, started)
}

func (a *api) completeLearningPath(c *gin.Context) {
	userID := actingUser(c)
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-User-Id header"})
		return
	}
	var req struct {
		CompletedAt *int64 `json:"completedAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	started, err := a.svc.LearningPaths.Complete(c.Request.Context(), *userID, c.Param("id"), req.CompletedAt)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, started)
}

func paginationFromQuery(c *gin.Context) *graph.Pagination {
	var p graph.Pagination
	set := false
	if offset, ok := intQuery(c, "offset"); ok {
		p.Offset = &offset
		set = true
	}
	if limit, ok := intQuery(c, "limit"); ok {
		p.Limit = &limit
		set = true
	}
	if !set {
		return nil
	}
	return &p
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	value := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
		value = value*10 + int(r-'0')
	}
	return value, true
}
