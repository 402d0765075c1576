package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/owulveryck/taskfabric/internal/controller"
	"github.com/owulveryck/taskfabric/internal/entity"
)

// createTaskRequest is the JSON body accepted by POST /api/v1/tasks.
type createTaskRequest struct {
	Description  string         `json:"description" binding:"required"`
	CreatorID    string         `json:"creatorId" binding:"required"`
	Capabilities []string       `json:"capabilities"`
	Priority     int            `json:"priority"`
	Metadata     map[string]any `json:"metadata"`
}

type createTaskResponse struct {
	TaskID string `json:"taskId"`
}

// newAdminServer builds the admin HTTP surface: task submission and
// system-status reads over ctrl. Handlers never touch the Bus or Agent
// runtime directly — the Controller is the only dependency.
func newAdminServer(ctrl *controller.Controller, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/v1/tasks", func(c *gin.Context) {
		var req createTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		caps := make([]entity.Capability, len(req.Capabilities))
		for i, name := range req.Capabilities {
			caps[i] = entity.Capability(name)
		}

		taskID := ctrl.CreateTask(c.Request.Context(), req.Description, req.CreatorID,
			entity.NewCapabilitySet(caps...), req.Priority, nil, req.Metadata)

		c.JSON(http.StatusCreated, createTaskResponse{TaskID: taskID})
	})

	router.GET("/api/v1/tasks/:taskId", func(c *gin.Context) {
		task, ok := ctrl.GetTask(c.Param("taskId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusOK, task)
	})

	router.GET("/api/v1/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, ctrl.GetSystemStatus())
	})

	router.GET("/api/v1/messages", func(c *gin.Context) {
		history := ctrl.MessageHistory()
		const maxRecent = 20
		if len(history) > maxRecent {
			history = history[len(history)-maxRecent:]
		}
		c.JSON(http.StatusOK, history)
	})

	logger.Debug("admin routes registered")

	return &http.Server{
		Addr:         ":8090",
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
