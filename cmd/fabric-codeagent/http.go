package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/owulveryck/taskfabric/internal/controller"
	"github.com/owulveryck/taskfabric/internal/entity"
)

type runCodeRequest struct {
	Code      string `json:"code" binding:"required"`
	Image     string `json:"image" binding:"required"`
	CreatorID string `json:"creatorId"`
}

// newCodeAgentServer exposes a single endpoint that creates a
// code_execution task on ctrl and lets the in-process agent pick it
// up through the normal task_assignment path.
func newCodeAgentServer(ctrl *controller.Controller, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/v1/run", func(c *gin.Context) {
		var req runCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.CreatorID == "" {
			req.CreatorID = "fabric-codeagent-http"
		}

		taskID := ctrl.CreateTask(c.Request.Context(), "run code", req.CreatorID,
			entity.NewCapabilitySet(entity.CapabilityCodeExecution), 0, nil,
			map[string]any{"code": req.Code, "image": req.Image})

		c.JSON(http.StatusCreated, gin.H{"taskId": taskID})
	})

	router.GET("/api/v1/tasks/:taskId", func(c *gin.Context) {
		task, ok := ctrl.GetTask(c.Param("taskId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusOK, task)
	})

	logger.Debug("codeagent routes registered")

	return &http.Server{
		Addr:         ":8091",
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
