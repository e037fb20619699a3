package gateway

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gate33/learn2earn/src/learn2earn"
	"github.com/gate33/learn2earn/src/sync"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/monitoring"
	"github.com/gate33/learn2earn/src/utils/task"
)

// Rest API server, serves the claim-signature flow and the admin endpoints
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	claims  *learn2earn.ClaimService
	tracker *learn2earn.Tracker
	manager *learn2earn.Manager
	engine  *sync.Engine
	monitor monitoring.Monitor
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "gateway").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	gin.SetMode(gin.ReleaseMode)
	self.Router = gin.New()
	self.Router.Use(gin.Recovery())

	self.httpServer = &http.Server{
		Addr:         config.Gateway.RESTListenAddress,
		Handler:      self.Router,
		ReadTimeout:  config.Gateway.ServerRequestTimeout,
		WriteTimeout: config.Gateway.ServerRequestTimeout,
	}

	return
}

func (self *Server) WithClaimService(claims *learn2earn.ClaimService) *Server {
	self.claims = claims
	return self
}

func (self *Server) WithTracker(tracker *learn2earn.Tracker) *Server {
	self.tracker = tracker
	return self
}

func (self *Server) WithManager(manager *learn2earn.Manager) *Server {
	self.manager = manager
	return self
}

func (self *Server) WithEngine(engine *sync.Engine) *Server {
	self.engine = engine
	return self
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) run() (err error) {
	v1 := self.Router.Group("v1")
	{
		v1.GET("health", self.onHealth)

		// Both verbs serve the same flow, GET for wallets that only do
		// query strings
		v1.GET("claim-signature", self.onClaimSignature)
		v1.POST("claim-signature", self.onClaimSignature)

		v1.POST("participations", self.onRegisterParticipation)

		admin := v1.Group("", self.requireAdminToken)
		{
			admin.POST("sync", self.onSyncAll)
			admin.POST("sync/:id", self.onSyncOne)
			admin.POST("claims", self.onSubmitClaim)
			admin.GET("campaigns", self.onListCampaigns)
			admin.GET("campaigns/:id", self.onGetCampaign)
			admin.POST("campaigns", self.onFundCampaign)
			admin.POST("campaigns/:id/status", self.onTransitionCampaign)
			admin.PUT("drafts/:companyId", self.onSaveDraft)
			admin.GET("drafts/:companyId", self.onLoadDraft)
			admin.DELETE("drafts/:companyId", self.onDeleteDraft)
		}
	}

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start gateway server")
		return
	}
	return nil
}

// Admin endpoints stay disabled until a token is configured
func (self *Server) requireAdminToken(c *gin.Context) {
	token := self.Config.Gateway.AdminApiToken
	if token == "" || c.GetHeader("Authorization") != "Bearer "+token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (self *Server) onHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown gateway server")
		return
	}
}
