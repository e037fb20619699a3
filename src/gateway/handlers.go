package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/gate33/learn2earn/src/gateway/request"
	"github.com/gate33/learn2earn/src/gateway/response"
	"github.com/gate33/learn2earn/src/learn2earn"
)

func (self *Server) onClaimSignature(c *gin.Context) {
	var in request.ClaimSignature
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&in)
	} else {
		err = c.ShouldBindJSON(&in)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{Error: err.Error()})
		return
	}
	if in.CampaignId() == "" {
		c.JSON(http.StatusBadRequest, response.Error{Error: "firebaseId or contractId is required"})
		return
	}

	// Amounts arrive as strings, a malformed one fails here instead of
	// silently signing over zero
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{Error: "amount is not a valid decimal: " + err.Error()})
		return
	}

	out := self.claims.Authorize(c.Request.Context(), learn2earn.AuthorizeRequest{
		CampaignId:    in.CampaignId(),
		WalletAddress: in.Address,
		Amount:        amount,
	})

	c.JSON(claimStatusCode(&out), response.ClaimSignature{
		Success:    out.Success,
		Signature:  out.Signature,
		ContractId: out.ContractId,
		Reason:     out.Reason,
		Message:    out.Message,
	})
}

func claimStatusCode(out *learn2earn.AuthorizeResult) int {
	if out.Success {
		return http.StatusOK
	}
	switch out.Reason {
	case learn2earn.ReasonCampaignNotFound:
		return http.StatusNotFound
	case learn2earn.ReasonNotQualified:
		return http.StatusForbidden
	case learn2earn.ReasonAlreadyClaimed:
		return http.StatusConflict
	case learn2earn.ReasonSigningFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (self *Server) onRegisterParticipation(c *gin.Context) {
	var in request.RegisterParticipation
	err := c.ShouldBindJSON(&in)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{Error: err.Error()})
		return
	}

	id, err := self.tracker.Register(c.Request.Context(), learn2earn.RegisterRequest{
		CampaignId:    in.CampaignId,
		WalletAddress: in.WalletAddress,
		Answers:       in.Answers,
	})
	if err != nil {
		c.JSON(registrationStatusCode(err), response.Error{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func registrationStatusCode(err error) int {
	switch {
	case errors.Is(err, learn2earn.ErrCampaignNotFound):
		return http.StatusNotFound
	case errors.Is(err, learn2earn.ErrAlreadyParticipated):
		return http.StatusConflict
	case errors.Is(err, learn2earn.ErrCampaignNotActive),
		errors.Is(err, learn2earn.ErrCampaignFull):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (self *Server) onSubmitClaim(c *gin.Context) {
	var in request.SubmitClaim
	err := c.ShouldBindJSON(&in)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{Error: err.Error()})
		return
	}

	out := self.claims.Submit(c.Request.Context(), in.CampaignId, in.WalletAddress)
	status := http.StatusOK
	if !out.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, out)
}

func (self *Server) onSyncAll(c *gin.Context) {
	out, err := self.engine.SyncAll(c.Request.Context())
	if err != nil {
		self.countDbError()
		c.JSON(http.StatusInternalServerError, response.Error{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (self *Server) onSyncOne(c *gin.Context) {
	out, err := self.engine.SyncOneById(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (self *Server) onListCampaigns(c *gin.Context) {
	campaigns, err := self.manager.ListCampaigns(c.Request.Context(), c.Query("companyId"))
	if err != nil {
		self.countDbError()
		c.JSON(http.StatusInternalServerError, response.Error{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (self *Server) onGetCampaign(c *gin.Context) {
	campaign, err := self.manager.GetCampaign(c.Request.Context(), c.Param("id"))
	if errors.Is(err, learn2earn.ErrCampaignNotFound) {
		c.JSON(http.StatusNotFound, response.Error{Error: err.Error()})
		return
	}
	if err != nil {
		self.countDbError()
		c.JSON(http.StatusInternalServerError, response.Error{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (self *Server) countDbError() {
	if self.monitor != nil {
		self.monitor.GetReport().Learn2Earn.Errors.GatewayDbErrors.Inc()
	}
}
