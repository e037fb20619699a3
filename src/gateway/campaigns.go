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

// onFundCampaign moves a draft onto the chain. The deposit leaves the
// operator wallet here, which is why the route sits behind the admin token.
func (self *Server) onFundCampaign(c *gin.Context) {
	var in request.FundCampaign
	err := c.ShouldBindJSON(&in)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{Error: err.Error()})
		return
	}

	tokenAmount, err := decimal.NewFromString(in.TokenAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{Error: "tokenAmount is not a valid decimal: " + err.Error()})
		return
	}
	tokenPerParticipant, err := decimal.NewFromString(in.TokenPerParticipant)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{Error: "tokenPerParticipant is not a valid decimal: " + err.Error()})
		return
	}

	out := self.manager.Fund(c.Request.Context(), learn2earn.FundRequest{
		DraftId:             in.DraftId,
		CompanyId:           in.CompanyId,
		Title:               in.Title,
		Description:         in.Description,
		Network:             in.Network,
		TokenAddress:        in.TokenAddress,
		TokenSymbol:         in.TokenSymbol,
		TokenAmount:         tokenAmount,
		TokenPerParticipant: tokenPerParticipant,
		StartDate:           in.StartDate,
		Tasks:               in.Tasks,
	})

	c.JSON(fundStatusCode(&out), out)
}

func fundStatusCode(out *learn2earn.FundResult) int {
	if out.Success {
		return http.StatusCreated
	}
	switch out.FailureKind {
	case learn2earn.FundFailureValidation:
		return http.StatusBadRequest
	case learn2earn.FundFailureNotSupported:
		return http.StatusUnprocessableEntity
	case learn2earn.FundFailureBalance,
		learn2earn.FundFailureAllowance,
		learn2earn.FundFailureFeeCoverage:
		return http.StatusPaymentRequired
	default:
		return http.StatusBadGateway
	}
}

func (self *Server) onTransitionCampaign(c *gin.Context) {
	var in request.TransitionCampaign
	err := c.ShouldBindJSON(&in)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error{Error: err.Error()})
		return
	}

	err = self.manager.Transition(c.Request.Context(), c.Param("id"), in.CompanyId, in.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": in.Status})
	case errors.Is(err, learn2earn.ErrCampaignNotFound):
		c.JSON(http.StatusNotFound, response.Error{Error: err.Error()})
	case errors.Is(err, learn2earn.ErrCampaignNotOwned):
		c.JSON(http.StatusForbidden, response.Error{Error: err.Error()})
	case errors.Is(err, learn2earn.ErrInvalidTransition):
		c.JSON(http.StatusConflict, response.Error{Error: err.Error()})
	default:
		self.countDbError()
		c.JSON(http.StatusInternalServerError, response.Error{Error: err.Error()})
	}
}

// Draft endpoints, one draft per company
func (self *Server) onSaveDraft(c *gin.Context) {
	companyId := c.Param("companyId")
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, response.Error{Error: "draft body is required"})
		return
	}

	id, err := self.manager.SaveDraft(c.Request.Context(), companyId, body)
	if err != nil {
		self.countDbError()
		c.JSON(http.StatusInternalServerError, response.Error{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (self *Server) onLoadDraft(c *gin.Context) {
	draft, err := self.manager.LoadDraft(c.Request.Context(), c.Param("companyId"))
	if errors.Is(err, learn2earn.ErrDraftNotFound) {
		c.JSON(http.StatusNotFound, response.Error{Error: err.Error()})
		return
	}
	if err != nil {
		self.countDbError()
		c.JSON(http.StatusInternalServerError, response.Error{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (self *Server) onDeleteDraft(c *gin.Context) {
	err := self.manager.DeleteDraft(c.Request.Context(), c.Param("companyId"))
	if errors.Is(err, learn2earn.ErrDraftNotFound) {
		c.JSON(http.StatusNotFound, response.Error{Error: err.Error()})
		return
	}
	if err != nil {
		self.countDbError()
		c.JSON(http.StatusInternalServerError, response.Error{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
