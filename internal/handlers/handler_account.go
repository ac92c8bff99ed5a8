package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/dto"
	"github.com/SscSPs/p2p_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("/me", h.getMyAccount)
		accounts.PUT("/me/display-currency", h.updateDisplayCurrency)
		accounts.PUT("/me/pin", h.setTransferPIN)
		accounts.GET("/lookup", h.lookupReceiver)
	}
}

func loggerFor(c *gin.Context) *slog.Logger {
	return middleware.GetLoggerFromContext(c)
}

// callerID returns the authenticated account id or aborts with 401.
func callerID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		loggerFor(c).Error("Account ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return id, ok
}

// openAccount godoc
// @Summary Open a wallet
// @Description Opens a zero-balance wallet for the authenticated user and assigns a 10-digit account number
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.OpenAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account already exists"
// @Failure 500 {object} map[string]string "Failed to open account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := loggerFor(c)
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	accountID, ok := callerID(c)
	if !ok {
		return
	}

	account, err := h.accountService.OpenAccount(c.Request.Context(), accountID, req)
	if err != nil {
		respondError(c, err, "Failed to open account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getMyAccount godoc
// @Summary Get the caller's wallet
// @Description Returns balances, display currency and asset inventory of the authenticated user
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/me [get]
func (h *accountHandler) getMyAccount(c *gin.Context) {
	accountID, ok := callerID(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to get account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateDisplayCurrency godoc
// @Summary Change display currency
// @Description Changes the currency amounts are entered and shown in. The balance currency does not change.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   request body dto.UpdateDisplayCurrencyRequest true "New display currency"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /accounts/me/display-currency [put]
func (h *accountHandler) updateDisplayCurrency(c *gin.Context) {
	logger := loggerFor(c)
	var req dto.UpdateDisplayCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDisplayCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	accountID, ok := callerID(c)
	if !ok {
		return
	}
	account, err := h.accountService.ChangeDisplayCurrency(c.Request.Context(), accountID, req.DisplayCurrency)
	if err != nil {
		respondError(c, err, "Failed to change display currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// setTransferPIN godoc
// @Summary Set transfer PIN
// @Description Sets or replaces the 4-digit PIN required to send transfers
// @Tags accounts
// @Accept  json
// @Param   request body dto.SetTransferPINRequest true "PIN"
// @Success 204 "PIN set"
// @Failure 400 {object} map[string]string "PIN must be 4 digits"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /accounts/me/pin [put]
func (h *accountHandler) setTransferPIN(c *gin.Context) {
	var req dto.SetTransferPINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		loggerFor(c).Warn("Failed to bind JSON for SetTransferPIN")
		c.JSON(http.StatusBadRequest, gin.H{"error": "PIN must be exactly 4 digits"})
		return
	}
	accountID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.accountService.SetTransferPIN(c.Request.Context(), accountID, req.PIN); err != nil {
		respondError(c, err, "Failed to set transfer PIN")
		return
	}
	c.Status(http.StatusNoContent)
}

// lookupReceiver godoc
// @Summary Look up a receiver
// @Description Resolves an email or account number to a receiver the caller can transfer to
// @Tags accounts
// @Produce  json
// @Param   identifier query string true "Email or 10-digit account number"
// @Success 200 {object} dto.ReceiverResponse
// @Failure 400 {object} map[string]string "Invalid identifier"
// @Failure 404 {object} map[string]string "Receiver not found"
// @Failure 422 {object} map[string]string "Receiver cannot receive transfers"
// @Security BearerAuth
// @Router /accounts/lookup [get]
func (h *accountHandler) lookupReceiver(c *gin.Context) {
	accountID, ok := callerID(c)
	if !ok {
		return
	}
	identifier := c.Query("identifier")
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier is required"})
		return
	}
	receiver, err := h.accountService.LookupReceiver(c.Request.Context(), accountID, identifier)
	if err != nil {
		respondError(c, err, "Receiver lookup failed")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiverResponse(receiver))
}
