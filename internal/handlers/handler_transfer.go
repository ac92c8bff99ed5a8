package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// transferHandler handles HTTP requests related to transfers.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
	authorizer      portssvc.TransferAuthorizerSvc
}

// RegisterTransferRoutes registers routes related to transfers. limit, when non-nil,
// guards the endpoints that move money.
func RegisterTransferRoutes(
	rg *gin.RouterGroup,
	transferService portssvc.TransferSvcFacade,
	authorizer portssvc.TransferAuthorizerSvc,
	limit gin.HandlerFunc,
) {
	registerValidators()
	h := &transferHandler{transferService: transferService, authorizer: authorizer}

	writes := []gin.HandlerFunc{}
	if limit != nil {
		writes = append(writes, limit)
	}

	transfers := rg.Group("/transfers")
	{
		transfers.POST("/fiat", append(writes, h.createFiatTransfer)...)
		transfers.POST("/asset", append(writes, h.createAssetTransfer)...)
		transfers.GET("", h.listTransfers)
		transfers.GET("/:reference", h.getTransfer)
	}
}

// createFiatTransfer godoc
// @Summary Send money
// @Description Transfers an amount, entered in the sender's display currency, to another wallet. The receiver is credited in their own balance currency.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.CreateFiatTransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized or invalid PIN"
// @Failure 404 {object} map[string]string "Receiver not found"
// @Failure 409 {object} map[string]string "Transfer could not be committed"
// @Failure 422 {object} map[string]string "Insufficient balance or invalid receiver"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 503 {object} map[string]string "Exchange rates unavailable"
// @Security BearerAuth
// @Router /transfers/fiat [post]
func (h *transferHandler) createFiatTransfer(c *gin.Context) {
	logger := loggerFor(c)
	var req dto.CreateFiatTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFiatTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	accountID, ok := callerID(c)
	if !ok {
		return
	}

	auth, err := h.authorizer.Authorize(c.Request.Context(), accountID, req.PIN)
	if err != nil {
		respondError(c, err, "Transfer authorization failed")
		return
	}

	record, err := h.transferService.SettleFiatTransfer(c.Request.Context(), portssvc.FiatTransferRequest{
		Authorization: auth,
		SenderRef:     accountID,
		ReceiverRef:   req.Receiver,
		InputAmount:   req.Amount,
		Memo:          req.Memo,
	})
	if err != nil {
		respondError(c, err, "Fiat transfer failed")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransferResponse(record))
}

// createAssetTransfer godoc
// @Summary Send crypto
// @Description Transfers a quantity of a crypto asset. The receiver inherits the sender's average cost for a new holding.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.CreateAssetTransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized or invalid PIN"
// @Failure 404 {object} map[string]string "Receiver not found"
// @Failure 422 {object} map[string]string "Insufficient holding or invalid receiver"
// @Failure 429 {object} map[string]string "Too many requests"
// @Security BearerAuth
// @Router /transfers/asset [post]
func (h *transferHandler) createAssetTransfer(c *gin.Context) {
	logger := loggerFor(c)
	var req dto.CreateAssetTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAssetTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	accountID, ok := callerID(c)
	if !ok {
		return
	}

	auth, err := h.authorizer.Authorize(c.Request.Context(), accountID, req.PIN)
	if err != nil {
		respondError(c, err, "Transfer authorization failed")
		return
	}

	record, err := h.transferService.SettleAssetTransfer(c.Request.Context(), portssvc.AssetTransferRequest{
		Authorization: auth,
		SenderRef:     accountID,
		ReceiverRef:   req.Receiver,
		Symbol:        req.Symbol,
		Quantity:      req.Quantity,
		Memo:          req.Memo,
	})
	if err != nil {
		respondError(c, err, "Asset transfer failed")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransferResponse(record))
}

// listTransfers godoc
// @Summary List transfers
// @Description Lists the caller's transfers newest first, each rendered from the caller's side
// @Tags transfers
// @Produce  json
// @Param   direction query string false "sent, received or all" default(all)
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransfersResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /transfers [get]
func (h *transferHandler) listTransfers(c *gin.Context) {
	logger := loggerFor(c)
	var params dto.ListTransfersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransfers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	accountID, ok := callerID(c)
	if !ok {
		return
	}

	resp, err := h.transferService.ListTransfers(c.Request.Context(), accountID, params)
	if err != nil {
		respondError(c, err, "Failed to list transfers")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getTransfer godoc
// @Summary Get a transfer
// @Description Returns one transfer the caller took part in
// @Tags transfers
// @Produce  json
// @Param   reference path string true "Transfer reference"
// @Success 200 {object} dto.TransferViewResponse
// @Failure 403 {object} map[string]string "Not a participant"
// @Failure 404 {object} map[string]string "Transfer not found"
// @Security BearerAuth
// @Router /transfers/{reference} [get]
func (h *transferHandler) getTransfer(c *gin.Context) {
	accountID, ok := callerID(c)
	if !ok {
		return
	}
	view, err := h.transferService.GetTransfer(c.Request.Context(), accountID, c.Param("reference"))
	if err != nil {
		respondError(c, err, "Failed to get transfer")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransferViewResponse(*view))
}
