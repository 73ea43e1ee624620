package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	closingapp "github.com/oroshi/backoffice/internal/application/closing"
)

// ClosingRunner starts closing runs
type ClosingRunner interface {
	Run(ctx context.Context, req closingapp.RunRequest) (*closingapp.RunResult, error)
}

// ValuationReporter reads run outcomes and manages retention cleanup
type ValuationReporter interface {
	Valuations(ctx context.Context, datasetID string) ([]closingapp.ValuationRecord, error)
	PurgeWorkingSet(ctx context.Context, datasetID string) error
	PurgeLedgerBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ClosingHandler handles closing run API endpoints
type ClosingHandler struct {
	BaseHandler
	runner   ClosingRunner
	reporter ValuationReporter
}

// NewClosingHandler creates a new ClosingHandler
func NewClosingHandler(runner ClosingRunner, reporter ValuationReporter) *ClosingHandler {
	return &ClosingHandler{
		runner:   runner,
		reporter: reporter,
	}
}

// StartRunRequest represents a request to start a closing run.
// An empty job_date selects cumulative mode over the whole dataset.
type StartRunRequest struct {
	DatasetID string `json:"dataset_id" binding:"required,max=50"`
	JobDate   string `json:"job_date" binding:"omitempty,datetime=2006-01-02"`
}

// RunResponse represents a completed closing run
type RunResponse struct {
	RunID              string  `json:"run_id"`
	DatasetID          string  `json:"dataset_id"`
	JobDate            *string `json:"job_date,omitempty"`
	KeysProcessed      int     `json:"keys_processed"`
	LedgerRowsAffected int64   `json:"ledger_rows_affected"`
	StartedAt          string  `json:"started_at"`
	DurationMs         int64   `json:"duration_ms"`
}

// ValuationResponse represents one key's valuation outcome
type ValuationResponse struct {
	ProductCode      string `json:"product_code"`
	GradeCode        string `json:"grade_code"`
	ClassCode        string `json:"class_code"`
	ShippingMarkCode string `json:"shipping_mark_code"`
	ShippingMarkName string `json:"shipping_mark_name"`
	ClosingQty       string `json:"closing_qty"`
	ClosingAmount    string `json:"closing_amount"`
	UnitCost         string `json:"unit_cost"`
	GrossProfit      string `json:"gross_profit"`
	Flag             int    `json:"flag"`
}

// StartRun handles POST /closing/runs
func (h *ClosingHandler) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+bindingErrorMessage(err))
		return
	}

	runReq := closingapp.RunRequest{DatasetID: req.DatasetID}
	if req.JobDate != "" {
		jobDate, err := time.Parse("2006-01-02", req.JobDate)
		if err != nil {
			h.BadRequest(c, "Invalid job_date format, expected YYYY-MM-DD")
			return
		}
		runReq.JobDate = &jobDate
	}

	result, err := h.runner.Run(c.Request.Context(), runReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toRunResponse(result))
}

// ListValuations handles GET /closing/valuations
func (h *ClosingHandler) ListValuations(c *gin.Context) {
	datasetID := c.Query("dataset_id")
	if datasetID == "" {
		h.BadRequest(c, "dataset_id query parameter is required")
		return
	}

	records, err := h.reporter.Valuations(c.Request.Context(), datasetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ValuationResponse, len(records))
	for i, r := range records {
		out[i] = toValuationResponse(r)
	}
	h.Success(c, out)
}

// PurgeWorkingSet handles DELETE /closing/working-sets/:dataset_id
func (h *ClosingHandler) PurgeWorkingSet(c *gin.Context) {
	datasetID := c.Param("dataset_id")
	if datasetID == "" {
		h.BadRequest(c, "dataset_id path parameter is required")
		return
	}

	if err := h.reporter.PurgeWorkingSet(c.Request.Context(), datasetID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PurgeLedger handles DELETE /closing/ledger. Dropping permanent ledger rows
// is irreversible, so the request must carry confirm=true alongside the
// cutoff date.
func (h *ClosingHandler) PurgeLedger(c *gin.Context) {
	before := c.Query("before")
	if before == "" {
		h.BadRequest(c, "before query parameter is required")
		return
	}
	cutoff, err := time.Parse("2006-01-02", before)
	if err != nil {
		h.BadRequest(c, "Invalid before format, expected YYYY-MM-DD")
		return
	}
	if c.Query("confirm") != "true" {
		h.BadRequest(c, "ledger purge requires confirm=true")
		return
	}

	purged, err := h.reporter.PurgeLedgerBefore(c.Request.Context(), cutoff)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"purged_rows": purged})
}

// RegisterRoutes registers closing routes on the API group
func (h *ClosingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	closing := rg.Group("/closing")
	{
		closing.POST("/runs", h.StartRun)
		closing.GET("/valuations", h.ListValuations)
		closing.DELETE("/working-sets/:dataset_id", h.PurgeWorkingSet)
		closing.DELETE("/ledger", h.PurgeLedger)
	}
}

func toRunResponse(r *closingapp.RunResult) RunResponse {
	resp := RunResponse{
		RunID:              r.RunID,
		DatasetID:          r.DatasetID,
		KeysProcessed:      r.KeysProcessed,
		LedgerRowsAffected: r.LedgerRowsAffected,
		StartedAt:          r.StartedAt.UTC().Format(time.RFC3339),
		DurationMs:         r.Duration.Milliseconds(),
	}
	if r.JobDate != nil {
		jobDate := r.JobDate.Format("2006-01-02")
		resp.JobDate = &jobDate
	}
	return resp
}

func toValuationResponse(r closingapp.ValuationRecord) ValuationResponse {
	return ValuationResponse{
		ProductCode:      r.Key.ProductCode,
		GradeCode:        r.Key.GradeCode,
		ClassCode:        r.Key.ClassCode,
		ShippingMarkCode: r.Key.ShippingMarkCode,
		ShippingMarkName: r.Key.ShippingMarkName,
		ClosingQty:       r.ClosingQty.String(),
		ClosingAmount:    r.ClosingAmount.String(),
		UnitCost:         r.UnitCost.String(),
		GrossProfit:      r.GrossProfit.String(),
		Flag:             int(r.Flag),
	}
}
