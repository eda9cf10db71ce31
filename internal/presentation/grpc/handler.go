package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/project2052/calculation-service/internal/application/dto"
	"github.com/project2052/calculation-service/internal/application/usecase"
	"github.com/project2052/calculation-service/internal/domain/model"
)

// Compile-time assertion that Handler implements CalculationServiceServer.
var _ CalculationServiceServer = (*Handler)(nil)

// Handler implements the CalculationServiceServer gRPC interface.
type Handler struct {
	UnimplementedCalculationServiceServer
	runCalc    *usecase.RunCalculationUseCase
	cacheStats *usecase.GetCacheStatsUseCase
	invalidate *usecase.InvalidateProposalUseCase
	latest     *usecase.GetLatestSnapshotUseCase
	logger     *slog.Logger
}

// NewHandler creates a new gRPC Handler.
func NewHandler(
	runCalc *usecase.RunCalculationUseCase,
	cacheStats *usecase.GetCacheStatsUseCase,
	invalidate *usecase.InvalidateProposalUseCase,
	latest *usecase.GetLatestSnapshotUseCase,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		runCalc:    runCalc,
		cacheStats: cacheStats,
		invalidate: invalidate,
		latest:     latest,
		logger:     logger,
	}
}

// Proto-aligned request/response message types. Monetary amounts and rates
// travel as decimal strings; an unset string means zero.

// SystemConfigMsg represents the proto SystemConfiguration message.
type SystemConfigMsg struct {
	ZakatRate           string `json:"zakat_rate"`
	DebtInterestRate    string `json:"debt_interest_rate"`
	DepositInterestRate string `json:"deposit_interest_rate"`
	MinCashBalance      string `json:"min_cash_balance"`
}

// SolverConfigMsg represents the proto CircularSolverConfig message.
type SolverConfigMsg struct {
	MaxIterations        int32  `json:"max_iterations"`
	ConvergenceTolerance string `json:"convergence_tolerance"`
	RelaxationFactor     string `json:"relaxation_factor"`
}

// YearInputMsg represents the proto YearInput message.
type YearInputMsg struct {
	Year         int32  `json:"year"`
	Revenue      string `json:"revenue"`
	RentExpense  string `json:"rent_expense"`
	StaffCosts   string `json:"staff_costs"`
	OtherOpex    string `json:"other_opex"`
	Depreciation string `json:"depreciation"`
	Capex        string `json:"capex"`
}

// WorkingCapitalMsg represents the proto WorkingCapitalRatios message.
type WorkingCapitalMsg struct {
	ReceivablePct      string `json:"receivable_pct"`
	PrepaidPct         string `json:"prepaid_pct"`
	PayablePct         string `json:"payable_pct"`
	AccruedPct         string `json:"accrued_pct"`
	DeferredRevenuePct string `json:"deferred_revenue_pct"`
	Locked             bool   `json:"locked"`
}

// OpeningBalancesMsg represents the proto OpeningBalances message.
type OpeningBalancesMsg struct {
	Cash                    string `json:"cash"`
	AccountsReceivable      string `json:"accounts_receivable"`
	PrepaidExpenses         string `json:"prepaid_expenses"`
	GrossPPE                string `json:"gross_ppe"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
	AccountsPayable         string `json:"accounts_payable"`
	AccruedLiabilities      string `json:"accrued_liabilities"`
	DeferredRevenue         string `json:"deferred_revenue"`
	DebtBalance             string `json:"debt_balance"`
	TotalEquity             string `json:"total_equity"`
}

// IncomeStatementMsg represents the proto IncomeStatement message.
type IncomeStatementMsg struct {
	Revenue         string `json:"revenue"`
	RentExpense     string `json:"rent_expense"`
	StaffCosts      string `json:"staff_costs"`
	OtherOpex       string `json:"other_opex"`
	Depreciation    string `json:"depreciation"`
	EBIT            string `json:"ebit"`
	InterestExpense string `json:"interest_expense"`
	InterestIncome  string `json:"interest_income"`
	EBT             string `json:"ebt"`
	Zakat           string `json:"zakat"`
	NetIncome       string `json:"net_income"`
}

// BalanceSheetMsg represents the proto BalanceSheet message.
type BalanceSheetMsg struct {
	Cash                    string `json:"cash"`
	AccountsReceivable      string `json:"accounts_receivable"`
	PrepaidExpenses         string `json:"prepaid_expenses"`
	GrossPPE                string `json:"gross_ppe"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
	NetPPE                  string `json:"net_ppe"`
	AccountsPayable         string `json:"accounts_payable"`
	AccruedLiabilities      string `json:"accrued_liabilities"`
	DeferredRevenue         string `json:"deferred_revenue"`
	DebtBalance             string `json:"debt_balance"`
	RetainedEarnings        string `json:"retained_earnings"`
	TotalEquity             string `json:"total_equity"`
	TotalAssets             string `json:"total_assets"`
	TotalLiabilitiesEquity  string `json:"total_liabilities_equity"`
}

// CashFlowMsg represents the proto CashFlowStatement message.
type CashFlowMsg struct {
	OperatingCashFlow        string `json:"operating_cash_flow"`
	InvestingCashFlow        string `json:"investing_cash_flow"`
	FinancingCashFlow        string `json:"financing_cash_flow"`
	BeginningCash            string `json:"beginning_cash"`
	EndingCash               string `json:"ending_cash"`
	ReconciliationDifference string `json:"reconciliation_difference"`
}

// FinancialPeriodMsg represents the proto FinancialPeriod message.
type FinancialPeriodMsg struct {
	Year            int32               `json:"year"`
	Income          *IncomeStatementMsg `json:"income_statement"`
	Balance         *BalanceSheetMsg    `json:"balance_sheet"`
	CashFlow        *CashFlowMsg        `json:"cash_flow_statement"`
	Converged       bool                `json:"converged"`
	Iterations      int32               `json:"iterations"`
	FinalDifference string              `json:"final_difference"`
}

// AggregatesMsg represents the proto Aggregates message. IRR is empty when
// the cash flows admit no internal rate.
type AggregatesMsg struct {
	NPV              string `json:"npv"`
	IRR              string `json:"irr,omitempty"`
	CumulativeRent   string `json:"cumulative_rent"`
	CumulativeEBITDA string `json:"cumulative_ebitda"`
	FinalCash        string `json:"final_cash"`
	PeakDebt         string `json:"peak_debt"`
	TotalZakat       string `json:"total_zakat"`
	YearsConverged   int32  `json:"years_converged"`
	TotalYears       int32  `json:"total_years"`
}

// CalculationOutputMsg represents the proto CalculationOutput message.
type CalculationOutputMsg struct {
	ProposalID string                `json:"proposal_id"`
	Periods    []*FinancialPeriodMsg `json:"periods"`
	Aggregates *AggregatesMsg        `json:"aggregates"`
}

// RunCalculationRequest represents the proto RunCalculationRequest message.
type RunCalculationRequest struct {
	ProposalID     string              `json:"proposal_id"`
	TenantID       string              `json:"tenant_id"`
	System         *SystemConfigMsg    `json:"system_configuration"`
	Solver         *SolverConfigMsg    `json:"solver_configuration"`
	DiscountRate   string              `json:"discount_rate"`
	Years          []*YearInputMsg     `json:"years"`
	WorkingCapital *WorkingCapitalMsg  `json:"working_capital"`
	Opening        *OpeningBalancesMsg `json:"opening_balances"`
}

// RunCalculationResponse represents the proto RunCalculationResponse message.
type RunCalculationResponse struct {
	RunID      string                `json:"run_id"`
	ProposalID string                `json:"proposal_id"`
	FromCache  bool                  `json:"from_cache"`
	CacheKey   string                `json:"cache_key"`
	ElapsedMs  int64                 `json:"elapsed_ms"`
	Output     *CalculationOutputMsg `json:"output"`
}

// GetCacheStatsRequest represents the proto GetCacheStatsRequest message.
type GetCacheStatsRequest struct{}

// GetCacheStatsResponse represents the proto GetCacheStatsResponse message.
type GetCacheStatsResponse struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	Size      int32   `json:"size"`
	Capacity  int32   `json:"capacity"`
	HitRate   float64 `json:"hit_rate"`
}

// InvalidateProposalRequest represents the proto InvalidateProposalRequest message.
type InvalidateProposalRequest struct {
	TenantID   string `json:"tenant_id"`
	ProposalID string `json:"proposal_id"`
}

// InvalidateProposalResponse represents the proto InvalidateProposalResponse message.
type InvalidateProposalResponse struct {
	ProposalID          string `json:"proposal_id"`
	CacheEntriesRemoved int32  `json:"cache_entries_removed"`
	SnapshotsDeleted    int64  `json:"snapshots_deleted"`
}

// GetLatestSnapshotRequest represents the proto GetLatestSnapshotRequest message.
type GetLatestSnapshotRequest struct {
	TenantID   string `json:"tenant_id"`
	ProposalID string `json:"proposal_id"`
}

// GetLatestSnapshotResponse represents the proto GetLatestSnapshotResponse message.
type GetLatestSnapshotResponse struct {
	SnapshotID string                `json:"snapshot_id"`
	RunID      string                `json:"run_id"`
	CacheKey   string                `json:"cache_key"`
	IsLatest   bool                  `json:"is_latest"`
	ComputedMs int64                 `json:"computed_ms"`
	CreatedAt  string                `json:"created_at"`
	Output     *CalculationOutputMsg `json:"output"`
}

// RunCalculation projects a proposal's financials and returns the full
// statement set, served from cache when an economically identical scenario
// was already computed.
func (h *Handler) RunCalculation(ctx context.Context, req *RunCalculationRequest) (*RunCalculationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	proposalID, err := uuid.Parse(req.ProposalID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid proposal_id: %v", err)
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid tenant_id: %v", err)
	}
	if len(req.Years) == 0 {
		return nil, status.Error(codes.InvalidArgument, "at least one projection year is required")
	}

	system, err := systemFromMsg(req.System)
	if err != nil {
		return nil, err
	}
	solver, err := solverFromMsg(req.Solver)
	if err != nil {
		return nil, err
	}
	discountRate, err := parseDecimal("discount_rate", req.DiscountRate)
	if err != nil {
		return nil, err
	}
	years, err := yearsFromMsg(req.Years)
	if err != nil {
		return nil, err
	}
	workingCapital, err := workingCapitalFromMsg(req.WorkingCapital)
	if err != nil {
		return nil, err
	}
	opening, err := openingFromMsg(req.Opening)
	if err != nil {
		return nil, err
	}

	dtoReq := dto.RunCalculationRequest{
		ProposalID:     proposalID,
		TenantID:       tenantID,
		System:         system,
		Solver:         solver,
		DiscountRate:   discountRate,
		Years:          years,
		WorkingCapital: workingCapital,
		Opening:        opening,
	}

	resp, err := h.runCalc.Execute(ctx, dtoReq)
	if err != nil {
		h.logger.Error("RunCalculation failed", "error", err, "proposal_id", req.ProposalID)
		return nil, statusFromError(err)
	}

	h.logger.Info("RunCalculation succeeded",
		"proposal_id", req.ProposalID,
		"run_id", resp.RunID.String(),
		"from_cache", resp.FromCache,
		"elapsed_ms", resp.ElapsedMs,
	)
	return &RunCalculationResponse{
		RunID:      resp.RunID.String(),
		ProposalID: resp.ProposalID.String(),
		FromCache:  resp.FromCache,
		CacheKey:   resp.CacheKey,
		ElapsedMs:  resp.ElapsedMs,
		Output:     outputMsg(resp.Output),
	}, nil
}

// GetCacheStats returns the result cache's hit, miss, and eviction counters.
func (h *Handler) GetCacheStats(ctx context.Context, req *GetCacheStatsRequest) (*GetCacheStatsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	resp, err := h.cacheStats.Execute(ctx)
	if err != nil {
		h.logger.Error("GetCacheStats failed", "error", err)
		return nil, statusFromError(err)
	}

	return &GetCacheStatsResponse{
		Hits:      resp.Hits,
		Misses:    resp.Misses,
		Evictions: resp.Evictions,
		Size:      int32(resp.Size),
		Capacity:  int32(resp.Capacity),
		HitRate:   resp.HitRate,
	}, nil
}

// InvalidateProposal purges every cached result and stored snapshot for a
// proposal.
func (h *Handler) InvalidateProposal(ctx context.Context, req *InvalidateProposalRequest) (*InvalidateProposalResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	proposalID, err := uuid.Parse(req.ProposalID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid proposal_id: %v", err)
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid tenant_id: %v", err)
	}

	resp, err := h.invalidate.Execute(ctx, dto.InvalidateProposalRequest{
		TenantID:   tenantID,
		ProposalID: proposalID,
		Trigger:    "api",
	})
	if err != nil {
		h.logger.Error("InvalidateProposal failed", "error", err, "proposal_id", req.ProposalID)
		return nil, statusFromError(err)
	}

	h.logger.Info("InvalidateProposal succeeded",
		"proposal_id", req.ProposalID,
		"cache_entries_removed", resp.CacheEntriesRemoved,
		"snapshots_deleted", resp.SnapshotsDeleted,
	)
	return &InvalidateProposalResponse{
		ProposalID:          resp.ProposalID.String(),
		CacheEntriesRemoved: int32(resp.CacheEntriesRemoved),
		SnapshotsDeleted:    resp.SnapshotsDeleted,
	}, nil
}

// GetLatestSnapshot returns the most recent persisted calculation for a
// proposal.
func (h *Handler) GetLatestSnapshot(ctx context.Context, req *GetLatestSnapshotRequest) (*GetLatestSnapshotResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	proposalID, err := uuid.Parse(req.ProposalID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid proposal_id: %v", err)
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid tenant_id: %v", err)
	}

	resp, err := h.latest.Execute(ctx, dto.GetLatestSnapshotRequest{
		TenantID:   tenantID,
		ProposalID: proposalID,
	})
	if err != nil {
		h.logger.Error("GetLatestSnapshot failed", "error", err, "proposal_id", req.ProposalID)
		return nil, statusFromError(err)
	}

	return &GetLatestSnapshotResponse{
		SnapshotID: resp.ID.String(),
		RunID:      resp.RunID.String(),
		CacheKey:   resp.CacheKey,
		IsLatest:   resp.IsLatest,
		ComputedMs: resp.ComputedMs,
		CreatedAt:  resp.CreatedAt.UTC().Format(time.RFC3339Nano),
		Output:     outputMsg(resp.Output),
	}, nil
}

// statusFromError maps use-case failures onto gRPC codes via the domain
// error taxonomy.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrTimeout):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// parseDecimal converts a wire decimal string. An unset field decodes to
// zero, matching proto3 semantics for omitted scalars.
func parseDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "invalid %s: %v", field, err)
	}
	return d, nil
}

func systemFromMsg(msg *SystemConfigMsg) (model.SystemConfiguration, error) {
	var out model.SystemConfiguration
	if msg == nil {
		return out, nil
	}
	var err error
	if out.ZakatRate, err = parseDecimal("zakat_rate", msg.ZakatRate); err != nil {
		return out, err
	}
	if out.DebtInterestRate, err = parseDecimal("debt_interest_rate", msg.DebtInterestRate); err != nil {
		return out, err
	}
	if out.DepositInterestRate, err = parseDecimal("deposit_interest_rate", msg.DepositInterestRate); err != nil {
		return out, err
	}
	if out.MinCashBalance, err = parseDecimal("min_cash_balance", msg.MinCashBalance); err != nil {
		return out, err
	}
	return out, nil
}

func solverFromMsg(msg *SolverConfigMsg) (model.CircularSolverConfig, error) {
	var out model.CircularSolverConfig
	if msg == nil {
		return out, nil
	}
	out.MaxIterations = int(msg.MaxIterations)
	var err error
	if out.ConvergenceTolerance, err = parseDecimal("convergence_tolerance", msg.ConvergenceTolerance); err != nil {
		return out, err
	}
	if out.RelaxationFactor, err = parseDecimal("relaxation_factor", msg.RelaxationFactor); err != nil {
		return out, err
	}
	return out, nil
}

func yearsFromMsg(msgs []*YearInputMsg) ([]model.YearInput, error) {
	years := make([]model.YearInput, 0, len(msgs))
	for i, msg := range msgs {
		if msg == nil {
			return nil, status.Errorf(codes.InvalidArgument, "years[%d] is required", i)
		}
		y := model.YearInput{Year: int(msg.Year)}
		var err error
		if y.Revenue, err = parseDecimal(fmt.Sprintf("years[%d].revenue", i), msg.Revenue); err != nil {
			return nil, err
		}
		if y.RentExpense, err = parseDecimal(fmt.Sprintf("years[%d].rent_expense", i), msg.RentExpense); err != nil {
			return nil, err
		}
		if y.StaffCosts, err = parseDecimal(fmt.Sprintf("years[%d].staff_costs", i), msg.StaffCosts); err != nil {
			return nil, err
		}
		if y.OtherOpex, err = parseDecimal(fmt.Sprintf("years[%d].other_opex", i), msg.OtherOpex); err != nil {
			return nil, err
		}
		if y.Depreciation, err = parseDecimal(fmt.Sprintf("years[%d].depreciation", i), msg.Depreciation); err != nil {
			return nil, err
		}
		if y.Capex, err = parseDecimal(fmt.Sprintf("years[%d].capex", i), msg.Capex); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, nil
}

func workingCapitalFromMsg(msg *WorkingCapitalMsg) (model.WorkingCapitalRatios, error) {
	var out model.WorkingCapitalRatios
	if msg == nil {
		return out, nil
	}
	out.Locked = msg.Locked
	var err error
	if out.ReceivablePct, err = parseDecimal("receivable_pct", msg.ReceivablePct); err != nil {
		return out, err
	}
	if out.PrepaidPct, err = parseDecimal("prepaid_pct", msg.PrepaidPct); err != nil {
		return out, err
	}
	if out.PayablePct, err = parseDecimal("payable_pct", msg.PayablePct); err != nil {
		return out, err
	}
	if out.AccruedPct, err = parseDecimal("accrued_pct", msg.AccruedPct); err != nil {
		return out, err
	}
	if out.DeferredRevenuePct, err = parseDecimal("deferred_revenue_pct", msg.DeferredRevenuePct); err != nil {
		return out, err
	}
	return out, nil
}

func openingFromMsg(msg *OpeningBalancesMsg) (model.OpeningBalances, error) {
	var out model.OpeningBalances
	if msg == nil {
		return out, nil
	}
	var err error
	if out.Cash, err = parseDecimal("opening cash", msg.Cash); err != nil {
		return out, err
	}
	if out.AccountsReceivable, err = parseDecimal("opening accounts_receivable", msg.AccountsReceivable); err != nil {
		return out, err
	}
	if out.PrepaidExpenses, err = parseDecimal("opening prepaid_expenses", msg.PrepaidExpenses); err != nil {
		return out, err
	}
	if out.GrossPPE, err = parseDecimal("opening gross_ppe", msg.GrossPPE); err != nil {
		return out, err
	}
	if out.AccumulatedDepreciation, err = parseDecimal("opening accumulated_depreciation", msg.AccumulatedDepreciation); err != nil {
		return out, err
	}
	if out.AccountsPayable, err = parseDecimal("opening accounts_payable", msg.AccountsPayable); err != nil {
		return out, err
	}
	if out.AccruedLiabilities, err = parseDecimal("opening accrued_liabilities", msg.AccruedLiabilities); err != nil {
		return out, err
	}
	if out.DeferredRevenue, err = parseDecimal("opening deferred_revenue", msg.DeferredRevenue); err != nil {
		return out, err
	}
	if out.DebtBalance, err = parseDecimal("opening debt_balance", msg.DebtBalance); err != nil {
		return out, err
	}
	if out.TotalEquity, err = parseDecimal("opening total_equity", msg.TotalEquity); err != nil {
		return out, err
	}
	return out, nil
}

func outputMsg(out *model.CalculationEngineOutput) *CalculationOutputMsg {
	if out == nil {
		return nil
	}
	periods := make([]*FinancialPeriodMsg, 0, len(out.Periods))
	for i := range out.Periods {
		periods = append(periods, periodMsg(&out.Periods[i]))
	}
	return &CalculationOutputMsg{
		ProposalID: out.ProposalID.String(),
		Periods:    periods,
		Aggregates: aggregatesMsg(out.Aggregates),
	}
}

func periodMsg(p *model.FinancialPeriod) *FinancialPeriodMsg {
	return &FinancialPeriodMsg{
		Year: int32(p.Year),
		Income: &IncomeStatementMsg{
			Revenue:         p.Income.Revenue.String(),
			RentExpense:     p.Income.RentExpense.String(),
			StaffCosts:      p.Income.StaffCosts.String(),
			OtherOpex:       p.Income.OtherOpex.String(),
			Depreciation:    p.Income.Depreciation.String(),
			EBIT:            p.Income.EBIT.String(),
			InterestExpense: p.Income.InterestExpense.String(),
			InterestIncome:  p.Income.InterestIncome.String(),
			EBT:             p.Income.EBT.String(),
			Zakat:           p.Income.Zakat.String(),
			NetIncome:       p.Income.NetIncome.String(),
		},
		Balance: &BalanceSheetMsg{
			Cash:                    p.Balance.Cash.String(),
			AccountsReceivable:      p.Balance.AccountsReceivable.String(),
			PrepaidExpenses:         p.Balance.PrepaidExpenses.String(),
			GrossPPE:                p.Balance.GrossPPE.String(),
			AccumulatedDepreciation: p.Balance.AccumulatedDepreciation.String(),
			NetPPE:                  p.Balance.NetPPE.String(),
			AccountsPayable:         p.Balance.AccountsPayable.String(),
			AccruedLiabilities:      p.Balance.AccruedLiabilities.String(),
			DeferredRevenue:         p.Balance.DeferredRevenue.String(),
			DebtBalance:             p.Balance.DebtBalance.String(),
			RetainedEarnings:        p.Balance.RetainedEarnings.String(),
			TotalEquity:             p.Balance.TotalEquity.String(),
			TotalAssets:             p.Balance.TotalAssets.String(),
			TotalLiabilitiesEquity:  p.Balance.TotalLiabilitiesEquity.String(),
		},
		CashFlow: &CashFlowMsg{
			OperatingCashFlow:        p.CashFlow.OperatingCashFlow.String(),
			InvestingCashFlow:        p.CashFlow.InvestingCashFlow.String(),
			FinancingCashFlow:        p.CashFlow.FinancingCashFlow.String(),
			BeginningCash:            p.CashFlow.BeginningCash.String(),
			EndingCash:               p.CashFlow.EndingCash.String(),
			ReconciliationDifference: p.CashFlow.ReconciliationDifference.String(),
		},
		Converged:       p.Converged,
		Iterations:      int32(p.Iterations),
		FinalDifference: p.FinalDifference.String(),
	}
}

func aggregatesMsg(a model.Aggregates) *AggregatesMsg {
	msg := &AggregatesMsg{
		NPV:              a.NPV.String(),
		CumulativeRent:   a.CumulativeRent.String(),
		CumulativeEBITDA: a.CumulativeEBITDA.String(),
		FinalCash:        a.FinalCash.String(),
		PeakDebt:         a.PeakDebt.String(),
		TotalZakat:       a.TotalZakat.String(),
		YearsConverged:   int32(a.YearsConverged),
		TotalYears:       int32(a.TotalYears),
	}
	if a.IRR != nil {
		msg.IRR = a.IRR.String()
	}
	return msg
}
