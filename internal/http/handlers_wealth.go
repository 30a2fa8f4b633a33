package http

import (
	"net/http"

	"fincoach/internal/analysis"
	"fincoach/internal/core"
)

type savingsRequest struct {
	FileID       string  `json:"file_id"`
	TargetAmount float64 `json:"target_amount"`
	MonthsToSave int     `json:"months_to_save"`
}

func (s *Server) handleSavingsAnalyze(w http.ResponseWriter, r *http.Request) {
	var req savingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	result, err := s.analysis.SavingsGoal(r.Context(), req.FileID, req.TargetAmount, req.MonthsToSave)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type projectionRequest struct {
	Assets        core.Assets        `json:"assets"`
	Liabilities   core.Liabilities   `json:"liabilities"`
	Contributions core.Contributions `json:"contributions"`
	DebtPayments  core.DebtPayments  `json:"debtPayments"`
}

func (req projectionRequest) snapshot() core.WealthSnapshot {
	return core.WealthSnapshot{Assets: req.Assets, Liabilities: req.Liabilities}
}

func (req projectionRequest) flows() core.MonthlyFlows {
	return core.MonthlyFlows{Contributions: req.Contributions, DebtPayments: req.DebtPayments}
}

func (s *Server) handleProjections(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	series, err := s.analysis.Projections(r.Context(), req.snapshot(), req.flows())
	if err != nil {
		writeError(w, r, err)
		return
	}
	for tf, proj := range series {
		series[tf] = trimSeries(proj)
	}
	writeJSON(w, http.StatusOK, map[string]any{"projections": series})
}

// longHorizonMonths is where response series switch from monthly to yearly
// samples. Horizons up to two years keep every month.
const longHorizonMonths = 24

func trimSeries(series analysis.ProjectionSeries) analysis.ProjectionSeries {
	if series.Months <= longHorizonMonths || len(series.Points) == 0 {
		return series
	}
	points := make([]core.ProjectionPoint, 0, series.Months/12+1)
	for i, p := range series.Points {
		if i%12 == 0 || i == len(series.Points)-1 {
			points = append(points, p)
		}
	}
	series.Points = points
	return series
}

type optimizedProjectionRequest struct {
	projectionRequest
	FileID        string  `json:"file_id"`
	CutPercentage float64 `json:"cut_percentage"`
	RedirectTo    string  `json:"redirect_to"`
}

func (s *Server) handleOptimizedProjections(w http.ResponseWriter, r *http.Request) {
	var req optimizedProjectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	redirect, err := core.ParseContributionStream(req.RedirectTo)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	series, err := s.analysis.OptimizedProjections(r.Context(), req.FileID,
		req.snapshot(), req.flows(), req.CutPercentage, redirect)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for tf, proj := range series {
		proj.Original = trimSeries(proj.Original)
		proj.Optimized = trimSeries(proj.Optimized)
		series[tf] = proj
	}
	writeJSON(w, http.StatusOK, map[string]any{"projections": series})
}

func (s *Server) handlePriorities(w http.ResponseWriter, r *http.Request) {
	var profile analysis.FinancialProfile
	if err := decodeJSON(r, &profile); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	plan, err := s.analysis.Priorities(r.Context(), r.PathValue("id"), profile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
