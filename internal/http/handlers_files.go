package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"fincoach/internal/core"
)

// fileInfo is the listing view of an uploaded dataset.
type fileInfo struct {
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	SHA256     string    `json:"sha256"`
	UploadTime time.Time `json:"upload_time"`
	Rows       int       `json:"total_transactions"`
}

// fileDetail adds the covered date range to the listing view.
type fileDetail struct {
	fileInfo
	FirstTransaction string `json:"first_transaction,omitempty"`
	LastTransaction  string `json:"last_transaction,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, r, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, r, fmt.Errorf("reading upload: %w", err))
		return
	}

	result, err := s.ingest.Upload(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	infos, err := s.ingest.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	files := make([]fileInfo, 0, len(infos))
	for _, info := range infos {
		files = append(files, toFileInfo(info))
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	dataset, err := s.ingest.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail := fileDetail{
		fileInfo: fileInfo{
			FileID:     dataset.ID,
			Filename:   dataset.Filename,
			SHA256:     dataset.SHA256,
			UploadTime: dataset.UploadedAt,
			Rows:       len(dataset.Transactions),
		},
	}
	if n := len(dataset.Transactions); n > 0 {
		detail.FirstTransaction = dataset.Transactions[0].Date.Format("2006-01-02")
		detail.LastTransaction = dataset.Transactions[n-1].Date.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ingest.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.analysis.Invalidate(id)
	writeJSON(w, http.StatusOK, map[string]string{"file_id": id, "status": "deleted"})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindowParam(r)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}
	excluded := parseExcludeParam(r)

	agg, err := s.analysis.Aggregation(r.Context(), r.PathValue("id"), window, excluded)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	threshold, err := parseThresholdParam(r, 0.5)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	subs, err := s.analysis.Subscriptions(r.Context(), r.PathValue("id"), threshold)
	if err != nil {
		writeError(w, r, err)
		return
	}

	monthly := 0.0
	for _, sub := range subs {
		monthly += sub.AverageMonthlyCost
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions":      subs,
		"total_monthly_cost": monthly,
		"count":              len(subs),
	})
}

// discretionaryIncome is the spending-profile summary for a dataset.
type discretionaryIncome struct {
	MonthlyIncome       float64            `json:"monthly_income"`
	MonthlyExpenses     float64            `json:"monthly_expenses"`
	DiscretionaryIncome float64            `json:"monthly_discretionary_income"`
	SixMonthExpenses    float64            `json:"six_month_expenses"`
	CategoryMonthly     map[string]float64 `json:"category_monthly"`
}

func (s *Server) handleDiscretionaryIncome(w http.ResponseWriter, r *http.Request) {
	profile, err := s.analysis.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	discretionary := profile.MonthlySavings
	if discretionary < 0 {
		discretionary = 0
	}
	writeJSON(w, http.StatusOK, discretionaryIncome{
		MonthlyIncome:       profile.MonthlyIncome,
		MonthlyExpenses:     profile.MonthlyExpenses,
		DiscretionaryIncome: discretionary,
		SixMonthExpenses:    6 * profile.MonthlyExpenses,
		CategoryMonthly:     profile.CategoryMonthly,
	})
}

func toFileInfo(info core.DatasetInfo) fileInfo {
	return fileInfo{
		FileID:     info.ID,
		Filename:   info.Filename,
		SHA256:     info.SHA256,
		UploadTime: info.UploadedAt,
		Rows:       info.Rows,
	}
}
