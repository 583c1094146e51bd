package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
	"github.com/secmon-lab/riskdeck/pkg/service/workbook"
	"github.com/secmon-lab/riskdeck/pkg/usecase"
	"github.com/secmon-lab/riskdeck/pkg/utils/errutil"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
	"github.com/secmon-lab/riskdeck/pkg/utils/safe"
)

var errMissingParameter = goerr.New("missing query parameter")

type errorResponse struct {
	Error string `json:"error"`
}

type columnResponse struct {
	ID          model.ColumnID   `json:"id"`
	Label       string           `json:"label"`
	Kind        types.ColumnKind `json:"kind"`
	Placeholder bool             `json:"placeholder"`
	Retained    bool             `json:"retained"`
	FillDown    bool             `json:"fill_down"`
}

type schemaResponse struct {
	Kind      types.SheetKind  `json:"kind"`
	SheetName string           `json:"sheet_name"`
	HeaderRow int              `json:"header_row"`
	JoinKey   model.ColumnID   `json:"join_key"`
	Columns   []columnResponse `json:"columns"`
}

type sessionResponse struct {
	ID         model.SessionID `json:"session_id"`
	Source     string          `json:"source"`
	LoadedAt   time.Time       `json:"loaded_at"`
	Integrated bool            `json:"integrated"`
	Risks      int             `json:"risks"`
	Plans      int             `json:"plans"`
	Indicators int             `json:"indicators"`
}

func newSessionResponse(s *model.Session) sessionResponse {
	return sessionResponse{
		ID:         s.ID,
		Source:     s.Source,
		LoadedAt:   s.LoadedAt,
		Integrated: s.Tables.Integrated(),
		Risks:      len(s.Tables.Risks()),
		Plans:      len(s.Tables.Plans()),
		Indicators: len(s.Tables.Indicators()),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	var ie *model.IngestionError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &ie), errors.Is(err, workbook.ErrUnreadableWorkbook):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidSession),
		errors.Is(err, types.ErrUnknownControlLevel),
		errors.Is(err, types.ErrUnknownClassification),
		errors.Is(err, errMissingParameter):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrRiskNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrMissingInherent):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes a JSON error for caller mistakes and delegates server
// faults to errutil
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		errutil.HandleHTTP(r.Context(), w, err, status)
		return
	}

	msg := err.Error()
	var ie *model.IngestionError
	if errors.As(err, &ie) {
		msg = ie.Error()
	}

	logging.From(r.Context()).Warn("request rejected", "status", status, "error", err.Error())
	writeJSON(w, r, status, errorResponse{Error: msg})
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(chi.URLParam(r, "sessionID"))
}

func requiredQuery(r *http.Request, key string) (string, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return "", goerr.Wrap(errMissingParameter, "query parameter is required", goerr.V("parameter", key))
	}
	return v, nil
}

func schemasHandler(registry *model.SchemaRegistry) http.HandlerFunc {
	type response struct {
		Schemas []schemaResponse `json:"schemas"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		schemas := registry.List()
		resp := response{Schemas: make([]schemaResponse, len(schemas))}
		for i, s := range schemas {
			cols := make([]columnResponse, len(s.Columns))
			for j, c := range s.Columns {
				cols[j] = columnResponse{
					ID:          c.ID,
					Label:       c.Label,
					Kind:        c.Kind,
					Placeholder: c.Placeholder,
					Retained:    c.Retained(),
					FillDown:    c.FillDown,
				}
			}
			resp.Schemas[i] = schemaResponse{
				Kind:      s.Kind,
				SheetName: s.SheetName,
				HeaderRow: s.HeaderRow,
				JoinKey:   s.JoinKey,
				Columns:   cols,
			}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func openSessionHandler(sessions SessionUseCase, maxUploadSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				handleError(w, r, err)
				return
			}
			handleError(w, r, goerr.Wrap(errMissingParameter, "multipart form expected", goerr.V("cause", err.Error())))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				safe.Cleanup(r.Context(), "multipart form", r.MultipartForm.RemoveAll)
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			handleError(w, r, goerr.Wrap(errMissingParameter, "form field 'file' is required"))
			return
		}
		defer safe.Close(r.Context(), file)

		session, err := sessions.Open(r.Context(), header.Filename, file)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, newSessionResponse(session))
	}
}

func listSessionsHandler(sessions SessionUseCase) http.HandlerFunc {
	type response struct {
		Sessions []sessionResponse `json:"sessions"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		list, err := sessions.List(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		resp := response{Sessions: make([]sessionResponse, len(list))}
		for i, s := range list {
			resp.Sessions[i] = newSessionResponse(s)
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func getSessionHandler(sessions SessionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessions.Get(r.Context(), sessionID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, newSessionResponse(session))
	}
}

func closeSessionHandler(sessions SessionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Close(r.Context(), sessionID(r)); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func summaryHandler(sessions SessionUseCase) http.HandlerFunc {
	type response struct {
		usecase.Summary
		Actions []string `json:"actions"`
		Owners  []string `json:"owners"`
		Events  []string `json:"events"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		p, err := sessions.Portfolio(r.Context(), sessionID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, response{
			Summary: p.Summary(),
			Actions: p.Actions(),
			Owners:  p.Owners(),
			Events:  p.RiskEvents(),
		})
	}
}

func risksHandler(sessions SessionUseCase) http.HandlerFunc {
	type risk struct {
		model.RiskRecord
		Assessment model.Assessment `json:"assessment"`
	}
	type response struct {
		Risks []risk `json:"risks"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := usecase.Filter{
			Action: q.Get("action"),
			Owner:  q.Get("owner"),
		}
		if v := q.Get("residual"); v != "" {
			c, err := types.ParseClassification(v)
			if err != nil {
				handleError(w, r, err)
				return
			}
			filter.Residual = c
		}

		p, err := sessions.Portfolio(r.Context(), sessionID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}

		records := p.Risks(filter)
		resp := response{Risks: make([]risk, len(records))}
		for i, rec := range records {
			resp.Risks[i] = risk{RiskRecord: rec, Assessment: model.Assess(rec)}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func profileHandler(sessions SessionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := requiredQuery(r, "event")
		if err != nil {
			handleError(w, r, err)
			return
		}

		p, err := sessions.Portfolio(r.Context(), sessionID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}

		profile, err := p.Profile(event)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, profile)
	}
}

func simulateHandler(sessions SessionUseCase) http.HandlerFunc {
	type response struct {
		Simulations []model.RiskSimulation `json:"simulations"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		event, err := requiredQuery(r, "event")
		if err != nil {
			handleError(w, r, err)
			return
		}

		var control types.ControlLevel
		if v := r.URL.Query().Get("control"); v != "" {
			control, err = types.ParseControlLevel(v)
			if err != nil {
				handleError(w, r, err)
				return
			}
		}

		p, err := sessions.Portfolio(r.Context(), sessionID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}

		sims, err := p.Simulate(event, control)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, response{Simulations: sims})
	}
}

func indicatorsHandler(sessions SessionUseCase) http.HandlerFunc {
	type response struct {
		Integrated bool                    `json:"integrated"`
		Indicators []model.IndicatorRecord `json:"indicators"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessions.Get(r.Context(), sessionID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}

		indicators := session.Tables.Indicators()
		if action := r.URL.Query().Get("action"); action != "" {
			indicators = session.Tables.Linkage().IndicatorsFor(action)
		}
		writeJSON(w, r, http.StatusOK, response{
			Integrated: session.Tables.Integrated(),
			Indicators: indicators,
		})
	}
}

func findingsHandler(sessions SessionUseCase) http.HandlerFunc {
	type response struct {
		Findings []model.Finding `json:"findings"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		p, err := sessions.Portfolio(r.Context(), sessionID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, response{Findings: p.Audit()})
	}
}
