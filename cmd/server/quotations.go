package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/quotes"
	"github.com/Simplici0/quotedesk/internal/render"
	"github.com/Simplici0/quotedesk/internal/store"
)

// quotationFilter reads ?q=&status=&client_id=&limit= from the URL.
func quotationFilter(w http.ResponseWriter, r *http.Request) (store.QuotationFilter, bool) {
	query := r.URL.Query()
	return parseFilter(w, r, query.Get("q"), query.Get("status"), query.Get("client_id"), query.Get("limit"))
}

func parseFilter(w http.ResponseWriter, r *http.Request, term, status, clientID, limit string) (store.QuotationFilter, bool) {
	f := store.QuotationFilter{
		Query:    strings.TrimSpace(term),
		ClientID: strings.TrimSpace(clientID),
	}
	if raw := strings.TrimSpace(status); raw != "" {
		st, err := model.ParseStatus(raw)
		if err != nil {
			invalidField(w, r, "status", "must be one of draft, sent, accepted, rejected")
			return store.QuotationFilter{}, false
		}
		f.Status = st
	}
	if raw := strings.TrimSpace(limit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			invalidField(w, r, "limit", "must be a non-negative integer")
			return store.QuotationFilter{}, false
		}
		f.Limit = n
	}
	return f, true
}

func (s *server) handleQuotationsList(w http.ResponseWriter, r *http.Request) {
	f, ok := quotationFilter(w, r)
	if !ok {
		return
	}
	list, err := s.store.ListQuotations(r.Context(), f)
	if err != nil {
		fail(w, r, "list quotations", err)
		return
	}
	if list == nil {
		list = []model.Quotation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleQuotationGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.GetQuotation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "get quotation", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuotationCreate(w http.ResponseWriter, r *http.Request) {
	var in quotes.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := s.quotes.Create(r.Context(), in)
	if err != nil {
		fail(w, r, "create quotation", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *server) handleQuotationUpdate(w http.ResponseWriter, r *http.Request) {
	var in quotes.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := s.quotes.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, "update quotation", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *server) handleQuotationStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := s.quotes.SetStatus(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.Status))
	if err != nil {
		fail(w, r, "set quotation status", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuotationDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.quotes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, "delete quotation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleQuotationPDF(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.GetQuotation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "get quotation", err)
		return
	}
	pdf, err := s.renderer.QuotationBytes(q)
	if err != nil {
		fail(w, r, "render quotation pdf", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.Filename(q)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	_, _ = w.Write(pdf)
}

func (s *server) handleVersionsList(w http.ResponseWriter, r *http.Request) {
	versions, err := s.quotes.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "list versions", err)
		return
	}
	if versions == nil {
		versions = []model.QuotationVersion{}
	}
	writeJSON(w, http.StatusOK, versions)
}

// handleVersionsCompare diffs ?older= against ?newer=. Either may be omitted
// to use the two latest versions.
func (s *server) handleVersionsCompare(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cmp, err := s.quotes.Compare(r.Context(), chi.URLParam(r, "id"), query.Get("older"), query.Get("newer"))
	if err != nil {
		fail(w, r, "compare versions", err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

type restoreResponse struct {
	Quotation model.Quotation        `json:"quotation"`
	Version   model.QuotationVersion `json:"version"`
}

func (s *server) handleVersionRestore(w http.ResponseWriter, r *http.Request) {
	q, v, err := s.quotes.Restore(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "versionID"))
	if err != nil {
		fail(w, r, "restore version", err)
		return
	}
	writeJSON(w, http.StatusOK, restoreResponse{Quotation: q, Version: v})
}
