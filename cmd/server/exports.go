package main

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Simplici0/quotedesk/internal/export"
	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/render"
	"github.com/Simplici0/quotedesk/internal/store"
)

const xlsxFilename = "quotations.xlsx"

// handleExportXLSX downloads the filtered quotation list as a workbook.
func (s *server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	f, ok := quotationFilter(w, r)
	if !ok {
		return
	}
	list, err := s.store.ListQuotations(r.Context(), f)
	if err != nil {
		fail(w, r, "list quotations", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, list); err != nil {
		fail(w, r, "write xlsx", err)
		return
	}
	w.Header().Set("Content-Type", export.XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+xlsxFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

type sheetsRequest struct {
	AccessToken string `json:"access_token"`
	Title       string `json:"title"`
	Query       string `json:"q"`
	Status      string `json:"status"`
}

func (s *server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	var req sheetsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token := strings.TrimSpace(req.AccessToken)
	if token == "" {
		invalidField(w, r, "access_token", "is required")
		return
	}
	f, ok := parseFilter(w, r, req.Query, req.Status, "", "")
	if !ok {
		return
	}
	list, err := s.store.ListQuotations(r.Context(), f)
	if err != nil {
		fail(w, r, "list quotations", err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = export.DefaultSpreadsheetTitle
	}
	sheet, err := export.NewGoogle(r.Context(), token, s.googleBase).ExportSheet(r.Context(), title, list)
	if err != nil {
		exportFailed(w, r, "export sheet", err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

type driveRequest struct {
	AccessToken  string   `json:"access_token"`
	QuotationIDs []string `json:"quotation_ids"`
}

// handleExportDrive uploads one PDF per quotation. An empty id list exports
// every quotation; per-quotation upload failures are reported in the batch.
func (s *server) handleExportDrive(w http.ResponseWriter, r *http.Request) {
	var req driveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token := strings.TrimSpace(req.AccessToken)
	if token == "" {
		invalidField(w, r, "access_token", "is required")
		return
	}

	ctx := r.Context()
	var list []model.Quotation
	if len(req.QuotationIDs) == 0 {
		all, err := s.store.ListQuotations(ctx, store.QuotationFilter{})
		if err != nil {
			fail(w, r, "list quotations", err)
			return
		}
		list = all
	} else {
		for _, id := range req.QuotationIDs {
			q, err := s.store.GetQuotation(ctx, id)
			if err != nil {
				fail(w, r, "get quotation", err)
				return
			}
			list = append(list, q)
		}
	}

	g := export.NewGoogle(ctx, token, s.googleBase)
	batch := export.ExportDocuments(ctx, g, s.renderer, list, render.Filename)
	if batch.Failed > 0 {
		log.Printf("drive export: %d of %d uploads failed request_id=%s", batch.Failed, len(list), requestIDFromContext(ctx))
	}
	writeJSON(w, http.StatusOK, batch)
}

func exportFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	var apiErr *export.APIError
	if errors.As(err, &apiErr) {
		log.Printf("%s: %v request_id=%s", op, err, requestIDFromContext(r.Context()))
		writeError(w, r, "export service rejected the request", "EXPORT_FAILED", http.StatusBadGateway)
		return
	}
	fail(w, r, op, err)
}
