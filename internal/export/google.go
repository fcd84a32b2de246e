package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Simplici0/quotedesk/internal/model"
)

const (
	DefaultSheetsBase = "https://sheets.googleapis.com"
	DefaultDriveBase  = "https://www.googleapis.com"

	DefaultSpreadsheetTitle = "Quotations Export"
)

// APIError is a non-2xx answer from a Google endpoint.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

// Google talks to the Sheets and Drive REST APIs on behalf of a user whose
// access token was obtained by the caller.
type Google struct {
	client     *http.Client
	sheetsBase string
	driveBase  string
}

// NewGoogle builds a client that sends accessToken as a bearer token. A
// non-empty base replaces both API hosts.
func NewGoogle(ctx context.Context, accessToken, base string) *Google {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	g := &Google{
		client:     oauth2.NewClient(ctx, ts),
		sheetsBase: DefaultSheetsBase,
		driveBase:  DefaultDriveBase,
	}
	if base != "" {
		base = strings.TrimRight(base, "/")
		g.sheetsBase = base
		g.driveBase = base
	}
	return g
}

// Sheet identifies a created spreadsheet.
type Sheet struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	URL           string `json:"url"`
}

// ExportSheet creates a spreadsheet titled title and fills it with quotes.
func (g *Google) ExportSheet(ctx context.Context, title string, quotes []model.Quotation) (Sheet, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultSpreadsheetTitle
	}

	create := map[string]any{
		"properties": map[string]any{"title": title},
		"sheets": []any{
			map[string]any{"properties": map[string]any{"title": SheetName}},
		},
	}
	var created struct {
		SpreadsheetID string `json:"spreadsheetId"`
	}
	if err := g.doJSON(ctx, "create spreadsheet", http.MethodPost, g.sheetsBase+"/v4/spreadsheets", create, &created); err != nil {
		return Sheet{}, err
	}

	values := Table(quotes)
	lastCol := string(rune('A' + len(Headers) - 1))
	rng := fmt.Sprintf("%s!A1:%s%d", SheetName, lastCol, len(values))
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		g.sheetsBase, url.PathEscape(created.SpreadsheetID), url.PathEscape(rng))
	if err := g.doJSON(ctx, "write spreadsheet values", http.MethodPut, endpoint, map[string]any{"values": values}, nil); err != nil {
		return Sheet{}, err
	}

	return Sheet{
		SpreadsheetID: created.SpreadsheetID,
		URL:           "https://docs.google.com/spreadsheets/d/" + created.SpreadsheetID,
	}, nil
}

// File identifies an uploaded document.
type File struct {
	FileID string `json:"file_id"`
	URL    string `json:"url"`
}

// UploadPDF stores a PDF document named name.
func (g *Google) UploadPDF(ctx context.Context, name string, pdf []byte) (File, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	meta, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return File{}, fmt.Errorf("create metadata part: %w", err)
	}
	if err := json.NewEncoder(meta).Encode(map[string]string{"name": name, "mimeType": "application/pdf"}); err != nil {
		return File{}, fmt.Errorf("encode file metadata: %w", err)
	}

	media, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/pdf"}})
	if err != nil {
		return File{}, fmt.Errorf("create media part: %w", err)
	}
	if _, err := media.Write(pdf); err != nil {
		return File{}, fmt.Errorf("write media part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return File{}, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.driveBase+"/upload/drive/v3/files?uploadType=multipart", &body)
	if err != nil {
		return File{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := g.do(req, "upload file", &uploaded); err != nil {
		return File{}, err
	}
	return File{FileID: uploaded.ID, URL: "https://drive.google.com/file/d/" + uploaded.ID + "/view"}, nil
}

func (g *Google) doJSON(ctx context.Context, op, method, endpoint string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, op, out)
}

func (g *Google) do(req *http.Request, op string, out any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
