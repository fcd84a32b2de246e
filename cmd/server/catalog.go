package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/quotes"
)

func (s *server) handleClientsList(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		fail(w, r, "list clients", err)
		return
	}
	if clients == nil {
		clients = []model.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *server) handleClientGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "get client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	var c model.Client
	if !decodeJSON(w, r, &c) || !validClient(w, r, &c) {
		return
	}
	out, err := s.store.CreateClient(r.Context(), c)
	if err != nil {
		fail(w, r, "create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *server) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	var c model.Client
	if !decodeJSON(w, r, &c) || !validClient(w, r, &c) {
		return
	}
	c.ID = chi.URLParam(r, "id")
	out, err := s.store.UpdateClient(r.Context(), c)
	if err != nil {
		fail(w, r, "update client", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleClientDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, "delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validClient(w http.ResponseWriter, r *http.Request, c *model.Client) bool {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	switch {
	case c.Name == "":
		invalidField(w, r, "name", "is required")
	case c.Email == "":
		invalidField(w, r, "email", "is required")
	default:
		return true
	}
	return false
}

func (s *server) handleItemsList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListItems(r.Context())
	if err != nil {
		fail(w, r, "list items", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleItemGet(w http.ResponseWriter, r *http.Request) {
	it, err := s.store.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "get item", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *server) handleItemCreate(w http.ResponseWriter, r *http.Request) {
	var it model.Item
	if !decodeJSON(w, r, &it) || !validItem(w, r, &it) {
		return
	}
	out, err := s.store.CreateItem(r.Context(), it)
	if err != nil {
		fail(w, r, "create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *server) handleItemUpdate(w http.ResponseWriter, r *http.Request) {
	var it model.Item
	if !decodeJSON(w, r, &it) || !validItem(w, r, &it) {
		return
	}
	it.ID = chi.URLParam(r, "id")
	out, err := s.store.UpdateItem(r.Context(), it)
	if err != nil {
		fail(w, r, "update item", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleItemDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validItem(w http.ResponseWriter, r *http.Request, it *model.Item) bool {
	it.Name = strings.TrimSpace(it.Name)
	it.Unit = strings.TrimSpace(it.Unit)
	switch {
	case it.Name == "":
		invalidField(w, r, "name", "is required")
	case it.Unit == "":
		invalidField(w, r, "unit", "is required")
	case it.UnitPrice.IsNegative():
		invalidField(w, r, "unit_price", "must not be negative")
	case it.CostPrice != nil && it.CostPrice.IsNegative():
		invalidField(w, r, "cost_price", "must not be negative")
	default:
		return true
	}
	return false
}

func (s *server) handleTemplatesList(w http.ResponseWriter, r *http.Request) {
	tpls, err := s.store.ListTemplates(r.Context())
	if err != nil {
		fail(w, r, "list templates", err)
		return
	}
	if tpls == nil {
		tpls = []model.Template{}
	}
	writeJSON(w, http.StatusOK, tpls)
}

func (s *server) handleTemplateGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "get template", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *server) handleTemplateCreate(w http.ResponseWriter, r *http.Request) {
	var t model.Template
	if !decodeJSON(w, r, &t) {
		return
	}
	t.ID = ""
	out, err := s.quotes.SaveTemplate(r.Context(), t)
	if err != nil {
		fail(w, r, "create template", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *server) handleTemplateUpdate(w http.ResponseWriter, r *http.Request) {
	var t model.Template
	if !decodeJSON(w, r, &t) {
		return
	}
	t.ID = chi.URLParam(r, "id")
	out, err := s.quotes.SaveTemplate(r.Context(), t)
	if err != nil {
		fail(w, r, "update template", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleTemplateDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, "delete template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQuotationFromTemplate starts a draft from a template. The body must
// name the client; its other non-blank fields override the template.
func (s *server) handleQuotationFromTemplate(w http.ResponseWriter, r *http.Request) {
	var in quotes.Input
	if r.ContentLength != 0 && !decodeJSON(w, r, &in) {
		return
	}
	q, err := s.quotes.FromTemplate(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, "create quotation from template", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}
