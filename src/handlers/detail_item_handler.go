package handlers

import (
	"net/http"
	"strings"

	db "money-server/src/db/sql"
	"money-server/src/models"
)

type detailItemRequest struct {
	Name     string                    `json:"name"`
	Category models.DetailItemCategory `json:"category"`
}

func (req detailItemRequest) toItem() (models.DetailItem, error) {
	item := models.DetailItem{Name: strings.TrimSpace(req.Name), Category: req.Category}
	if item.Name == "" {
		return item, invalid("item name is required")
	}
	if !item.Category.Valid() {
		return item, invalid("invalid item category %q", item.Category)
	}
	return item, nil
}

func ListDetailItems(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := db.ListDetailItems(r.Context(), env.Pool, strings.TrimSpace(r.URL.Query().Get("search")))
		if err != nil {
			writeError(w, r, err, "list detail items")
			return
		}
		if items == nil {
			items = []models.DetailItem{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func CreateDetailItem(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req detailItemRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "create detail item")
			return
		}
		item, err := req.toItem()
		if err != nil {
			writeError(w, r, err, "create detail item")
			return
		}
		created, err := db.CreateDetailItem(r.Context(), env.Pool, item)
		if err != nil {
			writeError(w, r, err, "create detail item")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetDetailItem(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "item_id")
		if err != nil {
			writeError(w, r, err, "get detail item")
			return
		}
		item, err := db.GetDetailItem(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get detail item")
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func UpdateDetailItem(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "item_id")
		if err != nil {
			writeError(w, r, err, "update detail item")
			return
		}
		var req detailItemRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "update detail item")
			return
		}
		item, err := req.toItem()
		if err != nil {
			writeError(w, r, err, "update detail item")
			return
		}
		item.ID = id
		updated, err := db.UpdateDetailItem(r.Context(), env.Pool, item)
		if err != nil {
			writeError(w, r, err, "update detail item")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteDetailItem(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "item_id")
		if err != nil {
			writeError(w, r, err, "delete detail item")
			return
		}
		if err := db.DeleteDetailItem(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete detail item")
			return
		}
		writeMessage(w, "detail item deleted")
	}
}
