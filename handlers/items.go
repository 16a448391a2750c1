package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"showtrackr/models"
	"showtrackr/services/watchlist"
	"showtrackr/utils"
)

// ItemsHandler owns the add/edit modal and the save and delete endpoints.
type ItemsHandler struct {
	watchlist *watchlist.Service
	render    *Renderer
}

// NewItemsHandler creates the item mutation handler.
func NewItemsHandler(svc *watchlist.Service, render *Renderer) *ItemsHandler {
	return &ItemsHandler{watchlist: svc, render: render}
}

type formContext struct {
	Draft  *models.ItemDraft
	Errors []string
	IsEdit bool
}

// AddForm returns the empty add-item form for the modal.
func (h *ItemsHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "_add_edit_item_form.html", formContext{
		Draft: models.DraftFromItem(nil),
	})
}

// EditForm returns the edit form pre-filled with the item's values.
func (h *ItemsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeFragment(w, http.StatusNotFound, "<p class='text-error'>Item not found.</p>")
		return
	}
	item, err := h.watchlist.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, watchlist.ErrNotFound) {
			log.Printf("[items] failed to load item %d: %v", id, err)
		}
		writeFragment(w, http.StatusNotFound, "<p class='text-error'>Item not found.</p>")
		return
	}
	h.render.Render(w, http.StatusOK, "_add_edit_item_form.html", formContext{
		Draft:  models.DraftFromItem(item),
		IsEdit: true,
	})
}

// Save handles both create and update submissions. Validation failures
// re-render the form with the submitted values and every error message;
// nothing is persisted. Updating an id that no longer exists is a distinct
// not-found outcome checked before any validation.
func (h *ItemsHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFragment(w, http.StatusBadRequest, "<p class='text-error'>Error: Invalid form submission.</p>")
		return
	}

	idStr := r.PostForm.Get("item_id")
	var existing *models.WatchlistItem
	if idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			writeFragment(w, http.StatusNotFound, "<p class='text-error'>Error: Item not found.</p>")
			return
		}
		existing, err = h.watchlist.Get(r.Context(), id)
		if errors.Is(err, watchlist.ErrNotFound) {
			writeFragment(w, http.StatusNotFound, "<p class='text-error'>Error: Item not found.</p>")
			return
		}
		if err != nil {
			log.Printf("[items] failed to load item %s for save: %v", idStr, err)
			writeFragment(w, http.StatusInternalServerError, "<p class='text-error'>Database error saving item.</p>")
			return
		}
	}

	result := watchlist.ParseItemForm(r.PostForm)
	if len(result.Errors) > 0 {
		w.Header().Set("X-HX-Alert", "Please correct the errors below.")
		w.Header().Set("X-HX-Alert-Type", "error")
		h.render.Render(w, http.StatusBadRequest, "_add_edit_item_form.html", formContext{
			Draft:  result.Draft,
			Errors: result.Errors,
			IsEdit: existing != nil,
		})
		return
	}

	item := result.Item
	var err error
	if existing != nil {
		item.ID = existing.ID
		err = h.watchlist.Update(r.Context(), item)
	} else {
		err = h.watchlist.Create(r.Context(), item)
	}
	if err != nil {
		log.Printf("[items] failed to save item %q: %v", item.Title, err)
		w.Header().Set("X-HX-Alert", "Database error. Please try again.")
		w.Header().Set("X-HX-Alert-Type", "error")
		h.render.Render(w, http.StatusInternalServerError, "_add_edit_item_form.html", formContext{
			Draft:  result.Draft,
			Errors: []string{"Database error saving item. Please try again."},
			IsEdit: existing != nil,
		})
		return
	}

	w.Header().Set("HX-Trigger", "loadWatchlist")
	w.Header().Set("X-Close-Modal", "true")
	w.Header().Set("X-HX-Alert", utils.SafeHeaderValue(fmt.Sprintf("Item '%s' saved successfully!", item.Title)))
	w.Header().Set("X-HX-Alert-Type", "success")
	w.WriteHeader(http.StatusOK)
}

// Delete removes one item.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		deleteError(w, http.StatusNotFound, "<p class='text-error'>Item not found.</p>")
		return
	}

	title, err := h.watchlist.Delete(r.Context(), id)
	if errors.Is(err, watchlist.ErrNotFound) {
		deleteError(w, http.StatusNotFound, "<p class='text-error'>Item not found.</p>")
		return
	}
	if err != nil {
		log.Printf("[items] failed to delete item %d: %v", id, err)
		deleteError(w, http.StatusInternalServerError, "<p class='text-error'>Database error deleting item.</p>")
		return
	}

	w.Header().Set("HX-Trigger", "loadWatchlist")
	w.Header().Set("X-Close-Modal", "true")
	w.Header().Set("X-HX-Alert", utils.SafeHeaderValue(fmt.Sprintf("Item '%s' deleted successfully!", title)))
	w.Header().Set("X-HX-Alert-Type", "success")
	w.WriteHeader(http.StatusOK)
}

// deleteError targets the shared messages region instead of the row that
// triggered the request.
func deleteError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("HX-Retarget", "#messages")
	w.Header().Set("HX-Reswap", "innerHTML")
	writeFragment(w, status, body)
}

func writeFragment(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
