package handlers

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PantryHandlers handles pantry REST API requests
type PantryHandlers struct {
	base
	service inbound.PantryService
}

// NewPantryHandlers creates a new pantry handlers instance
func NewPantryHandlers(service inbound.PantryService, logger *zap.Logger) *PantryHandlers {
	return &PantryHandlers{
		base:    newBase(logger.Named("pantry-api")),
		service: service,
	}
}

// Request DTOs

type addItemsRequest struct {
	Text        string `json:"text" validate:"required"`
	DateAdded   string `json:"dateAdded" validate:"omitempty,datetime=2006-01-02"`
	StorageType string `json:"storageType"`
}

type updateItemRequest struct {
	Text        string `json:"text" validate:"required"`
	Quantity    string `json:"quantity"`
	DateAdded   string `json:"dateAdded" validate:"omitempty,datetime=2006-01-02"`
	StorageType string `json:"storageType"`
}

type transferRequest struct {
	Source      string `json:"source" validate:"required"`
	Destination string `json:"destination" validate:"required"`
	Indices     []int  `json:"indices" validate:"required,min=1,dive,min=0"`
	Mode        string `json:"mode" validate:"required,oneof=move copy"`
}

type transferSelectedRequest struct {
	Destination string `json:"destination" validate:"required"`
	Mode        string `json:"mode" validate:"required,oneof=move copy"`
}

type switchLocationRequest struct {
	Location string `json:"location" validate:"required"`
}

type filterRequest struct {
	Search  string `json:"search"`
	Storage string `json:"storage" validate:"omitempty,oneof=all pantry refrigerator freezer"`
}

type toggleSelectionRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

// ListLocations handles GET /api/v1/locations
func (h *PantryHandlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	active := h.service.ActiveView()
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"locations": h.service.Locations(),
			"active":    toActiveViewDTO(active),
		},
	})
}

// GetPantry handles GET /api/v1/pantry
func (h *PantryHandlers) GetPantry(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toStateDTO(state, h.service.Locations())})
}

// ListItems handles GET /api/v1/locations/{location}/items?search=&storage=
func (h *PantryHandlers) ListItems(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	filter := filterRequest{
		Search:  r.URL.Query().Get("search"),
		Storage: r.URL.Query().Get("storage"),
	}
	if err := h.validateStruct(filter); err != nil {
		h.writeError(w, r, err)
		return
	}

	rows, err := h.service.DeriveView(r.Context(), loc, pantry.ViewQuery{
		Search:  filter.Search,
		Storage: pantry.StorageFilter(filter.Storage),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toViewDTOs(rows)})
}

// AddItems handles POST /api/v1/locations/{location}/items
func (h *PantryHandlers) AddItems(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	var req addItemsRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	storage, err := parseStorageType(req.StorageType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	state, err := h.service.AddItems(r.Context(), inbound.AddItemsCommand{
		RawText:     req.Text,
		Location:    loc,
		DateAdded:   pantry.Date(req.DateAdded),
		StorageType: storage,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    toEntryDTOs(state[loc]),
		Message: "Items added",
	})
}

// UpdateItem handles PUT /api/v1/locations/{location}/items/{index}
func (h *PantryHandlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	storage, err := parseStorageType(req.StorageType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	state, err := h.service.UpdateItemAt(r.Context(), loc, index, pantry.Entry{
		Text:        req.Text,
		Quantity:    req.Quantity,
		DateAdded:   pantry.Date(req.DateAdded),
		StorageType: storage,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if index >= len(state[loc]) {
		h.writeError(w, r, errors.NewNotFoundError("Item"))
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toEntryDTO(state[loc][index])})
}

// RemoveItem handles DELETE /api/v1/locations/{location}/items/{index}
func (h *PantryHandlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	state, err := h.service.RemoveItemAt(r.Context(), loc, index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toEntryDTOs(state[loc])})
}

// ClearItems handles DELETE /api/v1/locations/{location}/items
func (h *PantryHandlers) ClearItems(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	if _, err := h.service.ClearAll(r.Context(), loc); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: []entryDTO{}, Message: "Location cleared"})
}

// Transfer handles POST /api/v1/transfers
func (h *PantryHandlers) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	source, destination := pantry.Location(req.Source), pantry.Location(req.Destination)
	if err := checkTransferTargets(h.service.Locations(), source, destination); err != nil {
		h.writeError(w, r, err)
		return
	}

	state, err := h.service.Transfer(r.Context(), inbound.TransferRequest{
		Source:      source,
		Destination: destination,
		Indices:     req.Indices,
		Mode:        pantry.TransferMode(req.Mode),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toStateDTO(state, h.service.Locations())})
}

// GetSession handles GET /api/v1/session
func (h *PantryHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	active := h.service.ActiveView()
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"active":    toActiveViewDTO(active),
			"selection": h.service.Selection(active.Location),
		},
	})
}

// SwitchLocation handles PUT /api/v1/session/location
func (h *PantryHandlers) SwitchLocation(w http.ResponseWriter, r *http.Request) {
	var req switchLocationRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if !h.service.SwitchLocation(pantry.Location(req.Location)) {
		h.writeError(w, r, errors.NewNotFoundError("Location").WithCause(pantry.ErrUnknownLocation))
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toActiveViewDTO(h.service.ActiveView())})
}

// SetFilter handles PUT /api/v1/session/filter
func (h *PantryHandlers) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.service.SetFilter(pantry.ViewQuery{Search: req.Search, Storage: pantry.StorageFilter(req.Storage)})
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toActiveViewDTO(h.service.ActiveView())})
}

// ToggleSelection handles POST /api/v1/locations/{location}/selection/toggle
func (h *PantryHandlers) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	var req toggleSelectionRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: h.service.ToggleSelection(loc, *req.Index)})
}

// ClearSelection handles DELETE /api/v1/locations/{location}/selection
func (h *PantryHandlers) ClearSelection(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	h.service.ClearSelection(loc)
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: []int{}})
}

// SelectAll handles POST /api/v1/session/selection
func (h *PantryHandlers) SelectAll(w http.ResponseWriter, r *http.Request) {
	selection, err := h.service.SelectAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: selection})
}

// SelectedEntries handles GET /api/v1/session/selection/entries
func (h *PantryHandlers) SelectedEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.SelectedEntries(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toEntryDTOs(entries)})
}

// TransferSelected handles POST /api/v1/session/transfer
func (h *PantryHandlers) TransferSelected(w http.ResponseWriter, r *http.Request) {
	var req transferSelectedRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	destination := pantry.Location(req.Destination)
	if err := checkTransferTargets(h.service.Locations(), h.service.ActiveView().Location, destination); err != nil {
		h.writeError(w, r, err)
		return
	}

	state, err := h.service.TransferSelected(r.Context(), destination, pantry.TransferMode(req.Mode))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toStateDTO(state, h.service.Locations())})
}

// Categorize handles POST /api/v1/session/categorize
func (h *PantryHandlers) Categorize(w http.ResponseWriter, r *http.Request) {
	view, notes, err := h.service.CategorizeVisible(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := APIResponse{Success: true, Notifications: notes}
	if view != nil {
		resp.Data = toCategorizedDTO(view)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// GetCategories handles GET /api/v1/locations/{location}/categories
func (h *PantryHandlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	view := h.service.CategorizedView(loc)
	if view == nil {
		h.writeError(w, r, errors.NewNotFoundError("Categorized view"))
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toCategorizedDTO(view)})
}

// ToggleCategory handles POST /api/v1/locations/{location}/categories/{category}/toggle
func (h *PantryHandlers) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	category := chi.URLParam(r, "category")
	view := h.service.CategorizedView(loc)
	if view == nil {
		h.writeError(w, r, errors.NewNotFoundError("Categorized view"))
		return
	}
	if _, exists := view.Group(category); !exists {
		h.writeError(w, r, errors.NewNotFoundError("Category"))
		return
	}
	expanded := h.service.ToggleCategory(loc, category)
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"label": category, "expanded": expanded},
	})
}

// ClearCategories handles DELETE /api/v1/locations/{location}/categories
func (h *PantryHandlers) ClearCategories(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}
	h.service.ClearCategorization(loc)
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Categorization cleared"})
}

// location resolves the {location} URL parameter against the declared locations
func (h *PantryHandlers) location(w http.ResponseWriter, r *http.Request) (pantry.Location, bool) {
	loc := pantry.Location(chi.URLParam(r, "location"))
	if !slices.Contains(h.service.Locations(), loc) {
		h.writeError(w, r, errors.NewNotFoundError("Location").WithCause(pantry.ErrUnknownLocation))
		return "", false
	}
	return loc, true
}

func (h *PantryHandlers) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		h.writeError(w, r, errors.NewBadRequestError("Item index must be a non-negative integer"))
		return 0, false
	}
	return index, true
}

func checkTransferTargets(locations []pantry.Location, source, destination pantry.Location) error {
	if !slices.Contains(locations, source) {
		return errors.NewNotFoundError("Source location").WithCause(pantry.ErrUnknownLocation)
	}
	if !slices.Contains(locations, destination) {
		return errors.NewNotFoundError("Destination location").WithCause(pantry.ErrUnknownLocation)
	}
	if source == destination {
		return errors.NewBadRequestError("Source and destination must differ").WithCause(pantry.ErrSameLocation)
	}
	return nil
}

// parseStorageType accepts a storage type in any letter case. An empty value stays
// empty so the service applies its own default.
func parseStorageType(raw string) (pantry.StorageType, error) {
	if raw == "" {
		return "", nil
	}
	st, ok := pantry.ParseStorageType(raw)
	if !ok {
		return "", errors.NewValidationError("storageType must be one of: pantry refrigerator freezer").
			WithCause(pantry.ErrInvalidStorageType)
	}
	return st, nil
}
