package handlers

import (
	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
)

// Response DTOs

type entryDTO struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Quantity    string  `json:"quantity,omitempty"`
	DateAdded   *string `json:"dateAdded"`
	StorageType string  `json:"storageType"`
}

type agingDTO struct {
	Known   bool   `json:"known"`
	DaysOld int    `json:"daysOld"`
	Tier    string `json:"tier"`
	Label   string `json:"label"`
}

type viewEntryDTO struct {
	entryDTO
	Index int      `json:"index"`
	Aging agingDTO `json:"aging"`
}

type activeViewDTO struct {
	Location string `json:"location"`
	Search   string `json:"search"`
	Storage  string `json:"storage"`
}

type categoryGroupDTO struct {
	Label    string         `json:"label"`
	Expanded bool           `json:"expanded"`
	Entries  []viewEntryDTO `json:"entries"`
}

type categorizedViewDTO struct {
	Location string             `json:"location"`
	Groups   []categoryGroupDTO `json:"groups"`
	Omitted  int                `json:"omitted"`
}

type locationDTO struct {
	Name    string     `json:"name"`
	Entries []entryDTO `json:"entries"`
}

func toEntryDTO(e pantry.Entry) entryDTO {
	return entryDTO{
		ID:          e.ID.String(),
		Text:        e.Text,
		Quantity:    e.Quantity,
		DateAdded:   e.Clone().DateAdded,
		StorageType: string(e.StorageType),
	}
}

func toEntryDTOs(entries []pantry.Entry) []entryDTO {
	out := make([]entryDTO, len(entries))
	for i, e := range entries {
		out[i] = toEntryDTO(e)
	}
	return out
}

func toViewDTOs(rows []inbound.ViewEntry) []viewEntryDTO {
	out := make([]viewEntryDTO, len(rows))
	for i, row := range rows {
		out[i] = viewEntryDTO{
			entryDTO: toEntryDTO(row.Entry),
			Index:    row.OriginalIndex,
			Aging: agingDTO{
				Known:   row.Aging.Known,
				DaysOld: row.Aging.DaysOld,
				Tier:    string(row.Aging.Tier),
				Label:   row.Aging.Label,
			},
		}
	}
	return out
}

// toStateDTO lists locations in declaration order
func toStateDTO(state pantry.State, locations []pantry.Location) []locationDTO {
	out := make([]locationDTO, 0, len(locations))
	for _, loc := range locations {
		out = append(out, locationDTO{Name: string(loc), Entries: toEntryDTOs(state[loc])})
	}
	return out
}

func toActiveViewDTO(v inbound.ActiveView) activeViewDTO {
	return activeViewDTO{
		Location: string(v.Location),
		Search:   v.Query.Search,
		Storage:  string(v.Query.Storage),
	}
}

func toCategorizedDTO(v *inbound.CategorizedView) categorizedViewDTO {
	out := categorizedViewDTO{
		Location: string(v.Location),
		Groups:   make([]categoryGroupDTO, len(v.Groups)),
		Omitted:  v.Omitted,
	}
	for i, g := range v.Groups {
		out.Groups[i] = categoryGroupDTO{
			Label:    g.Label,
			Expanded: g.Expanded,
			Entries:  toViewDTOs(g.Entries),
		}
	}
	return out
}
