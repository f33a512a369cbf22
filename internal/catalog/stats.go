package catalog

import (
	"strings"
	"time"
)

type Stats struct {
	LoadID      string         `json:"load_id"`
	LoadedAt    time.Time      `json:"loaded_at"`
	Total       int            `json:"total"`
	YearMin     int            `json:"year_min"`
	YearMax     int            `json:"year_max"`
	ByYear      map[int]int    `json:"by_year"`
	ByCategory  map[string]int `json:"by_category"`
	EmptyFields map[string]int `json:"empty_fields"`
}

// Stats summarizes the loaded collection. Year 0 (missing) is counted
// under EmptyFields and left out of the year range.
func (c *Catalog) Stats() Stats {
	st := Stats{
		LoadID:     c.loadID,
		LoadedAt:   c.loadedAt,
		Total:      len(c.titles),
		ByYear:     make(map[int]int),
		ByCategory: make(map[string]int),
		EmptyFields: map[string]int{
			"id": 0, "title": 0, "year": 0, "category": 0, "rating": 0, "overview": 0,
		},
	}

	for _, t := range c.titles {
		countEmpty(st.EmptyFields, t)

		if t.Year != 0 {
			st.ByYear[t.Year]++
			if st.YearMin == 0 || t.Year < st.YearMin {
				st.YearMin = t.Year
			}
			if t.Year > st.YearMax {
				st.YearMax = t.Year
			}
		}

		for _, tag := range CategoryTags(t.Category) {
			st.ByCategory[tag]++
		}
	}
	return st
}

// CategoryTags splits the raw comma-separated category field.
func CategoryTags(category string) []string {
	var out []string
	for _, p := range strings.Split(category, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func countEmpty(m map[string]int, t TitleRecord) {
	if t.ID == "" {
		m["id"]++
	}
	if t.Title == "" {
		m["title"]++
	}
	if t.Year == 0 {
		m["year"]++
	}
	if t.Category == "" {
		m["category"]++
	}
	if t.Rating == "" {
		m["rating"]++
	}
	if t.Overview == "" {
		m["overview"]++
	}
}
