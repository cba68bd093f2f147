package domain

import "time"

// DishChoice is a selectable variant inside a dish option, optionally
// adding to the dish price.
type DishChoice struct {
	Name  string `json:"name"`
	Extra int    `json:"extra,omitempty"`
}

// DishOption is a customization axis for a dish (e.g. "Spice Level").
type DishOption struct {
	Name    string       `json:"name"`
	Choices []DishChoice `json:"choices,omitempty"`
	Extra   int          `json:"extra,omitempty"`
}

// Dish is a menu item of a restaurant. Options are stored as JSONB.
type Dish struct {
	ID           int64
	RestaurantID int64
	Name         string
	Price        int
	Photo        string
	Description  string
	Options      []DishOption
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OptionExtra returns the surcharge for picking choice under option, or the
// option-level surcharge when the option has no per-choice pricing.
func (d *Dish) OptionExtra(option, choice string) int {
	for _, opt := range d.Options {
		if opt.Name != option {
			continue
		}
		for _, ch := range opt.Choices {
			if ch.Name == choice {
				return ch.Extra
			}
		}
		return opt.Extra
	}
	return 0
}
