package model

import "time"

// Icon identifies one entry in the closed set of category icons.
type Icon string

// The full icon set. Category icons must come from this list.
const (
	IconFood          Icon = "food"
	IconTransport     Icon = "transport"
	IconShopping      Icon = "shopping"
	IconEntertainment Icon = "entertainment"
	IconHealth        Icon = "health"
	IconHome          Icon = "home"
	IconUtilities     Icon = "utilities"
	IconTravel        Icon = "travel"
	IconEducation     Icon = "education"
	IconSavings       Icon = "savings"
	IconGifts         Icon = "gifts"
	IconOther         Icon = "other"
)

// Icons lists every valid icon tag.
var Icons = []Icon{
	IconFood,
	IconTransport,
	IconShopping,
	IconEntertainment,
	IconHealth,
	IconHome,
	IconUtilities,
	IconTravel,
	IconEducation,
	IconSavings,
	IconGifts,
	IconOther,
}

// ValidIcon reports whether tag is part of the icon set.
func ValidIcon(tag Icon) bool {
	for _, icon := range Icons {
		if icon == tag {
			return true
		}
	}
	return false
}

// Category represents a named, iconified grouping that expenses are tagged with.
// (Name, UserID) is unique: no two categories for the same user share a name.
type Category struct {
	CreatedAt time.Time
	ID        string
	Name      string
	UserID    string
	Icon      Icon
}
