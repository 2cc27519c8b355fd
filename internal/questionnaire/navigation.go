package questionnaire

// Previous returns the category ranked just before current.
func Previous(categories []Category, current Category) (Category, bool) {
	if current.Rank <= 0 || current.Rank >= len(categories) {
		return Category{}, false
	}
	return categories[current.Rank-1], true
}

// Next returns the category ranked just after current.
func Next(categories []Category, current Category) (Category, bool) {
	if current.Rank < 0 || current.Rank >= len(categories)-1 {
		return Category{}, false
	}
	return categories[current.Rank+1], true
}
