package service

// Page is one slice of a filtered result plus its position in the whole
type Page[T any] struct {
	Items        []T
	ActualPage   int
	PerPage      int
	TotalRecords int
	LastPage     int
}

// Paginate slices items into the requested page. page and perPage must be
// at least 1. A page past the end yields no items, never an error.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	total := len(items)

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	result := Page[T]{
		Items:        []T{},
		ActualPage:   page,
		PerPage:      perPage,
		TotalRecords: total,
		LastPage:     lastPage,
	}

	// Compare in page units first so (page-1)*perPage cannot overflow
	if page-1 >= lastPage || page < 1 {
		return result
	}

	start := (page - 1) * perPage
	if start >= total {
		return result
	}

	end := start + perPage
	if end > total {
		end = total
	}
	result.Items = items[start:end]

	return result
}
