package entity

type PaginationInput struct {
	Limit  int
	Offset int
}

const defaultPageLimit = 20

func NewPaginationInput(limit int, offset int) *PaginationInput {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	return &PaginationInput{
		Limit:  limit,
		Offset: offset,
	}
}
