package domain

import "time"

type CategoryKind string

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
)

// Valid reports whether k is one of the closed set of category kinds.
func (k CategoryKind) Valid() bool {
	return k == CategoryIncome || k == CategoryExpense
}

// Category groups transactions for reporting. Categories form a forest via
// ParentID; the parent must share the child's kind and the graph must stay
// acyclic, which is enforced when the edge is written, not at report time.
type Category struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Kind      CategoryKind `json:"kind"`
	ParentID  *int64       `json:"parentId,omitempty"`
	ColorCode *string      `json:"colorCode,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type CategoryStore interface {
	CreateCategory(category *Category) (*Category, error)
	GetCategory(id int64) (*Category, error)
	ListCategories() ([]*Category, error)
	UpdateCategory(category *Category) (*Category, error)
	DeleteCategory(id int64) error
	CategoryHasTransactions(id int64) (bool, error)
}
