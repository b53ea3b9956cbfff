package ledger

import (
	"strings"

	"github.com/mfonseca/tally/internal/domain"
)

// AddCategoryInput holds the input for creating a category.
type AddCategoryInput struct {
	Name      string
	Kind      domain.CategoryKind
	ParentID  *int64
	ColorCode *string
}

// AddCategory creates a category. A parent, when given, must exist and
// share the new category's kind. A fresh node cannot close a cycle.
func (l *Ledger) AddCategory(input AddCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidCategoryKind
	}

	if input.ParentID != nil {
		parent, err := l.store.GetCategory(*input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Kind != input.Kind {
			return nil, domain.ErrCategoryKindMismatch
		}
	}

	return l.store.CreateCategory(&domain.Category{
		Name:      name,
		Kind:      input.Kind,
		ParentID:  input.ParentID,
		ColorCode: input.ColorCode,
	})
}

// GetCategory retrieves a category by id.
func (l *Ledger) GetCategory(id int64) (*domain.Category, error) {
	return l.store.GetCategory(id)
}

// ListCategories retrieves all categories.
func (l *Ledger) ListCategories() ([]*domain.Category, error) {
	return l.store.ListCategories()
}

// UpdateCategoryInput holds the replacement state for a category.
type UpdateCategoryInput struct {
	Name      string
	Kind      domain.CategoryKind
	ParentID  *int64
	ColorCode *string
}

// UpdateCategory replaces a category's name, kind, parent and color. A kind
// change is rejected while transactions or subcategories depend on the old
// kind. A parent change that would close a cycle fails with
// ErrCategoryCycle and leaves the tree unchanged.
func (l *Ledger) UpdateCategory(id int64, input UpdateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidCategoryKind
	}

	var updated *domain.Category
	err := l.store.WithinTx(func(tx domain.Store) error {
		current, err := tx.GetCategory(id)
		if err != nil {
			return err
		}

		if input.Kind != current.Kind {
			inUse, err := tx.CategoryHasTransactions(id)
			if err != nil {
				return err
			}
			if inUse {
				return domain.ErrCategoryInUse
			}
			hasChildren, err := categoryHasChildren(tx, id)
			if err != nil {
				return err
			}
			if hasChildren {
				return domain.ErrCategoryHasChildren
			}
		}

		if input.ParentID != nil {
			if err := validateParent(tx, id, *input.ParentID, input.Kind); err != nil {
				return err
			}
		}

		updated, err = tx.UpdateCategory(&domain.Category{
			ID:        id,
			Name:      name,
			Kind:      input.Kind,
			ParentID:  input.ParentID,
			ColorCode: input.ColorCode,
			CreatedAt: current.CreatedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes a category that no transaction, budget,
// recurring template or subcategory references.
func (l *Ledger) DeleteCategory(id int64) error {
	return l.store.WithinTx(func(tx domain.Store) error {
		inUse, err := tx.CategoryHasTransactions(id)
		if err != nil {
			return err
		}
		if inUse {
			return domain.ErrCategoryInUse
		}
		budgeted, err := tx.BudgetExistsForCategory(id)
		if err != nil {
			return err
		}
		if budgeted {
			return domain.ErrCategoryInUse
		}
		referenced, err := tx.RecurringExistsForCategory(id)
		if err != nil {
			return err
		}
		if referenced {
			return domain.ErrCategoryInUse
		}
		hasChildren, err := categoryHasChildren(tx, id)
		if err != nil {
			return err
		}
		if hasChildren {
			return domain.ErrCategoryHasChildren
		}
		return tx.DeleteCategory(id)
	})
}

// validateParent checks a prospective parent edge: the parent must exist,
// share the child's kind, and must not be the child or one of its
// descendants. The walk follows ancestors up from the parent; the tree is
// acyclic by construction, so the walk terminates.
func validateParent(s domain.Store, childID, parentID int64, kind domain.CategoryKind) error {
	if parentID == childID {
		return domain.ErrCategoryCycle
	}
	parent, err := s.GetCategory(parentID)
	if err != nil {
		return err
	}
	if parent.Kind != kind {
		return domain.ErrCategoryKindMismatch
	}
	for parent.ParentID != nil {
		if *parent.ParentID == childID {
			return domain.ErrCategoryCycle
		}
		parent, err = s.GetCategory(*parent.ParentID)
		if err != nil {
			return err
		}
	}
	return nil
}

func categoryHasChildren(s domain.Store, id int64) (bool, error) {
	categories, err := s.ListCategories()
	if err != nil {
		return false, err
	}
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}
