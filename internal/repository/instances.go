package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/lending"
	"locallibrary/internal/model"
)

type InstanceListResult struct {
	Instances []model.BookInstance
	PageInfo  PageInfo
}

type InstanceRepository interface {
	Create(ctx context.Context, inst *model.BookInstance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	Update(ctx context.Context, inst *model.BookInstance) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List pages over every copy in the catalog.
	List(ctx context.Context, page Page) (InstanceListResult, error)
	// ListByStatuses pages over copies whose status is in the given set.
	ListByStatuses(ctx context.Context, statuses []model.Status, page Page) (InstanceListResult, error)
	// ListLoans pages over all copies on loan, soonest due first.
	ListLoans(ctx context.Context, page Page) (InstanceListResult, error)
	// ListLoansByBorrower pages over one user's open loans, soonest due first.
	ListLoansByBorrower(ctx context.Context, borrowerID uuid.UUID, page Page) (InstanceListResult, error)
	CountByStatus(ctx context.Context) (map[model.Status]int64, error)

	// Checkout atomically claims an available copy for borrower. When two
	// callers race for the same copy the conditional update lets exactly
	// one through; the loser gets lending.ErrNotAvailable.
	Checkout(ctx context.Context, id, borrowerID uuid.UUID, due time.Time) (*model.BookInstance, error)
}

type GormInstanceRepository struct {
	db *gorm.DB
}

func NewGormInstanceRepository(db *gorm.DB) *GormInstanceRepository {
	return &GormInstanceRepository{db: db}
}

func (r *GormInstanceRepository) Create(ctx context.Context, inst *model.BookInstance) error {
	return r.db.WithContext(ctx).Create(inst).Error
}

func (r *GormInstanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	var inst model.BookInstance
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Author").
		Preload("Borrower").
		First(&inst, "id = ?", id).Error; err != nil {

		return nil, err
	}
	return &inst, nil
}

// Update writes every mutable field, including nil borrower and due date, so
// a cleared loan really clears.
func (r *GormInstanceRepository) Update(ctx context.Context, inst *model.BookInstance) error {
	return r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Where("id = ?", inst.ID).
		Updates(map[string]any{
			"book_id":     inst.BookID,
			"imprint":     inst.Imprint,
			"due_back":    inst.DueBack,
			"borrower_id": inst.BorrowerID,
			"status":      inst.Status,
		}).Error
}

func (r *GormInstanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.BookInstance{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormInstanceRepository) List(ctx context.Context, page Page) (InstanceListResult, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&model.BookInstance{}), "created_at", page)
}

func (r *GormInstanceRepository) ListByStatuses(ctx context.Context, statuses []model.Status, page Page) (InstanceListResult, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Where("status IN ?", statuses), "status, created_at", page)
}

func (r *GormInstanceRepository) ListLoans(ctx context.Context, page Page) (InstanceListResult, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Where("status = ?", model.StatusOnLoan), "due_back", page)
}

func (r *GormInstanceRepository) ListLoansByBorrower(ctx context.Context, borrowerID uuid.UUID, page Page) (InstanceListResult, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Where("status = ? AND borrower_id = ?", model.StatusOnLoan, borrowerID), "due_back", page)
}

func (r *GormInstanceRepository) list(ctx context.Context, base *gorm.DB, order string, page Page) (InstanceListResult, error) {
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return InstanceListResult{}, err
	}

	offset, info := paginate(total, page)

	var instances []model.BookInstance
	if err := base.
		Preload("Book").
		Preload("Book.Author").
		Preload("Borrower").
		Order(order).
		Limit(info.PageSize).
		Offset(offset).
		Find(&instances).Error; err != nil {

		return InstanceListResult{}, err
	}
	return InstanceListResult{Instances: instances, PageInfo: info}, nil
}

func (r *GormInstanceRepository) CountByStatus(ctx context.Context) (map[model.Status]int64, error) {
	type row struct {
		Status model.Status
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.Status]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.N
	}
	return counts, nil
}

func (r *GormInstanceRepository) Checkout(ctx context.Context, id, borrowerID uuid.UUID, due time.Time) (*model.BookInstance, error) {
	result := r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Where("id = ? AND status = ?", id, model.StatusAvailable).
		Updates(map[string]any{
			"status":      model.StatusOnLoan,
			"borrower_id": borrowerID,
			"due_back":    due,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Either the copy does not exist or someone else got there first.
		var n int64
		if err := r.db.WithContext(ctx).
			Model(&model.BookInstance{}).
			Where("id = ?", id).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, lending.ErrNotAvailable
	}

	return r.FindByID(ctx, id)
}
