package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
)

const categoryColumns = "id, name, description"

func (r *repository) CreateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	query, args, err := qb.Insert(categoriesTableName).
		Columns("name", "description").
		Values(category.Name, category.Description).
		Suffix("returning " + categoryColumns).
		ToSql()
	if err != nil {
		return model.Category{}, err
	}

	var created model.Category
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return model.Category{}, err
	}
	return created, nil
}

func (r *repository) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	query, args, err := qb.Select(categoryColumns).
		From(categoriesTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Category{}, err
	}

	var category model.Category
	if err := r.db.GetContext(ctx, &category, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, errs.ErrNotFound
		}
		return model.Category{}, err
	}
	return category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]model.Category, error) {
	query, args, err := qb.Select(categoryColumns).
		From(categoriesTableName).
		ToSql()
	if err != nil {
		return nil, err
	}

	var categories []model.Category
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) UpdateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	query, args, err := qb.Update(categoriesTableName).
		Set("name", category.Name).
		Set("description", category.Description).
		Where(sq.Eq{"id": category.ID}).
		Suffix("returning " + categoryColumns).
		ToSql()
	if err != nil {
		return model.Category{}, err
	}

	var updated model.Category
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, errs.ErrNotFound
		}
		return model.Category{}, err
	}
	return updated, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(categoriesTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
