package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
)

const bookColumns = "id, title, author, isbn, published_year, available_copies, category_id"

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "isbn", "published_year", "available_copies", "category_id").
		Values(book.Title, book.Author, book.ISBN, book.PublishedYear, book.AvailableCopies, book.CategoryID).
		Suffix("returning " + bookColumns).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Error(err))
		return model.Book{}, err
	}
	return created, nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns).
		From(booksTableName).
		ToSql()
	if err != nil {
		return nil, err
	}

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", book.Title).
		Set("author", book.Author).
		Set("isbn", book.ISBN).
		Set("published_year", book.PublishedYear).
		Set("available_copies", book.AvailableCopies).
		Set("category_id", book.CategoryID).
		Where(sq.Eq{"id": book.ID}).
		Suffix("returning " + bookColumns).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var updated model.Book
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return updated, nil
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(booksTableName).
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

func (r *repository) SearchBooksByTitle(ctx context.Context, title string) ([]model.Book, error) {
	return r.searchBooks(ctx, sq.ILike{"title": "%" + title + "%"})
}

func (r *repository) SearchBooksByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	return r.searchBooks(ctx, sq.ILike{"author": "%" + author + "%"})
}

func (r *repository) SearchBooksByCategory(ctx context.Context, category string) ([]model.Book, error) {
	query, args, err := qb.Select("b.id", "b.title", "b.author", "b.isbn", "b.published_year", "b.available_copies", "b.category_id").
		From(booksTableName + " b").
		Join(fmt.Sprintf("%s c on c.id = b.category_id", categoriesTableName)).
		Where(sq.ILike{"c.name": "%" + category + "%"}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) SearchBooksAnywhere(ctx context.Context, keyword string) ([]model.Book, error) {
	like := "%" + keyword + "%"
	return r.searchBooks(ctx, sq.Or{
		sq.ILike{"title": like},
		sq.ILike{"author": like},
		sq.ILike{"isbn": like},
	})
}

func (r *repository) searchBooks(ctx context.Context, pred interface{}) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(pred).
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("searchBooks", zap.String("query", query), zap.Any("args", args))

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}
