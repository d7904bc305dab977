package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/internal/repository"
)

type BookService struct {
	log  *zap.Logger
	repo repository.Repository
}

func NewBookService(repo repository.Repository, log *zap.Logger) *BookService {
	return &BookService{
		log:  log,
		repo: repo,
	}
}

func (s *BookService) CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error) {
	if req.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *req.CategoryID); err != nil {
			return model.Book{}, err
		}
	}
	return s.repo.CreateBook(ctx, model.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublishedYear:   req.PublishedYear,
		AvailableCopies: req.AvailableCopies,
		CategoryID:      req.CategoryID,
	})
}

func (s *BookService) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *BookService) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *BookService) UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error) {
	existing, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, err
	}

	existing.Title = req.Title
	existing.Author = req.Author
	existing.ISBN = req.ISBN
	existing.PublishedYear = req.PublishedYear
	existing.AvailableCopies = req.AvailableCopies
	existing.CategoryID = req.CategoryID

	return s.repo.UpdateBook(ctx, existing)
}

func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *BookService) SearchByTitle(ctx context.Context, title string) ([]model.Book, error) {
	return s.repo.SearchBooksByTitle(ctx, title)
}

func (s *BookService) SearchByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	return s.repo.SearchBooksByAuthor(ctx, author)
}

func (s *BookService) SearchByCategory(ctx context.Context, category string) ([]model.Book, error) {
	return s.repo.SearchBooksByCategory(ctx, category)
}

func (s *BookService) SearchAnywhere(ctx context.Context, keyword string) ([]model.Book, error) {
	return s.repo.SearchBooksAnywhere(ctx, keyword)
}

type CategoryService struct {
	log  *zap.Logger
	repo repository.Repository
}

func NewCategoryService(repo repository.Repository, log *zap.Logger) *CategoryService {
	return &CategoryService{
		log:  log,
		repo: repo,
	}
}

func (s *CategoryService) CreateCategory(ctx context.Context, req model.CategoryRequest) (model.Category, error) {
	return s.repo.CreateCategory(ctx, model.Category{
		Name:        req.Name,
		Description: req.Description,
	})
}

func (s *CategoryService) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.Category, error) {
	existing, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, err
	}

	existing.Name = req.Name
	existing.Description = req.Description

	return s.repo.UpdateCategory(ctx, existing)
}

// DeleteCategory removes the category; books referencing it are
// detached by the schema (on delete set null), not deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}
