package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
)

// FileSource reads a JSON dataset from disk on every call, so edits are picked up without a restart.
// A missing file yields an empty dataset.
type FileSource struct {
	path string
}

var _ domrepo.RecordSource = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Customers(ctx context.Context) ([]models.Customer, error) {
	ds, err := s.dataset(ctx)
	return ds.Customers, err
}

func (s *FileSource) Orders(ctx context.Context) ([]models.Order, error) {
	ds, err := s.dataset(ctx)
	return ds.Orders, err
}

func (s *FileSource) Invoices(ctx context.Context) ([]models.Invoice, error) {
	ds, err := s.dataset(ctx)
	return ds.Invoices, err
}

func (s *FileSource) Products(ctx context.Context) ([]models.Product, error) {
	ds, err := s.dataset(ctx)
	return ds.Products, err
}

func (s *FileSource) dataset(ctx context.Context) (models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return models.Dataset{}, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Dataset{}, nil
	}
	if err != nil {
		return models.Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return models.Dataset{}, fmt.Errorf("decode dataset %s: %w", s.path, err)
	}
	return ds, nil
}

// StaticSource serves a fixed in-memory dataset.
type StaticSource struct {
	Dataset models.Dataset
}

var _ domrepo.RecordSource = StaticSource{}

func (s StaticSource) Customers(context.Context) ([]models.Customer, error) {
	return s.Dataset.Customers, nil
}

func (s StaticSource) Orders(context.Context) ([]models.Order, error) {
	return s.Dataset.Orders, nil
}

func (s StaticSource) Invoices(context.Context) ([]models.Invoice, error) {
	return s.Dataset.Invoices, nil
}

func (s StaticSource) Products(context.Context) ([]models.Product, error) {
	return s.Dataset.Products, nil
}
