// Package tracker records storefront products and serves what was recorded.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bossnova23/shopify-tracker/internal/apperr"
	"github.com/bossnova23/shopify-tracker/internal/metrics"
	"github.com/bossnova23/shopify-tracker/internal/models"
	"github.com/bossnova23/shopify-tracker/internal/repository"
	"github.com/bossnova23/shopify-tracker/internal/shopify"
)

type Fetcher interface {
	FetchProduct(ctx context.Context, domain, handle string) (*shopify.Product, error)
}

type Service struct {
	repo    *repository.Repository
	fetcher Fetcher
	retry   repository.RetryPolicy
	now     func() time.Time
}

func NewService(repo *repository.Repository, fetcher Fetcher, retry repository.RetryPolicy) *Service {
	return &Service{repo: repo, fetcher: fetcher, retry: retry, now: time.Now}
}

// Track starts tracking the product behind link. A product that is already
// tracked yields an apperr.KindDuplicate error and leaves the data untouched.
func (s *Service) Track(ctx context.Context, link string) (*models.Product, error) {
	product, err := s.track(ctx, link)

	outcome := "success"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	metrics.TrackOutcomes.WithLabelValues(outcome).Inc()

	return product, err
}

func (s *Service) track(ctx context.Context, link string) (*models.Product, error) {
	pl, err := shopify.ParseProductLink(link)
	if err != nil {
		return nil, err
	}
	log := slog.With("domain", pl.Domain, "handle", pl.Handle)

	_, err = s.repo.FindProduct(ctx, pl.Domain, pl.Handle)
	switch {
	case err == nil:
		return nil, alreadyTracked(pl)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, "failed to look up product", err)
	}

	remote, err := s.fetcher.FetchProduct(ctx, pl.Domain, pl.Handle)
	if err != nil {
		log.WarnContext(ctx, "product fetch failed", "error", err)
		return nil, err
	}

	today := s.now().Format(models.TrackDateLayout)
	product := &models.Product{
		Handle:     pl.Handle,
		Title:      remote.Title,
		Image:      remote.FirstImage(),
		Price:      remote.FirstPrice(),
		Bought:     remote.UpdatedAt,
		Post:       remote.PublishedAt,
		TrackStart: today,
	}

	err = s.repo.WithRetry(ctx, s.retry, func(ctx context.Context, tx *repository.Tx) error {
		store, err := tx.GetOrCreateStore(ctx, pl.Domain, today)
		if err != nil {
			return err
		}
		product.ID = 0
		product.StoreID = store.ID
		return tx.CreateProduct(ctx, product)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, alreadyTracked(pl)
	}
	if err != nil {
		log.ErrorContext(ctx, "failed to save product", "error", err)
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, "failed to save product", err)
	}

	log.InfoContext(ctx, "product tracked", "product_id", product.ID, "store_id", product.StoreID)
	return product, nil
}

// StoreData returns a store and every product it tracks.
func (s *Service) StoreData(ctx context.Context, website string) (*models.StoreData, error) {
	domain, err := shopify.NormalizeDomain(website)
	if err != nil {
		return nil, err
	}

	store, err := s.repo.GetStoreByDomain(ctx, domain)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("store %s is not tracked", domain))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, "failed to load store", err)
	}

	products, err := s.repo.GetProductsByStore(ctx, store.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, "failed to load products", err)
	}

	return &models.StoreData{Store: *store, Products: products}, nil
}

// ProductData returns the stored snapshot of the product behind link.
func (s *Service) ProductData(ctx context.Context, link string) (*models.Product, error) {
	pl, err := shopify.ParseProductLink(link)
	if err != nil {
		return nil, err
	}

	store, err := s.repo.GetStoreByDomain(ctx, pl.Domain)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("store %s is not tracked", pl.Domain))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, "failed to load store", err)
	}

	product, err := s.repo.GetProduct(ctx, store.ID, pl.Handle)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound,
			fmt.Sprintf("product %s is not tracked for store %s", pl.Handle, pl.Domain))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, "failed to load product", err)
	}

	return product, nil
}

func alreadyTracked(pl shopify.ProductLink) error {
	return apperr.New(apperr.KindDuplicate,
		fmt.Sprintf("product %s is already being tracked for store %s", pl.Handle, pl.Domain))
}
