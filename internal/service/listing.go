package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"go.uber.org/zap"
)

func (s *Service) ListListings(ctx context.Context) ([]domain.Listing, error) {
	listings, err := s.listings.GetAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	return listings, nil
}

func (s *Service) CreateListing(ctx context.Context, l domain.Listing) (*domain.Listing, error) {
	l, err := normalizeListing(l)
	if err != nil {
		return nil, err
	}

	created, err := s.listings.CreateListing(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	s.log.Info("listing created", zap.Int64("listing_id", created.ID), zap.String("title", created.Title))
	return created, nil
}

func (s *Service) UpdateListing(ctx context.Context, id int64, l domain.Listing) (*domain.Listing, error) {
	l, err := normalizeListing(l)
	if err != nil {
		return nil, err
	}

	updated, err := s.listings.UpdateListing(ctx, id, l)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}
	s.log.Info("listing updated", zap.Int64("listing_id", id))
	return updated, nil
}

func (s *Service) DeleteListing(ctx context.Context, id int64) error {
	if err := s.listings.DeleteListing(ctx, id); err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return err
		}
		return fmt.Errorf("delete listing: %w", err)
	}
	s.log.Info("listing deleted", zap.Int64("listing_id", id))
	return nil
}

func normalizeListing(l domain.Listing) (domain.Listing, error) {
	l.Title = strings.TrimSpace(l.Title)
	l.Sector = strings.TrimSpace(l.Sector)
	l.Location = strings.TrimSpace(l.Location)

	skills := make([]string, 0, len(l.Skills))
	for _, skill := range l.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	l.Skills = skills

	switch {
	case l.Title == "":
		return l, &domain.ValidationError{Field: "title", Message: "is required"}
	case l.Sector == "":
		return l, &domain.ValidationError{Field: "sector", Message: "is required"}
	case l.Location == "":
		return l, &domain.ValidationError{Field: "location", Message: "is required"}
	case len(l.Skills) == 0:
		return l, &domain.ValidationError{Field: "skills", Message: "at least one skill is required"}
	}
	return l, nil
}
