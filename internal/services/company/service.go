// Package company manages the user's registered companies
package company

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/models"
)

// Compile-time interface check
var _ interfaces.CompanyService = (*Service)(nil)

// subjectCompanies is the user-data subject under which company records live.
const subjectCompanies = "companies"

// ErrNotFound is returned when a company does not exist or belongs to
// another user. Both cases look identical to the caller.
var ErrNotFound = errors.New("company not found")

// ValidationError reports a rejected create payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Service implements CompanyService on top of the user data store
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new company service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// List returns the user's companies ordered by (segment, name)
func (s *Service) List(ctx context.Context, userID string) ([]*models.Company, error) {
	records, err := s.storage.UserDataStore().List(ctx, userID, subjectCompanies)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	companies := make([]*models.Company, 0, len(records))
	for _, rec := range records {
		var c models.Company
		if err := json.Unmarshal([]byte(rec.Value), &c); err != nil {
			s.logger.Warn().Str("key", rec.Key).Err(err).Msg("Skipping unreadable company record")
			continue
		}
		companies = append(companies, &c)
	}

	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Segment != companies[j].Segment {
			return companies[i].Segment < companies[j].Segment
		}
		return companies[i].Name < companies[j].Name
	})

	return companies, nil
}

// Get retrieves one company owned by the user
func (s *Service) Get(ctx context.Context, userID, companyID string) (*models.Company, error) {
	rec, err := s.storage.UserDataStore().Get(ctx, userID, subjectCompanies, companyID)
	if err != nil {
		return nil, ErrNotFound
	}

	var c models.Company
	if err := json.Unmarshal([]byte(rec.Value), &c); err != nil {
		return nil, fmt.Errorf("failed to decode company '%s': %w", companyID, err)
	}
	return &c, nil
}

// Create validates and stores a new company
func (s *Service) Create(ctx context.Context, userID, name, ticker, segment string) (*models.Company, error) {
	name = strings.TrimSpace(name)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	segment = strings.TrimSpace(segment)

	if name == "" {
		return nil, &ValidationError{Message: "name is required"}
	}
	if ticker == "" {
		return nil, &ValidationError{Message: "ticker is required"}
	}
	seg, err := models.ParseSegment(segment)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid segment %q: must be one of %s", segment, segmentList())}
	}

	company := &models.Company{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Ticker:    ticker,
		Segment:   seg,
		CreatedAt: time.Now(),
	}

	value, err := json.Marshal(company)
	if err != nil {
		return nil, fmt.Errorf("failed to encode company: %w", err)
	}

	record := &models.UserRecord{
		UserID:  userID,
		Subject: subjectCompanies,
		Key:     company.ID,
		Value:   string(value),
	}
	if err := s.storage.UserDataStore().Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	s.logger.Info().Str("user", userID).Str("ticker", company.Ticker).Str("segment", string(company.Segment)).Msg("Company created")
	return company, nil
}

// Delete removes a company owned by the user
func (s *Service) Delete(ctx context.Context, userID, companyID string) error {
	// Get first: Delete tolerates missing keys, the API must 404 on them
	if _, err := s.Get(ctx, userID, companyID); err != nil {
		return err
	}

	if err := s.storage.UserDataStore().Delete(ctx, userID, subjectCompanies, companyID); err != nil {
		return fmt.Errorf("failed to delete company '%s': %w", companyID, err)
	}

	s.logger.Info().Str("user", userID).Str("company", companyID).Msg("Company deleted")
	return nil
}

func segmentList() string {
	segs := models.Segments()
	names := make([]string, len(segs))
	for i, seg := range segs {
		names[i] = string(seg)
	}
	return strings.Join(names, ", ")
}
