package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/appealdesk/appealdesk/internal/domain/appeal"
	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
)

// MockProfileRepository is a mock implementation of profile.Repository
type MockProfileRepository struct {
	mu          sync.Mutex
	Profiles    map[int64]*profile.Profile
	NextID      int64
	CreateError error
	GetError    error
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		Profiles: make(map[int64]*profile.Profile),
		NextID:   1,
	}
}

func (m *MockProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Profiles {
		if existing.Email == p.Email {
			return errors.Conflict("A profile with this email already exists")
		}
	}
	p.ID = m.NextID
	m.NextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.Profiles[p.ID] = p
	return nil
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id int64) (*profile.Profile, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Profiles[id]
	if !ok {
		return nil, errors.NotFound("Profile")
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.Profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Profile")
}

func (m *MockProfileRepository) List(ctx context.Context, filter profile.Filter, limit, offset int) ([]*profile.Profile, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*profile.Profile
	for _, p := range m.Profiles {
		if filter.Plan != "" && p.Plan != filter.Plan {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

func (m *MockProfileRepository) UpdateSubscription(ctx context.Context, id int64, patch profile.QuotaPatch) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Profiles[id]
	if !ok {
		return nil, errors.NotFound("Profile")
	}
	if patch.Plan != nil {
		p.Plan = *patch.Plan
	}
	if patch.SetUnlimited {
		p.AppealQuota = nil
	} else if patch.AppealQuota != nil {
		q := *patch.AppealQuota
		p.AppealQuota = &q
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepository) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, p := range m.Profiles {
		if p.Plan != profile.PlanStarter || p.TrialEndDate.After(now) {
			continue
		}
		if p.AppealQuota == nil || *p.AppealQuota > 0 {
			zero := int64(0)
			p.AppealQuota = &zero
			p.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// MockAppealRepository is a mock implementation of appeal.Repository. Quota
// checks and status flips run under one mutex, mirroring the transactional
// guarantees of the real repository.
type MockAppealRepository struct {
	mu            sync.Mutex
	Appeals       map[string]*appeal.Appeal
	Profiles      *MockProfileRepository
	CreateError   error
	GetError      error
	FinalizeError error
}

func NewMockAppealRepository(profiles *MockProfileRepository) *MockAppealRepository {
	return &MockAppealRepository{
		Appeals:  make(map[string]*appeal.Appeal),
		Profiles: profiles,
	}
}

func (m *MockAppealRepository) Create(ctx context.Context, a *appeal.Appeal, countedStatus string) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if countedStatus != "" {
		if err := m.checkQuotaLocked(a.UserID, countedStatus); err != nil {
			return err
		}
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Status = appeal.StatusDraft
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.Appeals[a.ID] = &cp
	return nil
}

func (m *MockAppealRepository) GetByID(ctx context.Context, id string) (*appeal.Appeal, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.Appeals[id]
	if !ok {
		return nil, errors.NotFound("Appeal")
	}
	cp := *a
	return &cp, nil
}

func (m *MockAppealRepository) ListByUser(ctx context.Context, userID int64, filter appeal.Filter, limit, offset int) ([]*appeal.Appeal, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*appeal.Appeal
	for _, a := range m.Appeals {
		if a.UserID != userID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

func (m *MockAppealRepository) CountByStatus(ctx context.Context, userID int64, status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(userID, status), nil
}

func (m *MockAppealRepository) FinalizeLetter(ctx context.Context, appealID string, userID int64, letter, countedStatus string) (*appeal.Appeal, error) {
	if m.FinalizeError != nil {
		return nil, m.FinalizeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.Appeals[appealID]
	if !ok {
		return nil, errors.NotFound("Appeal")
	}
	if a.UserID != userID {
		return nil, errors.Forbidden("Unauthorized access to appeal")
	}
	if a.Status == appeal.StatusGenerated {
		cp := *a
		return &cp, nil
	}

	if err := m.checkQuotaLocked(userID, countedStatus); err != nil {
		return nil, err
	}

	a.LetterText = letter
	a.Status = appeal.StatusGenerated
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (m *MockAppealRepository) countLocked(userID int64, status string) int64 {
	var n int64
	for _, a := range m.Appeals {
		if a.UserID == userID && a.Status == status {
			n++
		}
	}
	return n
}

func (m *MockAppealRepository) checkQuotaLocked(userID int64, countedStatus string) error {
	p, err := m.Profiles.GetByID(context.Background(), userID)
	if err != nil {
		return err
	}
	if p.AppealQuota == nil {
		return nil
	}
	if m.countLocked(userID, countedStatus) >= *p.AppealQuota {
		return errors.QuotaExceeded("Appeal quota exceeded")
	}
	return nil
}

// MockLetterGenerator is a scripted providers.LetterGenerator
type MockLetterGenerator struct {
	mu     sync.Mutex
	Letter string
	Err    error
	Calls  int
}

func (m *MockLetterGenerator) GenerateLetter(ctx context.Context, payer, denialCode string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Letter, nil
}

// CallCount returns how many times GenerateLetter ran
func (m *MockLetterGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
