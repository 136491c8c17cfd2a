package resume

import (
	"context"
	"sort"
	"strings"
	"sync"

	"resumeapi/internal/database"
)

// memoryRepository 是与 gormRepository 语义一致的内存实现，供测试使用。
type memoryRepository struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]database.Resume
}

// NewMemoryRepository 构造内存简历仓库。
func NewMemoryRepository() Repository {
	return &memoryRepository{
		nextID:  1,
		records: map[uint]database.Resume{},
	}
}

func (m *memoryRepository) List(_ context.Context, params ListParams) ([]database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	ids := make([]uint, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// 先过滤再分页，与 SQL 谓词的求值顺序一致。
	matched := make([]database.Resume, 0, len(ids))
	for _, id := range ids {
		record := m.records[id]
		if params.Skill != "" && !hasSkill(record.Skills, params.Skill) {
			continue
		}
		matched = append(matched, record)
	}

	if params.Skip >= len(matched) {
		return []database.Resume{}, nil
	}
	matched = matched[params.Skip:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func hasSkill(skills []string, skill string) bool {
	for _, s := range skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

func (m *memoryRepository) Get(_ context.Context, id uint) (*database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (m *memoryRepository) Create(_ context.Context, resume *database.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range m.records {
		if record.Email == resume.Email {
			return ErrEmailTaken
		}
	}

	resume.ID = m.nextID
	m.nextID++
	m.records[resume.ID] = *resume
	return nil
}

func (m *memoryRepository) Update(_ context.Context, id uint, patch Update) (*database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}

	patch.Apply(&record)
	for otherID, other := range m.records {
		if otherID != id && other.Email == record.Email {
			return nil, ErrEmailTaken
		}
	}

	m.records[id] = record
	return &record, nil
}

func (m *memoryRepository) Delete(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}
