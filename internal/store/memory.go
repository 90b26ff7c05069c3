package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	apierrors "drillsheet/internal/errors"
	"drillsheet/pkg/contracts/domain"
)

type boreholeKey struct{ siteID, boreholeID string }

type storedJob struct {
	job domain.ParseJob
	seq int
}

// MemoryStore is an in-memory implementation of Store. Records are copied
// on the way in and out so callers cannot modify stored state.
type MemoryStore struct {
	mu        sync.RWMutex
	sites     map[string]domain.Site
	boreholes map[boreholeKey]domain.Borehole
	tests     map[string]domain.DischargeTest
	series    map[string][]domain.Series
	quality   map[string][]domain.Quality
	reports   map[string]domain.Report
	jobs      map[string]storedJob
	jobSeq    int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sites:     make(map[string]domain.Site),
		boreholes: make(map[boreholeKey]domain.Borehole),
		tests:     make(map[string]domain.DischargeTest),
		series:    make(map[string][]domain.Series),
		quality:   make(map[string][]domain.Quality),
		reports:   make(map[string]domain.Report),
		jobs:      make(map[string]storedJob),
	}
}

// SaveResult stores the records of res
func (s *MemoryStore) SaveResult(ctx context.Context, res *domain.ParseResult) error {
	if err := checkResult(res); err != nil {
		return apierrors.NewStorageError("cannot save parse result", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Report != nil {
		s.reports[res.Report.ReportID] = cloneReport(*res.Report)
		return nil
	}

	test := *res.Test
	if _, exists := s.tests[test.TestID]; exists {
		return apierrors.NewStorageError(fmt.Sprintf("test %s already exists", test.TestID), nil)
	}

	site := *res.Site
	if prev, ok := s.sites[site.SiteID]; ok {
		site.CreatedAt = prev.CreatedAt
	}
	if site.Coordinates != nil {
		c := *site.Coordinates
		site.Coordinates = &c
	}
	s.sites[site.SiteID] = site

	bh := *res.Borehole
	key := boreholeKey{bh.SiteID, bh.BoreholeID}
	if prev, ok := s.boreholes[key]; ok {
		bh.CreatedAt = prev.CreatedAt
	}
	s.boreholes[key] = bh

	s.tests[test.TestID] = test
	s.series[test.TestID] = cloneSeries(res.Series)
	s.quality[test.TestID] = slices.Clone(res.Quality)
	return nil
}

// SaveJob inserts or replaces a parse job
func (s *MemoryStore) SaveJob(ctx context.Context, job *domain.ParseJob) error {
	if job == nil || job.JobID == "" {
		return apierrors.NewStorageError("cannot save parse job without an id", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.jobSeq
	if prev, ok := s.jobs[job.JobID]; ok {
		seq = prev.seq
	} else {
		s.jobSeq++
	}
	s.jobs[job.JobID] = storedJob{job: cloneJob(*job), seq: seq}
	return nil
}

// GetSite retrieves a site by ID
func (s *MemoryStore) GetSite(ctx context.Context, siteID string) (*domain.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[siteID]
	if !ok {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("site %q", siteID))
	}
	if site.Coordinates != nil {
		c := *site.Coordinates
		site.Coordinates = &c
	}
	return &site, nil
}

// GetBorehole retrieves a borehole by site and borehole ID
func (s *MemoryStore) GetBorehole(ctx context.Context, siteID, boreholeID string) (*domain.Borehole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bh, ok := s.boreholes[boreholeKey{siteID, boreholeID}]
	if !ok {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("borehole %q", boreholeID))
	}
	return &bh, nil
}

// GetTest retrieves a discharge test by ID
func (s *MemoryStore) GetTest(ctx context.Context, testID string) (*domain.DischargeTest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	test, ok := s.tests[testID]
	if !ok {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("test %q", testID))
	}
	return &test, nil
}

// ListSeries returns the series pages of a test in extraction order
func (s *MemoryStore) ListSeries(ctx context.Context, testID string) ([]domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.tests[testID]; !ok {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("test %q", testID))
	}
	return cloneSeries(s.series[testID]), nil
}

// ListQuality returns the quality samples of a test by rate
func (s *MemoryStore) ListQuality(ctx context.Context, testID string) ([]domain.Quality, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.tests[testID]; !ok {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("test %q", testID))
	}
	out := slices.Clone(s.quality[testID])
	if out == nil {
		out = []domain.Quality{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RateIndex < out[j].RateIndex })
	return out, nil
}

// GetReport retrieves a daily report by ID
func (s *MemoryStore) GetReport(ctx context.Context, reportID string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[reportID]
	if !ok {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("report %q", reportID))
	}
	out := cloneReport(r)
	return &out, nil
}

// GetJob retrieves a parse job by ID
func (s *MemoryStore) GetJob(ctx context.Context, jobID string) (*domain.ParseJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sj, ok := s.jobs[jobID]
	if !ok {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("job %q", jobID))
	}
	out := cloneJob(sj.job)
	return &out, nil
}

// ListJobs returns jobs matching the filter, newest first
func (s *MemoryStore) ListJobs(ctx context.Context, filter JobFilter) ([]domain.ParseJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]storedJob, 0, len(s.jobs))
	for _, sj := range s.jobs {
		if filter.matches(&sj.job) {
			matched = append(matched, sj)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.job.CreatedAt.Equal(b.job.CreatedAt) {
			return a.job.CreatedAt.After(b.job.CreatedAt)
		}
		return a.seq > b.seq
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	out := make([]domain.ParseJob, 0, len(matched))
	for _, sj := range matched {
		out = append(out, cloneJob(sj.job))
	}
	return out, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error { return nil }

func cloneSeries(in []domain.Series) []domain.Series {
	out := make([]domain.Series, len(in))
	for i, s := range in {
		s.Points = slices.Clone(s.Points)
		out[i] = s
	}
	return out
}

func cloneShift(s domain.Shift) domain.Shift {
	s.Activities = slices.Clone(s.Activities)
	s.Personnel = slices.Clone(s.Personnel)
	return s
}

func cloneReport(r domain.Report) domain.Report {
	r.Challenges = slices.Clone(r.Challenges)
	r.Checks.ParseWarnings = slices.Clone(r.Checks.ParseWarnings)
	r.Checks.ParseErrors = slices.Clone(r.Checks.ParseErrors)
	r.DayShift = cloneShift(r.DayShift)
	r.NightShift = cloneShift(r.NightShift)
	return r
}

func cloneJob(j domain.ParseJob) domain.ParseJob {
	j.Warnings = slices.Clone(j.Warnings)
	j.Errors = slices.Clone(j.Errors)
	return j
}
