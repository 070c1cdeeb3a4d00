package api

import (
	"github.com/bluele/gcache"

	"github.com/samcharles93/typelib/internal/report"
)

// ReportStore keeps recent reports in two LRU caches: by report ID for
// lookups and by content digest so identical uploads are not revalidated.
type ReportStore struct {
	byID     gcache.Cache
	byDigest gcache.Cache
}

func NewReportStore(size int) *ReportStore {
	if size < 1 {
		size = 1
	}
	return &ReportStore{
		byID:     gcache.New(size).LRU().Build(),
		byDigest: gcache.New(size).LRU().Build(),
	}
}

func (s *ReportStore) Save(r *report.Report) error {
	if err := s.byID.Set(r.ID, r); err != nil {
		return err
	}
	return s.byDigest.Set(r.Digest, r)
}

// Get returns the report with the given ID.
func (s *ReportStore) Get(id string) (*report.Report, bool) {
	return lookup(s.byID, id)
}

// Lookup returns the cached report for a content digest.
func (s *ReportStore) Lookup(digest string) (*report.Report, bool) {
	return lookup(s.byDigest, digest)
}

func lookup(c gcache.Cache, key string) (*report.Report, bool) {
	v, err := c.Get(key)
	if err != nil {
		return nil, false
	}
	r, ok := v.(*report.Report)
	return r, ok
}
