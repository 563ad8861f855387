package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/document"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// ─────────────────────────────────────────────────────────────────────────────
// MemoryRequestRepo
// ─────────────────────────────────────────────────────────────────────────────

// MemoryRequestRepo is an in-memory request.Repository for tests.  It
// enforces the same (case, type, number) uniqueness as the real schema.
type MemoryRequestRepo struct {
	mu       sync.RWMutex
	requests map[common.ID]*request.DiscoveryRequest
}

func NewMemoryRequestRepo() *MemoryRequestRepo {
	return &MemoryRequestRepo{requests: make(map[common.ID]*request.DiscoveryRequest)}
}

func (r *MemoryRequestRepo) Save(ctx context.Context, req *request.DiscoveryRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.CaseID == req.CaseID && existing.Type == req.Type && existing.Number == req.Number {
			return pkgerrors.Newf(pkgerrors.CodeRequestNumberTaken,
				"%s %d already exists in this case", req.Type, req.Number)
		}
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *MemoryRequestRepo) FindByID(ctx context.Context, id common.ID) (*request.DiscoveryRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	cp := *req
	return &cp, nil
}

func (r *MemoryRequestRepo) FindByCase(ctx context.Context, caseID common.CaseID) ([]*request.DiscoveryRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*request.DiscoveryRequest
	for _, req := range r.requests {
		if req.CaseID == caseID {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (r *MemoryRequestRepo) Update(ctx context.Context, req *request.DiscoveryRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *MemoryRequestRepo) UpdateCoverage(ctx context.Context, id common.ID, percentage int, status dtypes.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	req.CoveragePercentage = percentage
	req.Status = status
	return nil
}

func (r *MemoryRequestRepo) Delete(ctx context.Context, id common.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	delete(r.requests, id)
	return nil
}

func (r *MemoryRequestRepo) MaxNumber(ctx context.Context, caseID common.CaseID, reqType dtypes.RequestType) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, req := range r.requests {
		if req.CaseID == caseID && req.Type == reqType && req.Number > max {
			max = req.Number
		}
	}
	return max, nil
}

func (r *MemoryRequestRepo) NumberExists(ctx context.Context, caseID common.CaseID, reqType dtypes.RequestType, number int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requests {
		if req.CaseID == caseID && req.Type == reqType && req.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRequestRepo) Stats(ctx context.Context, caseID common.CaseID) (*dtypes.CaseStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &dtypes.CaseStats{}
	sum := 0
	for _, req := range r.requests {
		if req.CaseID != caseID {
			continue
		}
		stats.TotalRequests++
		sum += req.CoveragePercentage
		switch req.Type {
		case dtypes.RequestTypeRFP:
			stats.RFPs++
		case dtypes.RequestTypeInterrogatory:
			stats.Interrogatories++
		}
		switch req.Status {
		case dtypes.StatusIncomplete:
			stats.Incomplete++
		case dtypes.StatusPartial:
			stats.Partial++
		case dtypes.StatusComplete:
			stats.Complete++
		}
	}
	if stats.TotalRequests > 0 {
		stats.AverageCompletion = float64(sum) / float64(stats.TotalRequests)
	}
	return stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// MemoryMappingRepo
// ─────────────────────────────────────────────────────────────────────────────

// MemoryMappingRepo is an in-memory mapping.Repository for tests.  It
// enforces (document, request) uniqueness.
type MemoryMappingRepo struct {
	mu       sync.RWMutex
	mappings map[common.ID]*mapping.Mapping
}

func NewMemoryMappingRepo() *MemoryMappingRepo {
	return &MemoryMappingRepo{mappings: make(map[common.ID]*mapping.Mapping)}
}

func (r *MemoryMappingRepo) Save(ctx context.Context, m *mapping.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.mappings {
		if existing.DocumentID == m.DocumentID && existing.RequestID == m.RequestID {
			return pkgerrors.New(pkgerrors.CodeMappingAlreadyExists,
				"document is already mapped to this request")
		}
	}
	cp := *m
	r.mappings[m.ID] = &cp
	return nil
}

func (r *MemoryMappingRepo) FindByID(ctx context.Context, id common.ID) (*mapping.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappings[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeMappingNotFound, "mapping not found")
	}
	cp := *m
	return &cp, nil
}

func (r *MemoryMappingRepo) FindByRequest(ctx context.Context, requestID common.ID) ([]*mapping.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*mapping.Mapping
	for _, m := range r.mappings {
		if m.RequestID == requestID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out, nil
}

func (r *MemoryMappingRepo) Update(ctx context.Context, m *mapping.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mappings[m.ID]; !ok {
		return pkgerrors.New(pkgerrors.CodeMappingNotFound, "mapping not found")
	}
	cp := *m
	r.mappings[m.ID] = &cp
	return nil
}

func (r *MemoryMappingRepo) Delete(ctx context.Context, id common.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mappings[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeMappingNotFound, "mapping not found")
	}
	delete(r.mappings, id)
	return nil
}

func (r *MemoryMappingRepo) CountAccepted(ctx context.Context, requestID common.ID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, m := range r.mappings {
		if m.RequestID == requestID && m.IsAccepted() {
			count++
		}
	}
	return count, nil
}

func (r *MemoryMappingRepo) Exists(ctx context.Context, documentID, requestID common.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.mappings {
		if m.DocumentID == documentID && m.RequestID == requestID {
			return true, nil
		}
	}
	return false, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// MemoryDocumentRepo
// ─────────────────────────────────────────────────────────────────────────────

// MemoryDocumentRepo is an in-memory document.Repository for tests.  The
// unmapped filter consults an optional MemoryMappingRepo.
type MemoryDocumentRepo struct {
	mu        sync.RWMutex
	documents map[common.ID]*document.Document
	Mappings  *MemoryMappingRepo
}

func NewMemoryDocumentRepo(mappings *MemoryMappingRepo) *MemoryDocumentRepo {
	return &MemoryDocumentRepo{
		documents: make(map[common.ID]*document.Document),
		Mappings:  mappings,
	}
}

// Add seeds a document.
func (r *MemoryDocumentRepo) Add(doc *document.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.documents[doc.ID] = &cp
}

func (r *MemoryDocumentRepo) FindByID(ctx context.Context, id common.ID) (*document.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDocumentNotFound, "document not found")
	}
	cp := *doc
	return &cp, nil
}

func (r *MemoryDocumentRepo) FindByCase(ctx context.Context, caseID common.CaseID) ([]*document.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*document.Document
	for _, doc := range r.documents {
		if doc.CaseID == caseID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryDocumentRepo) FindUnmappedForRequest(ctx context.Context, caseID common.CaseID, requestID common.ID) ([]*document.Document, error) {
	docs, err := r.FindByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if r.Mappings == nil {
		return docs, nil
	}
	var out []*document.Document
	for _, doc := range docs {
		mapped, err := r.Mappings.Exists(ctx, doc.ID, requestID)
		if err != nil {
			return nil, err
		}
		if !mapped {
			out = append(out, doc)
		}
	}
	return out, nil
}
