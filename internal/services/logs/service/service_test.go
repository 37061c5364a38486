package service

import (
	"context"
	"testing"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/logger"
	dom "cardduel/internal/services/logs/domain"
)

// memLog is an in-memory reader plus recorder
type memLog struct {
	entries    []dom.Entry
	lastOffset int
	lastLimit  int
	lastQuery  string
}

func (m *memLog) Record(_ context.Context, action, actor, details string) error {
	a, d := actor, details
	m.entries = append(m.entries, dom.Entry{Action: action, Actor: &a, Details: &d})
	return nil
}

func (m *memLog) List(_ context.Context, offset, limit int) (dom.Page, error) {
	m.lastOffset, m.lastLimit = offset, limit
	return dom.Page{Entries: m.entries, Total: int64(len(m.entries)), Offset: offset, Limit: limit}, nil
}

func (m *memLog) Search(_ context.Context, query string, offset, limit int) (dom.Page, error) {
	m.lastQuery, m.lastOffset, m.lastLimit = query, offset, limit
	return dom.Page{Entries: nil, Total: 0, Offset: offset, Limit: limit}, nil
}

func newService() (*Service, *memLog) {
	mem := &memLog{}
	return New(mem, mem, Config{}, logger.Logger{}), mem
}

func TestListIsAdminGated(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.List(ctx, "alice", false, 0, 0); !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("non-admin list: got %v, want forbidden", err)
	}
	if _, err := svc.Search(ctx, "alice", false, "login", 0, 0); !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("non-admin search: got %v, want forbidden", err)
	}

	if _, err := svc.List(ctx, "root", true, 0, 0); err != nil {
		t.Fatalf("admin list: %v", err)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	svc, mem := newService()

	if _, err := svc.Search(context.Background(), "root", true, "", 0, 0); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty query: got %v, want invalid argument", err)
	}

	if _, err := svc.Search(context.Background(), "root", true, "login", 0, 0); err != nil {
		t.Fatalf("search: %v", err)
	}
	if mem.lastQuery != "login" {
		t.Fatalf("query = %q, want login", mem.lastQuery)
	}
}

func TestPaginationClamping(t *testing.T) {
	svc, mem := newService()
	ctx := context.Background()

	if _, err := svc.List(ctx, "root", true, -10, 0); err != nil {
		t.Fatalf("list: %v", err)
	}
	if mem.lastOffset != 0 || mem.lastLimit != svc.Cfg.DefaultLimit {
		t.Fatalf("clamped to offset %d limit %d, want 0 and default", mem.lastOffset, mem.lastLimit)
	}

	if _, err := svc.List(ctx, "root", true, 5, 99_999); err != nil {
		t.Fatalf("list: %v", err)
	}
	if mem.lastLimit != svc.Cfg.HardLimit {
		t.Fatalf("limit = %d, want hard cap %d", mem.lastLimit, svc.Cfg.HardLimit)
	}
}

func TestReadsAreAudited(t *testing.T) {
	svc, mem := newService()

	if _, err := svc.List(context.Background(), "root", true, 0, 0); err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(mem.entries) != 1 || mem.entries[0].Action != dom.ActionLogsViewed {
		t.Fatalf("audit entries = %+v, want one logs_viewed", mem.entries)
	}
	if *mem.entries[0].Actor != "root" {
		t.Fatalf("actor = %q, want root", *mem.entries[0].Actor)
	}
}
