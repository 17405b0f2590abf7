package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/courtview/internal/adapters/datasource"
	"github.com/okian/courtview/internal/domain/table"
	"github.com/okian/courtview/pkg/logger"
)

// stubExecutor serves canned tables and counts executions per query.
type stubExecutor struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]bool
	results map[string]table.Table
}

func newStubExecutor() *stubExecutor {
	return &stubExecutor{
		calls: map[string]int{},
		fail:  map[string]bool{},
		results: map[string]table.Table{
			datasource.RankingsQuery.Name: rankingsTable(),
			datasource.VenuesQuery.Name:   venuesTable(),
		},
	}
}

func (e *stubExecutor) Execute(_ context.Context, q datasource.Query) (table.Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls[q.Name]++
	if e.fail[q.Name] {
		return table.Empty(), &datasource.Error{Op: "execute", Query: q.Name, Kind: datasource.ErrConnect, Err: errors.New("connection refused")}
	}
	return e.results[q.Name], nil
}

func (e *stubExecutor) setFail(name string, fail bool) {
	e.mu.Lock()
	e.fail[name] = fail
	e.mu.Unlock()
}

func (e *stubExecutor) count(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[name]
}

func rankingsTable() table.Table {
	return table.Table{
		Columns: []table.Column{
			{Name: "rank", Kind: table.KindInt},
			{Name: "movement", Kind: table.KindInt},
			{Name: "points", Kind: table.KindInt},
			{Name: "competitions_played", Kind: table.KindInt},
			{Name: "competitor_name", Kind: table.KindString},
			{Name: "country", Kind: table.KindString},
			{Name: "abbreviation", Kind: table.KindString},
		},
		Rows: [][]any{
			{int64(1), int64(0), int64(1000), int64(20), "Taylor Fritz", "USA", "FRI"},
			{int64(2), int64(1), int64(900), int64(22), "Tommy Paul", "USA", "PAU"},
			{int64(3), int64(-1), int64(850), int64(18), "Carlos Alcaraz", "ESP", "ALC"},
			{int64(30), int64(2), int64(400), int64(25), "Wang Yafan", "China", "WAN"},
			{int64(31), int64(0), int64(390), int64(24), "Zhang Shuai", "China", "ZHA"},
			{nil, int64(0), int64(10), int64(1), "Unranked Player", "USA", "UNR"},
		},
	}
}

func venuesTable() table.Table {
	return table.Table{
		Columns: []table.Column{
			{Name: "venue_id", Kind: table.KindString},
			{Name: "venue_name", Kind: table.KindString},
			{Name: "city_name", Kind: table.KindString},
			{Name: "country_name", Kind: table.KindString},
			{Name: "country_code", Kind: table.KindString},
			{Name: "timezone", Kind: table.KindString},
			{Name: "complex_name", Kind: table.KindString},
		},
		Rows: [][]any{
			{"sr:venue:1", "Centre Court", "London", "United Kingdom", "GBR", "Europe/London", "All England Club"},
		},
	}
}

// recordingLogger counts warnings by message.
type recordingLogger struct {
	mu    sync.Mutex
	warns map[string]int
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{warns: map[string]int{}}
}

func (l *recordingLogger) Info(context.Context, string, ...logger.Field)  {}
func (l *recordingLogger) Error(context.Context, string, ...logger.Field) {}
func (l *recordingLogger) Debug(context.Context, string, ...logger.Field) {}

func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...logger.Field) {
	l.mu.Lock()
	l.warns[msg]++
	l.mu.Unlock()
}

func (l *recordingLogger) Named(string) logger.Logger { return l }

func (l *recordingLogger) warned(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warns[msg]
}
