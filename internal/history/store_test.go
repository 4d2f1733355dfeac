package history

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvtable/internal/core"
)

// fakeDB keeps inserted rows in memory and serves them back to Query in
// insert order reversed, the way ORDER BY started_at DESC would for
// monotonically increasing timestamps.
type fakeDB struct {
	execs    []string
	inserted [][]any
	execErr  error
	queryErr error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if strings.Contains(sql, "INSERT INTO fetch_history") {
		f.inserted = append(f.inserted, args)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	limit := args[0].(int)

	var data [][]any
	for i := len(f.inserted) - 1; i >= 0 && len(data) < limit; i-- {
		data = append(data, f.inserted[i])
	}
	return &fakeRows{data: data, pos: -1}, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos], nil
}

// Scan assigns the stored insert arguments to the destinations by type.
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		sv := reflect.ValueOf(row[i])
		if !sv.Type().AssignableTo(dv.Type()) {
			if !sv.Type().ConvertibleTo(dv.Type()) {
				return fmt.Errorf("scan column %d: cannot assign %s to %s", i, sv.Type(), dv.Type())
			}
			sv = sv.Convert(dv.Type())
		}
		dv.Set(sv)
	}
	return nil
}

func fetchRecord(startedAt time.Time, status core.FetchStatus) core.FetchRecord {
	rec := core.FetchRecord{
		ID:        uuid.NewString(),
		Source:    "s3://reports/people.csv",
		Status:    status,
		Rows:      23,
		Bytes:     1024,
		Duration:  150 * time.Millisecond,
		ClientIP:  "203.0.113.7",
		StartedAt: startedAt.UTC(),
	}
	if status == core.FetchFailed {
		rec.Rows = 0
		rec.Code = "SRC001"
		rec.Error = "object not found: NoSuchKey"
	}
	return rec
}

func TestStore_EnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewStore(db).EnsureSchema(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS fetch_history")
}

func TestStore_RecordAndRecent(t *testing.T) {
	db := &fakeDB{}
	store := NewStore(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := fetchRecord(base, core.FetchOK)
	failed := fetchRecord(base.Add(time.Minute), core.FetchFailed)
	require.NoError(t, store.RecordFetch(ctx, ok))
	require.NoError(t, store.RecordFetch(ctx, failed))

	args := db.inserted[0]
	assert.Equal(t, pgtype.Text{}, args[3], "empty code stored as NULL")
	assert.Equal(t, int64(150), args[6])
	assert.Equal(t, pgtype.Text{String: "203.0.113.7", Valid: true}, args[9])
	assert.Equal(t, pgtype.Text{}, args[10], "empty user agent stored as NULL")

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, failed, got[0])
	assert.Equal(t, ok, got[1])

	got, err = store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_RecentDefaultLimit(t *testing.T) {
	db := &fakeDB{}
	store := NewStore(db)
	for i := 0; i < DefaultLimit+5; i++ {
		require.NoError(t, store.RecordFetch(context.Background(), fetchRecord(time.Now(), core.FetchOK)))
	}

	got, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	err := NewStore(&fakeDB{execErr: boom}).RecordFetch(ctx, fetchRecord(time.Now(), core.FetchOK))
	assert.ErrorIs(t, err, boom)

	_, err = NewStore(&fakeDB{queryErr: boom}).Recent(ctx, 5)
	assert.ErrorIs(t, err, boom)

	err = NewStore(&fakeDB{}).RecordFetch(ctx, core.FetchRecord{ID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestDisabled(t *testing.T) {
	got, err := Disabled{}.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
