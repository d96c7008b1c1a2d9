package gcp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/tabular"
)

type recorded struct {
	mu    sync.Mutex
	calls map[string]string
}

func (r *recorded) put(key, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[key] = body
}

func (r *recorded) get(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[key]
}

func fakeWorkspace(t *testing.T) (*Workspace, *recorded) {
	t.Helper()
	rec := &recorded{calls: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		p := r.URL.Path
		switch {
		case p == "/files":
			_, _ = io.WriteString(w, `{"files":[{"id":"s1","name":"EDH Deck Database"}]}`)
		case strings.HasPrefix(p, "/v4/spreadsheets/denied"):
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":403,"message":"The caller does not have permission"}}`)
		case strings.HasSuffix(p, ":append"):
			rec.put("append", string(body))
			_, _ = io.WriteString(w, `{}`)
		case strings.HasSuffix(p, ":batchUpdate"):
			rec.put("batchUpdate", string(body))
			_, _ = io.WriteString(w, `{}`)
		case strings.HasPrefix(p, "/v4/spreadsheets/s1/values/"):
			if r.Method == http.MethodPut {
				rec.put("update", p+" "+string(body))
				_, _ = io.WriteString(w, `{}`)
				return
			}
			_, _ = io.WriteString(w, `{"values":[["Name","Target Bracket"],["Deck Alpha",3]]}`)
		case p == "/v4/spreadsheets/s1":
			_, _ = io.WriteString(w, `{"sheets":[{"properties":{"sheetId":0,"title":"Games"}},{"properties":{"sheetId":7,"title":"Decks"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	ws, err := NewWorkspace(context.Background(), logger.Nop(),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	return ws, rec
}

func TestWorkspaceReads(t *testing.T) {
	ws, _ := fakeWorkspace(t)
	ctx := context.Background()

	files, err := ws.ListSpreadsheets(ctx)
	if err != nil {
		t.Fatalf("ListSpreadsheets: %v", err)
	}
	if diff := cmp.Diff([]SpreadsheetFile{{ID: "s1", Name: "EDH Deck Database"}}, files); diff != "" {
		t.Fatalf("files (-want +got):\n%s", diff)
	}

	m, err := ws.Spreadsheet("s1").Read(ctx, tabular.DecksRange)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	decks := tabular.DecksFromMatrix(m)
	if len(decks) != 1 || decks[0].DeckName != "Deck Alpha" || *decks[0].TargetBracket != 3 {
		t.Fatalf("unexpected decks: %+v", decks)
	}

	_, err = ws.ReadRange(ctx, "denied", "Sheet1!A1:D10")
	if apierr.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("expected upstream 403, got %v", err)
	}
}

func TestSheetSourceWrites(t *testing.T) {
	ws, rec := fakeWorkspace(t)
	src := ws.Spreadsheet("s1")
	ctx := context.Background()

	if err := src.Append(ctx, tabular.GamesSheet, []any{"Deck Alpha", 1.0}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if got := rec.get("append"); !strings.Contains(got, `"Deck Alpha"`) {
		t.Fatalf("append body: %s", got)
	}

	if err := src.UpdateRow(ctx, tabular.DecksSheet, 3, []any{"Deck Beta", 2.0, "", ""}); err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}
	if got := rec.get("update"); !strings.Contains(got, "Decks!A3:D3") {
		t.Fatalf("update range: %s", got)
	}

	if err := src.DeleteRows(ctx, tabular.GamesSheet, []int{2, 5, 5}); err != nil {
		t.Fatalf("DeleteRows: %v", err)
	}
	body := rec.get("batchUpdate")
	if strings.Count(body, "deleteDimension") != 2 || !strings.Contains(body, `"sheetId":0`) {
		t.Fatalf("delete body: %s", body)
	}
	if strings.Index(body, `"startIndex":4`) > strings.Index(body, `"startIndex":1`) {
		t.Fatalf("rows should be deleted bottom-up: %s", body)
	}

	if err := src.DeleteRows(ctx, "Nope", []int{2}); err == nil {
		t.Fatalf("unknown sheet should fail")
	}
}

func TestColumnLetter(t *testing.T) {
	for n, want := range map[int]string{1: "A", 4: "D", 8: "H", 26: "Z", 27: "AA", 52: "AZ"} {
		if got := ColumnLetter(n); got != want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", n, got, want)
		}
	}
}
