package enumpatch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/model"
	"github.com/mark3labs/swagger2ts/internal/writer"
)

const enumSpec = `openapi: 3.0.0
info:
  title: Main
  version: "1.0.0"
paths:
  /MainAPI/Enums/GetAllStatus:
    get:
      responses:
        "200":
          description: ok
  /MainAPI/Enums/GetAllRole:
    get:
      responses:
        "200":
          description: ok
  /MainAPI/Enums/GetAllGhost:
    get:
      responses:
        "200":
          description: ok
  /MainAPI/Orders/GetAll:
    get:
      responses:
        "200":
          description: ok
components:
  schemas:
    Role:
      type: integer
      enum: [0, 1, 2]
    Status:
      type: string
      enum: [open, closed]
`

func loadDoc(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(enumSpec))
	require.NoError(t, err)
	return doc
}

func fastFetcher(t *testing.T, baseURL string, opts ...Option) *Fetcher {
	t.Helper()
	base := []Option{WithBackoff(time.Millisecond), WithRate(0), WithLogger(zaptest.NewLogger(t).Sugar())}
	return NewFetcher(baseURL, append(base, opts...)...)
}

func TestExtractEnumName(t *testing.T) {
	t.Parallel()
	name, ok := ExtractEnumName("/MainAPI/Enums/GetAllOrderStatus")
	assert.True(t, ok)
	assert.Equal(t, "OrderStatus", name)

	for _, p := range []string{"/MainAPI/Orders/GetAll", "/MainAPI/Enums/GetAll", "/MainAPI/Enums/GetAllRole/{id}"} {
		_, ok := ExtractEnumName(p)
		assert.False(t, ok, p)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []Target{
		{EnumName: "Role", Path: "/MainAPI/Enums/GetAllRole"},
		{EnumName: "Status", Path: "/MainAPI/Enums/GetAllStatus"},
	}, Discover(loadDoc(t)))
	assert.Empty(t, Discover(nil))
}

func TestParsePairs(t *testing.T) {
	t.Parallel()
	pairs, err := ParsePairs([]byte(`{"Data":[{"Key":0,"Value":"Admin"},{"Key":"x","Value":true},{"Key":1.5,"Value":null}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"0", "Admin"}, {"x", "true"}, {"1.5", ""}}, pairs)

	_, err = ParsePairs([]byte(`{"Data":[{"Key":{"a":1},"Value":"x"}]}`))
	assert.True(t, errs.IsCode(err, errs.ParseError))
	_, err = ParsePairs([]byte(`<html>`))
	assert.True(t, errs.IsCode(err, errs.ParseError))
}

func TestSuggestNames(t *testing.T) {
	t.Parallel()
	pairs := []Pair{{"0", "Admin User"}, {"1", "Admin User"}, {"2", " "}}
	members := SuggestNames("Role", pairs, StrategyAuto)
	var names []string
	for _, m := range members {
		names = append(names, m.SuggestedName)
	}
	assert.Equal(t, []string{"AdminUser", "AdminUser2", "RoleValue2"}, names)
	assert.Equal(t, "Admin User", members[0].Comment)

	plain := SuggestNames("Role", pairs, StrategyNone)
	for _, m := range plain {
		assert.Empty(t, m.SuggestedName)
	}
	assert.Equal(t, "2", plain[2].Value)

	_, err := ParseStrategy("clever")
	assert.True(t, errs.IsCode(err, errs.ValidationError))
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"Data":[]}`)
	}))
	defer srv.Close()

	body, err := fastFetcher(t, srv.URL).Fetch(context.Background(), "/x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Data":[]}`, string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestFetch_ExhaustsBudget(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fastFetcher(t, srv.URL+"/").Fetch(context.Background(), "/MainAPI/Enums/GetAllRole")
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.NetworkError))
	assert.Contains(t, err.Error(), srv.URL+"/MainAPI/Enums/GetAllRole")
	assert.Contains(t, err.Error(), "http 500")
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestFetch_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := fastFetcher(t, srv.URL).Fetch(context.Background(), "/missing")
	assert.True(t, errs.IsCode(err, errs.NetworkError))
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestFetch_SendsBearerToken(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"Data":[]}`)
	}))
	defer srv.Close()

	_, err := fastFetcher(t, srv.URL, WithToken("s3cret")).Fetch(context.Background(), "/x")
	assert.NoError(t, err)
}

func enumServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/MainAPI/Enums/GetAllRole":
			fmt.Fprint(w, `{"Data":[{"Key":0,"Value":"Admin User"},{"Key":1,"Value":"Admin User"},{"Key":2,"Value":" "}]}`)
		case "/MainAPI/Enums/GetAllStatus":
			fmt.Fprint(w, `{"Data":[{"Key":"open","Value":"Open"},{"Key":"closed","Value":"Closed"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	t.Parallel()
	srv := enumServer(t)
	doc, err := Run(context.Background(), loadDoc(t), Config{
		Fetcher:  fastFetcher(t, srv.URL),
		Strategy: StrategyAuto,
		Logger:   zaptest.NewLogger(t).Sugar(),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", doc.SchemaVersion)
	require.Len(t, doc.Patches, 2)

	role := doc.Patches[0]
	assert.Equal(t, "Role", role.EnumName)
	assert.Equal(t, Source, role.Source)
	require.NotNil(t, role.Confidence)
	assert.InDelta(t, 0.7, *role.Confidence, 1e-9)
	assert.Equal(t, model.EnumPatchMember{Value: "2", SuggestedName: "RoleValue2"}, role.Members[2])
	assert.Equal(t, "Status", doc.Patches[1].EnumName)

	root := t.TempDir()
	w := writer.NewFS(root, nil)
	changed, err := Write(w, "enums.json", doc)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = Write(w, "enums.json", doc)
	require.NoError(t, err)
	assert.False(t, changed)

	back, err := model.LoadEnumPatchFile(filepath.Join(root, "enums.json"))
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}

func TestRun_FetchFailureAborts(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Run(context.Background(), loadDoc(t), Config{Fetcher: fastFetcher(t, srv.URL)})
	assert.True(t, errs.IsCode(err, errs.NetworkError))

	_, err = Run(context.Background(), loadDoc(t), Config{})
	assert.True(t, errs.IsCode(err, errs.ValidationError))
}
