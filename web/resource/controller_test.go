package resource_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/database"
	"github.com/shyamgroup/backoffice/devapi"
	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/service"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type fixture struct {
	client   *backend.Client
	ctx      context.Context
	requests *atomic.Int64
}

// newFixture starts the development backend, logs in as the seeded admin and
// resets the request counter.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	api, err := devapi.New(db, "test-secret")
	require.NoError(t, err)

	requests := atomic.NewInt64(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Inc()
		api.Handler().ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client := backend.NewClient(srv.URL)
	gate := service.NewAuthGate(&session.MemoryStore{}, client)
	_, err = gate.Login(context.Background(), service.Credentials{Email: "admin@example.com", Password: "admin"})
	require.NoError(t, err)
	requests.Store(0)

	return &fixture{client: client, ctx: gate.Context(context.Background()), requests: requests}
}

func (f *fixture) controller(t *testing.T, name, option string) *resource.Controller {
	t.Helper()
	schema, ok := resource.Lookup(name)
	require.True(t, ok)
	return resource.NewController(schema, f.client, option)
}

func webp(name string) *resource.File {
	return &resource.File{Name: name, Content: []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")}
}

func createDisclosure(t *testing.T, f *fixture, c *resource.Controller, name string) {
	t.Helper()
	c.Create(f.ctx, map[string]string{"name": name, "date": "2024-03-31"}, webp("report.webp"))
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	require.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)
}

func TestCreateThenList(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "disclosures", "")

	c.Create(f.ctx, map[string]string{"name": "Q1 Report", "date": "2024-03-31"}, webp("report.webp"))

	snap := c.Snapshot()
	require.NotNil(t, snap.Message)
	assert.Equal(t, resource.MessageSuccess, snap.Message.Kind)
	assert.Equal(t, "Disclosure created successfully!", snap.Message.Text)
	assert.False(t, snap.Uploading)
	assert.Empty(t, snap.Form)
	assert.Nil(t, snap.FormFile)

	require.Len(t, snap.Records, 1)
	rec := snap.Records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Q1 Report", rec.String("name"))
	assert.Equal(t, "2024-03-31", rec.String("date"))
	assert.Contains(t, rec.String("file"), "/uploads/")
	assert.Contains(t, rec.String("file"), "report.webp")

	// create + refetch
	assert.Equal(t, int64(2), f.requests.Load())
}

func TestCreateMissingFieldsSendsNothing(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "disclosures", "")

	c.Create(f.ctx, map[string]string{"name": "Q1 Report"}, nil)

	msg := c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, resource.MessageError, msg.Kind)
	assert.Equal(t, "Please provide date and a file.", msg.Text)
	assert.Equal(t, int64(0), f.requests.Load())
	assert.Equal(t, "Q1 Report", c.Snapshot().Form["name"])

	// a rejected file keeps the earlier valid selection
	c.Create(f.ctx, nil, webp("report.webp"))
	c.Create(f.ctx, nil, &resource.File{Name: "report.pdf", Content: []byte("%PDF")})
	msg = c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Only .webp files are allowed", msg.Text)
	snap := c.Snapshot()
	require.NotNil(t, snap.FormFile)
	assert.Equal(t, "report.webp", snap.FormFile.Name)
	assert.Equal(t, int64(0), f.requests.Load())
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "disclosures", "")
	createDisclosure(t, f, c, "Q1 Report")
	createDisclosure(t, f, c, "Q2 Report")
	records := c.Snapshot().Records
	require.Len(t, records, 2)

	t.Run("unknown id", func(t *testing.T) {
		require.NoError(t, c.Delete(f.ctx, "abc123", true))
		msg := c.TakeMessage()
		require.NotNil(t, msg)
		assert.Equal(t, resource.MessageError, msg.Kind)
		assert.Equal(t, "Disclosure not found", msg.Text)
		assert.Len(t, c.Snapshot().Records, 2)
	})

	t.Run("not confirmed", func(t *testing.T) {
		before := f.requests.Load()
		assert.ErrorIs(t, c.Delete(f.ctx, records[0].ID, false), backend.ErrNotConfirmed)
		assert.Equal(t, before, f.requests.Load())
		assert.Len(t, c.Snapshot().Records, 2)
	})

	t.Run("success", func(t *testing.T) {
		c.StartEditByID(records[0].ID)
		require.NotNil(t, c.Snapshot().Edit)

		require.NoError(t, c.Delete(f.ctx, records[0].ID, true))
		msg := c.TakeMessage()
		require.NotNil(t, msg)
		assert.Equal(t, resource.MessageSuccess, msg.Kind)
		assert.Equal(t, "Disclosure deleted successfully", msg.Text)

		snap := c.Snapshot()
		require.Len(t, snap.Records, 1)
		assert.Equal(t, records[1].ID, snap.Records[0].ID)
		assert.Nil(t, snap.Edit)
	})
}

func TestEditCancelAndCommit(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "disclosures", "")
	createDisclosure(t, f, c, "Q1 Report")
	rec := c.Snapshot().Records[0]
	fileURL := rec.String("file")

	before := f.requests.Load()
	c.StartEdit(rec)
	snap := c.Snapshot()
	require.NotNil(t, snap.Edit)
	assert.Equal(t, rec.ID, snap.Edit.ID)
	assert.Equal(t, "Q1 Report", snap.Edit.Fields["name"])
	c.CancelEdit()
	assert.Nil(t, c.Snapshot().Edit)
	assert.Equal(t, before, f.requests.Load())

	c.StartEdit(rec)
	c.CommitEdit(f.ctx, map[string]string{"name": "Q1 Report (revised)"}, nil)
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)
	assert.Equal(t, "Disclosure updated successfully!", msg.Text)

	snap = c.Snapshot()
	assert.Nil(t, snap.Edit)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "Q1 Report (revised)", snap.Records[0].String("name"))
	assert.Equal(t, fileURL, snap.Records[0].String("file"))
}

func TestEditRequiresListedRecord(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "disclosures", "")

	c.StartEdit(backend.Record{ID: "ghost"})
	assert.Nil(t, c.Snapshot().Edit)
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Record ghost is not in the current list", msg.Text)

	c.CommitEdit(f.ctx, map[string]string{"name": "x"}, nil)
	msg = c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "No record is being edited", msg.Text)
	assert.Equal(t, int64(0), f.requests.Load())
}

func TestScopedListsAreSeparate(t *testing.T) {
	f := newFixture(t)
	pattern := f.controller(t, "stock-exchange", resource.StockOptions[0])
	governance := f.controller(t, "stock-exchange", resource.StockOptions[1])

	pattern.Create(f.ctx, map[string]string{"name": "Q1 pattern", "date": "2024-04-15"}, webp("q1.webp"))
	msg := pattern.TakeMessage()
	require.NotNil(t, msg)
	require.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)
	assert.Equal(t, "Filing created successfully!", msg.Text)
	require.Len(t, pattern.Snapshot().Records, 1)
	assert.Equal(t, resource.StockOptions[0], pattern.Snapshot().Records[0].String("option"))

	governance.Fetch(f.ctx)
	assert.Empty(t, governance.Snapshot().Records)
	assert.Nil(t, governance.TakeMessage())
}

func TestBareArrayListAndPathDelete(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "jobs", "")

	c.Create(f.ctx, map[string]string{"title": "Engineer", "description": "Build things", "location": "Pune"}, nil)
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	require.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)

	records := c.Snapshot().Records
	require.Len(t, records, 1)
	assert.Equal(t, "Engineer", records[0].String("title"))

	require.NoError(t, c.Delete(f.ctx, records[0].ID, true))
	assert.Empty(t, c.Snapshot().Records)
}

func TestReadOnlyResource(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "inquiries", "")

	c.Create(f.ctx, map[string]string{"name": "x"}, nil)
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, resource.MessageError, msg.Kind)
	assert.Equal(t, int64(0), f.requests.Load())
}

func TestFetchFailureEmptiesList(t *testing.T) {
	calls := atomic.NewInt64(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Inc() == 1 {
			_, _ = w.Write([]byte(`{"data":[{"_id":"1","name":"a"}]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database unavailable"}`))
	}))
	defer srv.Close()

	schema, _ := resource.Lookup("disclosures")
	c := resource.NewController(schema, backend.NewClient(srv.URL), "")
	c.Fetch(context.Background())
	require.Len(t, c.Snapshot().Records, 1)

	c.Fetch(context.Background())
	snap := c.Snapshot()
	assert.Empty(t, snap.Records)
	require.NotNil(t, snap.Message)
	assert.Equal(t, "database unavailable", snap.Message.Text)
}

func TestStaleFetchIsDropped(t *testing.T) {
	first := make(chan struct{})
	release := make(chan struct{})
	calls := atomic.NewInt64(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Inc() == 1 {
			close(first)
			<-release
			_, _ = w.Write([]byte(`{"data":[{"_id":"old"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"_id":"new"}]}`))
	}))
	defer srv.Close()

	schema, _ := resource.Lookup("disclosures")
	c := resource.NewController(schema, backend.NewClient(srv.URL), "")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Fetch(context.Background())
	}()
	<-first
	c.Fetch(context.Background())
	close(release)
	wg.Wait()

	records := c.Snapshot().Records
	require.Len(t, records, 1)
	assert.Equal(t, "new", records[0].ID)
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	posts := atomic.NewInt64(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if posts.Inc() == 1 {
				close(entered)
				<-release
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message":"Disclosure created successfully!"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	schema, _ := resource.Lookup("disclosures")
	c := resource.NewController(schema, backend.NewClient(srv.URL), "")
	fields := map[string]string{"name": "Q1 Report", "date": "2024-03-31"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Create(context.Background(), fields, webp("report.webp"))
	}()
	<-entered
	assert.True(t, c.Uploading())

	c.Create(context.Background(), fields, webp("other.webp"))
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "A submission is already in progress", msg.Text)

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("create did not finish")
	}
	assert.False(t, c.Uploading())
	assert.Equal(t, int64(1), posts.Load())
}

// rejectingBackend lists one disclosure and answers every POST and PUT with
// status and message.
func rejectingBackend(t *testing.T, status int, message string) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"_id":"d1","name":"Q1 Report","date":"2024-03-31T00:00:00Z","file":"http://files/q1.webp"}]}`))
	}))
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL)
}

func TestRejectedSubmitKeepsState(t *testing.T) {
	for _, tt := range []struct {
		status  int
		message string
	}{
		{http.StatusBadRequest, "Invalid date"},
		{http.StatusInternalServerError, "database unavailable"},
	} {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			schema, _ := resource.Lookup("disclosures")
			c := resource.NewController(schema, rejectingBackend(t, tt.status, tt.message), "")
			ctx := context.Background()

			c.Create(ctx, map[string]string{"name": "Q2 Report", "date": "2024-06-30"}, webp("q2.webp"))
			snap := c.Snapshot()
			require.NotNil(t, snap.Message)
			assert.Equal(t, resource.MessageError, snap.Message.Kind)
			assert.Equal(t, tt.message, snap.Message.Text)
			assert.Equal(t, "Q2 Report", snap.Form["name"])
			assert.Equal(t, "2024-06-30", snap.Form["date"])
			require.NotNil(t, snap.FormFile)
			assert.Equal(t, "q2.webp", snap.FormFile.Name)
			assert.False(t, snap.Uploading)

			c.Fetch(ctx)
			c.StartEditByID("d1")
			c.CommitEdit(ctx, map[string]string{"name": "Q1 Report (final)"}, webp("q1-final.webp"))
			snap = c.Snapshot()
			require.NotNil(t, snap.Message)
			assert.Equal(t, resource.MessageError, snap.Message.Kind)
			assert.Equal(t, tt.message, snap.Message.Text)
			require.NotNil(t, snap.Edit)
			assert.Equal(t, "d1", snap.Edit.ID)
			assert.Equal(t, "Q1 Report (final)", snap.Edit.Fields["name"])
			assert.Equal(t, "2024-03-31", snap.Edit.Fields["date"])
			require.NotNil(t, snap.Edit.File)
			assert.Equal(t, "q1-final.webp", snap.Edit.File.Name)
			assert.False(t, snap.Uploading)
		})
	}
}

func TestBusySubmitLeavesDraftUntouched(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			close(entered)
			<-release
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		default:
			_, _ = w.Write([]byte(`{"data":[{"_id":"d1","name":"Q1 Report","date":"2024-03-31"}]}`))
		}
	}))
	defer srv.Close()

	schema, _ := resource.Lookup("disclosures")
	c := resource.NewController(schema, backend.NewClient(srv.URL), "")
	ctx := context.Background()
	c.Fetch(ctx)
	c.StartEditByID("d1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.CommitEdit(ctx, map[string]string{"name": "first"}, nil)
	}()
	<-entered

	c.Create(ctx, map[string]string{"name": "draft"}, webp("draft.webp"))
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "A submission is already in progress", msg.Text)
	snap := c.Snapshot()
	assert.Empty(t, snap.Form)
	assert.Nil(t, snap.FormFile)

	c.CommitEdit(ctx, map[string]string{"name": "second"}, webp("second.webp"))
	msg = c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "A submission is already in progress", msg.Text)
	snap = c.Snapshot()
	require.NotNil(t, snap.Edit)
	assert.Equal(t, "first", snap.Edit.Fields["name"])
	assert.Nil(t, snap.Edit.File)

	close(release)
	<-done
}

func TestSnapshotEditFileIsACopy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"rejected"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"_id":"d1","name":"Q1 Report","date":"2024-03-31"}]}`))
	}))
	defer srv.Close()

	schema, _ := resource.Lookup("disclosures")
	c := resource.NewController(schema, backend.NewClient(srv.URL), "")
	ctx := context.Background()
	c.Fetch(ctx)
	c.StartEditByID("d1")
	c.CommitEdit(ctx, nil, webp("a.webp"))
	held := c.Snapshot().Edit.File
	require.NotNil(t, held)

	// readers of an old snapshot race with commits replacing the held file
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			c.CommitEdit(ctx, nil, webp("b.webp"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if e := c.Snapshot().Edit; e != nil && e.File != nil {
				_ = e.File.Name
			}
			_ = held.Name
		}
	}()
	wg.Wait()

	assert.Equal(t, "a.webp", held.Name)
	assert.Equal(t, "b.webp", c.Snapshot().Edit.File.Name)
}

// capturedRequest is one request seen by recordingBackend.
type capturedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// recordingBackend answers every write with 201 and lists nothing; the
// returned channel receives each write request.
func recordingBackend(t *testing.T) (*backend.Client, chan capturedRequest) {
	t.Helper()
	writes := make(chan capturedRequest, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		b, _ := io.ReadAll(r.Body)
		writes <- capturedRequest{Method: r.Method, Path: r.URL.Path, ContentType: r.Header.Get("Content-Type"), Body: b}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"saved"}`))
	}))
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL), writes
}

func TestContactOptionPostsJSON(t *testing.T) {
	client, writes := recordingBackend(t)
	schema, _ := resource.Lookup("other")
	c := resource.NewController(schema, client, "KMP Contact Details")

	assert.Nil(t, c.FileField())
	names := make([]string, 0)
	for _, f := range c.TextFields() {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "contactInfo.designation")

	c.Create(context.Background(), map[string]string{
		"name":                    "Company Secretary",
		"date":                    "2024-04-01",
		"contactInfo.name":        "R. Mehta",
		"contactInfo.designation": "Company Secretary",
		"contactInfo.email":       "cs@example.com",
	}, nil)
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	require.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)

	req := <-writes
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/other/add_other", req.Path)
	assert.Contains(t, req.ContentType, "application/json")
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "KMP Contact Details", body["option"])
	assert.Equal(t, "Company Secretary", body["name"])
	assert.Equal(t, "2024-04-01", body["date"])
	contact, ok := body["contactInfo"].(map[string]any)
	require.True(t, ok, string(req.Body))
	assert.Equal(t, "R. Mehta", contact["name"])
	assert.Equal(t, "cs@example.com", contact["email"])
	assert.NotContains(t, body, "file")

	// the document options keep the multipart upload form
	docs := resource.NewController(schema, client, "Other Compliances")
	require.NotNil(t, docs.FileField())
	docs.Create(context.Background(), map[string]string{"name": "FY24", "date": "2024-04-01"}, nil)
	msg = docs.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Please provide a file.", msg.Text)
}

func TestDistributorsSendJSON(t *testing.T) {
	client, writes := recordingBackend(t)
	schema, _ := resource.Lookup("distributors")
	c := resource.NewController(schema, client, "")

	c.Create(context.Background(), map[string]string{
		"customerName": "Shree Traders", "contactNumber": "98200", "district": "Thane", "state": "MH",
	}, nil)
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	require.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)

	req := <-writes
	assert.Equal(t, "/distributors/create", req.Path)
	assert.Contains(t, req.ContentType, "application/json")
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, map[string]any{
		"customerName": "Shree Traders", "contactNumber": "98200", "district": "Thane", "state": "MH",
	}, body)
}

func TestDistributorRoundTripThroughBackend(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "distributors", "")

	c.Create(f.ctx, map[string]string{"customerName": "Shree Traders", "contactNumber": "98200", "district": "Thane", "state": "MH"}, nil)
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	require.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)
	rec := c.Snapshot().Records[0]

	c.StartEdit(rec)
	c.CommitEdit(f.ctx, map[string]string{"district": "Pune"}, nil)
	msg = c.TakeMessage()
	require.NotNil(t, msg)
	require.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)
	rec = c.Snapshot().Records[0]
	assert.Equal(t, "Pune", rec.String("district"))
	assert.Equal(t, "Shree Traders", rec.String("customerName"))
}

func TestInquiryStatus(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodPost, f.client.URL("/inquiries", nil),
		strings.NewReader(`{"fullName":"Asha","email":"asha@example.com","companyName":"Acme"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	c := f.controller(t, "inquiries", "")
	c.Fetch(f.ctx)
	records := c.Snapshot().Records
	require.Len(t, records, 1)
	id := records[0].ID
	assert.Equal(t, "Pending", c.Schema().StatusOf(records[0]))

	before := f.requests.Load()
	c.SetStatus(f.ctx, id, "Closed")
	msg := c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, resource.MessageError, msg.Kind)
	assert.Equal(t, "Unknown status Closed", msg.Text)
	assert.Equal(t, before, f.requests.Load())

	c.SetStatus(f.ctx, id, "Resolved")
	msg = c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, resource.MessageSuccess, msg.Kind, msg.Text)
	rec, ok := c.Record(id)
	require.True(t, ok)
	assert.Equal(t, "Resolved", rec.String("status"))
	assert.Equal(t, "Asha", rec.String("fullName"))

	c.SetStatus(f.ctx, "ghost", "Rejected")
	msg = c.TakeMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Inquiry not found", msg.Text)

	c.Fetch(f.ctx)
	assert.Equal(t, "Resolved", c.Snapshot().Records[0].String("status"))
}

func TestJobApplications(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t, "jobs", "")
	c.Create(f.ctx, map[string]string{"title": "Engineer", "description": "Build things", "location": "Pune"}, nil)
	require.Equal(t, resource.MessageSuccess, c.TakeMessage().Kind)
	jobID := c.Snapshot().Records[0].ID

	apps, err := c.Children(f.ctx, jobID)
	require.NoError(t, err)
	assert.Empty(t, apps)

	form := backend.NewForm()
	form.Set("name", "Ravi")
	form.Set("email", "ravi@example.com")
	form.SetFile(&backend.FilePart{Field: "resume", Name: "cv.pdf", Content: []byte("%PDF-1.4")})
	_, err = f.client.PostMultipart(context.Background(), "/jobs/applications/"+jobID, form)
	require.NoError(t, err)

	apps, err = c.Children(f.ctx, jobID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Ravi", apps[0].String("name"))
	assert.Contains(t, apps[0].String("resume"), "cv.pdf")

	_, err = c.Children(context.Background(), jobID)
	require.Error(t, err)
	assert.Equal(t, "Unauthorized", err.Error())
}
