package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/store"
)

const testBucket = "oncobrief-test"

// fakeObjectStore speaks just enough of the S3 REST protocol for the driver:
// path-style GetObject/PutObject plus the XML error documents the SDK decodes.
type fakeObjectStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	failAll      bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (f *fakeObjectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		writeS3Error(w, http.StatusInternalServerError, "InternalError", "We encountered an internal error. Please try again.")
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/"+testBucket+"/")
	switch r.Method {
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			writeS3Error(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
			return
		}
		w.Header().Set("Content-Type", f.contentTypes[key])
		_, _ = w.Write(data)
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeS3Error(w, http.StatusInternalServerError, "InternalError", err.Error())
			return
		}
		f.objects[key] = data
		f.contentTypes[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	default:
		writeS3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "The specified method is not allowed.")
	}
}

func writeS3Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>`+
		code+`</Code><Message>`+message+`</Message></Error>`)
}

func newTestDriver(t *testing.T) (*Driver, *fakeObjectStore) {
	t.Helper()
	fake := newFakeObjectStore()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	driver, err := NewDriver(context.Background(), &profile.Profile{
		S3Bucket:    testBucket,
		S3Region:    "us-east-1",
		S3Endpoint:  srv.URL,
		S3AccessKey: "test-access-key",
		S3SecretKey: "test-secret-key",
	})
	require.NoError(t, err)
	return driver, fake
}

func TestLoadUnknownSessionReturnsEmpty(t *testing.T) {
	driver, _ := newTestDriver(t)

	messages, err := driver.LoadConversation(context.Background(), "never-seen")
	require.NoError(t, err)
	require.NotNil(t, messages)
	require.Empty(t, messages)
}

func TestLoadPropagatesStorageFault(t *testing.T) {
	driver, fake := newTestDriver(t)
	fake.mu.Lock()
	fake.failAll = true
	fake.mu.Unlock()

	_, err := driver.LoadConversation(context.Background(), "sess-1")
	require.Error(t, err)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	driver, _ := newTestDriver(t)
	ctx := context.Background()

	messages := []store.Message{
		{Role: store.RoleUser, Content: "What does the abstract say?", Timestamp: "2026-08-23T10:00:00Z"},
		{Role: store.RoleAssistant, Content: "The abstract reports the trial outcome.", Timestamp: "2026-08-23T10:00:00Z"},
	}
	require.NoError(t, driver.SaveConversation(ctx, "sess-1", messages))

	loaded, err := driver.LoadConversation(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, messages, loaded)
}

func TestSaveWritesPrettyPrintedJSONObject(t *testing.T) {
	driver, fake := newTestDriver(t)

	messages := []store.Message{
		{Role: store.RoleUser, Content: "hi", Timestamp: "2026-08-23T10:00:00Z"},
	}
	require.NoError(t, driver.SaveConversation(context.Background(), "sess-1", messages))

	fake.mu.Lock()
	data := fake.objects["sess-1.json"]
	contentType := fake.contentTypes["sess-1.json"]
	fake.mu.Unlock()

	require.Equal(t, "application/json", contentType)
	require.True(t, strings.HasPrefix(string(data), "[\n  {"), "object should be pretty-printed, got: %s", data)
}

func TestLoadMalformedObjectFails(t *testing.T) {
	driver, fake := newTestDriver(t)
	fake.mu.Lock()
	fake.objects["sess-1.json"] = []byte("{not json")
	fake.contentTypes["sess-1.json"] = "application/json"
	fake.mu.Unlock()

	_, err := driver.LoadConversation(context.Background(), "sess-1")
	require.Error(t, err)
}
