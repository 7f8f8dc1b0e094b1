package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/odyssey4me/atlascore/config"
	"github.com/odyssey4me/atlascore/credentials"
	"github.com/odyssey4me/atlascore/deploy"
	"github.com/odyssey4me/atlascore/testutil"
)

func newTestClient(t *testing.T, service *config.Service, mux *http.ServeMux) (*Client, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var warnings bytes.Buffer
	client, err := NewClient(ClientConfig{
		Credentials: &credentials.Credentials{
			BaseURL:  srv.URL,
			Identity: "dev@example.com",
			Secret:   "tok",
		},
		Service:   service,
		ErrWriter: &warnings,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, &warnings
}

// cloudMux answers the cloud prefix probe; dcMux rejects it so detection
// falls through to the Data Center prefix.
func cloudMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/rest/api/space", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, `{"results":[],"size":0}`)
	})
	return mux
}

func dcMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/space", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, `{"results":[],"size":0}`)
	})
	return mux
}

func TestDetectByProbingPrefixes(t *testing.T) {
	t.Run("cloud prefix answers", func(t *testing.T) {
		client, _ := newTestClient(t, nil, cloudMux())
		info, err := client.Detect(context.Background())
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if info.Dialect != deploy.DialectCloud || info.APIPrefix != "/wiki/rest/api" {
			t.Errorf("info = %+v, want cloud with /wiki/rest/api", info)
		}
	})

	t.Run("data center prefix answers", func(t *testing.T) {
		client, _ := newTestClient(t, nil, dcMux())
		info, err := client.Detect(context.Background())
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if info.Dialect != deploy.DialectDataCenter || info.APIPrefix != "/rest/api" {
			t.Errorf("info = %+v, want datacenter with /rest/api", info)
		}
	})
}

func TestGetPageByDialect(t *testing.T) {
	t.Run("data center expands storage body", func(t *testing.T) {
		mux := dcMux()
		var gotExpand string
		mux.HandleFunc("/rest/api/content/123", func(w http.ResponseWriter, r *http.Request) {
			gotExpand = r.URL.Query().Get("expand")
			testutil.WriteJSON(w, http.StatusOK,
				testutil.Page("123", "Runbook", 4, "storage", "<h2>Title</h2><ul><li>one</li><li>two</li></ul>"))
		})

		client, _ := newTestClient(t, nil, mux)
		page, err := client.GetPage(context.Background(), "123")
		if err != nil {
			t.Fatalf("GetPage() error = %v", err)
		}
		if page.Title != "Runbook" || page.Version.Number != 4 {
			t.Errorf("page = %+v", page)
		}
		if !strings.Contains(gotExpand, "body.storage") {
			t.Errorf("expand = %q, want body.storage", gotExpand)
		}

		markup, err := PageMarkup(page)
		if err != nil {
			t.Fatalf("PageMarkup() error = %v", err)
		}
		if markup != "## Title\n\n- one\n- two\n" {
			t.Errorf("PageMarkup() = %q", markup)
		}
	})

	t.Run("cloud expands adf body", func(t *testing.T) {
		mux := cloudMux()
		var gotExpand string
		adf := `{"version":1,"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}`
		mux.HandleFunc("/wiki/rest/api/content/123", func(w http.ResponseWriter, r *http.Request) {
			gotExpand = r.URL.Query().Get("expand")
			testutil.WriteJSON(w, http.StatusOK,
				testutil.Page("123", "Runbook", 2, "atlas_doc_format", adf))
		})

		client, _ := newTestClient(t, nil, mux)
		page, err := client.GetPage(context.Background(), "123")
		if err != nil {
			t.Fatalf("GetPage() error = %v", err)
		}
		if !strings.Contains(gotExpand, "body.atlas_doc_format") {
			t.Errorf("expand = %q, want body.atlas_doc_format", gotExpand)
		}

		markup, err := PageMarkup(page)
		if err != nil {
			t.Fatalf("PageMarkup() error = %v", err)
		}
		if markup != "hello\n" {
			t.Errorf("PageMarkup() = %q", markup)
		}
	})
}

func TestCreatePageBodyByDialect(t *testing.T) {
	t.Run("cloud sends atlas_doc_format", func(t *testing.T) {
		mux := cloudMux()
		var gotBody map[string]any
		mux.HandleFunc("/wiki/rest/api/content", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			testutil.WriteJSON(w, http.StatusOK, `{"id":"900","title":"New"}`)
		})

		client, _ := newTestClient(t, nil, mux)
		page, err := client.CreatePage(context.Background(), CreatePageInput{
			Space: "DEV",
			Title: "New",
			Body:  "## Title\n\n- one\n- two\n",
		})
		if err != nil {
			t.Fatalf("CreatePage() error = %v", err)
		}
		if page.ID != "900" {
			t.Errorf("ID = %q", page.ID)
		}

		body := gotBody["body"].(map[string]any)
		adf, ok := body["atlas_doc_format"].(map[string]any)
		if !ok {
			t.Fatalf("body = %v, want atlas_doc_format", body)
		}
		if adf["representation"] != "atlas_doc_format" {
			t.Errorf("representation = %v", adf["representation"])
		}
		if value, _ := adf["value"].(string); !strings.Contains(value, `"bulletList"`) {
			t.Errorf("value = %q, want ADF JSON with bulletList", value)
		}
	})

	t.Run("data center sends storage", func(t *testing.T) {
		mux := dcMux()
		var gotBody map[string]any
		mux.HandleFunc("/rest/api/content", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			testutil.WriteJSON(w, http.StatusOK, `{"id":"901","title":"New"}`)
		})

		client, _ := newTestClient(t, nil, mux)
		if _, err := client.CreatePage(context.Background(), CreatePageInput{
			Space:    "DEV",
			Title:    "New",
			Body:     "## Title\n\n- one\n- two\n",
			ParentID: "77",
		}); err != nil {
			t.Fatalf("CreatePage() error = %v", err)
		}

		body := gotBody["body"].(map[string]any)
		storage, ok := body["storage"].(map[string]any)
		if !ok {
			t.Fatalf("body = %v, want storage", body)
		}
		if storage["value"] != "<h2>Title</h2><ul><li>one</li><li>two</li></ul>" {
			t.Errorf("storage value = %q", storage["value"])
		}
		ancestors := gotBody["ancestors"].([]any)
		if ancestors[0].(map[string]any)["id"] != "77" {
			t.Errorf("ancestors = %v, want parent 77", ancestors)
		}
	})
}

func TestUpdatePageBumpsVersion(t *testing.T) {
	mux := dcMux()
	mux.HandleFunc("/rest/api/content/123", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			testutil.WriteJSON(w, http.StatusOK,
				testutil.Page("123", "Runbook", 4, "storage", "<p>old</p>"))
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		version := body["version"].(map[string]any)
		if version["number"] != float64(5) {
			t.Errorf("version = %v, want 5", version["number"])
		}
		if body["title"] != "Runbook" {
			t.Errorf("title = %v, want carried over from current page", body["title"])
		}
		testutil.WriteJSON(w, http.StatusOK, testutil.Page("123", "Runbook", 5, "storage", "<p>new</p>"))
	})

	client, _ := newTestClient(t, nil, mux)
	updated, err := client.UpdatePage(context.Background(), "123", "", "new\n")
	if err != nil {
		t.Fatalf("UpdatePage() error = %v", err)
	}
	if updated.Version.Number != 5 {
		t.Errorf("updated version = %d, want 5", updated.Version.Number)
	}
}

func TestSearchCQL(t *testing.T) {
	t.Run("merges configured scope", func(t *testing.T) {
		service := &config.Service{
			Defaults: config.Defaults{Scope: "space = DEV", MaxResults: 10},
		}
		mux := dcMux()
		var gotCQL, gotLimit string
		mux.HandleFunc("/rest/api/content/search", func(w http.ResponseWriter, r *http.Request) {
			gotCQL = r.URL.Query().Get("cql")
			gotLimit = r.URL.Query().Get("limit")
			testutil.WriteJSON(w, http.StatusOK, `{"results":[{"id":"1","title":"Hit"}],"size":1}`)
		})

		client, warnings := newTestClient(t, service, mux)
		result, err := client.SearchCQL(context.Background(), "type = page", SearchOptions{})
		if err != nil {
			t.Fatalf("SearchCQL() error = %v", err)
		}
		if len(result.Results) != 1 || result.Results[0].Title != "Hit" {
			t.Errorf("result = %+v", result)
		}
		if gotCQL != "(space = DEV) AND (type = page)" {
			t.Errorf("cql = %q, want scoped query", gotCQL)
		}
		if gotLimit != "10" {
			t.Errorf("limit = %q, want 10", gotLimit)
		}
		if warnings.Len() != 0 {
			t.Errorf("unexpected warnings: %s", warnings.String())
		}
	})

	t.Run("warns on unsupported advanced CQL and still searches", func(t *testing.T) {
		mux := dcMux()
		mux.HandleFunc("/rest/api/search", func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusBadRequest, `{"message":"Could not parse cql"}`)
		})
		searched := false
		mux.HandleFunc("/rest/api/content/search", func(w http.ResponseWriter, r *http.Request) {
			searched = true
			testutil.WriteJSON(w, http.StatusOK, `{"results":[],"size":0}`)
		})

		client, warnings := newTestClient(t, nil, mux)
		if _, err := client.SearchCQL(context.Background(), "creator = currentUser()", SearchOptions{}); err != nil {
			t.Fatalf("SearchCQL() error = %v", err)
		}
		if !searched {
			t.Error("search request was not sent")
		}
		if !strings.Contains(warnings.String(), "advanced CQL") {
			t.Errorf("warnings = %q, want advanced CQL warning", warnings.String())
		}
	})

	t.Run("no warning when instance supports advanced CQL", func(t *testing.T) {
		mux := dcMux()
		mux.HandleFunc("/rest/api/search", func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, `{"results":[],"size":0}`)
		})
		mux.HandleFunc("/rest/api/content/search", func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, `{"results":[],"size":0}`)
		})

		client, warnings := newTestClient(t, nil, mux)
		if _, err := client.SearchCQL(context.Background(), "creator = currentUser()", SearchOptions{}); err != nil {
			t.Fatalf("SearchCQL() error = %v", err)
		}
		if warnings.Len() != 0 {
			t.Errorf("unexpected warnings: %s", warnings.String())
		}
	})
}

func TestAddComment(t *testing.T) {
	mux := dcMux()
	var gotBody map[string]any
	mux.HandleFunc("/rest/api/content", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		testutil.WriteJSON(w, http.StatusOK, `{"id":"5001","type":"comment"}`)
	})

	client, _ := newTestClient(t, nil, mux)
	comment, err := client.AddComment(context.Background(), "123", "looks **good**")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if comment.ID != "5001" || comment.Type != "comment" {
		t.Errorf("comment = %+v", comment)
	}
	if gotBody["type"] != "comment" {
		t.Errorf("type = %v, want comment", gotBody["type"])
	}
	container := gotBody["container"].(map[string]any)
	if container["id"] != "123" || container["type"] != "page" {
		t.Errorf("container = %v", container)
	}
	storage := gotBody["body"].(map[string]any)["storage"].(map[string]any)
	if storage["value"] != "<p>looks <strong>good</strong></p>" {
		t.Errorf("comment body = %q", storage["value"])
	}
}

func TestCheck(t *testing.T) {
	mux := cloudMux()
	mux.HandleFunc("/wiki/rest/api/user/current", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, `{"accountId":"abc","displayName":"Dev Example"}`)
	})

	client, _ := newTestClient(t, nil, mux)
	user, err := client.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if user.DisplayName != "Dev Example" {
		t.Errorf("DisplayName = %q", user.DisplayName)
	}
}
