package client_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/resumeinsight/internal/adapters/http/client"
	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/types"
	logging "github.com/okian/resumeinsight/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

const listBody = `[
  {"doc_id":"a1","filename":"alice.pdf","time":"2025-03-01T10:00:00.123456","insights":{"verdict":"Strong fit","scores":{"relevance":81,"final_score":88}}},
  {"doc_id":"b2","filename":"bob.docx","time":"2025-02-01T09:00:00","insights":"Good candidate. Final Verdict: **Weak**"}
]`

func TestNew(t *testing.T) {
	convey.Convey("Given base URLs", t, func() {
		convey.Convey("Then a URL without scheme or host should be rejected", func() {
			_, err := client.New("localhost:8000")
			convey.So(errors.Is(err, client.ErrInvalidBaseURL), convey.ShouldBeTrue)

			_, err = client.New("ftp://example.com")
			convey.So(errors.Is(err, client.ErrInvalidBaseURL), convey.ShouldBeTrue)
		})

		convey.Convey("Then a trailing slash should be dropped", func() {
			c, err := client.New("http://127.0.0.1:8000/")
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.BaseURL(), convey.ShouldEqual, "http://127.0.0.1:8000")
			convey.So(c.ReportURL("abc"), convey.ShouldEqual, "http://127.0.0.1:8000/download-report/abc")
		})
	})
}

func TestListInsights(t *testing.T) {
	convey.Convey("Given a backend serving history", t, func() {
		var gotQuery, gotAuth, gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			gotAuth = r.Header.Get("Authorization")
			gotRequestID = r.Header.Get("X-Request-ID")
			if r.URL.Path != "/insights" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, listBody)
		}))
		defer srv.Close()

		c, err := client.New(srv.URL, client.WithTokenSource(staticToken("tok")))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When listing with an empty query", func() {
			records, err := c.ListInsights(context.Background(), types.HistoryQuery{})

			convey.Convey("Then only the sort parameter should be sent", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(gotQuery, convey.ShouldEqual, "sort=desc")
				convey.So(gotAuth, convey.ShouldEqual, "Bearer tok")
				convey.So(gotRequestID, convey.ShouldNotBeEmpty)
			})

			convey.Convey("Then records should keep server order and resolve their payloads", func() {
				convey.So(records, convey.ShouldHaveLength, 2)
				convey.So(records[0].DocID, convey.ShouldEqual, "a1")
				s, ok := records[0].Insights.(model.Structured)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(s.Scores[model.FinalScore], convey.ShouldEqual, 88)

				l, ok := records[1].Insights.(model.LegacyText)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(l.Raw, convey.ShouldContainSubstring, "Final Verdict")
			})
		})

		convey.Convey("When listing with text and oldest first", func() {
			_, err := c.ListInsights(context.Background(), types.HistoryQuery{Text: "alice smith", Sort: types.SortOldest})

			convey.Convey("Then both parameters should be encoded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(gotQuery, convey.ShouldEqual, "q=alice+smith&sort=asc")
			})
		})
	})

	convey.Convey("Given a backend without a token source", t, func() {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, "[]")
		}))
		defer srv.Close()

		c, _ := client.New(srv.URL, client.WithTokenSource(staticToken("")))
		records, err := c.ListInsights(context.Background(), types.HistoryQuery{})

		convey.Convey("Then no authorization header should be sent", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(records, convey.ShouldBeEmpty)
			convey.So(gotAuth, convey.ShouldBeEmpty)
		})
	})
}

func TestErrors(t *testing.T) {
	convey.Convey("Given a backend returning errors", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("doc_id") {
			case "missing":
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"detail":"Insight not found"}`)
			case "locked":
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"detail":"Not authenticated"}`)
			case "garbled":
				_, _ = io.WriteString(w, `{"doc_id":`)
			default:
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, "upstream exploded")
			}
		}))
		defer srv.Close()

		c, _ := client.New(srv.URL)
		ctx := context.Background()

		convey.Convey("Then a 404 should map to ErrNotFound with the detail message", func() {
			_, err := c.GetInsight(ctx, "missing")
			convey.So(errors.Is(err, client.ErrNotFound), convey.ShouldBeTrue)

			var apiErr *client.Error
			convey.So(errors.As(err, &apiErr), convey.ShouldBeTrue)
			convey.So(apiErr.Status, convey.ShouldEqual, http.StatusNotFound)
			convey.So(apiErr.Message, convey.ShouldEqual, "Insight not found")
		})

		convey.Convey("Then a 401 should map to ErrUnauthorized", func() {
			_, err := c.GetInsight(ctx, "locked")
			convey.So(errors.Is(err, client.ErrUnauthorized), convey.ShouldBeTrue)
		})

		convey.Convey("Then a malformed body should map to ErrDecode", func() {
			_, err := c.GetInsight(ctx, "garbled")
			convey.So(errors.Is(err, client.ErrDecode), convey.ShouldBeTrue)
		})

		convey.Convey("Then a plain-text 500 should keep the body as message", func() {
			_, err := c.GetInsight(ctx, "other")
			convey.So(errors.Is(err, client.ErrStatus), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "upstream exploded")
		})
	})

	convey.Convey("Given an unreachable backend", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		c, _ := client.New(addr, client.WithTimeout(time.Second))
		_, err := c.ListInsights(context.Background(), types.HistoryQuery{})

		convey.Convey("Then the failure should be a transport error", func() {
			convey.So(errors.Is(err, client.ErrTransport), convey.ShouldBeTrue)
		})
	})
}

func TestUpload(t *testing.T) {
	convey.Convey("Given a backend accepting uploads", t, func() {
		var gotName string
		var gotContent []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/upload-resume" {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			f, hdr, err := r.FormFile(client.UploadField)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			defer f.Close()
			gotName = hdr.Filename
			gotContent, _ = io.ReadAll(f)
			_, _ = io.WriteString(w, `{"doc_id":"n1","filename":"cv.pdf","time":"2025-03-02T08:00:00","insights":{"verdict":"Average","scores":{"final_score":88}}}`)
		}))
		defer srv.Close()

		c, _ := client.New(srv.URL)
		rec, err := c.Upload(context.Background(), "cv.pdf", strings.NewReader("%PDF-1.4 body"))

		convey.Convey("Then the file should be sent as a single multipart part", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(gotName, convey.ShouldEqual, "cv.pdf")
			convey.So(string(gotContent), convey.ShouldEqual, "%PDF-1.4 body")
		})

		convey.Convey("Then the analysis should be decoded", func() {
			convey.So(rec.DocID, convey.ShouldEqual, "n1")
			s, ok := rec.Insights.(model.Structured)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(s.Scores[model.FinalScore], convey.ShouldEqual, 88)
		})
	})
}

func TestLoginAndReport(t *testing.T) {
	convey.Convey("Given a backend with login and reports", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/login":
				_ = r.ParseForm()
				if r.PostForm.Get("username") != "ada" || r.PostForm.Get("password") != "secret" {
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = io.WriteString(w, `{"detail":"Incorrect username or password"}`)
					return
				}
				_, _ = io.WriteString(w, `{"access_token":"jwt-token","token_type":"bearer"}`)
			case strings.HasPrefix(r.URL.Path, "/download-report/"):
				w.Header().Set("Content-Type", "application/pdf")
				_, _ = io.WriteString(w, "%PDF report for "+strings.TrimPrefix(r.URL.Path, "/download-report/"))
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		c, _ := client.New(srv.URL)
		ctx := context.Background()

		convey.Convey("Then valid credentials should yield a token", func() {
			token, err := c.Login(ctx, "ada", "secret")
			convey.So(err, convey.ShouldBeNil)
			convey.So(token, convey.ShouldEqual, "jwt-token")
		})

		convey.Convey("Then invalid credentials should be unauthorized", func() {
			_, err := c.Login(ctx, "ada", "wrong")
			convey.So(errors.Is(err, client.ErrUnauthorized), convey.ShouldBeTrue)
		})

		convey.Convey("Then a report should stream into the writer", func() {
			var buf bytes.Buffer
			n, err := c.DownloadReport(ctx, "d9", &buf)
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, int64(buf.Len()))
			convey.So(buf.String(), convey.ShouldEqual, "%PDF report for d9")
		})
	})
}
