package main

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

const historyBody = `[
  {"doc_id":"a1","filename":"alice.pdf","time":"2025-03-01T10:00:00","insights":{"verdict":"Strong fit","scores":{"relevance":81,"final_score":88}}},
  {"doc_id":"b2","filename":"bob.docx","time":"2025-02-01T09:00:00","insights":"Decent. Final Verdict: **Weak**"}
]`

const uploadBody = `{"doc_id":"n1","filename":"cv.docx","time":"2025-03-02T08:00:00","insights":{"verdict":"Average","summary":"Solid profile.","scores":{"final_score":88}}}`

type backend struct {
	*httptest.Server
	uploads  atomic.Int32
	lastAuth atomic.Value
}

func newBackend() *backend {
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.lastAuth.Store(r.Header.Get("Authorization"))
		switch {
		case r.URL.Path == "/insights" && r.URL.Query().Get("doc_id") == "a1":
			_, _ = io.WriteString(w, `{"doc_id":"a1","filename":"alice.pdf","time":"2025-03-01T10:00:00","insights":{"verdict":"Strong fit","summary":"Backend engineer.","scores":{"final_score":88}}}`)
		case r.URL.Path == "/insights" && r.URL.Query().Has("doc_id"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Insight not found"}`)
		case r.URL.Path == "/insights":
			_, _ = io.WriteString(w, historyBody)
		case r.URL.Path == "/upload-resume":
			b.uploads.Add(1)
			_, _ = io.WriteString(w, uploadBody)
		case r.URL.Path == "/login":
			_ = r.ParseForm()
			if r.PostForm.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"detail":"Incorrect username or password"}`)
				return
			}
			_, _ = io.WriteString(w, `{"access_token":"opaque-token","token_type":"bearer"}`)
		case strings.HasPrefix(r.URL.Path, "/download-report/"):
			_, _ = io.WriteString(w, "%PDF report")
		default:
			http.NotFound(w, r)
		}
	}))
	return b
}

func (b *backend) auth() string {
	v, _ := b.lastAuth.Load().(string)
	return v
}

func run(stdin string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDOCX(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.WriteString(w, "<w:document/>")
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestCommands(t *testing.T) {
	b := newBackend()
	defer b.Close()

	dir := t.TempDir()
	t.Setenv("RESUMEINSIGHT_BASE_URL", b.URL)
	t.Setenv("RESUMEINSIGHT_CREDENTIALS_FILE", filepath.Join(dir, "credentials.yaml"))
	t.Setenv("RESUMEINSIGHT_LOG_LEVEL", "error")

	convey.Convey("Given a configured client", t, func() {
		convey.Convey("When listing history", func() {
			out, err := run("", "history")

			convey.Convey("Then every record should be printed in server order", func() {
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				convey.So(lines, convey.ShouldHaveLength, 2)
				convey.So(lines[0], convey.ShouldStartWith, "a1\talice.pdf")
				convey.So(lines[0], convey.ShouldContainSubstring, "88\tStrong fit")
				convey.So(lines[1], convey.ShouldEndWith, "Weak")
			})
		})

		convey.Convey("When listing history as JSON", func() {
			out, err := run("", "history", "--json", "--sort", "oldest")

			convey.Convey("Then records should keep the wire shape", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"doc_id": "a1"`)
				convey.So(out, convey.ShouldContainSubstring, `"final_score": 88`)
			})
		})

		convey.Convey("When the sort order is unknown", func() {
			_, err := run("", "history", "--sort", "sideways")

			convey.Convey("Then the command should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When showing one record", func() {
			out, err := run("", "show", "a1")

			convey.Convey("Then the analysis should be rendered with its report link", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Strong fit")
				convey.So(out, convey.ShouldContainSubstring, "Backend engineer.")
				convey.So(out, convey.ShouldContainSubstring, b.URL+"/download-report/a1")
			})
		})

		convey.Convey("When showing a missing record", func() {
			_, err := run("", "show", "zz")

			convey.Convey("Then the backend detail should surface", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Insight not found")
			})
		})

		convey.Convey("When uploading a resume", func() {
			path := filepath.Join(t.TempDir(), "cv.docx")
			writeDOCX(t, path)
			before := b.uploads.Load()

			out, err := run("", "upload", path)

			convey.Convey("Then progress and the resulting analysis should be printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(b.uploads.Load()-before, convey.ShouldEqual, 1)
				convey.So(out, convey.ShouldContainSubstring, "==> cv.docx")
				convey.So(out, convey.ShouldContainSubstring, "Solid profile.")
				convey.So(out, convey.ShouldContainSubstring, "88 / 100")
			})
		})

		convey.Convey("When one of several files fails the pre-flight check", func() {
			tmp := t.TempDir()
			good := filepath.Join(tmp, "cv.docx")
			writeDOCX(t, good)
			bad := filepath.Join(tmp, "notes.txt")
			convey.So(os.WriteFile(bad, []byte("hello"), 0o600), convey.ShouldBeNil)
			before := b.uploads.Load()

			_, err := run("", "upload", good, bad)

			convey.Convey("Then nothing should be uploaded", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unsupported document format")
				convey.So(b.uploads.Load(), convey.ShouldEqual, before)
			})
		})

		convey.Convey("When downloading a report to a file", func() {
			dest := filepath.Join(t.TempDir(), "report.pdf")
			out, err := run("", "report", "a1", "-o", dest)

			convey.Convey("Then the file should hold the report", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "saved "+dest)
				data, readErr := os.ReadFile(dest)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldEqual, "%PDF report")
			})
		})

		convey.Convey("When logging in with the password on stdin", func() {
			out, err := run("secret\n", "login", "--username", "ada")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "logged in as ada")

			convey.Convey("Then later commands should send the stored token", func() {
				_, err := run("", "history")
				convey.So(err, convey.ShouldBeNil)
				convey.So(b.auth(), convey.ShouldEqual, "Bearer opaque-token")

				who, err := run("", "whoami")
				convey.So(err, convey.ShouldBeNil)
				convey.So(who, convey.ShouldContainSubstring, "user: ada")
			})

			convey.Convey("Then logging out should forget the token", func() {
				_, err := run("", "logout")
				convey.So(err, convey.ShouldBeNil)

				who, err := run("", "whoami")
				convey.So(err, convey.ShouldBeNil)
				convey.So(who, convey.ShouldContainSubstring, "not logged in")

				_, err = run("", "history")
				convey.So(err, convey.ShouldBeNil)
				convey.So(b.auth(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When logging in with a wrong password", func() {
			_, _ = run("", "logout")
			_, err := run("", "login", "-u", "ada", "-p", "nope")

			convey.Convey("Then the command should fail and stay logged out", func() {
				convey.So(err, convey.ShouldNotBeNil)
				who, _ := run("", "whoami")
				convey.So(who, convey.ShouldContainSubstring, "not logged in")
			})
		})

		convey.Convey("When the base URL flag overrides the configuration", func() {
			_, err := run("", "history", "--base-url", "not a url")

			convey.Convey("Then the client should refuse it", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
