package askcmder_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	redtutorcmder "github.com/hongxuelab/redtutor/cmd/redtutor"
	askcmder "github.com/hongxuelab/redtutor/cmd/redtutor/ask"
)

// sseUpstream serves the given frames as an SSE stream, one data field each.
func sseUpstream(frames ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
	}))
}

func contentFrame(delta string) string {
	return fmt.Sprintf(`{"choices":[{"delta":{"content":%q}}]}`, delta)
}

// captureStdout swaps os.Stdout for a pipe while fn runs and returns what
// was written.
func captureStdout(fn func()) string {
	orig := os.Stdout
	r, w, err := os.Pipe()
	Expect(err).NotTo(HaveOccurred())
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = orig
	out, err := io.ReadAll(r)
	Expect(err).NotTo(HaveOccurred())
	return string(out)
}

var _ = Describe("NewAskCmd", func() {
	It("requires a question argument", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Args(cmd, []string{})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"why"})).NotTo(HaveOccurred())
	})
})

var _ = Describe("Ask command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "redtutor-ask-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .redtutor dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".redtutor"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	writeConfig := func(baseURL string, startInThinking bool) {
		data := fmt.Sprintf(
			"version = 0\n\n[client]\nbase_url = %q\napi_key = \"pplx-test\"\n\n[chat]\nstart_in_thinking = %t\n",
			baseURL, startInThinking,
		)
		err := os.WriteFile(filepath.Join(tmpDir, ".redtutor", "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())
	}

	runAsk := func(question string) (string, error) {
		var execErr error
		out := captureStdout(func() {
			cmd := redtutorcmder.NewRedtutorCmd()
			cmd.SetArgs([]string{"ask", question})
			execErr = cmd.Execute()
		})
		return out, execErr
	}

	It("strips a marked thinking block from the rendered answer", func() {
		server := sseUpstream(
			contentFrame("<think>hidden musings</think>visible answer"),
			"[DONE]",
		)
		defer server.Close()
		writeConfig(server.URL, false)

		out, err := runAsk("who is Grannie Liu")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("visible answer"))
		Expect(out).NotTo(ContainSubstring("hidden musings"))
	})

	It("strips reasoning when the configured stream opens mid-thinking", func() {
		// No opening marker: chat.start_in_thinking tells the parser the
		// stream begins inside a reasoning block.
		server := sseUpstream(
			contentFrame("secret reasoning"),
			contentFrame("</think>"),
			contentFrame("clean answer"),
			"[DONE]",
		)
		defer server.Close()
		writeConfig(server.URL, true)

		out, err := runAsk("why does Daiyu bury the flowers")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("clean answer"))
		Expect(out).NotTo(ContainSubstring("secret reasoning"))
		Expect(out).NotTo(ContainSubstring("</think>"))
	})
})
