package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/meditracker/medctl/pkg/medctl/client"
)

// WriteStatus prints the status and URL lines of a response.
func WriteStatus(w io.Writer, resp *client.Response) {
	_, _ = fmt.Fprintf(w, "Status: %d %s\n", resp.StatusCode, resp.Reason)
	_, _ = fmt.Fprintf(w, "URL: %s\n", resp.URL)
}

// WriteBody prints the response body. JSON bodies are re-indented with two
// spaces, preserving key order; a body that claims JSON but does not parse
// is printed as-is.
func WriteBody(w io.Writer, resp *client.Response) {
	if resp.IsJSON() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, resp.Body, "", "  "); err == nil {
			_, _ = fmt.Fprintln(w, "Response:")
			_, _ = fmt.Fprintln(w, buf.String())
			return
		}
		_, _ = fmt.Fprintln(w, "Response (not JSON):")
		_, _ = fmt.Fprintln(w, string(resp.Body))
		return
	}
	_, _ = fmt.Fprintln(w, "Response:")
	if len(resp.Body) == 0 {
		_, _ = fmt.Fprintln(w, "(Empty)")
		return
	}
	_, _ = fmt.Fprintln(w, string(resp.Body))
}

func WriteResponse(w io.Writer, resp *client.Response) {
	WriteStatus(w, resp)
	WriteBody(w, resp)
}
