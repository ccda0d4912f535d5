package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meditracker/medctl/pkg/medctl/client"
	"github.com/meditracker/medctl/pkg/medctl/fixture"
	"github.com/meditracker/medctl/pkg/medctl/output"
)

const bannerTitle = "MediTracker API Tester"

func addIDFlag(fs *pflag.FlagSet, id *int64) {
	fs.Int64Var(id, "id", 0, "Medicine ID")
}

func addFileFlag(fs *pflag.FlagSet, file *string) {
	fs.StringVar(file, "file", fixture.DefaultFile, "JSON file to use")
}

// reporter writes command progress and results. In raw mode everything goes
// to out; otherwise progress and summaries go to msg so out carries only the
// decoded payload.
type reporter struct {
	out    io.Writer
	msg    io.Writer
	format output.Format
}

func newReporter(rt *runtimeState) *reporter {
	// A config file that fails to load is reported by buildClient; until then
	// the format falls back to the flag or raw.
	_ = rt.EnsureConfigLoaded()
	format, err := output.ParseFormat(rt.OutputFormat())
	if err != nil {
		format = output.FormatRaw
	}
	r := &reporter{out: rt.Writer(), msg: rt.Writer(), format: format}
	if format != output.FormatRaw {
		r.msg = rt.ErrWriter()
	}
	return r
}

func (r *reporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.msg, format, args...)
}

func (r *reporter) println(msg string) {
	_, _ = fmt.Fprintln(r.msg, msg)
}

func (r *reporter) banner() {
	r.println(bannerTitle)
	r.println(strings.Repeat("=", 40))
}

func (r *reporter) requireID(cmd *cobra.Command, id int64) bool {
	if id == 0 {
		r.printf("Error: --id required for %s command\n", cmd.Name())
		return false
	}
	return true
}

func (r *reporter) loadDocument(path string) ([]byte, bool) {
	doc, err := fixture.Load(path)
	switch {
	case err == nil:
		return doc, true
	case errors.Is(err, fixture.ErrFileNotFound):
		r.printf("Error: File not found: %s\n", path)
	default:
		r.printf("Error: %v\n", err)
	}
	return nil, false
}

func (r *reporter) requestFailed(err error) {
	r.printf("Request failed: %v\n", err)
}

// response renders resp. Successful responses in a structured format are
// decoded into into and written to out; anything else is shown as received.
func (r *reporter) response(resp *client.Response, into any) {
	if r.format == output.FormatRaw || into == nil || resp.StatusCode >= http.StatusMultipleChoices {
		output.WriteResponse(r.msg, resp)
		return
	}
	output.WriteStatus(r.msg, resp)
	if err := resp.Decode(into); err != nil {
		r.printf("Error: %v\n", err)
		output.WriteBody(r.msg, resp)
		return
	}
	if err := r.writePayload(into); err != nil {
		r.printf("Error: %v\n", err)
	}
}

func (r *reporter) writePayload(v any) error {
	if r.format != output.FormatTable {
		return output.WriteObject(r.out, r.format, v)
	}
	switch p := v.(type) {
	case *client.Medicine:
		output.WriteMedicineTable(r.out, []client.Medicine{*p})
	case *[]client.Medicine:
		output.WriteMedicineTable(r.out, *p)
	default:
		return fmt.Errorf("table output is not supported for %T", v)
	}
	return nil
}

type outcome struct {
	success int
	ok      string
	// notFound is printed for 404; when empty a 404 is reported as failed.
	notFound string
	failed   string
}

func (r *reporter) outcome(resp *client.Response, o outcome) bool {
	switch {
	case resp.StatusCode == o.success:
		r.println(o.ok)
		return true
	case resp.StatusCode == http.StatusNotFound && o.notFound != "":
		r.println(o.notFound)
	default:
		r.println(o.failed)
	}
	return false
}

func (r *reporter) count(resp *client.Response, failed string) (int, bool) {
	n, err := client.CountItems(resp)
	if err != nil {
		r.printf("%s: %v\n", failed, err)
		return 0, false
	}
	return n, true
}
