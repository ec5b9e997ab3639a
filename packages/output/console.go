package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sethetter/reqq/packages/core/runner"
	"github.com/sethetter/reqq/packages/http"
)

type ConsoleFormatter struct {
	options
}

func NewConsoleFormatter(opts ...Option) *ConsoleFormatter {
	f := &ConsoleFormatter{options: newOptions(opts)}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold)
	case code >= 400:
		return color.New(color.FgRed)
	case code >= 300:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.Result) error {
	resp := result.Response

	if f.query != "" {
		value, err := Query(resp.Body, f.query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(f.writer, value)
		return err
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if f.verbose {
		f.writeRequest(result.Request, "> ")
		fmt.Fprintln(f.writer)
	}

	status := statusColor(resp.StatusCode).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s %s\n", resp.Proto, status(resp.Status), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	for _, name := range resp.HeaderNames() {
		for _, value := range resp.Headers[name] {
			fmt.Fprintf(f.writer, "%s %s\n", faint(name+":"), value)
		}
	}

	if len(resp.Body) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, PrettyBody(resp.Body))
	}
	return nil
}

// FormatPrepared prints the request as it would be sent.
func (f *ConsoleFormatter) FormatPrepared(prepared *runner.Prepared) error {
	f.writeRequest(prepared.Request, "")
	return nil
}

func (f *ConsoleFormatter) writeRequest(req *http.Request, prefix string) {
	writeRequest(f.writer, req, prefix, color.New(color.Bold).SprintFunc(), color.New(color.Faint).SprintFunc())
}

func writeRequest(w io.Writer, req *http.Request, prefix string, bold, faint func(a ...any) string) {
	fmt.Fprintf(w, "%s%s %s\n", prefix, bold(req.Method), req.URL.String())
	for _, h := range req.Headers {
		fmt.Fprintf(w, "%s%s %s\n", prefix, faint(h.Name+":"), h.Value)
	}
	if req.Body != nil {
		fmt.Fprintf(w, "%s\n%s\n", prefix, *req.Body)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.errWriter, "%s %v\n", red("Error:"), err)
}
