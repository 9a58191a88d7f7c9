package toolchain

import (
	"io"
	"text/template"

	"github.com/pkg/errors"
)

// ScriptParams describes one Vivado batch build.
type ScriptParams struct {
	Name        string
	Part        string
	Top         string
	Stamp       string
	Version     string
	Sources     []string
	Constraints []string
	Overrides   Overrides
}

var buildScriptTmpl = template.Must(template.New("build").Parse(
	`# GENERATED FILE, DO NOT EDIT
# Generated by luna {{.Version}} from {{.Stamp}}
# Design: "{{.Name}}"
# Part:   "{{.Part}}"

{{- range .Sources}}
read_verilog {{"{"}}{{.}}{{"}"}}
{{- end}}
{{- range .Constraints}}
read_xdc {{"{"}}{{.}}{{"}"}}
{{- end}}

synth_design -top {{.Top}} -part {{.Part}}
opt_design
place_design
route_design
report_timing_summary -file {{.Name}}_timing.rpt
report_utilization -file {{.Name}}_utilization.rpt
{{- with .Overrides.ScriptBeforeBitstream}}

{{.}}
{{- end}}

write_bitstream -force {{.Name}}.bit
{{- with .Overrides.ScriptAfterBitstream}}

{{.}}
{{- end}}

exit
`))

// WriteBuildScript renders the batch script building the bitstream `<Name>.bit`.
func WriteBuildScript(w io.Writer, params ScriptParams) error {
	if params.Top == "" {
		params.Top = params.Name
	}
	return errors.Wrap(buildScriptTmpl.Execute(w, params), "rendering build script")
}
