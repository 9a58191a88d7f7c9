package hdl

import (
	"fmt"
	"io"
	"text/template"

	"github.com/pkg/errors"

	"github.com/TomKeddie/luna/clocking"
	"github.com/TomKeddie/luna/resource"
	"github.com/TomKeddie/luna/toolchain"
)

// Header identifies the tool and the sources a generated file comes from.
type Header struct {
	Version  string
	Stamp    string
	Platform string
}

var funcs = template.FuncMap{
	"ns": func(v float64) string { return fmt.Sprintf("%.3f", v) },
}

func execute(tmpl *template.Template, w io.Writer, data interface{}) error {
	return errors.Wrapf(tmpl.Execute(w, data), "rendering %s", tmpl.Name())
}

const headerTmpl = `{{define "header"}}{{.Comment}} GENERATED FILE, DO NOT EDIT
{{.Comment}} Generated by luna {{.Header.Version}} from {{.Header.Stamp}} for platform {{.Header.Platform}}
{{end}}`

type clockGenerator struct {
	Comment   string
	Header    Header
	Module    string
	Ports     []string
	Buffer    string
	RefNet    string
	Instances []clocking.Instance
	Bindings  []clocking.Binding
}

var clockGeneratorTmpl = template.Must(template.New("clock generator").Funcs(funcs).Parse(headerTmpl + `
{{- template "header" .}}
` + "`default_nettype none" + `

module {{.Module}} (
{{- range $i, $p := .Ports}}{{if $i}},{{end}}
    {{$p}}
{{- end}}
);

wire {{.RefNet}};
{{.Buffer}}
{{- range .Instances}}
{{$inst := .}}
{{- range .Ports}}{{if eq .Dir "o"}}{{if ne .Name "CLKFBOUT"}}
wire {{.Net}};{{end}}{{end}}{{end}}
wire {{$inst.Name}}_feedback;

{{.Primitive}} #(
{{- range $i, $p := .Params}}{{if $i}},{{end}}
    .{{$p.Name}}({{$p.Literal}})
{{- end}}
) {{.Name}} (
{{- range $i, $p := .Ports}}{{if $i}},{{end}}
    .{{$p.Name}}({{$p.Net}})
{{- end}}
);
{{- end}}
{{range .Bindings}}
assign {{.ClockSignal}} = {{.ClockNet}};
assign {{.ResetNet}} = ~{{.LockNet}};
{{- end}}

endmodule

` + "`default_nettype wire" + `
`))

// WriteClockGenerator writes a Verilog module buffering the board clock
// `clk`, instantiating every PLL and driving `<domain>_clk` and
// `<domain>_rst` for every clock domain. Resets stay asserted until the
// owning PLL locks.
func WriteClockGenerator(w io.Writer, module string, clk resource.Resource, c *clocking.Clocking, h Header) error {
	instances := c.Instances()
	if len(instances) == 0 {
		return errors.New("no PLL instances to generate")
	}
	clkin, _ := instances[0].Port("CLKIN1")

	data := clockGenerator{
		Comment:   "//",
		Header:    h,
		Module:    module,
		RefNet:    clkin.Net,
		Instances: instances,
		Bindings:  c.Bindings(),
	}

	port := clk.PortName()
	switch {
	case clk.DiffPairs != nil:
		data.Ports = append(data.Ports, "input  wire "+port+"_p", "input  wire "+port+"_n")
		data.Buffer = fmt.Sprintf("IBUFDS %s_ibuf (.I(%s_p), .IB(%s_n), .O(%s));", port, port, port, clkin.Net)
	case clk.Pins != nil:
		data.Ports = append(data.Ports, "input  wire "+port)
		data.Buffer = fmt.Sprintf("IBUF %s_ibuf (.I(%s), .O(%s));", port, port, clkin.Net)
	default:
		return errors.Errorf("clock resource '%s' has no pins", clk.Name)
	}
	for _, b := range data.Bindings {
		data.Ports = append(data.Ports, "output wire "+b.ClockSignal, "output wire "+b.ResetNet)
	}
	return execute(clockGeneratorTmpl, w, data)
}

type pinConstraints struct {
	Comment string
	Header  Header
	Pins    []resource.PinConstraint
	Clocks  []resource.ClockConstraint
}

var pinConstraintsTmpl = template.Must(template.New("pin constraints").Funcs(funcs).Parse(headerTmpl + `
{{- template "header" .}}
{{- range .Pins}}
set_property -dict { PACKAGE_PIN {{.Pin}}{{range .Attrs}} {{.Key}} {{.Value}}{{end}} } [get_ports { {{- .Port -}} }]
{{- end}}
{{- range .Clocks}}
create_clock -name {{.Port}} -period {{ns .PeriodNs}} [get_ports { {{- .Port -}} }]
{{- end}}
`))

// WritePinConstraints writes the package pin, I/O attribute and input clock constraints of the board.
func WritePinConstraints(w io.Writer, table *resource.Table, h Header) error {
	return execute(pinConstraintsTmpl, w, pinConstraints{
		Comment: "#",
		Header:  h,
		Pins:    table.PinConstraints(),
		Clocks:  table.ClockConstraints(),
	})
}

type clockConstraints struct {
	Comment     string
	Header      Header
	Constraints string
}

var clockConstraintsTmpl = template.Must(template.New("clock constraints").Parse(headerTmpl + `
{{- template "header" .}}
{{.Constraints}}`))

// WriteClockConstraints writes the timing constraints between the generated clocks.
func WriteClockConstraints(w io.Writer, o toolchain.Overrides, h Header) error {
	return execute(clockConstraintsTmpl, w, clockConstraints{Comment: "#", Header: h, Constraints: o.AddConstraints})
}
