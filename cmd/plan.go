package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/TomKeddie/luna/clocking"
	"github.com/TomKeddie/luna/log"
)

var planJSON bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Args:  cobra.NoArgs,
	Short: "Resolves the clock domains of the platform into PLL configurations",
	Long: `Resolves the clock domains of the platform into PLL configurations and
prints the PLLs, their outputs, the domains they drive and the lock groups.`,
	Run: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON")
	rootCmd.AddCommand(planCmd)
}

type outputReport struct {
	Index        int      `json:"index"`
	Divider      int      `json:"divider"`
	FrequencyHz  float64  `json:"frequency_hz"`
	ErrorPPM     float64  `json:"error_ppm"`
	PhaseDegrees float64  `json:"phase_degrees"`
	DutyCycle    float64  `json:"duty_cycle"`
	Domains      []string `json:"domains"`
}

type pllReport struct {
	Name               string         `json:"name"`
	InputDivider       int            `json:"input_divider"`
	FeedbackMultiplier int            `json:"feedback_multiplier"`
	VCOHz              float64        `json:"vco_hz"`
	LockNet            string         `json:"lock_net"`
	Outputs            []outputReport `json:"outputs"`
}

type planReport struct {
	Platform    string      `json:"platform"`
	Part        string      `json:"part"`
	ReferenceHz float64     `json:"reference_hz"`
	PLLs        []pllReport `json:"plls"`
}

func newPlanReport(name, part string, plan clocking.Plan) planReport {
	report := planReport{Platform: name, Part: part, ReferenceHz: plan.Reference.FrequencyHz}
	for _, pll := range plan.PLLs {
		p := pllReport{
			Name:               pll.Name,
			InputDivider:       pll.InputDivider,
			FeedbackMultiplier: pll.FeedbackMultiplier,
			VCOHz:              pll.VCOHz,
			LockNet:            clocking.LockNet(pll),
		}
		for _, out := range pll.Outputs {
			p.Outputs = append(p.Outputs, outputReport{
				Index:        out.Index,
				Divider:      out.OutputDivider,
				FrequencyHz:  out.ResultingHz,
				ErrorPPM:     out.ErrorPPM,
				PhaseDegrees: out.PhaseDegrees,
				DutyCycle:    out.DutyCycle,
				Domains:      out.Domains,
			})
		}
		report.PLLs = append(report.PLLs, p)
	}
	return report
}

func printPlan(w io.Writer, report planReport) {
	fmt.Fprintf(w, "Platform %s (%s), reference clock %s\n", report.Platform, report.Part, clocking.FormatHz(report.ReferenceHz))
	for _, pll := range report.PLLs {
		fmt.Fprintf(w, "\n%s: DIVCLK_DIVIDE=%d CLKFBOUT_MULT=%d VCO=%s\n",
			pll.Name, pll.InputDivider, pll.FeedbackMultiplier, clocking.FormatHz(pll.VCOHz))
		for _, out := range pll.Outputs {
			fmt.Fprintf(w, "  CLKOUT%d: /%-3d %-12s %6.1f ppm  phase %7.3f  duty %.3f  -> %s\n",
				out.Index, out.Divider, clocking.FormatHz(out.FrequencyHz), out.ErrorPPM,
				out.PhaseDegrees, out.DutyCycle, strings.Join(out.Domains, ", "))
		}
		fmt.Fprintf(w, "  lock group: %s (reset while low)\n", pll.LockNet)
	}
}

func runPlan(cmd *cobra.Command, args []string) {
	p := selectPlatform()
	c, err := p.Elaborate()
	if err != nil {
		log.Fatal("%s.\n", err)
	}
	plan := c.Plan()
	if log.Verbose {
		spew.Fdump(os.Stderr, plan)
	}

	report := newPlanReport(p.Name, p.PartName(), plan)
	if !planJSON {
		printPlan(os.Stdout, report)
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal("Failed to encode the plan: %s.\n", err)
	}
}
