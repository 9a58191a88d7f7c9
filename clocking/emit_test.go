package clocking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usbPlan() PLLPlan {
	return PLLPlan{
		ID:                 0,
		Name:               "usb_pll",
		InputDivider:       1,
		FeedbackMultiplier: 24,
		VCOHz:              1200e6,
		Outputs: []OutputPlan{
			{Index: 0, OutputDivider: 100, DutyCycle: 0.5, ResultingHz: 12e6, Domains: []string{"usb"}},
			{Index: 1, OutputDivider: 25, DutyCycle: 0.5, ResultingHz: 48e6, Domains: []string{"usb_io"}},
		},
	}
}

func TestEmitParameters(t *testing.T) {
	inst := Emit(usbPlan(), ref50, "PLLE2_ADV", "clkin")
	assert.Equal(t, "PLLE2_ADV", inst.Primitive)
	assert.Equal(t, "usb_pll", inst.Name)

	expected := []struct{ name, literal string }{
		{"BANDWIDTH", `"OPTIMIZED"`},
		{"COMPENSATION", `"ZHOLD"`},
		{"STARTUP_WAIT", `"FALSE"`},
		{"DIVCLK_DIVIDE", "1"},
		{"CLKFBOUT_MULT", "24"},
		{"CLKFBOUT_PHASE", "0.000"},
		{"CLKOUT0_DIVIDE", "100"},
		{"CLKOUT0_PHASE", "0.000"},
		{"CLKOUT0_DUTY_CYCLE", "0.500"},
		{"CLKOUT1_DIVIDE", "25"},
		{"CLKOUT1_PHASE", "0.000"},
		{"CLKOUT1_DUTY_CYCLE", "0.500"},
		{"CLKIN1_PERIOD", "20.000"},
	}
	require.Len(t, inst.Params, len(expected))
	for i, e := range expected {
		assert.Equal(t, e.name, inst.Params[i].Name)
		assert.Equal(t, e.literal, inst.Params[i].Literal(), e.name)
	}
}

func TestEmitClosesFeedbackLoop(t *testing.T) {
	inst := Emit(usbPlan(), ref50, "PLLE2_ADV", "clkin")

	fbIn, ok := inst.Port("CLKFBIN")
	require.True(t, ok)
	fbOut, ok := inst.Port("CLKFBOUT")
	require.True(t, ok)
	assert.Equal(t, In, fbIn.Dir)
	assert.Equal(t, Out, fbOut.Dir)
	assert.Equal(t, fbIn.Net, fbOut.Net)
	assert.Equal(t, "usb_pll_feedback", fbIn.Net)

	clkin, _ := inst.Port("CLKIN1")
	assert.Equal(t, "clkin", clkin.Net)
	locked, _ := inst.Port("LOCKED")
	assert.Equal(t, "usb_pll_locked", locked.Net)
	out1, _ := inst.Port("CLKOUT1")
	assert.Equal(t, "usb_pll_clkout1", out1.Net)
}

func TestEmitIsPure(t *testing.T) {
	assert.Equal(t, Emit(usbPlan(), ref50, "PLLE2_ADV", "clkin"), Emit(usbPlan(), ref50, "PLLE2_ADV", "clkin"))
}

func TestEmitAllRespectsDeviceCount(t *testing.T) {
	pll := artix7(t)
	pll.Count = 1

	second := usbPlan()
	second.ID, second.Name = 1, "sync_pll"
	second.Outputs = []OutputPlan{{Index: 0, OutputDivider: 8, DutyCycle: 0.5, Domains: []string{"sync", "ss"}}}

	_, err := EmitAll(Plan{Reference: ref50, PLLs: []PLLPlan{usbPlan(), second}}, pll, "clkin")
	require.True(t, errors.Is(err, ErrInsufficientPLLResources))

	var insufficient *InsufficientPLLResourcesError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, [][]string{{"sync", "ss"}}, insufficient.Unsatisfied)

	pll.Count = 2
	instances, err := EmitAll(Plan{Reference: ref50, PLLs: []PLLPlan{usbPlan(), second}}, pll, "clkin")
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "sync_pll", instances[1].Name)
}
