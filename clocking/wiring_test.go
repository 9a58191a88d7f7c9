package clocking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arcticSerdesClocking(t *testing.T) *Clocking {
	t.Helper()
	c, err := Synthesize(ref50, []DomainRequest{
		{Name: "usb", TargetHz: 12e6},
		{Name: "usb_io", TargetHz: 48e6},
		{Name: "sync", TargetHz: 125e6},
		{Name: "ss", TargetHz: 125e6},
		{Name: "fast", TargetHz: 250e6},
	}, artix7(t), "clkin")
	require.NoError(t, err)
	return c
}

func TestBindings(t *testing.T) {
	c := arcticSerdesClocking(t)

	bindings := c.Bindings()
	require.Len(t, bindings, 5)
	names := []string{}
	for _, b := range bindings {
		names = append(names, b.Domain)
	}
	assert.Equal(t, []string{"usb", "usb_io", "sync", "ss", "fast"}, names)

	ss, err := c.Binding("ss")
	require.NoError(t, err)
	sync, err := c.Binding("sync")
	require.NoError(t, err)
	assert.Equal(t, sync.ClockNet, ss.ClockNet)
	assert.Equal(t, "sync_pll_clkout0", ss.ClockNet)
	assert.Equal(t, "sync_pll_locked", ss.LockNet)
	assert.Equal(t, "ss_rst", ss.ResetNet)
	assert.Equal(t, "ss_clk", ss.ClockSignal)

	usb, err := c.Binding("usb")
	require.NoError(t, err)
	assert.Equal(t, "usb_pll_locked", usb.LockNet)
	assert.NotEqual(t, usb.PLL, ss.PLL)
}

func TestUnboundClockDomain(t *testing.T) {
	c := arcticSerdesClocking(t)

	_, err := c.Binding("hdmi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnboundClockDomain))

	var unbound *UnboundClockDomainError
	require.True(t, errors.As(err, &unbound))
	assert.Equal(t, "hdmi", unbound.Domain)

	assert.NoError(t, c.Require("usb", "fast"))
	assert.True(t, errors.Is(c.Require("usb", "hdmi"), ErrUnboundClockDomain))
}

func TestLockGroups(t *testing.T) {
	c := arcticSerdesClocking(t)

	groups := c.LockGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"usb", "usb_io"}, groups[0].Domains)
	assert.Equal(t, []string{"sync", "ss", "fast"}, groups[1].Domains)
	assert.Equal(t, "sync_pll_locked", groups[1].LockNet)

	group, err := c.LockGroupOf("fast")
	require.NoError(t, err)
	assert.Equal(t, groups[1].Domains, group.Domains)
}

func TestLockGroupStateMachine(t *testing.T) {
	c := arcticSerdesClocking(t)
	group := c.LockGroups()[1]

	assert.Equal(t, Unlocked, group.State())
	assert.True(t, group.ResetAsserted())

	steps := []struct {
		locked   bool
		to       LockState
		changed  bool
		asserted bool
	}{
		{false, Unlocked, false, true},
		{true, Locked, true, false},
		{true, Locked, false, false},
		{false, Unlocked, true, true},
		{true, Locked, true, false},
	}
	for i, step := range steps {
		tr := group.Observe(step.locked)
		assert.Equal(t, step.to, tr.To, "step %d", i)
		assert.Equal(t, step.changed, tr.Changed(), "step %d", i)
		require.Len(t, tr.Resets, 3)
		// Every domain of the group sees the same reset level in the same step.
		for _, reset := range tr.Resets {
			assert.Equal(t, step.asserted, reset.Asserted, "step %d domain %s", i, reset.Domain)
		}
	}
}

func TestLockGroupsAreIndependent(t *testing.T) {
	c := arcticSerdesClocking(t)
	groups := c.LockGroups()

	groups[0].Observe(true)
	assert.False(t, groups[0].ResetAsserted())
	assert.True(t, groups[1].ResetAsserted())

	// The frozen plan hands out fresh groups.
	assert.True(t, c.LockGroups()[0].ResetAsserted())
}

func TestPlanIsFrozen(t *testing.T) {
	c := arcticSerdesClocking(t)
	plan := c.Plan()
	plan.PLLs[0].Outputs[0].Domains[0] = "changed"
	plan.PLLs[0].FeedbackMultiplier = 1

	again := c.Plan()
	assert.Equal(t, "usb", again.PLLs[0].Outputs[0].Domains[0])
	assert.Equal(t, 24, again.PLLs[0].FeedbackMultiplier)
}

func TestLockStateString(t *testing.T) {
	assert.Equal(t, "LOCKED", Locked.String())
	assert.Equal(t, "UNLOCKED", Unlocked.String())
}

func TestInstancesAreCopies(t *testing.T) {
	c := arcticSerdesClocking(t)
	instances := c.Instances()
	instances[0].Params[0].Value = "LOW"
	instances[0].Ports[0].Net = "changed"

	again := c.Instances()
	assert.Equal(t, Bandwidth, again[0].Params[0].Value)
	assert.Equal(t, "usb_pll_feedback", again[0].Ports[0].Net)
}
